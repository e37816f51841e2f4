package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// PatientObservation holds the inputs to a single assessment.
// A nil field is a missing input; present values must lie inside their declared domain.
type PatientObservation struct {
	Age *float64 `json:"age,omitempty" mapstructure:"age"`
	Sex *string  `json:"sex,omitempty" mapstructure:"sex"`

	GaitSpeed    *float64 `json:"gait_speed,omitempty" mapstructure:"gait_speed"`
	GripStrength *float64 `json:"grip_strength,omitempty" mapstructure:"grip_strength"`
	ADLScore     *float64 `json:"adl_score,omitempty" mapstructure:"adl_score"`
	TUGSeconds   *float64 `json:"tug_seconds,omitempty" mapstructure:"tug_seconds"`
	FrailtyCount *float64 `json:"frailty_count,omitempty" mapstructure:"frailty_count"`

	Comorbidity   *string  `json:"comorbidity,omitempty" mapstructure:"comorbidity"`
	DiseaseCount  *float64 `json:"disease_count,omitempty" mapstructure:"disease_count"`
	BMI           *float64 `json:"bmi,omitempty" mapstructure:"bmi"`
	SystolicBP    *float64 `json:"systolic_bp,omitempty" mapstructure:"systolic_bp"`
	HbA1c         *float64 `json:"hba1c,omitempty" mapstructure:"hba1c"`
	LDL           *float64 `json:"ldl,omitempty" mapstructure:"ldl"`
	EGFR          *float64 `json:"egfr,omitempty" mapstructure:"egfr"`
	MoCA          *float64 `json:"moca,omitempty" mapstructure:"moca"`
	PHQ9          *float64 `json:"phq9,omitempty" mapstructure:"phq9"`
	GAD7          *float64 `json:"gad7,omitempty" mapstructure:"gad7"`
	AbnormalLiver *bool    `json:"abnormal_liver,omitempty" mapstructure:"abnormal_liver"`

	LivingAlone   *bool    `json:"living_alone,omitempty" mapstructure:"living_alone"`
	FallHistory   *bool    `json:"fall_history,omitempty" mapstructure:"fall_history"`
	Exercise      *string  `json:"exercise,omitempty" mapstructure:"exercise"`
	Smoking       *bool    `json:"smoking,omitempty" mapstructure:"smoking"`
	QualityOfLife *float64 `json:"quality_of_life,omitempty" mapstructure:"quality_of_life"`
	RedFlags      *float64 `json:"red_flags,omitempty" mapstructure:"red_flags"`
}

// UnmarshalJSON decodes an observation and rejects keys that are not declared fields,
// so a misspelled input fails instead of being scored as missing.
func (o *PatientObservation) UnmarshalJSON(data []byte) error {
	type plain PatientObservation
	var p plain
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return fmt.Errorf("observation: %w", err)
	}
	*o = PatientObservation(p)
	return nil
}

// FieldError describes a single field that failed validation.
type FieldError struct {
	Field  FieldName
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Validate checks every present field against its declared domain.
// All violations are returned together, in FieldSpecs order.
func (o *PatientObservation) Validate() error {
	var errs []error
	for _, spec := range FieldSpecs {
		switch spec.Kind {
		case NumericField:
			v, ok := o.Numeric(spec.Name)
			if !ok {
				continue
			}
			if math.IsNaN(v) || math.IsInf(v, 0) {
				errs = append(errs, &FieldError{Field: spec.Name, Reason: "value is not a finite number"})
				continue
			}
			if !spec.Contains(v) {
				errs = append(errs, &FieldError{
					Field:  spec.Name,
					Reason: fmt.Sprintf("value %g outside declared interval [%g, %g]", v, spec.Min, spec.Max),
				})
				continue
			}
			if spec.Integer && v != math.Trunc(v) {
				errs = append(errs, &FieldError{Field: spec.Name, Reason: fmt.Sprintf("value %g must be a whole number", v)})
			}
		case CategoricalField:
			v, ok := o.Category(spec.Name)
			if ok && !spec.Allows(v) {
				errs = append(errs, &FieldError{
					Field:  spec.Name,
					Reason: fmt.Sprintf("value %q not one of %v", v, spec.Values),
				})
			}
		}
	}
	return errors.Join(errs...)
}

// Has reports whether the field is present.
func (o *PatientObservation) Has(name FieldName) bool {
	if r := o.numericRef(name); r != nil {
		return *r != nil
	}
	if r := o.flagRef(name); r != nil {
		return *r != nil
	}
	if r := o.categoryRef(name); r != nil {
		return *r != nil
	}
	return false
}

// Numeric returns the value of a numeric field and whether it is present.
func (o *PatientObservation) Numeric(name FieldName) (float64, bool) {
	r := o.numericRef(name)
	if r == nil || *r == nil {
		return 0, false
	}
	return **r, true
}

// Flag returns the value of a boolean field and whether it is present.
func (o *PatientObservation) Flag(name FieldName) (bool, bool) {
	r := o.flagRef(name)
	if r == nil || *r == nil {
		return false, false
	}
	return **r, true
}

// Category returns the value of a categorical field and whether it is present.
func (o *PatientObservation) Category(name FieldName) (string, bool) {
	r := o.categoryRef(name)
	if r == nil || *r == nil {
		return "", false
	}
	return **r, true
}

// SetNumeric sets a numeric field. It returns false if name is not a numeric field.
func (o *PatientObservation) SetNumeric(name FieldName, v float64) bool {
	r := o.numericRef(name)
	if r == nil {
		return false
	}
	*r = &v
	return true
}

// SetFlag sets a boolean field. It returns false if name is not a boolean field.
func (o *PatientObservation) SetFlag(name FieldName, v bool) bool {
	r := o.flagRef(name)
	if r == nil {
		return false
	}
	*r = &v
	return true
}

// SetCategory sets a categorical field. It returns false if name is not a categorical field.
func (o *PatientObservation) SetCategory(name FieldName, v string) bool {
	r := o.categoryRef(name)
	if r == nil {
		return false
	}
	*r = &v
	return true
}

// Value returns the present value of any field as numeric, bool or string.
func (o *PatientObservation) Value(name FieldName) (any, bool) {
	if v, ok := o.Numeric(name); ok {
		return v, true
	}
	if v, ok := o.Flag(name); ok {
		return v, true
	}
	if v, ok := o.Category(name); ok {
		return v, true
	}
	return nil, false
}

// Present lists the present fields in FieldSpecs order.
func (o *PatientObservation) Present() []FieldName {
	var out []FieldName
	for _, spec := range FieldSpecs {
		if o.Has(spec.Name) {
			out = append(out, spec.Name)
		}
	}
	return out
}

func (o *PatientObservation) numericRef(name FieldName) **float64 {
	switch name {
	case FieldAge:
		return &o.Age
	case FieldGaitSpeed:
		return &o.GaitSpeed
	case FieldGripStrength:
		return &o.GripStrength
	case FieldADLScore:
		return &o.ADLScore
	case FieldTUGSeconds:
		return &o.TUGSeconds
	case FieldFrailtyCount:
		return &o.FrailtyCount
	case FieldDiseaseCount:
		return &o.DiseaseCount
	case FieldBMI:
		return &o.BMI
	case FieldSystolicBP:
		return &o.SystolicBP
	case FieldHbA1c:
		return &o.HbA1c
	case FieldLDL:
		return &o.LDL
	case FieldEGFR:
		return &o.EGFR
	case FieldMoCA:
		return &o.MoCA
	case FieldPHQ9:
		return &o.PHQ9
	case FieldGAD7:
		return &o.GAD7
	case FieldQualityOfLife:
		return &o.QualityOfLife
	case FieldRedFlags:
		return &o.RedFlags
	}
	return nil
}

func (o *PatientObservation) flagRef(name FieldName) **bool {
	switch name {
	case FieldAbnormalLiver:
		return &o.AbnormalLiver
	case FieldLivingAlone:
		return &o.LivingAlone
	case FieldFallHistory:
		return &o.FallHistory
	case FieldSmoking:
		return &o.Smoking
	}
	return nil
}

func (o *PatientObservation) categoryRef(name FieldName) **string {
	switch name {
	case FieldSex:
		return &o.Sex
	case FieldComorbidity:
		return &o.Comorbidity
	case FieldExercise:
		return &o.Exercise
	}
	return nil
}
