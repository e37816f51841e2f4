package schema

import "slices"

// FieldName identifies a single observation field.
type FieldName string

// FieldKind describes how a field's value is represented.
type FieldKind string

// FieldCategory groups fields semantically.
type FieldCategory string

// All field kinds supported.
const (
	NumericField     FieldKind = "numeric"
	BooleanField     FieldKind = "boolean"
	CategoricalField FieldKind = "categorical"
)

// All field categories.
const (
	DemographicCategory FieldCategory = "demographic"
	FunctionalCategory  FieldCategory = "functional"
	ClinicalCategory    FieldCategory = "clinical"
	SocialCategory      FieldCategory = "social"
)

// Observation field names. These double as JSON, mapstructure and column names.
const (
	FieldAge           FieldName = "age"
	FieldSex           FieldName = "sex"
	FieldGaitSpeed     FieldName = "gait_speed"
	FieldGripStrength  FieldName = "grip_strength"
	FieldADLScore      FieldName = "adl_score"
	FieldTUGSeconds    FieldName = "tug_seconds"
	FieldFrailtyCount  FieldName = "frailty_count"
	FieldComorbidity   FieldName = "comorbidity"
	FieldDiseaseCount  FieldName = "disease_count"
	FieldBMI           FieldName = "bmi"
	FieldSystolicBP    FieldName = "systolic_bp"
	FieldHbA1c         FieldName = "hba1c"
	FieldLDL           FieldName = "ldl"
	FieldEGFR          FieldName = "egfr"
	FieldMoCA          FieldName = "moca"
	FieldPHQ9          FieldName = "phq9"
	FieldGAD7          FieldName = "gad7"
	FieldAbnormalLiver FieldName = "abnormal_liver"
	FieldLivingAlone   FieldName = "living_alone"
	FieldFallHistory   FieldName = "fall_history"
	FieldExercise      FieldName = "exercise"
	FieldSmoking       FieldName = "smoking"
	FieldQualityOfLife FieldName = "quality_of_life"
	FieldRedFlags      FieldName = "red_flags"
)

// Categorical values.
const (
	ComorbidityNone     = "None"
	ComorbiditySingle   = "Single"
	ComorbidityMultiple = "Multiple"

	ExerciseNone       = "None"
	ExerciseOccasional = "Occasional"
	ExerciseRegular    = "Regular"

	SexFemale = "female"
	SexMale   = "male"
	SexOther  = "other"
)

// FieldSpec declares the domain of a field. Numeric intervals are closed.
type FieldSpec struct {
	Name     FieldName
	Kind     FieldKind
	Category FieldCategory
	Label    string
	Unit     string
	Min      float64
	Max      float64
	Integer  bool
	Values   []string
}

// Contains reports whether v lies inside the closed interval of a numeric field.
func (s FieldSpec) Contains(v float64) bool {
	return v >= s.Min && v <= s.Max
}

// Allows reports whether v is one of the values of a categorical field.
func (s FieldSpec) Allows(v string) bool {
	return slices.Contains(s.Values, v)
}

// FieldSpecs is the authoritative table of observation fields, in display order.
var FieldSpecs = []FieldSpec{
	{Name: FieldAge, Kind: NumericField, Category: DemographicCategory, Label: "Age", Unit: "years", Min: 18, Max: 100},
	{Name: FieldSex, Kind: CategoricalField, Category: DemographicCategory, Label: "Sex", Values: []string{SexFemale, SexMale, SexOther}},

	{Name: FieldGaitSpeed, Kind: NumericField, Category: FunctionalCategory, Label: "Gait speed", Unit: "m/s", Min: 0, Max: 3},
	{Name: FieldGripStrength, Kind: NumericField, Category: FunctionalCategory, Label: "Grip strength", Unit: "kg", Min: 0, Max: 100},
	{Name: FieldADLScore, Kind: NumericField, Category: FunctionalCategory, Label: "ADL score", Min: 0, Max: 6, Integer: true},
	{Name: FieldTUGSeconds, Kind: NumericField, Category: FunctionalCategory, Label: "Timed Up and Go", Unit: "s", Min: 0, Max: 120},
	{Name: FieldFrailtyCount, Kind: NumericField, Category: FunctionalCategory, Label: "Frailty phenotype", Min: 0, Max: 5, Integer: true},

	{Name: FieldComorbidity, Kind: CategoricalField, Category: ClinicalCategory, Label: "Comorbidity", Values: []string{ComorbidityNone, ComorbiditySingle, ComorbidityMultiple}},
	{Name: FieldDiseaseCount, Kind: NumericField, Category: ClinicalCategory, Label: "Disease count", Min: 0, Max: 30, Integer: true},
	{Name: FieldBMI, Kind: NumericField, Category: ClinicalCategory, Label: "BMI", Unit: "kg/m2", Min: 10, Max: 80},
	{Name: FieldSystolicBP, Kind: NumericField, Category: ClinicalCategory, Label: "Systolic BP", Unit: "mmHg", Min: 0, Max: 300},
	{Name: FieldHbA1c, Kind: NumericField, Category: ClinicalCategory, Label: "HbA1c", Unit: "%", Min: 0, Max: 20},
	{Name: FieldLDL, Kind: NumericField, Category: ClinicalCategory, Label: "LDL", Unit: "mg/dL", Min: 0, Max: 500},
	{Name: FieldEGFR, Kind: NumericField, Category: ClinicalCategory, Label: "eGFR", Unit: "mL/min/1.73m2", Min: 0, Max: 200},
	{Name: FieldMoCA, Kind: NumericField, Category: ClinicalCategory, Label: "MoCA", Min: 0, Max: 30, Integer: true},
	{Name: FieldPHQ9, Kind: NumericField, Category: ClinicalCategory, Label: "PHQ-9", Min: 0, Max: 27, Integer: true},
	{Name: FieldGAD7, Kind: NumericField, Category: ClinicalCategory, Label: "GAD-7", Min: 0, Max: 21, Integer: true},
	{Name: FieldAbnormalLiver, Kind: BooleanField, Category: ClinicalCategory, Label: "Abnormal liver function"},

	{Name: FieldLivingAlone, Kind: BooleanField, Category: SocialCategory, Label: "Living alone"},
	{Name: FieldFallHistory, Kind: BooleanField, Category: SocialCategory, Label: "Fall in past 12 months"},
	{Name: FieldExercise, Kind: CategoricalField, Category: SocialCategory, Label: "Exercise", Values: []string{ExerciseNone, ExerciseOccasional, ExerciseRegular}},
	{Name: FieldSmoking, Kind: BooleanField, Category: SocialCategory, Label: "Smoking"},
	{Name: FieldQualityOfLife, Kind: NumericField, Category: SocialCategory, Label: "Quality of life", Min: 0, Max: 100},
	{Name: FieldRedFlags, Kind: NumericField, Category: SocialCategory, Label: "Red-flag symptoms", Min: 0, Max: 10, Integer: true},
}

var fieldSpecIndex = func() map[FieldName]FieldSpec {
	m := make(map[FieldName]FieldSpec, len(FieldSpecs))
	for _, s := range FieldSpecs {
		m[s.Name] = s
	}
	return m
}()

// LookupField returns the declared spec for a field name.
func LookupField(name FieldName) (FieldSpec, bool) {
	s, ok := fieldSpecIndex[name]
	return s, ok
}
