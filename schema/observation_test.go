package schema

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldSpecsComplete(t *testing.T) {
	var obs PatientObservation
	seen := map[FieldName]bool{}
	for _, spec := range FieldSpecs {
		assert.False(t, seen[spec.Name], "duplicate field %s", spec.Name)
		seen[spec.Name] = true

		switch spec.Kind {
		case NumericField:
			assert.Less(t, spec.Min, spec.Max, "interval for %s", spec.Name)
			assert.True(t, obs.SetNumeric(spec.Name, spec.Min), "%s should be numeric", spec.Name)
		case BooleanField:
			assert.True(t, obs.SetFlag(spec.Name, true), "%s should be boolean", spec.Name)
		case CategoricalField:
			require.NotEmpty(t, spec.Values)
			assert.True(t, obs.SetCategory(spec.Name, spec.Values[0]), "%s should be categorical", spec.Name)
		}
	}
	assert.Len(t, obs.Present(), len(FieldSpecs))
	assert.NoError(t, obs.Validate())
}

func TestLookupField(t *testing.T) {
	spec, ok := LookupField(FieldAge)
	require.True(t, ok)
	assert.Equal(t, NumericField, spec.Kind)
	assert.Equal(t, 18.0, spec.Min)
	assert.Equal(t, 100.0, spec.Max)

	_, ok = LookupField("shoe_size")
	assert.False(t, ok)
}

func TestValidateIntervals(t *testing.T) {
	tests := []struct {
		name  string
		field FieldName
		value float64
		valid bool
	}{
		{"age lower bound", FieldAge, 18, true},
		{"age upper bound", FieldAge, 100, true},
		{"age below", FieldAge, 17.9, false},
		{"age above", FieldAge, 100.5, false},
		{"quality of life zero", FieldQualityOfLife, 0, true},
		{"quality of life above", FieldQualityOfLife, 101, false},
		{"gait negative", FieldGaitSpeed, -0.1, false},
		{"frailty whole", FieldFrailtyCount, 3, true},
		{"frailty fractional", FieldFrailtyCount, 2.5, false},
		{"adl above", FieldADLScore, 7, false},
		{"bmi below", FieldBMI, 9, false},
		{"nan", FieldHbA1c, math.NaN(), false},
		{"inf", FieldLDL, math.Inf(1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var obs PatientObservation
			require.True(t, obs.SetNumeric(tt.field, tt.value))
			err := obs.Validate()
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var fe *FieldError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, tt.field, fe.Field)
		})
	}
}

func TestValidateCategories(t *testing.T) {
	obs := PatientObservation{}
	obs.SetCategory(FieldComorbidity, "Several")
	obs.SetCategory(FieldExercise, ExerciseRegular)
	obs.SetCategory(FieldSex, "unknown")

	err := obs.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "comorbidity")
	assert.Contains(t, err.Error(), "sex")
	assert.NotContains(t, err.Error(), "exercise")
}

func TestValidateCollectsEveryViolation(t *testing.T) {
	obs := PatientObservation{}
	obs.SetNumeric(FieldAge, 12)
	obs.SetNumeric(FieldPHQ9, 40)

	err := obs.Validate()
	require.Error(t, err)

	var fields []FieldName
	for _, e := range err.(interface{ Unwrap() []error }).Unwrap() {
		var fe *FieldError
		require.True(t, errors.As(e, &fe))
		fields = append(fields, fe.Field)
	}
	assert.Equal(t, []FieldName{FieldAge, FieldPHQ9}, fields)
}

func TestEmptyObservationIsValid(t *testing.T) {
	var obs PatientObservation
	assert.NoError(t, obs.Validate())
	assert.Empty(t, obs.Present())
}

func TestAccessors(t *testing.T) {
	var obs PatientObservation
	assert.False(t, obs.Has(FieldLivingAlone))

	obs.SetFlag(FieldLivingAlone, false)
	assert.True(t, obs.Has(FieldLivingAlone))
	v, ok := obs.Flag(FieldLivingAlone)
	assert.True(t, ok)
	assert.False(t, v)

	obs.SetNumeric(FieldAge, 80)
	n, ok := obs.Numeric(FieldAge)
	assert.True(t, ok)
	assert.Equal(t, 80.0, n)

	// Kind mismatches are rejected rather than coerced.
	assert.False(t, obs.SetNumeric(FieldSmoking, 1))
	assert.False(t, obs.SetFlag(FieldAge, true))
	assert.False(t, obs.SetCategory(FieldBMI, "high"))
	_, ok = obs.Numeric(FieldExercise)
	assert.False(t, ok)

	val, ok := obs.Value(FieldAge)
	assert.True(t, ok)
	assert.Equal(t, 80.0, val)
	_, ok = obs.Value(FieldExercise)
	assert.False(t, ok)
}

func TestObservationUnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{name: "known fields", body: `{"age": 84, "gait_speed": 0.4, "fall_history": true}`},
		{name: "empty object", body: `{}`},
		{name: "misspelled field", body: `{"age": 84, "gaitspeed": 0.4}`, wantErr: `unknown field "gaitspeed"`},
		{name: "unknown flag", body: `{"fall_hist": true}`, wantErr: `unknown field "fall_hist"`},
		{name: "wrong type", body: `{"age": "old"}`, wantErr: "observation"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var obs PatientObservation
			err := json.Unmarshal([]byte(tt.body), &obs)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}

	var obs PatientObservation
	require.NoError(t, json.Unmarshal([]byte(`{"age": 84, "gait_speed": 0.4}`), &obs))
	gait, ok := obs.Numeric(FieldGaitSpeed)
	require.True(t, ok)
	assert.Equal(t, 0.4, gait)
}
