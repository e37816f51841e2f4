package core

import (
	"errors"
	"testing"

	"github.com/passagehealth/passage/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f64(v float64) *float64 { return &v }
func flag(v bool) *bool      { return &v }
func str(v string) *string   { return &v }

func preset(t testing.TB, name string) *Policy {
	t.Helper()
	reg, err := NewRegistry()
	require.NoError(t, err)
	p, err := reg.Get(name)
	require.NoError(t, err)
	return p
}

// TestHospitalizationScenario covers the worked threshold example.
func TestHospitalizationScenario(t *testing.T) {
	obs := schema.PatientObservation{
		Age:           f64(80),
		Comorbidity:   str(schema.ComorbidityMultiple),
		ADLScore:      f64(3),
		BMI:           f64(32),
		Exercise:      str(schema.ExerciseNone),
		QualityOfLife: f64(40),
	}

	a, err := Assess(obs, preset(t, HospitalizationThreshold))
	require.NoError(t, err)
	assert.Equal(t, 13.0, a.TotalScore)
	assert.Equal(t, schema.HighLevel, a.Level)
	assert.Nil(t, a.Probability)
	assert.Nil(t, a.CompositeIndex)
	assert.Equal(t, 6.0, a.DomainScores[schema.ClinicalDomain])
	assert.Equal(t, 3.0, a.DomainScores[schema.FunctionalDomain])
	assert.Equal(t, 4.0, a.DomainScores[schema.SocialDomain])
	assert.InDelta(t, 100.0, a.RiskPercent, 1e-9)
	assert.Equal(t, 1.0, a.Confidence)
	assert.Equal(t, schema.CompletenessConfidence, a.ConfidenceMethod)

	// age, functional, comorbidity, labs (bmi), quality of life, lifestyle
	assert.Equal(t, []string{
		"Advanced age increases frailty-related hospitalization risk.",
		"Dependence in daily activities raises hospitalization risk.",
		"Multiple comorbidities compound clinical risk.",
		"Obesity adds metabolic and mobility burden.",
		"Reduced quality of life is associated with poorer outcomes.",
		"Physical inactivity accelerates functional decline.",
	}, a.Explanations)
	assert.ElementsMatch(t, []string{"age-75", "adl-below-4", "bmi-30", "comorbidity-multiple", "exercise-none", "qol-below-60"}, a.FiredRules)
}

// TestHealthspanScenario covers the worked composite example.
func TestHealthspanScenario(t *testing.T) {
	obs := schema.PatientObservation{
		GaitSpeed:     f64(1.2),
		GripStrength:  f64(35),
		TUGSeconds:    f64(0),
		MoCA:          f64(30),
		PHQ9:          f64(0),
		GAD7:          f64(0),
		SystolicBP:    f64(0),
		HbA1c:         f64(0),
		QualityOfLife: f64(100),
	}

	a, err := Assess(obs, preset(t, HealthspanIndex))
	require.NoError(t, err)
	require.NotNil(t, a.CompositeIndex)
	assert.InDelta(t, 100.0, *a.CompositeIndex, 1e-9)
	assert.Equal(t, 1.0, a.Confidence)
	assert.Equal(t, schema.OptimalLevel, a.Level)
	assert.Nil(t, a.Probability)
	assert.Empty(t, a.Explanations)
	assert.InDelta(t, 0.0, a.RiskPercent, 1e-9)
}

func TestHealthspanMissingComponents(t *testing.T) {
	obs := schema.PatientObservation{
		GaitSpeed: f64(0.6), // half of the reference
		MoCA:      f64(30),
		PHQ9:      f64(27),
	}

	a, err := Assess(obs, preset(t, HealthspanIndex))
	require.NoError(t, err)
	// 7.5 from gait, 15 from MoCA, nothing from PHQ-9 or the missing components
	assert.InDelta(t, 22.5, *a.CompositeIndex, 1e-9)
	assert.InDelta(t, 3.0/9.0, a.Confidence, 1e-9)
	assert.Equal(t, schema.HighLevel, a.Level)
	assert.Equal(t, []string{"Depressive symptoms are elevated."}, a.Explanations)
}

func TestLogisticBoundary(t *testing.T) {
	assert.Equal(t, 0.5, Logistic(4, 0.9, 4))
	for total := 0.0; total < 4; total++ {
		assert.Less(t, Logistic(total, 0.9, 4), 0.5)
	}
	assert.Greater(t, Logistic(5, 0.9, 4), 0.5)
	assert.Equal(t, 0.5, Logistic(5, 0.8, 5))
}

func TestLogisticLevel(t *testing.T) {
	assert.Equal(t, schema.LowLevel, LogisticLevel(0.19))
	assert.Equal(t, schema.ModerateLevel, LogisticLevel(0.2))
	assert.Equal(t, schema.ModerateLevel, LogisticLevel(0.49))
	assert.Equal(t, schema.HighLevel, LogisticLevel(0.5))
}

func TestThresholdConsistency(t *testing.T) {
	p := preset(t, HospitalizationThreshold)
	tests := []struct {
		total float64
		want  schema.Level
	}{
		{0, schema.LowLevel},
		{3, schema.LowLevel},
		{4, schema.ModerateLevel},
		{7, schema.ModerateLevel},
		{8, schema.HighLevel},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ThresholdLevel(tt.total, p.Transform.Bands, p.Transform.Above), "total %g", tt.total)
	}
}

func TestFrailtyLogisticOriginalLayers(t *testing.T) {
	obs := schema.PatientObservation{
		Age:           f64(78),
		Comorbidity:   str(schema.ComorbiditySingle),
		QualityOfLife: f64(70),
		GaitSpeed:     f64(0.7),
		FrailtyCount:  f64(1),
		LivingAlone:   flag(true),
		FallHistory:   flag(false),
	}

	a, err := Assess(obs, preset(t, FrailtyLogistic))
	require.NoError(t, err)
	assert.Equal(t, 2.0, a.DomainScores[schema.ClinicalDomain])
	assert.Equal(t, 2.0, a.DomainScores[schema.FunctionalDomain])
	assert.Equal(t, 1.0, a.DomainScores[schema.SocialDomain])
	assert.Equal(t, 5.0, a.TotalScore)
	require.NotNil(t, a.Probability)
	assert.InDelta(t, Logistic(5, 0.9, 4), *a.Probability, 1e-12)
	assert.Equal(t, schema.HighLevel, a.Level)
	assert.InDelta(t, *a.Probability*100, a.RiskPercent, 1e-9)
	assert.InDelta(t, 0.75, a.Confidence, 1e-9)
	assert.Equal(t, schema.ScoreConfidence, a.ConfidenceMethod)
}

// TestScoreConfidenceIsHeuristic pins the placeholder curve: linear in the total and capped at 0.95.
func TestScoreConfidenceIsHeuristic(t *testing.T) {
	p := preset(t, FrailtyLogistic)
	obs := schema.PatientObservation{}
	assert.InDelta(t, 0.6, confidence(p, &obs, 0), 1e-12)
	assert.InDelta(t, 0.9, confidence(p, &obs, 10), 1e-12)
	assert.InDelta(t, 0.95, confidence(p, &obs, 15), 1e-12)
	assert.InDelta(t, 0.95, confidence(p, &obs, 1000), 1e-12)
}

func TestMissingRequiredField(t *testing.T) {
	obs := schema.PatientObservation{Comorbidity: str(schema.ComorbidityMultiple)}

	for _, name := range []string{FrailtyLogistic, HospitalizationThreshold, CardiometabolicLogistic} {
		t.Run(name, func(t *testing.T) {
			a, err := Assess(obs, preset(t, name))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidObservation))
			var fe *schema.FieldError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, schema.FieldAge, fe.Field)
			assert.Empty(t, a.Level)
		})
	}
}

func TestOutOfDomainObservation(t *testing.T) {
	obs := schema.PatientObservation{Age: f64(80), ADLScore: f64(9)}
	_, err := Assess(obs, preset(t, HospitalizationThreshold))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidObservation)
	assert.Contains(t, err.Error(), "adl_score")
}

func TestAssessDeterministic(t *testing.T) {
	obs := schema.PatientObservation{
		Age:           f64(81),
		Comorbidity:   str(schema.ComorbidityMultiple),
		QualityOfLife: f64(55),
		GaitSpeed:     f64(0.5),
		FrailtyCount:  f64(4),
		LivingAlone:   flag(true),
		FallHistory:   flag(true),
		ADLScore:      f64(2),
		Exercise:      str(schema.ExerciseNone),
		SystolicBP:    f64(150),
		HbA1c:         f64(6),
		PHQ9:          f64(12),
	}
	reg, err := NewRegistry()
	require.NoError(t, err)

	for _, p := range reg.List() {
		first, err := Assess(obs, p)
		require.NoError(t, err)
		for range 5 {
			again, err := Assess(obs, p)
			require.NoError(t, err)
			assert.Equal(t, first, again, p.Name)
		}
		assert.GreaterOrEqual(t, first.Confidence, 0.0)
		assert.LessOrEqual(t, first.Confidence, 1.0)
	}
}

// TestMonotonicity raises each risk-increasing input past its rule threshold and
// checks the total never drops.
func TestMonotonicity(t *testing.T) {
	base := func() schema.PatientObservation {
		return schema.PatientObservation{
			Age:           f64(60),
			ADLScore:      f64(6),
			BMI:           f64(24),
			Comorbidity:   str(schema.ComorbidityNone),
			Exercise:      str(schema.ExerciseRegular),
			QualityOfLife: f64(90),
			GaitSpeed:     f64(1.3),
			FrailtyCount:  f64(0),
			LivingAlone:   flag(false),
			FallHistory:   flag(false),
			SystolicBP:    f64(115),
			HbA1c:         f64(5.0),
			LDL:           f64(90),
			EGFR:          f64(95),
			DiseaseCount:  f64(0),
			Smoking:       flag(false),
			AbnormalLiver: flag(false),
		}
	}
	worsen := []struct {
		name  string
		apply func(o *schema.PatientObservation)
	}{
		{"age past 75", func(o *schema.PatientObservation) { o.Age = f64(76) }},
		{"adl below 4", func(o *schema.PatientObservation) { o.ADLScore = f64(3) }},
		{"bmi up", func(o *schema.PatientObservation) { o.BMI = f64(35) }},
		{"comorbidity multiple", func(o *schema.PatientObservation) { o.Comorbidity = str(schema.ComorbidityMultiple) }},
		{"no exercise", func(o *schema.PatientObservation) { o.Exercise = str(schema.ExerciseNone) }},
		{"qol down", func(o *schema.PatientObservation) { o.QualityOfLife = f64(30) }},
		{"gait down", func(o *schema.PatientObservation) { o.GaitSpeed = f64(0.5) }},
		{"frailty up", func(o *schema.PatientObservation) { o.FrailtyCount = f64(4) }},
		{"living alone", func(o *schema.PatientObservation) { o.LivingAlone = flag(true) }},
		{"fell", func(o *schema.PatientObservation) { o.FallHistory = flag(true) }},
		{"sbp up", func(o *schema.PatientObservation) { o.SystolicBP = f64(160) }},
		{"ldl up", func(o *schema.PatientObservation) { o.LDL = f64(190) }},
		{"egfr down", func(o *schema.PatientObservation) { o.EGFR = f64(40) }},
		{"diseases up", func(o *schema.PatientObservation) { o.DiseaseCount = f64(4) }},
		{"smoker", func(o *schema.PatientObservation) { o.Smoking = flag(true) }},
	}

	for _, name := range []string{FrailtyLogistic, HospitalizationThreshold, CardiometabolicLogistic} {
		p := preset(t, name)
		before, err := Assess(base(), p)
		require.NoError(t, err)
		for _, w := range worsen {
			obs := base()
			w.apply(&obs)
			after, err := Assess(obs, p)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, after.TotalScore, before.TotalScore, "%s / %s", name, w.name)
		}
	}
}

func TestExplanationOrderIgnoresRuleOrder(t *testing.T) {
	p := *preset(t, HospitalizationThreshold)
	reversed := make([]Rule, len(p.Rules))
	for i, r := range p.Rules {
		reversed[len(p.Rules)-1-i] = r
	}
	p.Rules = reversed

	obs := schema.PatientObservation{
		Age:           f64(90),
		ADLScore:      f64(1),
		Exercise:      str(schema.ExerciseNone),
		QualityOfLife: f64(10),
	}
	a, err := Assess(obs, &p)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Advanced age increases frailty-related hospitalization risk.",
		"Dependence in daily activities raises hospitalization risk.",
		"Reduced quality of life is associated with poorer outcomes.",
		"Physical inactivity accelerates functional decline.",
	}, a.Explanations)
}

func TestCardiometabolicBetween(t *testing.T) {
	p := preset(t, CardiometabolicLogistic)
	for _, tt := range []struct {
		hba1c float64
		rule  string
	}{
		{5.6, ""},
		{5.7, "hba1c-prediabetic"},
		{6.49, "hba1c-prediabetic"},
		{6.5, "hba1c-6.5"},
	} {
		a, err := Assess(schema.PatientObservation{Age: f64(50), HbA1c: f64(tt.hba1c)}, p)
		require.NoError(t, err)
		if tt.rule == "" {
			assert.Empty(t, a.FiredRules, "hba1c %g", tt.hba1c)
			continue
		}
		assert.Equal(t, []string{tt.rule}, a.FiredRules, "hba1c %g", tt.hba1c)
	}
}

// BenchmarkAssess benchmarks a full assessment under the default policy.
func BenchmarkAssess(b *testing.B) {
	p := preset(b, FrailtyLogistic)
	obs := schema.PatientObservation{
		Age:           f64(80),
		Comorbidity:   str(schema.ComorbidityMultiple),
		QualityOfLife: f64(50),
		GaitSpeed:     f64(0.6),
		FrailtyCount:  f64(3),
		LivingAlone:   flag(true),
		FallHistory:   flag(true),
	}

	for b.Loop() {
		_, _ = Assess(obs, p)
	}
}
