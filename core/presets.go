package core

import "github.com/passagehealth/passage/schema"

// Preset policy names.
const (
	FrailtyLogistic          = "frailty-logistic"
	HospitalizationThreshold = "hospitalization-threshold"
	CardiometabolicLogistic  = "cardiometabolic-logistic"
	HealthspanIndex          = "healthspan-index"
)

// DefaultPolicy is used when no policy is named.
const DefaultPolicy = FrailtyLogistic

// Presets returns fresh copies of the built-in policies.
// The two logistic presets keep their own constants and are never merged.
func Presets() []Policy {
	return []Policy{
		frailtyLogistic(),
		hospitalizationThreshold(),
		cardiometabolicLogistic(),
		healthspanIndex(),
	}
}

func frailtyLogistic() Policy {
	return Policy{
		Name:        FrailtyLogistic,
		Version:     1,
		Description: "Layered clinical, functional and social frailty score passed through a logistic curve.",
		Required:    []schema.FieldName{schema.FieldAge},
		Rules: []Rule{
			{
				ID: "age-75", Field: schema.FieldAge, Predicate: Predicate{Op: OpGTE, Value: 75},
				Domain: schema.ClinicalDomain, Points: 2, Topic: schema.AgeTopic,
				Explanation: "Advanced age increases frailty-related hospitalization risk.",
			},
			{
				ID: "comorbidity-multiple", Field: schema.FieldComorbidity, Predicate: Predicate{Op: OpEq, Equals: schema.ComorbidityMultiple},
				Domain: schema.ClinicalDomain, Points: 3, Topic: schema.ComorbidityTopic,
				Explanation: "Multiple comorbidities compound clinical risk.",
			},
			{
				ID: "qol-below-60", Field: schema.FieldQualityOfLife, Predicate: Predicate{Op: OpLT, Value: 60},
				Domain: schema.ClinicalDomain, Points: 2, Topic: schema.QualityOfLifeTopic,
				Explanation: "Reduced quality of life is associated with poorer outcomes.",
			},
			{
				ID: "gait-below-0.8", Field: schema.FieldGaitSpeed, Predicate: Predicate{Op: OpLT, Value: 0.8},
				Domain: schema.FunctionalDomain, Points: 2, Topic: schema.FunctionalTopic,
				Explanation: "Slow gait speed indicates reduced physical reserve.",
			},
			{
				ID: "frailty-3", Field: schema.FieldFrailtyCount, Predicate: Predicate{Op: OpGTE, Value: 3},
				Domain: schema.FunctionalDomain, Points: 3, Topic: schema.FunctionalTopic,
				Explanation: "Three or more frailty phenotype criteria indicate frailty.",
			},
			{
				ID: "living-alone", Field: schema.FieldLivingAlone, Predicate: Predicate{Op: OpIsTrue},
				Domain: schema.SocialDomain, Points: 1, Topic: schema.SocialTopic,
				Explanation: "Living alone limits support during decline or recovery.",
			},
			{
				ID: "fall-history", Field: schema.FieldFallHistory, Predicate: Predicate{Op: OpIsTrue},
				Domain: schema.SocialDomain, Points: 2, Topic: schema.SocialTopic,
				Explanation: "A fall in the past 12 months predicts further falls.",
			},
		},
		Transform: Transform{Kind: schema.LogisticTransform, K: 0.9, Offset: 4},
		Confidence: Confidence{
			Method: schema.ScoreConfidence,
			Base:   0.6,
			Step:   0.03,
			Cap:    0.95,
		},
	}
}

func hospitalizationThreshold() Policy {
	return Policy{
		Name:        HospitalizationThreshold,
		Version:     1,
		Description: "Point score for hospitalization risk graded by fixed cut points.",
		Required:    []schema.FieldName{schema.FieldAge},
		Rules: []Rule{
			{
				ID: "age-75", Field: schema.FieldAge, Predicate: Predicate{Op: OpGTE, Value: 75},
				Domain: schema.ClinicalDomain, Points: 3, Topic: schema.AgeTopic,
				Explanation: "Advanced age increases frailty-related hospitalization risk.",
			},
			{
				ID: "adl-below-4", Field: schema.FieldADLScore, Predicate: Predicate{Op: OpLT, Value: 4},
				Domain: schema.FunctionalDomain, Points: 3, Topic: schema.FunctionalTopic,
				Explanation: "Dependence in daily activities raises hospitalization risk.",
			},
			{
				ID: "bmi-30", Field: schema.FieldBMI, Predicate: Predicate{Op: OpGTE, Value: 30},
				Domain: schema.ClinicalDomain, Points: 1, Topic: schema.LabsTopic,
				Explanation: "Obesity adds metabolic and mobility burden.",
			},
			{
				ID: "comorbidity-multiple", Field: schema.FieldComorbidity, Predicate: Predicate{Op: OpEq, Equals: schema.ComorbidityMultiple},
				Domain: schema.ClinicalDomain, Points: 2, Topic: schema.ComorbidityTopic,
				Explanation: "Multiple comorbidities compound clinical risk.",
			},
			{
				ID: "exercise-none", Field: schema.FieldExercise, Predicate: Predicate{Op: OpEq, Equals: schema.ExerciseNone},
				Domain: schema.SocialDomain, Points: 2, Topic: schema.LifestyleTopic,
				Explanation: "Physical inactivity accelerates functional decline.",
			},
			{
				ID: "qol-below-60", Field: schema.FieldQualityOfLife, Predicate: Predicate{Op: OpLT, Value: 60},
				Domain: schema.SocialDomain, Points: 2, Topic: schema.QualityOfLifeTopic,
				Explanation: "Reduced quality of life is associated with poorer outcomes.",
			},
		},
		Transform: Transform{
			Kind: schema.ThresholdTransform,
			Bands: []Band{
				{Max: 3, Level: schema.LowLevel},
				{Max: 7, Level: schema.ModerateLevel},
			},
			Above: schema.HighLevel,
		},
		Confidence: Confidence{Method: schema.CompletenessConfidence},
	}
}

func cardiometabolicLogistic() Policy {
	return Policy{
		Name:        CardiometabolicLogistic,
		Version:     1,
		Description: "Lab-driven cardiometabolic score passed through a logistic curve.",
		Required:    []schema.FieldName{schema.FieldAge},
		Rules: []Rule{
			{
				ID: "age-65", Field: schema.FieldAge, Predicate: Predicate{Op: OpGTE, Value: 65},
				Domain: schema.ClinicalDomain, Points: 1, Topic: schema.AgeTopic,
				Explanation: "Age over 65 raises baseline cardiovascular risk.",
			},
			{
				ID: "diseases-3", Field: schema.FieldDiseaseCount, Predicate: Predicate{Op: OpGTE, Value: 3},
				Domain: schema.ClinicalDomain, Points: 2, Topic: schema.ComorbidityTopic,
				Explanation: "Three or more chronic diseases compound clinical risk.",
			},
			{
				ID: "sbp-140", Field: schema.FieldSystolicBP, Predicate: Predicate{Op: OpGTE, Value: 140},
				Domain: schema.ClinicalDomain, Points: 2, Topic: schema.LabsTopic,
				Explanation: "Systolic blood pressure is in the hypertensive range.",
			},
			{
				ID: "hba1c-6.5", Field: schema.FieldHbA1c, Predicate: Predicate{Op: OpGTE, Value: 6.5},
				Domain: schema.ClinicalDomain, Points: 2, Topic: schema.LabsTopic,
				Explanation: "HbA1c is in the diabetic range.",
			},
			{
				ID: "hba1c-prediabetic", Field: schema.FieldHbA1c, Predicate: Predicate{Op: OpBetween, Low: 5.7, High: 6.5},
				Domain: schema.ClinicalDomain, Points: 1, Topic: schema.LabsTopic,
				Explanation: "HbA1c is in the prediabetic range.",
			},
			{
				ID: "ldl-160", Field: schema.FieldLDL, Predicate: Predicate{Op: OpGTE, Value: 160},
				Domain: schema.ClinicalDomain, Points: 1, Topic: schema.LabsTopic,
				Explanation: "LDL cholesterol is high.",
			},
			{
				ID: "egfr-below-60", Field: schema.FieldEGFR, Predicate: Predicate{Op: OpLT, Value: 60},
				Domain: schema.ClinicalDomain, Points: 2, Topic: schema.LabsTopic,
				Explanation: "Reduced kidney function (eGFR below 60).",
			},
			{
				ID: "bmi-30", Field: schema.FieldBMI, Predicate: Predicate{Op: OpGTE, Value: 30},
				Domain: schema.ClinicalDomain, Points: 1, Topic: schema.LabsTopic,
				Explanation: "Obesity adds metabolic and mobility burden.",
			},
			{
				ID: "abnormal-liver", Field: schema.FieldAbnormalLiver, Predicate: Predicate{Op: OpIsTrue},
				Domain: schema.ClinicalDomain, Points: 1, Topic: schema.LabsTopic,
				Explanation: "Abnormal liver function tests.",
			},
			{
				ID: "smoking", Field: schema.FieldSmoking, Predicate: Predicate{Op: OpIsTrue},
				Domain: schema.SocialDomain, Points: 2, Topic: schema.LifestyleTopic,
				Explanation: "Smoking sharply increases cardiovascular risk.",
			},
			{
				ID: "exercise-none", Field: schema.FieldExercise, Predicate: Predicate{Op: OpEq, Equals: schema.ExerciseNone},
				Domain: schema.SocialDomain, Points: 1, Topic: schema.LifestyleTopic,
				Explanation: "Physical inactivity accelerates functional decline.",
			},
		},
		Transform:  Transform{Kind: schema.LogisticTransform, K: 0.8, Offset: 5},
		Confidence: Confidence{Method: schema.CompletenessConfidence},
	}
}

func healthspanIndex() Policy {
	return Policy{
		Name:        HealthspanIndex,
		Version:     1,
		Description: "0-100 healthspan index from weighted functional, cognitive, mental and metabolic measures.",
		Transform: Transform{
			Kind: schema.CompositeTransform,
			Components: []Component{
				{
					Field: schema.FieldGaitSpeed, Weight: 15, Direction: Ascending, Low: 0, High: 1.2,
					Topic: schema.FunctionalTopic, Explanation: "Gait speed is well below the 1.2 m/s reference.",
				},
				{
					Field: schema.FieldGripStrength, Weight: 10, Direction: Ascending, Low: 0, High: 35,
					Topic: schema.FunctionalTopic, Explanation: "Grip strength is well below the 35 kg reference.",
				},
				{
					Field: schema.FieldTUGSeconds, Weight: 10, Direction: Descending, Low: 10, High: 30,
					Topic: schema.FunctionalTopic, Explanation: "Timed Up and Go is slow.",
				},
				{
					Field: schema.FieldMoCA, Weight: 15, Direction: Ascending, Low: 0, High: 30,
					Topic: schema.MentalTopic, Explanation: "Cognitive screening score is low.",
				},
				{
					Field: schema.FieldPHQ9, Weight: 10, Direction: Descending, Low: 0, High: 27,
					Topic: schema.MentalTopic, Explanation: "Depressive symptoms are elevated.",
				},
				{
					Field: schema.FieldGAD7, Weight: 5, Direction: Descending, Low: 0, High: 21,
					Topic: schema.MentalTopic, Explanation: "Anxiety symptoms are elevated.",
				},
				{
					Field: schema.FieldSystolicBP, Weight: 10, Direction: Descending, Low: 120, High: 180,
					Topic: schema.LabsTopic, Explanation: "Systolic blood pressure is high.",
				},
				{
					Field: schema.FieldHbA1c, Weight: 10, Direction: Descending, Low: 5.7, High: 10,
					Topic: schema.LabsTopic, Explanation: "HbA1c is high.",
				},
				{
					Field: schema.FieldQualityOfLife, Weight: 15, Direction: Ascending, Low: 0, High: 100,
					Topic: schema.QualityOfLifeTopic, Explanation: "Quality of life is low.",
				},
			},
			IndexBands: []IndexBand{
				{Min: 80, Level: schema.OptimalLevel},
				{Min: 60, Level: schema.LowLevel},
				{Min: 40, Level: schema.ModerateLevel},
			},
			Below: schema.HighLevel,
		},
		Confidence: Confidence{Method: schema.CompletenessConfidence},
	}
}
