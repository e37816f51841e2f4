package core

import (
	"sort"

	"github.com/passagehealth/passage/schema"
)

// compositeExplainBelow is the normalized value under which a component is explained.
const compositeExplainBelow = 0.5

type explanation struct {
	topic schema.Topic
	text  string
}

// Assess scores one observation under one policy.
// It performs no I/O and returns the same result for the same inputs.
// The policy is assumed to have passed Validate.
func Assess(obs schema.PatientObservation, policy *Policy) (schema.RiskAssessment, error) {
	if err := obs.Validate(); err != nil {
		return schema.RiskAssessment{}, invalidObservation(err)
	}
	for _, f := range policy.Required {
		if !obs.Has(f) {
			return schema.RiskAssessment{}, invalidObservation(&schema.FieldError{Field: f, Reason: "required field is missing"})
		}
	}

	result := schema.RiskAssessment{
		Policy:           policy.Name,
		PolicyVersion:    policy.Version,
		Transform:        policy.Transform.Kind,
		DomainScores:     make(map[schema.Domain]float64, len(schema.AllDomains)),
		ConfidenceMethod: policy.Confidence.Method,
		Explanations:     []string{},
		FiredRules:       []string{},
	}
	for _, d := range schema.AllDomains {
		result.DomainScores[d] = 0
	}

	var notes []explanation
	for _, r := range policy.Rules {
		if !r.Fires(&obs) {
			continue
		}
		result.DomainScores[r.Domain] += r.Points
		result.TotalScore += r.Points
		result.FiredRules = append(result.FiredRules, r.ID)
		notes = append(notes, explanation{topic: r.Topic, text: r.Explanation})
	}

	t := policy.Transform
	switch t.Kind {
	case schema.ThresholdTransform:
		result.Level = ThresholdLevel(result.TotalScore, t.Bands, t.Above)
		result.RiskPercent = result.TotalScore / policy.MaxScore() * 100
	case schema.LogisticTransform:
		p := Logistic(result.TotalScore, t.K, t.Offset)
		result.Probability = &p
		result.Level = LogisticLevel(p)
		result.RiskPercent = p * 100
	case schema.CompositeTransform:
		index, components := compositeIndex(&obs, t.Components)
		result.CompositeIndex = &index
		result.Level = IndexLevel(index, t.IndexBands, t.Below)
		result.RiskPercent = CompositeWeightTotal - index
		for _, c := range components {
			if c.present && c.normalized < compositeExplainBelow && c.Explanation != "" {
				notes = append(notes, explanation{topic: c.Topic, text: c.Explanation})
			}
		}
	}

	result.Confidence = confidence(policy, &obs, result.TotalScore)

	sort.SliceStable(notes, func(i, j int) bool {
		return notes[i].topic.Rank() < notes[j].topic.Rank()
	})
	for _, n := range notes {
		result.Explanations = append(result.Explanations, n.text)
	}
	return result, nil
}
