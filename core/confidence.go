package core

import "github.com/passagehealth/passage/schema"

// confidence computes the declared proxy for a policy. It is always in [0, 1].
func confidence(p *Policy, obs *schema.PatientObservation, total float64) float64 {
	switch p.Confidence.Method {
	case schema.ScoreConfidence:
		c := p.Confidence
		v := c.Base + total*c.Step
		if v > c.Cap {
			v = c.Cap
		}
		return clamp01(v)
	default:
		return completeness(p.ReferencedFields(), obs)
	}
}

// completeness is the fraction of fields present in the observation.
func completeness(fields []schema.FieldName, obs *schema.PatientObservation) float64 {
	if len(fields) == 0 {
		return 1
	}
	var present int
	for _, f := range fields {
		if obs.Has(f) {
			present++
		}
	}
	return float64(present) / float64(len(fields))
}
