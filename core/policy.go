package core

import (
	"math"
	"slices"

	"github.com/passagehealth/passage/schema"
)

// Fixed probability cut points for the logistic transform.
const (
	LogisticLowCut  = 0.2
	LogisticHighCut = 0.5
)

// CompositeWeightTotal is the sum every composite policy's weights must reach.
const CompositeWeightTotal = 100.0

const weightTolerance = 1e-9

// Direction says which end of a composite component's range is healthy.
type Direction string

// All component directions supported.
const (
	Ascending  Direction = "ascending"  // higher values are healthier
	Descending Direction = "descending" // lower values are healthier
)

// Band maps totals up to and including Max to Level.
type Band struct {
	Max   float64      `json:"max"`
	Level schema.Level `json:"level"`
}

// IndexBand maps composite indexes at or above Min to Level.
type IndexBand struct {
	Min   float64      `json:"min"`
	Level schema.Level `json:"level"`
}

// Component is one weighted, normalized sub-metric of a composite index.
type Component struct {
	Field       schema.FieldName `json:"field"`
	Weight      float64          `json:"weight"`
	Direction   Direction        `json:"direction"`
	Low         float64          `json:"low"`
	High        float64          `json:"high"`
	Topic       schema.Topic     `json:"topic"`
	Explanation string           `json:"explanation"`
}

// Normalize maps v onto [0, 1], where 1 is the healthy end of the range.
func (c Component) Normalize(v float64) float64 {
	span := c.High - c.Low
	if c.Direction == Descending {
		return clamp01((c.High - v) / span)
	}
	return clamp01((v - c.Low) / span)
}

// Transform turns a rule total (or a composite index) into a level.
type Transform struct {
	Kind schema.TransformKind `json:"kind"`

	// threshold
	Bands []Band       `json:"bands,omitempty"`
	Above schema.Level `json:"above,omitempty"`

	// logistic
	K      float64 `json:"k,omitempty"`
	Offset float64 `json:"offset,omitempty"`

	// composite
	Components []Component  `json:"components,omitempty"`
	IndexBands []IndexBand  `json:"index_bands,omitempty"`
	Below      schema.Level `json:"below,omitempty"`
}

// Confidence declares how the confidence proxy is computed.
// The score method is a heuristic placeholder: it grows with the total and is not a statistical estimate.
type Confidence struct {
	Method schema.ConfidenceMethod `json:"method"`
	Base   float64                 `json:"base,omitempty"`
	Step   float64                 `json:"step,omitempty"`
	Cap    float64                 `json:"cap,omitempty"`
}

// Policy is a named, versioned scoring table plus its transform and confidence method.
type Policy struct {
	Name        string             `json:"name"`
	Version     int                `json:"version"`
	Description string             `json:"description"`
	Rules       []Rule             `json:"rules"`
	Required    []schema.FieldName `json:"required"`
	Transform   Transform          `json:"transform"`
	Confidence  Confidence         `json:"confidence"`
}

// MaxScore is the largest total the rules can produce.
func (p *Policy) MaxScore() float64 {
	var total float64
	for _, r := range p.Rules {
		total += r.Points
	}
	return total
}

// ReferencedFields lists every field the policy reads, without duplicates, in first-use order.
func (p *Policy) ReferencedFields() []schema.FieldName {
	var out []schema.FieldName
	add := func(f schema.FieldName) {
		if !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	for _, f := range p.Required {
		add(f)
	}
	for _, r := range p.Rules {
		add(r.Field)
	}
	for _, c := range p.Transform.Components {
		add(c.Field)
	}
	return out
}

// Validate checks the policy at load time. Failures wrap ErrPolicyMisconfiguration.
func (p *Policy) Validate() error {
	if p.Name == "" {
		return policyErrorf("", "name is required")
	}
	if p.Version < 1 {
		return policyErrorf(p.Name, "version must be at least 1 (got %d)", p.Version)
	}

	ids := make(map[string]struct{}, len(p.Rules))
	for _, r := range p.Rules {
		if err := r.validate(p.Name); err != nil {
			return err
		}
		if _, dup := ids[r.ID]; dup {
			return policyErrorf(p.Name, "duplicate rule id %q", r.ID)
		}
		ids[r.ID] = struct{}{}
	}

	for _, f := range p.Required {
		if _, ok := schema.LookupField(f); !ok {
			return policyErrorf(p.Name, "required field %q is not defined", f)
		}
	}

	if err := p.validateTransform(); err != nil {
		return err
	}
	return p.validateConfidence()
}

func (p *Policy) validateTransform() error {
	t := p.Transform
	switch t.Kind {
	case schema.ThresholdTransform:
		if len(p.Rules) == 0 {
			return policyErrorf(p.Name, "threshold policy needs at least one rule")
		}
		if len(t.Bands) == 0 {
			return policyErrorf(p.Name, "threshold policy needs at least one band")
		}
		for i, b := range t.Bands {
			if !finite(b.Max) {
				return policyErrorf(p.Name, "band %d upper bound is not a finite number", i)
			}
			if i > 0 && b.Max <= t.Bands[i-1].Max {
				return policyErrorf(p.Name, "band upper bounds must be strictly ascending (%g after %g)", b.Max, t.Bands[i-1].Max)
			}
			if err := p.checkLevel(b.Level); err != nil {
				return err
			}
		}
		return p.checkLevel(t.Above)

	case schema.LogisticTransform:
		if len(p.Rules) == 0 {
			return policyErrorf(p.Name, "logistic policy needs at least one rule")
		}
		if !finite(t.K) || t.K <= 0 {
			return policyErrorf(p.Name, "logistic k must be positive (got %g)", t.K)
		}
		if !finite(t.Offset) {
			return policyErrorf(p.Name, "logistic offset is not a finite number")
		}
		return nil

	case schema.CompositeTransform:
		if len(t.Components) == 0 {
			return policyErrorf(p.Name, "composite policy needs at least one component")
		}
		seen := make(map[schema.FieldName]struct{}, len(t.Components))
		var sum float64
		for _, c := range t.Components {
			spec, ok := schema.LookupField(c.Field)
			if !ok {
				return policyErrorf(p.Name, "component references unknown field %q", c.Field)
			}
			if spec.Kind != schema.NumericField {
				return policyErrorf(p.Name, "component field %q must be numeric", c.Field)
			}
			if _, dup := seen[c.Field]; dup {
				return policyErrorf(p.Name, "duplicate component field %q", c.Field)
			}
			seen[c.Field] = struct{}{}
			if !finite(c.Weight) || c.Weight <= 0 {
				return policyErrorf(p.Name, "component %q weight must be positive (got %g)", c.Field, c.Weight)
			}
			if c.Direction != Ascending && c.Direction != Descending {
				return policyErrorf(p.Name, "component %q has unknown direction %q", c.Field, c.Direction)
			}
			if !finite(c.Low) || !finite(c.High) || c.High <= c.Low {
				return policyErrorf(p.Name, "component %q range must satisfy low < high (got [%g, %g])", c.Field, c.Low, c.High)
			}
			if _, ok := schema.ValidTopics[c.Topic]; !ok {
				return policyErrorf(p.Name, "component %q has unknown topic %q", c.Field, c.Topic)
			}
			sum += c.Weight
		}
		if math.Abs(sum-CompositeWeightTotal) > weightTolerance {
			return policyErrorf(p.Name, "composite weights must sum to %g, got %g", CompositeWeightTotal, sum)
		}
		for i, b := range t.IndexBands {
			if !finite(b.Min) {
				return policyErrorf(p.Name, "index band %d lower bound is not a finite number", i)
			}
			if i > 0 && b.Min >= t.IndexBands[i-1].Min {
				return policyErrorf(p.Name, "index band lower bounds must be strictly descending (%g after %g)", b.Min, t.IndexBands[i-1].Min)
			}
			if err := p.checkLevel(b.Level); err != nil {
				return err
			}
		}
		if len(t.IndexBands) > 0 {
			return p.checkLevel(t.Below)
		}
		return nil

	default:
		return policyErrorf(p.Name, "unknown transform %q", t.Kind)
	}
}

func (p *Policy) validateConfidence() error {
	c := p.Confidence
	switch c.Method {
	case schema.CompletenessConfidence:
		if len(p.ReferencedFields()) == 0 {
			return policyErrorf(p.Name, "completeness confidence needs at least one referenced field")
		}
		return nil
	case schema.ScoreConfidence:
		if !finite(c.Cap) || c.Cap <= 0 || c.Cap >= 1 {
			return policyErrorf(p.Name, "score confidence cap must lie in (0, 1) (got %g)", c.Cap)
		}
		if !finite(c.Step) || c.Step < 0 {
			return policyErrorf(p.Name, "score confidence step must be non-negative (got %g)", c.Step)
		}
		if !finite(c.Base) || c.Base < 0 || c.Base > 1 {
			return policyErrorf(p.Name, "score confidence base must lie in [0, 1] (got %g)", c.Base)
		}
		return nil
	default:
		return policyErrorf(p.Name, "unknown confidence method %q", c.Method)
	}
}

func (p *Policy) checkLevel(l schema.Level) error {
	if _, ok := schema.ValidLevels[l]; !ok {
		return policyErrorf(p.Name, "unknown level %q", l)
	}
	return nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
