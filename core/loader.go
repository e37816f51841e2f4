package core

import (
	"strings"

	"github.com/passagehealth/passage/schema"
)

// PolicyRaw is a custom policy as written in the config file.
type PolicyRaw struct {
	Name        string        `mapstructure:"name"`
	Version     int           `mapstructure:"version"`
	Description string        `mapstructure:"description"`
	Required    []string      `mapstructure:"required"`
	Rules       []RuleRaw     `mapstructure:"rules"`
	Transform   TransformRaw  `mapstructure:"transform"`
	Confidence  ConfidenceRaw `mapstructure:"confidence"`
}

// RuleRaw is a rule as written in the config file.
type RuleRaw struct {
	ID          string  `mapstructure:"id"`
	Field       string  `mapstructure:"field"`
	Op          string  `mapstructure:"op"`
	Value       float64 `mapstructure:"value"`
	Low         float64 `mapstructure:"low"`
	High        float64 `mapstructure:"high"`
	Equals      string  `mapstructure:"equals"`
	Domain      string  `mapstructure:"domain"`
	Points      float64 `mapstructure:"points"`
	Topic       string  `mapstructure:"topic"`
	Explanation string  `mapstructure:"explanation"`
}

// BandRaw is either a threshold band (max) or an index band (min).
type BandRaw struct {
	Max   float64 `mapstructure:"max"`
	Min   float64 `mapstructure:"min"`
	Level string  `mapstructure:"level"`
}

// ComponentRaw is a composite component as written in the config file.
type ComponentRaw struct {
	Field       string  `mapstructure:"field"`
	Weight      float64 `mapstructure:"weight"`
	Direction   string  `mapstructure:"direction"`
	Low         float64 `mapstructure:"low"`
	High        float64 `mapstructure:"high"`
	Topic       string  `mapstructure:"topic"`
	Explanation string  `mapstructure:"explanation"`
}

// TransformRaw is a transform as written in the config file.
type TransformRaw struct {
	Kind       string         `mapstructure:"kind"`
	Bands      []BandRaw      `mapstructure:"bands"`
	Above      string         `mapstructure:"above"`
	K          float64        `mapstructure:"k"`
	Offset     float64        `mapstructure:"offset"`
	Components []ComponentRaw `mapstructure:"components"`
	IndexBands []BandRaw      `mapstructure:"index_bands"`
	Below      string         `mapstructure:"below"`
}

// ConfidenceRaw is a confidence method as written in the config file.
type ConfidenceRaw struct {
	Method string  `mapstructure:"method"`
	Base   float64 `mapstructure:"base"`
	Step   float64 `mapstructure:"step"`
	Cap    float64 `mapstructure:"cap"`
}

// LoadPolicies converts and validates raw policies. A missing version defaults to 1
// and a missing confidence method defaults to completeness.
func LoadPolicies(raw []PolicyRaw) ([]Policy, error) {
	out := make([]Policy, 0, len(raw))
	for _, r := range raw {
		p := convertPolicy(r)
		if err := p.Validate(); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func convertPolicy(r PolicyRaw) Policy {
	p := Policy{
		Name:        strings.TrimSpace(r.Name),
		Version:     r.Version,
		Description: r.Description,
		Confidence: Confidence{
			Method: schema.ConfidenceMethod(strings.ToLower(r.Confidence.Method)),
			Base:   r.Confidence.Base,
			Step:   r.Confidence.Step,
			Cap:    r.Confidence.Cap,
		},
	}
	if p.Version == 0 {
		p.Version = 1
	}
	if p.Confidence.Method == "" {
		p.Confidence.Method = schema.CompletenessConfidence
	}
	for _, f := range r.Required {
		p.Required = append(p.Required, schema.FieldName(f))
	}

	for _, rr := range r.Rules {
		p.Rules = append(p.Rules, Rule{
			ID:    rr.ID,
			Field: schema.FieldName(rr.Field),
			Predicate: Predicate{
				Op:     Operator(strings.ToLower(rr.Op)),
				Value:  rr.Value,
				Low:    rr.Low,
				High:   rr.High,
				Equals: rr.Equals,
			},
			Domain:      schema.Domain(strings.ToLower(rr.Domain)),
			Points:      rr.Points,
			Topic:       schema.Topic(strings.ToLower(rr.Topic)),
			Explanation: rr.Explanation,
		})
	}

	t := r.Transform
	p.Transform = Transform{
		Kind:   schema.TransformKind(strings.ToLower(t.Kind)),
		Above:  schema.Level(t.Above),
		K:      t.K,
		Offset: t.Offset,
		Below:  schema.Level(t.Below),
	}
	for _, b := range t.Bands {
		p.Transform.Bands = append(p.Transform.Bands, Band{Max: b.Max, Level: schema.Level(b.Level)})
	}
	for _, b := range t.IndexBands {
		p.Transform.IndexBands = append(p.Transform.IndexBands, IndexBand{Min: b.Min, Level: schema.Level(b.Level)})
	}
	for _, c := range t.Components {
		p.Transform.Components = append(p.Transform.Components, Component{
			Field:       schema.FieldName(c.Field),
			Weight:      c.Weight,
			Direction:   Direction(strings.ToLower(c.Direction)),
			Low:         c.Low,
			High:        c.High,
			Topic:       schema.Topic(strings.ToLower(c.Topic)),
			Explanation: c.Explanation,
		})
	}
	return p
}
