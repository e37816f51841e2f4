package core

import (
	"math"
	"slices"

	"github.com/passagehealth/passage/schema"
)

// Operator is the comparison a rule applies to its field.
type Operator string

// All rule operators supported.
const (
	OpGTE     Operator = "gte"     // numeric >= Value
	OpGT      Operator = "gt"      // numeric > Value
	OpLTE     Operator = "lte"     // numeric <= Value
	OpLT      Operator = "lt"      // numeric < Value
	OpBetween Operator = "between" // numeric in [Low, High)
	OpEq      Operator = "eq"      // categorical == Equals
	OpIsTrue  Operator = "is_true" // boolean flag set
)

var numericOperators = []Operator{OpGTE, OpGT, OpLTE, OpLT, OpBetween}

// Predicate is the condition under which a rule fires.
type Predicate struct {
	Op     Operator `json:"op"`
	Value  float64  `json:"value,omitempty"`
	Low    float64  `json:"low,omitempty"`
	High   float64  `json:"high,omitempty"`
	Equals string   `json:"equals,omitempty"`
}

// Rule adds Points to Domain when Predicate holds for Field.
type Rule struct {
	ID          string           `json:"id"`
	Field       schema.FieldName `json:"field"`
	Predicate   Predicate        `json:"predicate"`
	Domain      schema.Domain    `json:"domain"`
	Points      float64          `json:"points"`
	Topic       schema.Topic     `json:"topic"`
	Explanation string           `json:"explanation"`
}

// Fires reports whether the rule applies to the observation.
// A rule never fires when its field is missing.
func (r Rule) Fires(obs *schema.PatientObservation) bool {
	p := r.Predicate
	switch p.Op {
	case OpIsTrue:
		v, ok := obs.Flag(r.Field)
		return ok && v
	case OpEq:
		v, ok := obs.Category(r.Field)
		return ok && v == p.Equals
	}

	v, ok := obs.Numeric(r.Field)
	if !ok {
		return false
	}
	switch p.Op {
	case OpGTE:
		return v >= p.Value
	case OpGT:
		return v > p.Value
	case OpLTE:
		return v <= p.Value
	case OpLT:
		return v < p.Value
	case OpBetween:
		return v >= p.Low && v < p.High
	default:
		return false
	}
}

// validate checks the rule against the field table.
func (r Rule) validate(policy string) error {
	if r.ID == "" {
		return policyErrorf(policy, "rule on field %q has no id", r.Field)
	}
	spec, ok := schema.LookupField(r.Field)
	if !ok {
		return policyErrorf(policy, "rule %s references unknown field %q", r.ID, r.Field)
	}
	if _, ok := schema.ValidDomains[r.Domain]; !ok {
		return policyErrorf(policy, "rule %s has unknown domain %q", r.ID, r.Domain)
	}
	if _, ok := schema.ValidTopics[r.Topic]; !ok {
		return policyErrorf(policy, "rule %s has unknown topic %q", r.ID, r.Topic)
	}
	if !(r.Points > 0) || math.IsInf(r.Points, 0) {
		return policyErrorf(policy, "rule %s points must be a positive number (got %g)", r.ID, r.Points)
	}

	p := r.Predicate
	switch {
	case slices.Contains(numericOperators, p.Op):
		if spec.Kind != schema.NumericField {
			return policyErrorf(policy, "rule %s applies %s to %s field %q", r.ID, p.Op, spec.Kind, r.Field)
		}
		if p.Op == OpBetween {
			if !finite(p.Low) || !finite(p.High) || p.Low >= p.High {
				return policyErrorf(policy, "rule %s between bounds must satisfy low < high (got [%g, %g))", r.ID, p.Low, p.High)
			}
		} else if !finite(p.Value) {
			return policyErrorf(policy, "rule %s threshold is not a finite number", r.ID)
		}
	case p.Op == OpEq:
		if spec.Kind != schema.CategoricalField {
			return policyErrorf(policy, "rule %s applies eq to %s field %q", r.ID, spec.Kind, r.Field)
		}
		if !spec.Allows(p.Equals) {
			return policyErrorf(policy, "rule %s compares %q to %q, not one of %v", r.ID, r.Field, p.Equals, spec.Values)
		}
	case p.Op == OpIsTrue:
		if spec.Kind != schema.BooleanField {
			return policyErrorf(policy, "rule %s applies is_true to %s field %q", r.ID, spec.Kind, r.Field)
		}
	default:
		return policyErrorf(policy, "rule %s has unknown operator %q", r.ID, p.Op)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
