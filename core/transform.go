package core

import (
	"math"

	"github.com/passagehealth/passage/schema"
)

// DefaultIndexBands grade a composite index when a policy declares none.
var DefaultIndexBands = []IndexBand{
	{Min: 80, Level: schema.OptimalLevel},
	{Min: 60, Level: schema.LowLevel},
	{Min: 40, Level: schema.ModerateLevel},
}

// DefaultIndexBelow is the level for indexes under every default band.
const DefaultIndexBelow = schema.HighLevel

// Logistic returns 1 / (1 + e^(-k(total-offset))).
func Logistic(total, k, offset float64) float64 {
	return 1 / (1 + math.Exp(-k*(total-offset)))
}

// LogisticLevel grades a probability with the fixed 0.2 and 0.5 cut points.
func LogisticLevel(p float64) schema.Level {
	switch {
	case p < LogisticLowCut:
		return schema.LowLevel
	case p < LogisticHighCut:
		return schema.ModerateLevel
	default:
		return schema.HighLevel
	}
}

// ThresholdLevel returns the level of the first band whose upper bound is at least total.
func ThresholdLevel(total float64, bands []Band, above schema.Level) schema.Level {
	for _, b := range bands {
		if total <= b.Max {
			return b.Level
		}
	}
	return above
}

// IndexLevel returns the level of the first band whose lower bound the index reaches.
func IndexLevel(index float64, bands []IndexBand, below schema.Level) schema.Level {
	if len(bands) == 0 {
		bands, below = DefaultIndexBands, DefaultIndexBelow
	}
	for _, b := range bands {
		if index >= b.Min {
			return b.Level
		}
	}
	return below
}

// componentScore is the weighted contribution of one component, zero when its field is missing.
type componentScore struct {
	Component
	present    bool
	normalized float64
}

// compositeIndex computes the 0-100 index. Missing components contribute nothing.
func compositeIndex(obs *schema.PatientObservation, components []Component) (float64, []componentScore) {
	scores := make([]componentScore, len(components))
	var index float64
	for i, c := range components {
		scores[i].Component = c
		v, ok := obs.Numeric(c.Field)
		if !ok {
			continue
		}
		n := c.Normalize(v)
		scores[i].present = true
		scores[i].normalized = n
		index += c.Weight * n
	}
	// Accumulated rounding can push a perfect score a hair past the bound.
	return math.Min(math.Max(index, 0), CompositeWeightTotal), scores
}
