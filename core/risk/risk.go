// Package risk provides risk contribution scoring helpers.
package risk

import (
	"math"
	"sort"

	"cnc-quote/core/types"
)

// Dimensions is the canonical set of scored risk dimensions.
var Dimensions = []string{
	"thin_walls",
	"deep_pockets",
	"small_holes",
	"tight_tolerances",
	"material_hardness",
}

// Contributions scores a weighted risk vector into per-dimension
// contributions. Each score component is 100 * weight * value / sum of
// weights, rounded to 2 decimals. Dimensions are emitted in canonical
// order first, then any extra vector keys alphabetically.
func Contributions(weights map[string]float64, vector map[string]float64) []types.RiskContribution {
	totalWeight := 0.0
	for _, w := range weights {
		totalWeight += w
	}
	if totalWeight <= 0 {
		totalWeight = 1
	}

	seen := make(map[string]bool, len(vector))
	order := make([]string, 0, len(vector))
	for _, dim := range Dimensions {
		if _, ok := vector[dim]; ok {
			order = append(order, dim)
			seen[dim] = true
		}
	}
	extras := make([]string, 0)
	for dim := range vector {
		if !seen[dim] {
			extras = append(extras, dim)
		}
	}
	sort.Strings(extras)
	order = append(order, extras...)

	contributions := make([]types.RiskContribution, 0, len(order))
	for _, dim := range order {
		weight := weights[dim]
		value := vector[dim]
		component := round2(100 * weight * value / totalWeight)
		contributions = append(contributions, types.RiskContribution{
			Dimension:      dim,
			Weight:         weight,
			Value:          value,
			ScoreComponent: component,
		})
	}
	return contributions
}

// Score sums the score components of a contribution set, 2 decimals.
func Score(contributions []types.RiskContribution) float64 {
	total := 0.0
	for _, c := range contributions {
		total += c.ScoreComponent
	}
	return round2(total)
}

// MarkupMultiplier returns the price multiplier for a severity,
// rounded to 3 decimals.
func MarkupMultiplier(severity types.RiskSeverity) float64 {
	return math.Round((1+severity.MarkupFraction())*1000) / 1000
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
