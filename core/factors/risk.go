package factors

import (
	"context"
	"math"

	"github.com/shopspring/decimal"

	"cnc-quote/core/engine"
	"cnc-quote/core/types"
)

// riskMarkupFactor applies the DFM risk markup and apportions the
// resulting delta across the risk dimensions for audit display. The
// severity table is the source of truth for the markup; contributions
// only split the amount.
type riskMarkupFactor struct{}

func (f *riskMarkupFactor) Name() string        { return "risk_markup" }
func (f *riskMarkupFactor) Stage() engine.Stage { return engine.StagePostCost }
func (f *riskMarkupFactor) Order() int          { return 70 }

func (f *riskMarkupFactor) Applies(pc *engine.Context) bool {
	desc := types.RiskFromFeatures(pc.Input.Features)
	return desc != nil && desc.Severity != ""
}

func (f *riskMarkupFactor) Compute(_ context.Context, pc *engine.Context) error {
	desc := types.RiskFromFeatures(pc.Input.Features)

	fraction := desc.Severity.MarkupFraction()
	if desc.Markup > 0 {
		fraction = desc.Markup - 1
	}
	multiplier := math.Round((1+fraction)*1000) / 1000

	if fraction <= 0 {
		pc.AppendLine(&types.BreakdownLine{
			Key:    f.Name(),
			Label:  "Risk Markup",
			Amount: decimal.Zero,
			Meta: map[string]any{
				"severity":   desc.Severity,
				"score":      desc.Score,
				"multiplier": multiplier,
			},
		})
		pc.Logf("[post_cost] risk_markup neutral severity=%s", desc.Severity)
		return nil
	}

	delta := types.Cents(pc.SubtotalCost.Mul(decimal.NewFromFloat(fraction)))
	pc.AddCost(delta)

	pc.AppendLine(&types.BreakdownLine{
		Key:    f.Name(),
		Label:  "Risk Markup",
		Amount: delta,
		Meta: map[string]any{
			"severity":      desc.Severity,
			"score":         desc.Score,
			"multiplier":    multiplier,
			"apportionment": apportion(delta, desc.Contributions),
		},
	})

	pc.Logf("[post_cost] risk_markup applied severity=%s delta=%s", desc.Severity, delta.StringFixed(2))
	return nil
}

// apportion splits the delta across contributions by score component
// share. A zero total score yields zero shares for everyone.
func apportion(delta decimal.Decimal, contributions []types.RiskContribution) []map[string]any {
	totalScore := 0.0
	for _, c := range contributions {
		totalScore += c.ScoreComponent
	}

	out := make([]map[string]any, 0, len(contributions))
	for _, c := range contributions {
		amount := decimal.Zero
		if totalScore > 0 {
			share := c.ScoreComponent / totalScore
			amount = types.Cents(delta.Mul(decimal.NewFromFloat(share)))
		}
		out = append(out, map[string]any{
			"dimension":       c.Dimension,
			"weight":          c.Weight,
			"value":           c.Value,
			"score_component": c.ScoreComponent,
			"amount":          amount,
		})
	}
	return out
}
