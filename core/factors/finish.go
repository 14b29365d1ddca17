package factors

import (
	"context"

	"github.com/shopspring/decimal"

	"cnc-quote/core/engine"
	"cnc-quote/core/types"
	"cnc-quote/internal/config"
)

// finishCostFactor is the legacy flat per-finish table. It is replaced
// by finishChainFactor when a finish service is injected.
type finishCostFactor struct {
	cfg *config.Config
}

func (f *finishCostFactor) Name() string        { return "finish_cost" }
func (f *finishCostFactor) Stage() engine.Stage { return engine.StageCost }
func (f *finishCostFactor) Order() int          { return 40 }

func (f *finishCostFactor) Applies(pc *engine.Context) bool {
	return len(pc.Input.Finishes) > 0
}

func (f *finishCostFactor) Compute(_ context.Context, pc *engine.Context) error {
	total := decimal.Zero
	applied := make(map[string]float64)
	var unknown []string

	for _, code := range pc.Input.Finishes {
		cost, ok := f.cfg.Finishes[code]
		if !ok {
			unknown = append(unknown, code)
			continue
		}
		applied[code] = cost
		total = total.Add(types.CentsFloat(cost))
	}

	amount := types.Cents(total)
	meta := map[string]any{
		"applied": applied,
	}
	if len(unknown) > 0 {
		meta["unknown_codes"] = unknown
	}

	pc.AddCost(amount)
	pc.AppendLine(&types.BreakdownLine{
		Key:    f.Name(),
		Label:  "Finishing",
		Amount: amount,
		Meta:   meta,
	})
	return nil
}
