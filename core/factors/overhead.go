package factors

import (
	"context"

	"github.com/shopspring/decimal"

	"cnc-quote/core/engine"
	"cnc-quote/core/types"
	"cnc-quote/internal/config"
)

// overheadBaseKeys are the direct cost lines overhead is charged on
var overheadBaseKeys = []string{"setup_time", "machine_time", "material_cost"}

// overheadFactor charges shop overhead as a fraction of the direct
// setup, machine and material line amounts.
type overheadFactor struct {
	cfg *config.Config
}

func (f *overheadFactor) Name() string        { return "overhead" }
func (f *overheadFactor) Stage() engine.Stage { return engine.StagePostCost }
func (f *overheadFactor) Order() int          { return 60 }

func (f *overheadFactor) Applies(pc *engine.Context) bool {
	if f.cfg.Overhead.Rate <= 0 {
		return false
	}
	for _, key := range overheadBaseKeys {
		if pc.FindLine(key) != nil {
			return true
		}
	}
	return false
}

func (f *overheadFactor) Compute(_ context.Context, pc *engine.Context) error {
	base := decimal.Zero
	for _, key := range overheadBaseKeys {
		if line := pc.FindLine(key); line != nil {
			base = base.Add(line.Amount)
		}
	}

	amount := types.Cents(base.Mul(decimal.NewFromFloat(f.cfg.Overhead.Rate)))

	pc.AddCost(amount)
	pc.AppendLine(&types.BreakdownLine{
		Key:    f.Name(),
		Label:  "Shop Overhead",
		Amount: amount,
		Meta: map[string]any{
			"rate": f.cfg.Overhead.Rate,
			"base": base,
		},
	})
	return nil
}
