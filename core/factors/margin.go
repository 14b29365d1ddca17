package factors

import (
	"context"

	"github.com/shopspring/decimal"

	"cnc-quote/core/engine"
	"cnc-quote/core/types"
	"cnc-quote/internal/config"
)

// marginFactor is the pipeline terminus. It is the only factor allowed
// to set the context price.
type marginFactor struct {
	cfg *config.Config
}

func (f *marginFactor) Name() string        { return "margin" }
func (f *marginFactor) Stage() engine.Stage { return engine.StagePrice }
func (f *marginFactor) Order() int          { return 90 }

func (f *marginFactor) Applies(*engine.Context) bool { return true }

func (f *marginFactor) Compute(_ context.Context, pc *engine.Context) error {
	pct := f.cfg.Margin.Base
	express := pc.Flags["leadtime.express"]
	if express {
		pct += f.cfg.Margin.ExpressBump
	}
	if pct > f.cfg.Margin.Cap {
		pct = f.cfg.Margin.Cap
	}

	marginAmount := types.Cents(pc.SubtotalCost.Mul(decimal.NewFromFloat(pct)))
	pc.Price = types.Cents(pc.SubtotalCost.Add(marginAmount))

	pc.AppendLine(&types.BreakdownLine{
		Key:    f.Name(),
		Label:  "Margin",
		Amount: marginAmount,
		Meta: map[string]any{
			"margin_percent": pct,
			"express":        express,
		},
	})
	return nil
}
