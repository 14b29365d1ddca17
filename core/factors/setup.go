package factors

import (
	"context"

	"cnc-quote/core/engine"
	"cnc-quote/core/types"
	"cnc-quote/internal/config"
)

// Per-feature setup bonus minutes, capped by the process rate card.
const (
	setupMinutesPerHole   = 0.5
	setupMinutesPerPocket = 1.0
	setupMinutesPerBend   = 0.8
)

// setupTimeFactor estimates fixturing and programming time and
// amortizes its cost over the order quantity.
type setupTimeFactor struct {
	cfg *config.Config
}

func (f *setupTimeFactor) Name() string        { return "setup_time" }
func (f *setupTimeFactor) Stage() engine.Stage { return engine.StageSetup }
func (f *setupTimeFactor) Order() int          { return 10 }

func (f *setupTimeFactor) Applies(*engine.Context) bool { return true }

func (f *setupTimeFactor) Compute(_ context.Context, pc *engine.Context) error {
	input := &pc.Input
	rate := f.cfg.ProcessRateFor(input.Process.String())

	bonus := float64(types.FeatureCount(input.Features, "holes"))*setupMinutesPerHole +
		float64(types.FeatureCount(input.Features, "pockets"))*setupMinutesPerPocket +
		float64(types.FeatureCount(input.Features, "bends"))*setupMinutesPerBend
	if rate.MaxSetupBonusMinutes > 0 && bonus > rate.MaxSetupBonusMinutes {
		bonus = rate.MaxSetupBonusMinutes
	}

	minutes := types.RoundMinutes(rate.SetupBaseMinutes + bonus)
	quantity := input.EffectiveQuantity()
	perPart := types.CentsFloat(minutes * rate.SetupRatePerMinute / float64(quantity))

	pc.AddCost(perPart)
	pc.AddMinutes(minutes)
	pc.AppendLine(&types.BreakdownLine{
		Key:    f.Name(),
		Label:  "Setup & Fixturing",
		Amount: perPart,
		Meta: map[string]any{
			"minutes":         minutes,
			"bonus_minutes":   types.RoundMinutes(bonus),
			"rate_per_minute": rate.SetupRatePerMinute,
			"quantity":        quantity,
		},
	})
	return nil
}
