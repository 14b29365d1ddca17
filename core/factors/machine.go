package factors

import (
	"context"

	"cnc-quote/core/engine"
	"cnc-quote/core/types"
	"cnc-quote/internal/config"
)

// machineTimeFactor estimates per-part machine engagement time from
// part volume and feature counts and prices it at the process hourly
// rate. Its meta.totalMinutes is read back by the tolerance factor.
type machineTimeFactor struct {
	cfg *config.Config
}

func (f *machineTimeFactor) Name() string        { return "machine_time" }
func (f *machineTimeFactor) Stage() engine.Stage { return engine.StageCost }
func (f *machineTimeFactor) Order() int          { return 10 }

func (f *machineTimeFactor) Applies(*engine.Context) bool { return true }

func (f *machineTimeFactor) Compute(_ context.Context, pc *engine.Context) error {
	input := &pc.Input
	rate := f.cfg.ProcessRateFor(input.Process.String())

	minutes := rate.MachineBaseMinutes +
		partVolumeCm3(input.Features)*rate.RemovalMinutesPerCm3 +
		featureMinutes(input.Process, input.Features)
	minutes = types.RoundMinutes(minutes)

	amount := types.CentsFloat(minutes * rate.MachineRatePerHour / 60)

	pc.AddCost(amount)
	pc.AddMinutes(minutes)
	pc.AppendLine(&types.BreakdownLine{
		Key:    f.Name(),
		Label:  "Machine Time",
		Amount: amount,
		Meta: map[string]any{
			"totalMinutes": minutes,
			"hourlyRate":   rate.MachineRatePerHour,
		},
	})
	return nil
}

// partVolumeCm3 reads the part volume, preferring mm3 over cm3
func partVolumeCm3(features map[string]any) float64 {
	if mm3, ok := types.FeatureNumber(features, "volume_mm3"); ok && mm3 > 0 {
		return mm3 / 1000
	}
	if cm3, ok := types.FeatureNumber(features, "volume_cm3"); ok && cm3 > 0 {
		return cm3
	}
	return 0
}

// featureMinutes converts feature counts into machine minutes using
// per-process heuristics.
func featureMinutes(process types.Process, features map[string]any) float64 {
	switch process {
	case types.ProcessSheet:
		return float64(types.FeatureCount(features, "bends"))*1.2 +
			float64(types.FeatureCount(features, "pierces"))*0.05
	case types.ProcessTurning:
		return float64(types.FeatureCount(features, "turn_ops")) * 2.0
	case types.ProcessInjectionMolding:
		return 0
	default:
		return float64(types.FeatureCount(features, "holes"))*1.8 +
			float64(types.FeatureCount(features, "pockets"))*4.5 +
			float64(types.FeatureCount(features, "slots"))*2.5
	}
}
