package factors

import (
	"context"
	"strings"

	"cnc-quote/core/engine"
	"cnc-quote/core/types"
	"cnc-quote/internal/config"
)

const fallbackMaterialCode = "AL6061"

// materialCostFactor prices raw stock from a supplied material snapshot
// or the built-in fallback table.
type materialCostFactor struct {
	cfg *config.Config
}

func (f *materialCostFactor) Name() string        { return "material_cost" }
func (f *materialCostFactor) Stage() engine.Stage { return engine.StageCost }
func (f *materialCostFactor) Order() int          { return 30 }

func (f *materialCostFactor) Applies(pc *engine.Context) bool {
	return partVolumeCm3(pc.Input.Features) > 0
}

func (f *materialCostFactor) Compute(_ context.Context, pc *engine.Context) error {
	input := &pc.Input

	code := NormalizeMaterialCode(input.MaterialCode)
	density, costPerKg, source := f.resolveMaterial(input, code)

	regionMultiplier := f.cfg.RegionMultiplier(input.Region)
	if input.Material != nil && input.Material.RegionMultiplier > 0 {
		regionMultiplier = input.Material.RegionMultiplier
	}

	volumeM3 := partVolumeCm3(input.Features) / 1e6
	massKg := volumeM3 * density
	amount := types.CentsFloat(massKg * costPerKg * regionMultiplier)

	pc.AddCost(amount)
	pc.AppendLine(&types.BreakdownLine{
		Key:    f.Name(),
		Label:  "Material",
		Amount: amount,
		Meta: map[string]any{
			"material_code":     code,
			"density_kg_m3":     density,
			"cost_per_kg":       costPerKg,
			"mass_kg":           massKg,
			"region_multiplier": regionMultiplier,
			"source":            source,
		},
	})
	return nil
}

// resolveMaterial prefers a usable snapshot, then the fallback table,
// then the baseline alloy.
func (f *materialCostFactor) resolveMaterial(input *types.PricingInput, code string) (density, costPerKg float64, source string) {
	if m := input.Material; m != nil && m.DensityKgM3 > 0 && m.CostPerKg > 0 {
		source = m.Source
		if source == "" {
			source = "snapshot"
		}
		return m.DensityKgM3, m.CostPerKg, source
	}
	if rate, ok := f.cfg.Materials[code]; ok {
		return rate.DensityKgM3, rate.CostPerKg, "fallback"
	}
	base := f.cfg.Materials[fallbackMaterialCode]
	return base.DensityKgM3, base.CostPerKg, "fallback_default"
}

// NormalizeMaterialCode strips non-alphanumerics and uppercases the
// code; empty input falls back to the baseline alloy.
func NormalizeMaterialCode(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	code := strings.ToUpper(b.String())
	if code == "" {
		return fallbackMaterialCode
	}
	return code
}
