package factors

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"cnc-quote/core/engine"
	"cnc-quote/core/types"
	"cnc-quote/internal/logging"
)

// FormulaContext carries the geometry and order parameters a finish
// formula may reference.
type FormulaContext struct {
	SurfaceAreaM2 float64
	VolumeCm3     float64
	Quantity      int
	MaterialCode  string
	Region        string
}

// ChainStep is one evaluated finish operation
type ChainStep struct {
	Code   string          `json:"code"`
	Label  string          `json:"label,omitempty"`
	Amount decimal.Decimal `json:"amount"`
}

// ChainCost is the evaluated cost of a quote line's finish chain
type ChainCost struct {
	Steps            []ChainStep     `json:"steps"`
	Total            decimal.Decimal `json:"total"`
	AddedLeadMinutes float64         `json:"added_lead_minutes"`
}

// FinishService evaluates the finish chain configured for a quote line.
// A nil result with nil error means the line has no chain.
type FinishService interface {
	ChainCost(ctx context.Context, quoteLineID string, fc FormulaContext) (*ChainCost, error)
}

// finishChainFactor prices service-backed finish chains. Service
// failures degrade gracefully: the run continues without a finish line
// rather than failing the whole quote.
type finishChainFactor struct {
	service FinishService
}

func (f *finishChainFactor) Name() string        { return "finish_chain_cost" }
func (f *finishChainFactor) Stage() engine.Stage { return engine.StageCost }
func (f *finishChainFactor) Order() int          { return 40 }

func (f *finishChainFactor) Applies(pc *engine.Context) bool {
	_, ok := types.FeatureString(pc.Input.Features, "quote_line_id")
	return ok
}

func (f *finishChainFactor) Compute(ctx context.Context, pc *engine.Context) error {
	input := &pc.Input
	lineID, _ := types.FeatureString(input.Features, "quote_line_id")

	geometry := types.FeatureMap(input.Features, "geometry")
	fc := FormulaContext{
		SurfaceAreaM2: geometryNumber(geometry, "surface_area_m2", 0.1),
		VolumeCm3:     geometryNumber(geometry, "volume_cm3", 100),
		Quantity:      input.EffectiveQuantity(),
		MaterialCode:  NormalizeMaterialCode(input.MaterialCode),
		Region:        input.Region,
	}

	chain, err := f.service.ChainCost(ctx, lineID, fc)
	if err != nil {
		logging.Warn("finish chain cost lookup failed",
			zap.String("quote_line_id", lineID), zap.Error(err))
		pc.Logf("[cost] finish_chain_cost skipped: %v", err)
		return nil
	}
	if chain == nil || len(chain.Steps) == 0 {
		pc.Logf("[cost] finish_chain_cost no chain for line %s", lineID)
		return nil
	}

	amount := types.Cents(chain.Total)
	operations := make([]string, len(chain.Steps))
	for i, step := range chain.Steps {
		operations[i] = step.Code
	}

	pc.AddCost(amount)
	if chain.AddedLeadMinutes > 0 {
		pc.AddMinutes(chain.AddedLeadMinutes)
	}
	pc.AppendLine(&types.BreakdownLine{
		Key:    f.Name(),
		Label:  "Finish Operations",
		Amount: amount,
		Meta: map[string]any{
			"quote_line_id":      lineID,
			"operations":         operations,
			"steps":              chain.Steps,
			"added_lead_minutes": chain.AddedLeadMinutes,
		},
	})
	return nil
}

func geometryNumber(m map[string]any, key string, fallback float64) float64 {
	if v, ok := types.FeatureNumber(m, key); ok && v > 0 {
		return v
	}
	return fallback
}
