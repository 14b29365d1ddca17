package factors

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"cnc-quote/core/types"
	"cnc-quote/internal/errors"
)

type stubFinishService struct {
	chain   *ChainCost
	err     error
	gotLine string
	gotFC   FormulaContext
}

func (s *stubFinishService) ChainCost(_ context.Context, quoteLineID string, fc FormulaContext) (*ChainCost, error) {
	s.gotLine = quoteLineID
	s.gotFC = fc
	return s.chain, s.err
}

func chainInput() types.PricingInput {
	input := millingInput()
	input.Finishes = []string{"anodize"}
	input.Features["quote_line_id"] = "line-42"
	input.Features["geometry"] = map[string]any{
		"surface_area_m2": 0.25,
		"volume_cm3":      1800.0,
	}
	return input
}

func runWithFinishService(t *testing.T, svc FinishService, input types.PricingInput) types.PricingResult {
	t.Helper()
	orch, err := DefaultOrchestrator(nil, WithFinishService(svc))
	if err != nil {
		t.Fatal(err)
	}
	result, err := orch.Run(context.Background(), input)
	if err != nil {
		t.Fatal(err)
	}
	return result
}

func TestFinishChainReplacesTableFactor(t *testing.T) {
	svc := &stubFinishService{chain: &ChainCost{
		Steps: []ChainStep{
			{Code: "anodize", Label: "Anodize Type II", Amount: decimal.NewFromFloat(12.5)},
			{Code: "mask", Label: "Masking", Amount: decimal.NewFromFloat(3.25)},
		},
		Total:            decimal.NewFromFloat(15.75),
		AddedLeadMinutes: 45,
	}}

	result := runWithFinishService(t, svc, chainInput())

	if result.FindLine("finish_cost") != nil {
		t.Error("table finish_cost line present alongside finish chain")
	}
	line := result.FindLine("finish_chain_cost")
	if line == nil {
		t.Fatal("finish_chain_cost line missing")
	}
	if !line.Amount.Equal(decimal.NewFromFloat(15.75)) {
		t.Errorf("chain amount = %s, want 15.75", line.Amount)
	}
	ops, _ := line.Meta["operations"].([]string)
	if len(ops) != 2 || ops[0] != "anodize" || ops[1] != "mask" {
		t.Errorf("operations meta = %v, want [anodize mask]", ops)
	}
	if lead, _ := line.Meta["added_lead_minutes"].(float64); lead != 45 {
		t.Errorf("added_lead_minutes meta = %v, want 45", lead)
	}

	if svc.gotLine != "line-42" {
		t.Errorf("service saw line %q, want line-42", svc.gotLine)
	}
	if svc.gotFC.SurfaceAreaM2 != 0.25 || svc.gotFC.VolumeCm3 != 1800 {
		t.Errorf("formula context geometry = %+v", svc.gotFC)
	}
	if svc.gotFC.MaterialCode != "AL6061" {
		t.Errorf("formula context material = %q, want AL6061", svc.gotFC.MaterialCode)
	}
}

func TestFinishChainGeometryDefaults(t *testing.T) {
	svc := &stubFinishService{}
	input := chainInput()
	delete(input.Features, "geometry")

	runWithFinishService(t, svc, input)

	if svc.gotFC.SurfaceAreaM2 != 0.1 {
		t.Errorf("default surface area = %v, want 0.1", svc.gotFC.SurfaceAreaM2)
	}
	if svc.gotFC.VolumeCm3 != 100 {
		t.Errorf("default volume = %v, want 100", svc.gotFC.VolumeCm3)
	}
}

// Service failures must not fail the quote
func TestFinishChainServiceErrorDegrades(t *testing.T) {
	svc := &stubFinishService{err: errors.New(errors.TypeCatalog, "chain lookup timed out")}

	result := runWithFinishService(t, svc, chainInput())

	if result.FindLine("finish_chain_cost") != nil {
		t.Error("finish_chain_cost line present despite service error")
	}
	if !result.Price.IsPositive() {
		t.Errorf("price = %s, want > 0 without finish chain", result.Price)
	}
}

func TestFinishChainNilChainSkipped(t *testing.T) {
	svc := &stubFinishService{}
	result := runWithFinishService(t, svc, chainInput())

	if result.FindLine("finish_chain_cost") != nil {
		t.Error("finish_chain_cost line present for line without a chain")
	}
}

func TestFinishChainOnlyAppliesWithLineID(t *testing.T) {
	svc := &stubFinishService{}
	result := runWithFinishService(t, svc, millingInput())

	if svc.gotLine != "" {
		t.Error("service consulted for input without quote_line_id")
	}
	if result.FindLine("finish_chain_cost") != nil {
		t.Error("finish_chain_cost line present without quote_line_id")
	}
}
