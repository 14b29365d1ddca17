// Package factors - Risk markup tests
package factors

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"cnc-quote/core/types"
)

func runWithRisk(t *testing.T, risk any) types.PricingResult {
	t.Helper()
	orch, err := DefaultOrchestrator(nil)
	if err != nil {
		t.Fatal(err)
	}
	input := millingInput()
	input.Features["risk"] = risk
	result, err := orch.Run(context.Background(), input)
	if err != nil {
		t.Fatal(err)
	}
	return result
}

// Apportionment splits proportionally to score components; [2,1,1]
// against $10 gives [5, 2.5, 2.5].
func TestApportionmentShares(t *testing.T) {
	delta := decimal.NewFromFloat(10)
	contributions := []types.RiskContribution{
		{Dimension: "thin_walls", ScoreComponent: 2},
		{Dimension: "deep_pockets", ScoreComponent: 1},
		{Dimension: "small_holes", ScoreComponent: 1},
	}

	shares := apportion(delta, contributions)
	want := []string{"5", "2.5", "2.5"}
	total := decimal.Zero
	for i, share := range shares {
		amount := share["amount"].(decimal.Decimal)
		if amount.String() != want[i] {
			t.Errorf("share[%d] = %s, want %s", i, amount, want[i])
		}
		total = total.Add(amount)
	}
	if !total.Equal(delta) {
		t.Errorf("shares sum to %s, want %s", total, delta)
	}
}

// A zero total score apportions nothing, never divides by zero
func TestApportionmentZeroScore(t *testing.T) {
	delta := decimal.NewFromFloat(10)
	contributions := []types.RiskContribution{
		{Dimension: "thin_walls", ScoreComponent: 0},
		{Dimension: "deep_pockets", ScoreComponent: 0},
	}

	for _, share := range apportion(delta, contributions) {
		amount := share["amount"].(decimal.Decimal)
		if !amount.IsZero() {
			t.Errorf("zero-score share = %s, want 0", amount)
		}
	}
}

func TestSeverityTableMarkup(t *testing.T) {
	result := runWithRisk(t, map[string]any{"severity": "MEDIUM", "score": 35.0})

	line := result.FindLine("risk_markup")
	if line == nil {
		t.Fatal("risk_markup line missing")
	}
	if !line.Amount.IsPositive() {
		t.Errorf("MEDIUM severity amount = %s, want > 0", line.Amount)
	}
	if mult, _ := line.Meta["multiplier"].(float64); mult != 1.05 {
		t.Errorf("multiplier meta = %v, want 1.05", line.Meta["multiplier"])
	}
}

// LOW severity still leaves an audit line at zero amount
func TestLowSeverityZeroAmountLine(t *testing.T) {
	result := runWithRisk(t, map[string]any{"severity": "LOW", "score": 5.0})

	line := result.FindLine("risk_markup")
	if line == nil {
		t.Fatal("LOW severity produced no audit line")
	}
	if !line.Amount.IsZero() {
		t.Errorf("LOW severity amount = %s, want 0", line.Amount)
	}
}

// An explicit markup multiplier overrides the severity table
func TestExplicitMarkupOverridesSeverity(t *testing.T) {
	result := runWithRisk(t, map[string]any{
		"severity": "LOW",
		"markup":   1.12,
	})

	line := result.FindLine("risk_markup")
	if line == nil {
		t.Fatal("risk_markup line missing")
	}
	if !line.Amount.IsPositive() {
		t.Errorf("explicit markup amount = %s, want > 0", line.Amount)
	}
	if mult, _ := line.Meta["multiplier"].(float64); mult != 1.12 {
		t.Errorf("multiplier meta = %v, want 1.12", line.Meta["multiplier"])
	}
}

func TestNoRiskDescriptorNoLine(t *testing.T) {
	orch, err := DefaultOrchestrator(nil)
	if err != nil {
		t.Fatal(err)
	}
	result, err := orch.Run(context.Background(), millingInput())
	if err != nil {
		t.Fatal(err)
	}
	if result.FindLine("risk_markup") != nil {
		t.Error("risk_markup line present without a risk descriptor")
	}
}

// Malformed risk structures are neutral, never an error
func TestMalformedRiskTolerated(t *testing.T) {
	result := runWithRisk(t, map[string]any{"score": "not-a-number"})
	if result.FindLine("risk_markup") != nil {
		t.Error("severity-less risk map produced a markup line")
	}
}
