// Package factors - Default pipeline behavior tests
package factors

import (
	"context"
	"reflect"
	"sync"
	"testing"

	"cnc-quote/core/types"
)

func millingInput() types.PricingInput {
	return types.PricingInput{
		OrgID:        "o1",
		PartID:       "p1",
		Process:      types.ProcessCNCMilling,
		MaterialCode: "AL6061",
		Quantity:     10,
		Features: map[string]any{
			"holes":      map[string]any{"count": 6},
			"pockets":    map[string]any{"count": 2},
			"volume_mm3": 1.8e6,
		},
	}
}

// canonicalOrder is the full registry order; any absent key must be a
// factor whose Applies returned false.
var canonicalOrder = []string{
	"setup_time", "machine_time", "material_cost", "finish_cost",
	"tolerance_multiplier", "overhead", "risk_markup", "margin",
}

func assertBreakdownOrder(t *testing.T, result *types.PricingResult) {
	t.Helper()
	actual := make([]string, len(result.Breakdown))
	for i, line := range result.Breakdown {
		actual[i] = line.Key
	}
	expected := make([]string, 0, len(actual))
	for _, key := range canonicalOrder {
		if result.FindLine(key) != nil {
			expected = append(expected, key)
		}
	}
	if !reflect.DeepEqual(actual, expected) {
		t.Fatalf("breakdown order %v, want %v", actual, expected)
	}
}

func TestMillingScenarioProducesPositiveTotals(t *testing.T) {
	orch, err := DefaultOrchestrator(nil)
	if err != nil {
		t.Fatal(err)
	}

	result, err := orch.Run(context.Background(), millingInput())
	if err != nil {
		t.Fatal(err)
	}

	if !result.Price.IsPositive() {
		t.Errorf("price = %s, want > 0", result.Price)
	}
	if !result.SubtotalCost.IsPositive() {
		t.Errorf("subtotal = %s, want > 0", result.SubtotalCost)
	}
	if len(result.Breakdown) == 0 {
		t.Fatal("breakdown is empty")
	}
	if result.FindLine("tolerance_multiplier") != nil {
		t.Error("tolerance_multiplier line present without tolerance data")
	}
	if result.FindLine("finish_cost") != nil {
		t.Error("finish_cost line present without requested finishes")
	}
	assertBreakdownOrder(t, &result)
}

func TestDeterminism(t *testing.T) {
	orch, err := DefaultOrchestrator(nil)
	if err != nil {
		t.Fatal(err)
	}

	first, err := orch.Run(context.Background(), millingInput())
	if err != nil {
		t.Fatal(err)
	}
	second, err := orch.Run(context.Background(), millingInput())
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("identical inputs produced different results:\n%+v\n%+v", first, second)
	}
}

func TestConcurrentRunsAreIsolated(t *testing.T) {
	orch, err := DefaultOrchestrator(nil)
	if err != nil {
		t.Fatal(err)
	}

	baseline, err := orch.Run(context.Background(), millingInput())
	if err != nil {
		t.Fatal(err)
	}

	const workers = 16
	var wg sync.WaitGroup
	results := make([]types.PricingResult, workers)
	errs := make([]error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = orch.Run(context.Background(), millingInput())
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		if errs[i] != nil {
			t.Fatalf("worker %d failed: %v", i, errs[i])
		}
		if !reflect.DeepEqual(results[i], baseline) {
			t.Fatalf("worker %d diverged from baseline", i)
		}
	}
}

func TestAllProcessFamiliesPrice(t *testing.T) {
	cases := []types.PricingInput{
		millingInput(),
		{
			OrgID: "o1", PartID: "p2", Process: types.ProcessTurning,
			MaterialCode: "SS304", Quantity: 5,
			Features: map[string]any{"turn_ops": 3, "volume_mm3": 9e5},
		},
		{
			OrgID: "o1", PartID: "p3", Process: types.ProcessSheet,
			MaterialCode: "AL5052", Quantity: 25,
			Features: map[string]any{"bends": 4, "pierces": 60, "volume_mm3": 7e5},
		},
	}

	orch, err := DefaultOrchestrator(nil)
	if err != nil {
		t.Fatal(err)
	}

	for _, input := range cases {
		result, err := orch.Run(context.Background(), input)
		if err != nil {
			t.Fatalf("%s: %v", input.PartID, err)
		}
		if !result.Price.IsPositive() || !result.SubtotalCost.IsPositive() {
			t.Errorf("%s: price=%s subtotal=%s, want both > 0",
				input.PartID, result.Price, result.SubtotalCost)
		}
		assertBreakdownOrder(t, &result)
	}
}

// TestMoneyRounding proves no factor leaks a third decimal place
func TestMoneyRounding(t *testing.T) {
	orch, err := DefaultOrchestrator(nil)
	if err != nil {
		t.Fatal(err)
	}

	input := millingInput()
	input.Finishes = []string{"anodize", "bead_blast"}
	input.Features["risk"] = map[string]any{"severity": "HIGH", "score": 42.5}

	result, err := orch.Run(context.Background(), input)
	if err != nil {
		t.Fatal(err)
	}

	for _, line := range result.Breakdown {
		if line.Amount.Exponent() < -2 {
			t.Errorf("line %s amount %s has more than 2 decimal places",
				line.Key, line.Amount)
		}
	}
	if result.SubtotalCost.Exponent() < -2 {
		t.Errorf("subtotal %s has more than 2 decimal places", result.SubtotalCost)
	}
	if result.Price.Exponent() < -2 {
		t.Errorf("price %s has more than 2 decimal places", result.Price)
	}
}
