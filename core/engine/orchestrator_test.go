// Package engine - Orchestrator invariant tests
// These tests prove the registry and per-run isolation invariants by
// violating them on purpose.
package engine

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"cnc-quote/core/types"
)

// stubFactor is a minimal factor for registry tests
type stubFactor struct {
	name    string
	stage   Stage
	order   int
	applies bool
	compute func(pc *Context) error
}

func (f *stubFactor) Name() string          { return f.name }
func (f *stubFactor) Stage() Stage          { return f.stage }
func (f *stubFactor) Order() int            { return f.order }
func (f *stubFactor) Applies(*Context) bool { return f.applies }

func (f *stubFactor) Compute(_ context.Context, pc *Context) error {
	if f.compute != nil {
		return f.compute(pc)
	}
	pc.AppendLine(&types.BreakdownLine{Key: f.name, Label: f.name, Amount: decimal.Zero})
	return nil
}

func appendOnly(name string, stage Stage, order int) *stubFactor {
	return &stubFactor{name: name, stage: stage, order: order, applies: true}
}

// TestRegisterRejectsDuplicateName proves downstream line lookups can
// trust at most one line per key.
func TestRegisterRejectsDuplicateName(t *testing.T) {
	o := New()
	if err := o.Register(appendOnly("machine_time", StageCost, 10)); err != nil {
		t.Fatalf("first registration failed: %v", err)
	}
	if err := o.Register(appendOnly("machine_time", StageCost, 20)); err == nil {
		t.Fatal("expected duplicate registration to be rejected")
	}
}

// TestRegisterAfterRunRejected proves the registry is immutable once
// shared with callers.
func TestRegisterAfterRunRejected(t *testing.T) {
	o := New()
	if err := o.Register(appendOnly("a", StageCost, 10)); err != nil {
		t.Fatal(err)
	}
	if _, err := o.Run(context.Background(), types.PricingInput{PartID: "p1"}); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if err := o.Register(appendOnly("b", StageCost, 20)); err == nil {
		t.Fatal("expected registration after first run to be rejected")
	}
}

// TestStageOrderPrecedesOrder proves ordering is (stage, order) with
// registration order breaking ties.
func TestStageOrderPrecedesOrder(t *testing.T) {
	o := New()
	// Registered deliberately out of execution order.
	for _, f := range []*stubFactor{
		appendOnly("margin", StagePrice, 90),
		appendOnly("tie_second", StageCost, 10),
		appendOnly("overhead", StagePostCost, 60),
		appendOnly("setup", StageSetup, 99),
		appendOnly("tie_second_b", StageCost, 10),
	} {
		if err := o.Register(f); err != nil {
			t.Fatal(err)
		}
	}

	result, err := o.Run(context.Background(), types.PricingInput{PartID: "p1"})
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"setup", "tie_second", "tie_second_b", "overhead", "margin"}
	if len(result.Breakdown) != len(want) {
		t.Fatalf("breakdown has %d lines, want %d", len(result.Breakdown), len(want))
	}
	for i, key := range want {
		if result.Breakdown[i].Key != key {
			t.Errorf("breakdown[%d] = %q, want %q", i, result.Breakdown[i].Key, key)
		}
	}
}

// TestApplyFilterSkipsFactor proves non-applicable factors leave no line
func TestApplyFilterSkipsFactor(t *testing.T) {
	o := New()
	if err := o.Register(appendOnly("kept", StageCost, 10)); err != nil {
		t.Fatal(err)
	}
	skipped := appendOnly("skipped", StageCost, 20)
	skipped.applies = false
	if err := o.Register(skipped); err != nil {
		t.Fatal(err)
	}

	result, err := o.Run(context.Background(), types.PricingInput{PartID: "p1"})
	if err != nil {
		t.Fatal(err)
	}
	if result.FindLine("skipped") != nil {
		t.Fatal("non-applicable factor appended a line")
	}
	if result.FindLine("kept") == nil {
		t.Fatal("applicable factor missing from breakdown")
	}
}

// TestFactorErrorAbortsRun proves fail-fast: no partial results
func TestFactorErrorAbortsRun(t *testing.T) {
	o := New()
	if err := o.Register(appendOnly("first", StageCost, 10)); err != nil {
		t.Fatal(err)
	}
	failing := &stubFactor{name: "boom", stage: StageCost, order: 20, applies: true,
		compute: func(*Context) error {
			return context.DeadlineExceeded
		}}
	if err := o.Register(failing); err != nil {
		t.Fatal(err)
	}

	_, err := o.Run(context.Background(), types.PricingInput{PartID: "p1"})
	if err == nil {
		t.Fatal("expected run to fail when a factor errors")
	}
}

// TestRunsDoNotShareContext proves each run gets a fresh accumulator
func TestRunsDoNotShareContext(t *testing.T) {
	o := New()
	adder := &stubFactor{name: "adder", stage: StageCost, order: 10, applies: true,
		compute: func(pc *Context) error {
			amount := types.CentsFloat(10)
			pc.AddCost(amount)
			pc.AppendLine(&types.BreakdownLine{Key: "adder", Label: "Adder", Amount: amount})
			return nil
		}}
	if err := o.Register(adder); err != nil {
		t.Fatal(err)
	}

	input := types.PricingInput{PartID: "p1"}
	first, err := o.Run(context.Background(), input)
	if err != nil {
		t.Fatal(err)
	}
	second, err := o.Run(context.Background(), input)
	if err != nil {
		t.Fatal(err)
	}

	if !first.SubtotalCost.Equal(second.SubtotalCost) {
		t.Fatalf("subtotals diverged across runs: %s vs %s",
			first.SubtotalCost, second.SubtotalCost)
	}
	if len(second.Breakdown) != 1 {
		t.Fatalf("second run accumulated %d lines, want 1", len(second.Breakdown))
	}
}

// TestCancelledContextStopsRun proves callers can bound a run externally
func TestCancelledContextStopsRun(t *testing.T) {
	o := New()
	if err := o.Register(appendOnly("a", StageCost, 10)); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := o.Run(ctx, types.PricingInput{PartID: "p1"}); err == nil {
		t.Fatal("expected cancelled context to abort the run")
	}
}
