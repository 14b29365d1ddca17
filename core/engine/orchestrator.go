// Package engine - Pricing orchestrator
//
// The orchestrator owns an ordered registry of pricing factors and runs
// them against a fresh context per invocation. The registry is sealed by
// the first Run; after that the orchestrator is immutable and safe to
// share across concurrent quote requests.
package engine

import (
	"context"
	"sort"
	"sync"

	"cnc-quote/core/types"
	"cnc-quote/internal/errors"
)

// Stage is a coarse execution phase used for ordering factors
type Stage string

const (
	StageSetup    Stage = "setup"
	StageCost     Stage = "cost"
	StagePostCost Stage = "post_cost"
	StagePrice    Stage = "price"
)

// rank returns the numeric precedence of the stage
func (s Stage) rank() int {
	switch s {
	case StageSetup:
		return 0
	case StageCost:
		return 1
	case StagePostCost:
		return 2
	case StagePrice:
		return 3
	default:
		return 4
	}
}

// Factor is one named, orderable pricing rule.
// Compute must append its own breakdown line(s) and mutate the context
// totals; a returned error aborts the whole run (fail-fast, no partial
// results).
type Factor interface {
	// Name is the unique factor key; it doubles as the breakdown line key
	Name() string

	// Stage is the coarse execution phase
	Stage() Stage

	// Order breaks ties within and across stages (ascending)
	Order() int

	// Applies decides whether Compute runs for this context
	Applies(pc *Context) bool

	// Compute executes the factor's effect on the context
	Compute(ctx context.Context, pc *Context) error
}

// Orchestrator runs registered factors in (stage, order) sequence
type Orchestrator struct {
	mu      sync.Mutex
	factors []Factor
	names   map[string]struct{}
	sealed  bool
}

// New creates an empty orchestrator
func New() *Orchestrator {
	return &Orchestrator{
		names: make(map[string]struct{}),
	}
}

// Register appends a factor to the registry.
// Duplicate names are a configuration error: downstream lookups assume at
// most one breakdown line per key. Registration after the first Run is
// rejected to keep the shared registry immutable.
func (o *Orchestrator) Register(f Factor) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.sealed {
		return errors.New(errors.TypeInput, "orchestrator already sealed by a run")
	}
	if _, exists := o.names[f.Name()]; exists {
		return errors.Newf(errors.TypeInput, "factor %q registered twice", f.Name())
	}
	o.names[f.Name()] = struct{}{}
	o.factors = append(o.factors, f)
	return nil
}

// RunOption adjusts one pricing run
type RunOption func(*runOptions)

type runOptions struct {
	flags map[string]bool
}

// WithFlag seeds a caller-provided flag (e.g. "leadtime.express")
func WithFlag(name string, value bool) RunOption {
	return func(ro *runOptions) {
		if ro.flags == nil {
			ro.flags = make(map[string]bool)
		}
		ro.flags[name] = value
	}
}

// WithFlags seeds multiple caller-provided flags
func WithFlags(flags map[string]bool) RunOption {
	return func(ro *runOptions) {
		if ro.flags == nil {
			ro.flags = make(map[string]bool, len(flags))
		}
		for k, v := range flags {
			ro.flags[k] = v
		}
	}
}

// Run executes all applicable factors against a brand-new context and
// returns a snapshot of the outcome. Re-running the same input yields a
// deep-equal result; nothing is cached between calls.
func (o *Orchestrator) Run(ctx context.Context, input types.PricingInput, opts ...RunOption) (types.PricingResult, error) {
	o.seal()

	var ro runOptions
	for _, opt := range opts {
		opt(&ro)
	}

	pc := newContext(input, ro.flags)

	for _, f := range o.factors {
		if err := ctx.Err(); err != nil {
			return types.PricingResult{}, errors.Wrap(errors.TypeInternal, "pricing run cancelled", err)
		}
		if !f.Applies(pc) {
			continue
		}
		if err := f.Compute(ctx, pc); err != nil {
			return types.PricingResult{}, errors.Wrapf(errors.TypeFactor, err, "factor %q failed", f.Name())
		}
	}

	return pc.snapshot(), nil
}

// Factors returns the registered factor names in execution order
func (o *Orchestrator) Factors() []string {
	o.seal()
	names := make([]string, len(o.factors))
	for i, f := range o.factors {
		names[i] = f.Name()
	}
	return names
}

// seal freezes the registry and fixes the execution order.
// Stable sort: ties in (stage, order) keep registration order.
func (o *Orchestrator) seal() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.sealed {
		return
	}
	sort.SliceStable(o.factors, func(i, j int) bool {
		fi, fj := o.factors[i], o.factors[j]
		if fi.Stage().rank() != fj.Stage().rank() {
			return fi.Stage().rank() < fj.Stage().rank()
		}
		return fi.Order() < fj.Order()
	})
	o.sealed = true
}
