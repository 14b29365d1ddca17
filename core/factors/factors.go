// Package factors contains the pricing factors and the default
// pipeline wiring. Factors are registered with (stage, order) pairs;
// the breakdown line key of each factor equals its name.
package factors

import (
	"cnc-quote/core/engine"
	"cnc-quote/internal/config"
)

// MultiplierEpsilon absorbs floating-point noise in upstream multiplier
// computation. A multiplier within epsilon of 1 is treated as neutral
// by both the tolerance and risk factors.
const MultiplierEpsilon = 0.0001

// Option adjusts the default pipeline
type Option func(*options)

type options struct {
	finishes FinishService
}

// WithFinishService swaps the legacy flat finish table for the
// service-backed finish chain factor.
func WithFinishService(svc FinishService) Option {
	return func(o *options) {
		o.finishes = svc
	}
}

// DefaultOrchestrator builds the standard pricing pipeline:
// setup_time, machine_time, material_cost, finish_cost (or
// finish_chain_cost when a finish service is injected),
// tolerance_multiplier, overhead, risk_markup, margin.
func DefaultOrchestrator(cfg *config.Config, opts ...Option) (*engine.Orchestrator, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	orch := engine.New()

	registry := []engine.Factor{
		&setupTimeFactor{cfg: cfg},
		&machineTimeFactor{cfg: cfg},
		&materialCostFactor{cfg: cfg},
	}
	if o.finishes != nil {
		registry = append(registry, &finishChainFactor{service: o.finishes})
	} else {
		registry = append(registry, &finishCostFactor{cfg: cfg})
	}
	registry = append(registry,
		&toleranceFactor{},
		&overheadFactor{cfg: cfg},
		&riskMarkupFactor{},
		&marginFactor{cfg: cfg},
	)

	for _, f := range registry {
		if err := orch.Register(f); err != nil {
			return nil, err
		}
	}
	return orch, nil
}
