// Package engine - Pricing context
//
// The context is the per-run mutable accumulator every factor reads and
// writes. One Run owns exactly one context; contexts are never pooled and
// never shared across runs.
package engine

import (
	"fmt"

	"github.com/shopspring/decimal"

	"cnc-quote/core/types"
)

// Context accumulates the state of one pricing run
type Context struct {
	// Input is the part configuration being priced (read-only by convention)
	Input types.PricingInput

	// SubtotalCost is the running cost before margin, rounded to cents
	SubtotalCost decimal.Decimal

	// Price is the final price; only the margin factor may set it
	Price decimal.Decimal

	// TimeMinutes is the running production time estimate
	TimeMinutes float64

	// Flags carries gating signals for the caller
	Flags map[string]bool

	// Logs is the diagnostic trail returned with the result
	Logs []string

	breakdown []*types.BreakdownLine
}

func newContext(input types.PricingInput, flags map[string]bool) *Context {
	c := &Context{
		Input: input,
		Flags: make(map[string]bool, len(flags)),
	}
	for k, v := range flags {
		c.Flags[k] = v
	}
	return c
}

// AppendLine appends an itemized breakdown line.
// Execution order of applying factors defines the breakdown order.
func (c *Context) AppendLine(line *types.BreakdownLine) {
	c.breakdown = append(c.breakdown, line)
}

// FindLine returns the breakdown line with the given key, or nil.
// This is the one sanctioned way for a later factor to reach back into an
// earlier factor's output (the tolerance factor rewriting machine_time
// meta); ad hoc scans of the breakdown are not part of the contract.
func (c *Context) FindLine(key string) *types.BreakdownLine {
	for _, line := range c.breakdown {
		if line.Key == key {
			return line
		}
	}
	return nil
}

// Breakdown returns the lines appended so far
func (c *Context) Breakdown() []*types.BreakdownLine {
	return c.breakdown
}

// AddCost adds an already-rounded amount to the running subtotal
func (c *Context) AddCost(amount decimal.Decimal) {
	c.SubtotalCost = c.SubtotalCost.Add(amount)
}

// AddMinutes adds to the running time estimate
func (c *Context) AddMinutes(minutes float64) {
	c.TimeMinutes = types.RoundMinutes(c.TimeMinutes + minutes)
}

// SetFlag raises a gating flag
func (c *Context) SetFlag(name string) {
	c.Flags[name] = true
}

// Logf appends a formatted diagnostic log line
func (c *Context) Logf(format string, args ...any) {
	c.Logs = append(c.Logs, fmt.Sprintf(format, args...))
}

// snapshot freezes the context into an immutable result
func (c *Context) snapshot() types.PricingResult {
	breakdown := make([]*types.BreakdownLine, len(c.breakdown))
	copy(breakdown, c.breakdown)

	flags := make(map[string]bool, len(c.Flags))
	for k, v := range c.Flags {
		flags[k] = v
	}

	logs := make([]string, len(c.Logs))
	copy(logs, c.Logs)

	return types.PricingResult{
		Price:        c.Price,
		SubtotalCost: c.SubtotalCost,
		TimeMinutes:  c.TimeMinutes,
		Breakdown:    breakdown,
		Flags:        flags,
		Logs:         logs,
	}
}
