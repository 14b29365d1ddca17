// Package types - Pricing input and result types
package types

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Process identifies a manufacturing process family
type Process string

const (
	ProcessCNCMilling       Process = "cnc_milling"
	ProcessTurning          Process = "turning"
	ProcessSheet            Process = "sheet"
	ProcessInjectionMolding Process = "injection_molding"
)

// String returns the string representation
func (p Process) String() string {
	return string(p)
}

// NormalizeProcess maps raw process codes onto a process family.
// Unknown codes default to CNC milling.
func NormalizeProcess(raw string) Process {
	code := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case code == "turning" || code == "cnc_turning":
		return ProcessTurning
	case strings.HasPrefix(code, "sheet"):
		return ProcessSheet
	case strings.HasPrefix(code, "injection"):
		return ProcessInjectionMolding
	default:
		return ProcessCNCMilling
	}
}

// MaterialSnapshot is a resolved material record supplied by the caller.
// When absent, factors fall back to the built-in material table.
type MaterialSnapshot struct {
	// ID is the catalog row identifier
	ID string `json:"id,omitempty"`

	// Code is the material code (e.g. "AL6061")
	Code string `json:"code"`

	// Name is a human-readable name
	Name string `json:"name,omitempty"`

	// DensityKgM3 is the density in kg/m³
	DensityKgM3 float64 `json:"density_kg_m3"`

	// CostPerKg is the cost per kilogram
	CostPerKg float64 `json:"cost_per_kg"`

	// RegionMultiplier scales cost for the sourcing region (1 when unset)
	RegionMultiplier float64 `json:"region_multiplier,omitempty"`

	// Source records where the snapshot came from ("catalog", "fallback")
	Source string `json:"source,omitempty"`
}

// PricingInput describes one part configuration to price.
// Quantity < 1 is tolerated; factors clamp with max(1, quantity).
type PricingInput struct {
	// OrgID is the owning organization
	OrgID string `json:"org_id"`

	// PartID identifies the part being priced
	PartID string `json:"part_id"`

	// Process is the manufacturing process family
	Process Process `json:"process"`

	// MaterialCode is the requested material code
	MaterialCode string `json:"material_code"`

	// Quantity is the number of parts
	Quantity int `json:"quantity"`

	// Finishes lists requested finish codes
	Finishes []string `json:"finishes,omitempty"`

	// Region is the sourcing region
	Region string `json:"region,omitempty"`

	// Features is the free-form feature snapshot (geometry, holes,
	// pockets, risk descriptor, quote_line_id, ...)
	Features map[string]any `json:"features,omitempty"`

	// Material is an optional resolved material snapshot
	Material *MaterialSnapshot `json:"material,omitempty"`

	// ToleranceProfile carries the class-derived base multipliers
	ToleranceProfile *ToleranceProfile `json:"tolerance_profile,omitempty"`

	// ToleranceSummary is the reconciled tolerance summary, if computed upstream
	ToleranceSummary *ToleranceSummary `json:"tolerance_summary,omitempty"`

	// ToleranceMatches are catalog row matches for the part's tolerances
	ToleranceMatches []ToleranceMatch `json:"tolerance_matches,omitempty"`

	// ToleranceEntries are the normalized tolerance callouts
	ToleranceEntries []ToleranceEntry `json:"tolerance_entries,omitempty"`

	// ToleranceCatalogVersion is the tolerance cost book version used
	ToleranceCatalogVersion int `json:"tolerance_catalog_version,omitempty"`
}

// EffectiveQuantity clamps quantity to at least 1
func (in *PricingInput) EffectiveQuantity() int {
	if in.Quantity < 1 {
		return 1
	}
	return in.Quantity
}

// BreakdownLine is one itemized cost/time contribution.
// Lines are append-only; a later factor may adjust an earlier line's Meta
// through the context accessor, never replace the line.
type BreakdownLine struct {
	// Key is the stable machine identifier (e.g. "machine_time")
	Key string `json:"key"`

	// Label is the display name
	Label string `json:"label"`

	// Amount is the monetary contribution, rounded to cents (may be zero)
	Amount decimal.Decimal `json:"amount"`

	// Meta holds diagnostic values consumed by later factors and callers
	Meta map[string]any `json:"meta,omitempty"`
}

// MetaFloat reads a numeric meta field, returning false when absent or
// not a number.
func (l *BreakdownLine) MetaFloat(key string) (float64, bool) {
	if l == nil || l.Meta == nil {
		return 0, false
	}
	switch v := l.Meta[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case decimal.Decimal:
		f, _ := v.Float64()
		return f, true
	default:
		return 0, false
	}
}

// SetMeta writes a diagnostic value, allocating the map on first use
func (l *BreakdownLine) SetMeta(key string, value any) {
	if l.Meta == nil {
		l.Meta = make(map[string]any)
	}
	l.Meta[key] = value
}

// PricingResult is the snapshot returned by one orchestrator run
type PricingResult struct {
	// Price is the final quoted price per part
	Price decimal.Decimal `json:"price"`

	// SubtotalCost is the cost before margin
	SubtotalCost decimal.Decimal `json:"subtotal_cost"`

	// TimeMinutes is the accumulated production time estimate
	TimeMinutes float64 `json:"time_minutes"`

	// Breakdown is the ordered itemized explanation
	Breakdown []*BreakdownLine `json:"breakdown"`

	// Flags carries gating signals (e.g. "tolerance.review_required")
	Flags map[string]bool `json:"flags,omitempty"`

	// Logs is the per-run diagnostic trail
	Logs []string `json:"logs,omitempty"`
}

// FindLine returns the first breakdown line with the given key, or nil
func (r *PricingResult) FindLine(key string) *BreakdownLine {
	for _, line := range r.Breakdown {
		if line.Key == key {
			return line
		}
	}
	return nil
}
