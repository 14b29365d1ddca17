// Package types - Tolerance summary, match and entry types
package types

// ToleranceTarget names a cost dimension a tolerance match affects
type ToleranceTarget string

const (
	TargetMachineTime ToleranceTarget = "machine_time"
	TargetSetupTime   ToleranceTarget = "setup_time"
	TargetRisk        ToleranceTarget = "risk"
)

// ToleranceProfileMultipliers are the class-derived base multipliers
type ToleranceProfileMultipliers struct {
	Machining  float64 `json:"machining"`
	Setup      float64 `json:"setup"`
	Inspection float64 `json:"inspection"`
}

// ToleranceProfile describes the coarse tolerance class resolved upstream
type ToleranceProfile struct {
	// Band is the tolerance band (coarse, medium, fine, precision, ...)
	Band string `json:"band"`

	// Category is the dominant tolerance category (linear, flatness, ...)
	Category string `json:"category"`

	// Source records how the profile was resolved ("class", "default")
	Source string `json:"source"`

	// Multipliers are the base multipliers for the band
	Multipliers ToleranceProfileMultipliers `json:"multipliers"`
}

// ToleranceSummary is the reconciled view over all tolerance callouts.
// Each multiplier is >= 1 by construction.
type ToleranceSummary struct {
	// MachineMultiplier scales machine time cost
	MachineMultiplier float64 `json:"machine_multiplier"`

	// SetupMultiplier scales setup time cost
	SetupMultiplier float64 `json:"setup_multiplier"`

	// InspectionMultiplier scales inspection effort
	InspectionMultiplier float64 `json:"inspection_multiplier"`

	// RiskMultiplier records tolerance-driven risk exposure
	RiskMultiplier float64 `json:"risk_multiplier"`

	// EntryCount is the number of tolerance callouts summarized
	EntryCount int `json:"entry_count"`

	// TightestValueMm is the tightest mm-unit tolerance seen, if any
	TightestValueMm *float64 `json:"tightest_value_mm,omitempty"`

	// Sources counts entries per provenance ("structured", "free_text", ...)
	Sources map[string]int `json:"sources,omitempty"`

	// MatchedRowIDs lists the cost book rows that contributed
	MatchedRowIDs []int64 `json:"matched_row_ids,omitempty"`

	// ReviewRequired marks the part for manual review
	ReviewRequired bool `json:"review_required"`

	// BaseMultipliers echoes the profile the summary was built from
	BaseMultipliers *ToleranceProfileMultipliers `json:"base_multipliers,omitempty"`
}

// ToleranceMatch is one tolerance cost book row matched against a callout
type ToleranceMatch struct {
	// EntryKey links back to the tolerance entry that matched
	EntryKey string `json:"entry_key"`

	// FeatureType is the feature class ("hole", "slot", "flatness", ...)
	FeatureType string `json:"feature_type"`

	// AppliesTo is the measured dimension ("diameter", "width", ...)
	AppliesTo string `json:"applies_to"`

	// Unit is the entry's normalized unit ("mm", "deg", "um")
	Unit string `json:"unit"`

	// Value is the normalized tolerance value
	Value float64 `json:"value"`

	// RawValue and RawUnit preserve the callout as authored
	RawValue float64 `json:"raw_value,omitempty"`
	RawUnit  string  `json:"raw_unit,omitempty"`

	// Source is the entry provenance
	Source string `json:"source,omitempty"`

	// Affects lists the cost dimensions the row scales
	Affects []ToleranceTarget `json:"affects"`

	// Multiplier is the row's cost multiplier (>= 1)
	Multiplier float64 `json:"multiplier"`

	// RowID identifies the cost book row
	RowID int64 `json:"row_id"`

	// CatalogVersion is the cost book version the row came from
	CatalogVersion int `json:"catalog_version,omitempty"`

	// ReviewRequired marks matches that need manual review
	ReviewRequired bool `json:"review_required,omitempty"`

	// FitCode is an ISO fit designation when one was parsed (e.g. "H7")
	FitCode string `json:"fit_code,omitempty"`

	// Notes carries row or entry annotations
	Notes string `json:"notes,omitempty"`
}

// AffectsTarget reports whether the match scales the given dimension
func (m *ToleranceMatch) AffectsTarget(t ToleranceTarget) bool {
	for _, a := range m.Affects {
		if a == t {
			return true
		}
	}
	return false
}

// ToleranceEntry is one normalized tolerance callout
type ToleranceEntry struct {
	// Key uniquely identifies the callout (e.g. "hole:diameter:0")
	Key string `json:"key"`

	// FeatureID links the callout to a geometry feature, if known
	FeatureID string `json:"feature_id,omitempty"`

	// FeatureType is the feature class
	FeatureType string `json:"feature_type"`

	// AppliesTo is the measured dimension
	AppliesTo string `json:"applies_to"`

	// Unit is the normalized unit
	Unit string `json:"unit"`

	// Value is the normalized tolerance value
	Value float64 `json:"value"`

	// RawValue and RawUnit preserve the callout as authored
	RawValue float64 `json:"raw_value,omitempty"`
	RawUnit  string  `json:"raw_unit,omitempty"`

	// Source is the provenance ("structured", "free_text", "class")
	Source string `json:"source,omitempty"`

	// ReviewRequired marks callouts the parser could not fully resolve
	ReviewRequired bool `json:"review_required,omitempty"`

	// FitCode is an ISO fit designation when one was parsed
	FitCode string `json:"fit_code,omitempty"`

	// Notes carries parser annotations
	Notes string `json:"notes,omitempty"`
}
