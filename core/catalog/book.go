// Package catalog provides the tolerance cost book: banded multiplier
// rows matched against normalized tolerance callouts.
package catalog

import (
	"math"

	"cnc-quote/core/types"
)

// Row is one cost book band. A callout matches when its normalized
// value falls in [TolFrom, TolTo) for the row's process, feature type,
// applies-to dimension and unit.
type Row struct {
	ID          int64                   `json:"id"`
	Process     string                  `json:"process"`
	FeatureType string                  `json:"feature_type"`
	AppliesTo   string                  `json:"applies_to"`
	Unit        string                  `json:"unit"`
	TolFrom     float64                 `json:"tol_from"`
	TolTo       float64                 `json:"tol_to"`
	Multiplier  float64                 `json:"multiplier"`
	Affects     []types.ToleranceTarget `json:"affects"`
	Notes       string                  `json:"notes,omitempty"`
}

// Book is an in-memory tolerance cost book
type Book struct {
	version int
	rows    []Row
}

// New builds a book from rows
func New(version int, rows []Row) *Book {
	return &Book{version: version, rows: rows}
}

// Version returns the catalog version
func (b *Book) Version() int {
	return b.version
}

// Rows returns the row set
func (b *Book) Rows() []Row {
	return b.rows
}

// FindMatches returns one ToleranceMatch per book row whose band covers
// the entry. Processes without tolerance banding (injection molding)
// match nothing.
func (b *Book) FindMatches(process types.Process, entry types.ToleranceEntry) []types.ToleranceMatch {
	bookProcess := toleranceProcess(process)
	if bookProcess == "" {
		return nil
	}

	unit := entry.Unit
	if unit != "deg" {
		unit = "mm"
	}

	var matches []types.ToleranceMatch
	for _, row := range b.rows {
		if row.Process != bookProcess || row.FeatureType != entry.FeatureType ||
			row.AppliesTo != entry.AppliesTo || row.Unit != unit {
			continue
		}
		if entry.Value < row.TolFrom || entry.Value >= row.TolTo {
			continue
		}
		notes := entry.Notes
		if notes == "" {
			notes = row.Notes
		}
		matches = append(matches, types.ToleranceMatch{
			EntryKey:       entry.Key,
			FeatureType:    row.FeatureType,
			AppliesTo:      row.AppliesTo,
			Unit:           entry.Unit,
			Value:          entry.Value,
			RawValue:       entry.RawValue,
			RawUnit:        entry.RawUnit,
			Source:         entry.Source,
			Affects:        row.Affects,
			Multiplier:     row.Multiplier,
			RowID:          row.ID,
			CatalogVersion: b.version,
			ReviewRequired: entry.ReviewRequired,
			FitCode:        entry.FitCode,
			Notes:          notes,
		})
	}
	return matches
}

// BuildMatches runs FindMatches over every entry and returns the
// combined match list plus the catalog version that produced it.
func (b *Book) BuildMatches(process types.Process, entries []types.ToleranceEntry) ([]types.ToleranceMatch, int) {
	var matches []types.ToleranceMatch
	for _, entry := range entries {
		matches = append(matches, b.FindMatches(process, entry)...)
	}
	return matches, b.version
}

// Summarize reconciles a profile, entries and matches into a summary.
// Multipliers start from the profile bases (1 when no profile) and are
// raised to the maximum matching row multiplier per target. Review is
// required when any entry or match says so.
func Summarize(profile *types.ToleranceProfile, entries []types.ToleranceEntry, matches []types.ToleranceMatch) *types.ToleranceSummary {
	machine, setup, inspection := 1.0, 1.0, 1.0
	var base *types.ToleranceProfileMultipliers
	if profile != nil {
		if profile.Multipliers.Machining > 0 {
			machine = profile.Multipliers.Machining
		}
		if profile.Multipliers.Setup > 0 {
			setup = profile.Multipliers.Setup
		}
		if profile.Multipliers.Inspection > 0 {
			inspection = profile.Multipliers.Inspection
		}
		m := profile.Multipliers
		base = &m
	}
	riskMult := 1.0

	sources := make(map[string]int)
	var tightest *float64
	review := false

	for _, entry := range entries {
		if entry.Source != "" {
			sources[entry.Source]++
		}
		if entry.Unit == "mm" {
			v := math.Round(entry.Value*10000) / 10000
			if tightest == nil || v < *tightest {
				tightest = &v
			}
		}
		if entry.ReviewRequired {
			review = true
		}
	}

	matchedIDs := make([]int64, 0, len(matches))
	for i := range matches {
		match := &matches[i]
		matchedIDs = append(matchedIDs, match.RowID)
		if match.AffectsTarget(types.TargetMachineTime) {
			machine = math.Max(machine, match.Multiplier)
		}
		if match.AffectsTarget(types.TargetSetupTime) {
			setup = math.Max(setup, match.Multiplier)
		}
		if match.AffectsTarget(types.TargetRisk) {
			riskMult = math.Max(riskMult, match.Multiplier)
		}
		if match.ReviewRequired {
			review = true
		}
	}

	if len(sources) == 0 {
		sources = nil
	}

	return &types.ToleranceSummary{
		MachineMultiplier:    types.RoundMultiplier(machine),
		SetupMultiplier:      types.RoundMultiplier(setup),
		InspectionMultiplier: types.RoundMultiplier(inspection),
		RiskMultiplier:       types.RoundMultiplier(riskMult),
		EntryCount:           len(entries),
		TightestValueMm:      tightest,
		Sources:              sources,
		MatchedRowIDs:        matchedIDs,
		ReviewRequired:       review,
		BaseMultipliers:      base,
	}
}

func toleranceProcess(process types.Process) string {
	switch process {
	case types.ProcessCNCMilling:
		return "cnc_milling"
	case types.ProcessTurning:
		return "turning"
	case types.ProcessSheet:
		return "sheet_metal"
	default:
		return ""
	}
}
