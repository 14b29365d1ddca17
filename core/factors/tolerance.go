package factors

import (
	"context"

	"github.com/shopspring/decimal"

	"cnc-quote/core/engine"
	"cnc-quote/core/types"
)

const maxMatchSnapshots = 25

// toleranceFactor applies tolerance-driven surcharges against the
// machine_time and setup_time lines. Deltas are additive-only: a
// multiplier at or below 1+epsilon never changes cost. When a delta
// lands on a line, the multiplier and the proportional minutes delta
// are written back into that line's meta.
type toleranceFactor struct{}

func (f *toleranceFactor) Name() string        { return "tolerance_multiplier" }
func (f *toleranceFactor) Stage() engine.Stage { return engine.StagePostCost }
func (f *toleranceFactor) Order() int          { return 50 }

func (f *toleranceFactor) Applies(pc *engine.Context) bool {
	summary := pc.Input.ToleranceSummary
	matches := pc.Input.ToleranceMatches
	entries := pc.Input.ToleranceEntries

	if summary == nil && len(matches) == 0 {
		return false
	}

	if summary != nil {
		if summary.MachineMultiplier > 1+MultiplierEpsilon ||
			summary.SetupMultiplier > 1+MultiplierEpsilon ||
			summary.InspectionMultiplier > 1+MultiplierEpsilon ||
			summary.RiskMultiplier > 1+MultiplierEpsilon ||
			summary.ReviewRequired {
			return true
		}
	}

	if len(matches) > 0 {
		return true
	}

	for _, entry := range entries {
		if entry.ReviewRequired {
			return true
		}
	}
	return false
}

func (f *toleranceFactor) Compute(_ context.Context, pc *engine.Context) error {
	matches := pc.Input.ToleranceMatches
	entries := pc.Input.ToleranceEntries

	summary := ensureSummary(pc.Input.ToleranceSummary, matches)
	if summary == nil {
		pc.Logf("[post_cost] tolerance_multiplier missing summary")
		return nil
	}

	machineLine := pc.FindLine("machine_time")
	setupLine := pc.FindLine("setup_time")

	machineDelta := computeDelta(lineAmount(machineLine), summary.MachineMultiplier)
	setupDelta := computeDelta(lineAmount(setupLine), summary.SetupMultiplier)
	totalDelta := machineDelta + setupDelta

	if totalDelta <= 0 && !summary.ReviewRequired &&
		summary.RiskMultiplier <= 1+MultiplierEpsilon && len(matches) == 0 {
		pc.Logf("[post_cost] tolerance_multiplier no-op")
		return nil
	}

	machineAmount := applyDelta(pc, machineLine, machineDelta, summary.MachineMultiplier, "totalMinutes")
	setupAmount := applyDelta(pc, setupLine, setupDelta, summary.SetupMultiplier, "minutes")
	totalAmount := types.Cents(machineAmount.Add(setupAmount))

	pc.AppendLine(&types.BreakdownLine{
		Key:    f.Name(),
		Label:  "Tolerance Cost",
		Amount: totalAmount,
		Meta:   toleranceMeta(summary, matches, entries, pc.Input.ToleranceCatalogVersion, machineAmount, setupAmount),
	})

	if summary.ReviewRequired || anyEntryReview(entries) {
		pc.SetFlag("tolerance.review_required")
	}
	if summary.RiskMultiplier > 1+MultiplierEpsilon {
		pc.SetFlag("tolerance.risk")
	}

	pc.Logf("[post_cost] tolerance_multiplier applied delta=%s", totalAmount.StringFixed(2))
	return nil
}

// ensureSummary synthesizes a summary from matches when none was
// supplied: maximum multiplier per affected target, review OR-ed over
// matches. Inspection has no derivation path from matches and stays 1.
func ensureSummary(summary *types.ToleranceSummary, matches []types.ToleranceMatch) *types.ToleranceSummary {
	if summary != nil {
		return summary
	}
	if len(matches) == 0 {
		return nil
	}

	machine, setup, risk := 1.0, 1.0, 1.0
	review := false
	rowIDs := make([]int64, 0, len(matches))

	for i := range matches {
		match := &matches[i]
		rowIDs = append(rowIDs, match.RowID)
		if match.AffectsTarget(types.TargetMachineTime) && match.Multiplier > machine {
			machine = match.Multiplier
		}
		if match.AffectsTarget(types.TargetSetupTime) && match.Multiplier > setup {
			setup = match.Multiplier
		}
		if match.AffectsTarget(types.TargetRisk) && match.Multiplier > risk {
			risk = match.Multiplier
		}
		if match.ReviewRequired {
			review = true
		}
	}

	return &types.ToleranceSummary{
		MachineMultiplier:    machine,
		SetupMultiplier:      setup,
		InspectionMultiplier: 1,
		RiskMultiplier:       risk,
		EntryCount:           len(matches),
		MatchedRowIDs:        rowIDs,
		ReviewRequired:       review,
	}
}

// computeDelta returns the unrounded surcharge for one line. Deltas are
// clamped to zero; tolerance never discounts.
func computeDelta(baseAmount float64, multiplier float64) float64 {
	if baseAmount <= 0 || multiplier <= 1+MultiplierEpsilon {
		return 0
	}
	delta := baseAmount * (multiplier - 1)
	if delta <= 0 {
		return 0
	}
	return delta
}

// applyDelta rounds and books a line's surcharge. When the line carries
// the recognized minutes meta field, the proportional minutes delta is
// added to the run total and the adjustment is recorded in the line's
// meta for downstream consumers.
func applyDelta(pc *engine.Context, line *types.BreakdownLine, delta, multiplier float64, minutesKey string) decimal.Decimal {
	if delta <= 0 || line == nil {
		return decimal.Zero
	}

	amount := types.CentsFloat(delta)
	pc.AddCost(amount)

	if minutes, ok := line.MetaFloat(minutesKey); ok && minutes > 0 {
		minutesDelta := types.RoundMinutes(minutes * (multiplier - 1))
		pc.AddMinutes(minutesDelta)
		line.SetMeta("toleranceMultiplier", types.RoundMultiplier(multiplier))
		line.SetMeta("toleranceMinutesDelta", minutesDelta)
	}
	return amount
}

func toleranceMeta(
	summary *types.ToleranceSummary,
	matches []types.ToleranceMatch,
	entries []types.ToleranceEntry,
	catalogVersion int,
	machineAmount, setupAmount decimal.Decimal,
) map[string]any {
	snapshot := matches
	if len(snapshot) > maxMatchSnapshots {
		snapshot = snapshot[:maxMatchSnapshots]
	}
	matchSnapshots := make([]map[string]any, 0, len(snapshot))
	for i := range snapshot {
		match := &snapshot[i]
		matchSnapshots = append(matchSnapshots, map[string]any{
			"row_id":       match.RowID,
			"entry_key":    match.EntryKey,
			"affects":      match.Affects,
			"multiplier":   types.RoundMultiplier(match.Multiplier),
			"feature_type": match.FeatureType,
			"applies_to":   match.AppliesTo,
			"value":        match.Value,
			"unit":         match.Unit,
			"source":       match.Source,
			"notes":        match.Notes,
		})
	}

	flagged := make([]map[string]any, 0)
	for _, entry := range entries {
		if !entry.ReviewRequired {
			continue
		}
		flagged = append(flagged, map[string]any{
			"key":    entry.Key,
			"source": entry.Source,
			"value":  entry.Value,
			"unit":   entry.Unit,
		})
	}

	meta := map[string]any{
		"machine_multiplier":        types.RoundMultiplier(summary.MachineMultiplier),
		"setup_multiplier":          types.RoundMultiplier(summary.SetupMultiplier),
		"inspection_multiplier":     types.RoundMultiplier(summary.InspectionMultiplier),
		"risk_multiplier":           types.RoundMultiplier(summary.RiskMultiplier),
		"entry_count":               summary.EntryCount,
		"review_required":           summary.ReviewRequired,
		"matches":                   matchSnapshots,
		"matched_row_ids":           summary.MatchedRowIDs,
		"sources":                   summary.Sources,
		"machine_delta":             machineAmount,
		"setup_delta":               setupAmount,
		"entries_with_review_flags": flagged,
	}
	if catalogVersion > 0 {
		meta["catalog_version"] = catalogVersion
	}
	if summary.TightestValueMm != nil {
		meta["tightest_value_mm"] = *summary.TightestValueMm
	}
	return meta
}

func lineAmount(line *types.BreakdownLine) float64 {
	if line == nil {
		return 0
	}
	v, _ := line.Amount.Float64()
	return v
}

func anyEntryReview(entries []types.ToleranceEntry) bool {
	for _, entry := range entries {
		if entry.ReviewRequired {
			return true
		}
	}
	return false
}
