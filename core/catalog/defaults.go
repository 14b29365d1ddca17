package catalog

import "cnc-quote/core/types"

const defaultVersion = 3

// DefaultBook returns the built-in cost book used when no catalog is
// injected. Bands are half-open [tol_from, tol_to) in the entry's
// normalized unit.
func DefaultBook() *Book {
	machine := []types.ToleranceTarget{types.TargetMachineTime}
	machineSetup := []types.ToleranceTarget{types.TargetMachineTime, types.TargetSetupTime}
	all := []types.ToleranceTarget{types.TargetMachineTime, types.TargetSetupTime, types.TargetRisk}
	machineRisk := []types.ToleranceTarget{types.TargetMachineTime, types.TargetRisk}

	return New(defaultVersion, []Row{
		{ID: 101, Process: "cnc_milling", FeatureType: "hole", AppliesTo: "diameter", Unit: "mm", TolFrom: 0, TolTo: 0.01, Multiplier: 1.45, Affects: all, Notes: "jig grinding band"},
		{ID: 102, Process: "cnc_milling", FeatureType: "hole", AppliesTo: "diameter", Unit: "mm", TolFrom: 0.01, TolTo: 0.025, Multiplier: 1.30, Affects: machineSetup},
		{ID: 103, Process: "cnc_milling", FeatureType: "hole", AppliesTo: "diameter", Unit: "mm", TolFrom: 0.025, TolTo: 0.05, Multiplier: 1.18, Affects: machine},
		{ID: 104, Process: "cnc_milling", FeatureType: "hole", AppliesTo: "diameter", Unit: "mm", TolFrom: 0.05, TolTo: 0.1, Multiplier: 1.08, Affects: machine},
		{ID: 111, Process: "cnc_milling", FeatureType: "slot", AppliesTo: "width", Unit: "mm", TolFrom: 0, TolTo: 0.02, Multiplier: 1.35, Affects: machineSetup},
		{ID: 112, Process: "cnc_milling", FeatureType: "slot", AppliesTo: "width", Unit: "mm", TolFrom: 0.02, TolTo: 0.05, Multiplier: 1.15, Affects: machine},
		{ID: 121, Process: "cnc_milling", FeatureType: "pocket", AppliesTo: "depth", Unit: "mm", TolFrom: 0, TolTo: 0.05, Multiplier: 1.20, Affects: machine},
		{ID: 131, Process: "cnc_milling", FeatureType: "flatness", AppliesTo: "flatness", Unit: "mm", TolFrom: 0, TolTo: 0.02, Multiplier: 1.25, Affects: machineRisk},
		{ID: 132, Process: "cnc_milling", FeatureType: "flatness", AppliesTo: "flatness", Unit: "mm", TolFrom: 0.02, TolTo: 0.05, Multiplier: 1.10, Affects: machine},
		{ID: 141, Process: "cnc_milling", FeatureType: "position", AppliesTo: "true_position", Unit: "mm", TolFrom: 0, TolTo: 0.05, Multiplier: 1.30, Affects: all},
		{ID: 201, Process: "turning", FeatureType: "hole", AppliesTo: "diameter", Unit: "mm", TolFrom: 0, TolTo: 0.01, Multiplier: 1.40, Affects: all, Notes: "requires live tooling pass"},
		{ID: 202, Process: "turning", FeatureType: "hole", AppliesTo: "diameter", Unit: "mm", TolFrom: 0.01, TolTo: 0.03, Multiplier: 1.20, Affects: machineSetup},
		{ID: 211, Process: "turning", FeatureType: "profile", AppliesTo: "runout", Unit: "mm", TolFrom: 0, TolTo: 0.02, Multiplier: 1.25, Affects: machineRisk},
		{ID: 301, Process: "sheet_metal", FeatureType: "flatness", AppliesTo: "flatness", Unit: "mm", TolFrom: 0, TolTo: 0.5, Multiplier: 1.15, Affects: machine},
		{ID: 302, Process: "sheet_metal", FeatureType: "position", AppliesTo: "true_position", Unit: "mm", TolFrom: 0, TolTo: 0.2, Multiplier: 1.20, Affects: machineSetup},
	})
}
