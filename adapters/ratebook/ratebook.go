// Package ratebook loads shop rate books authored as HCL files and
// overlays them onto the built-in configuration. A rate book can
// override process rate cards, material and finish tables, region
// multipliers, overhead/margin policy, and supply custom tolerance
// cost book rows.
package ratebook

import (
	"fmt"

	"github.com/hashicorp/hcl/v2/hclsimple"
	"go.uber.org/multierr"

	"cnc-quote/core/catalog"
	"cnc-quote/core/types"
	"cnc-quote/internal/config"
	"cnc-quote/internal/errors"
)

// File is the decoded rate book
type File struct {
	Version   int              `hcl:"version,optional"`
	Processes []ProcessBlock   `hcl:"process,block"`
	Materials []MaterialBlock  `hcl:"material,block"`
	Finishes  []FinishBlock    `hcl:"finish,block"`
	Regions   []RegionBlock    `hcl:"region,block"`
	Overhead  *OverheadBlock   `hcl:"overhead,block"`
	Margin    *MarginBlock     `hcl:"margin,block"`
	Tolerance []ToleranceBlock `hcl:"tolerance_row,block"`
}

// ProcessBlock overrides one process rate card. Zero-valued fields
// keep the configured value.
type ProcessBlock struct {
	Name                 string  `hcl:"name,label"`
	SetupBaseMinutes     float64 `hcl:"setup_base_minutes,optional"`
	SetupRatePerMinute   float64 `hcl:"setup_rate_per_minute,optional"`
	MachineBaseMinutes   float64 `hcl:"machine_base_minutes,optional"`
	MachineRatePerHour   float64 `hcl:"machine_rate_per_hour,optional"`
	RemovalMinutesPerCm3 float64 `hcl:"removal_minutes_per_cm3,optional"`
	MaxSetupBonusMinutes float64 `hcl:"max_setup_bonus_minutes,optional"`
}

// MaterialBlock overrides or adds one material
type MaterialBlock struct {
	Code        string  `hcl:"code,label"`
	DensityKgM3 float64 `hcl:"density_kg_m3"`
	CostPerKg   float64 `hcl:"cost_per_kg"`
}

// FinishBlock overrides or adds one finish
type FinishBlock struct {
	Code        string  `hcl:"code,label"`
	CostPerPart float64 `hcl:"cost_per_part"`
}

// RegionBlock overrides one region multiplier
type RegionBlock struct {
	Name       string  `hcl:"name,label"`
	Multiplier float64 `hcl:"multiplier"`
}

// OverheadBlock overrides overhead policy
type OverheadBlock struct {
	Rate float64 `hcl:"rate"`
}

// MarginBlock overrides margin policy
type MarginBlock struct {
	Base        float64 `hcl:"base"`
	ExpressBump float64 `hcl:"express_bump,optional"`
	Cap         float64 `hcl:"cap,optional"`
}

// ToleranceBlock is one custom tolerance cost book row
type ToleranceBlock struct {
	Name        string   `hcl:"name,label"`
	ID          int64    `hcl:"id"`
	Process     string   `hcl:"process"`
	FeatureType string   `hcl:"feature_type"`
	AppliesTo   string   `hcl:"applies_to"`
	Unit        string   `hcl:"unit"`
	TolFrom     float64  `hcl:"tol_from,optional"`
	TolTo       float64  `hcl:"tol_to"`
	Multiplier  float64  `hcl:"multiplier"`
	Affects     []string `hcl:"affects"`
	Notes       string   `hcl:"notes,optional"`
}

// Load reads and decodes a rate book
func Load(path string) (*File, error) {
	var f File
	if err := hclsimple.DecodeFile(path, nil, &f); err != nil {
		return nil, errors.Wrapf(errors.TypeConfig, err, "decoding rate book %s", path)
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Apply overlays the rate book onto a configuration
func (f *File) Apply(cfg *config.Config) {
	for _, p := range f.Processes {
		rate := cfg.ProcessRateFor(p.Name)
		if p.SetupBaseMinutes > 0 {
			rate.SetupBaseMinutes = p.SetupBaseMinutes
		}
		if p.SetupRatePerMinute > 0 {
			rate.SetupRatePerMinute = p.SetupRatePerMinute
		}
		if p.MachineBaseMinutes > 0 {
			rate.MachineBaseMinutes = p.MachineBaseMinutes
		}
		if p.MachineRatePerHour > 0 {
			rate.MachineRatePerHour = p.MachineRatePerHour
		}
		if p.RemovalMinutesPerCm3 > 0 {
			rate.RemovalMinutesPerCm3 = p.RemovalMinutesPerCm3
		}
		if p.MaxSetupBonusMinutes > 0 {
			rate.MaxSetupBonusMinutes = p.MaxSetupBonusMinutes
		}
		cfg.Rates[p.Name] = rate
	}

	for _, m := range f.Materials {
		cfg.Materials[m.Code] = config.MaterialRate{
			DensityKgM3: m.DensityKgM3,
			CostPerKg:   m.CostPerKg,
		}
	}
	for _, fin := range f.Finishes {
		cfg.Finishes[fin.Code] = fin.CostPerPart
	}
	for _, r := range f.Regions {
		cfg.Regions[r.Name] = r.Multiplier
	}
	if f.Overhead != nil {
		cfg.Overhead.Rate = f.Overhead.Rate
	}
	if f.Margin != nil {
		cfg.Margin.Base = f.Margin.Base
		if f.Margin.ExpressBump > 0 {
			cfg.Margin.ExpressBump = f.Margin.ExpressBump
		}
		if f.Margin.Cap > 0 {
			cfg.Margin.Cap = f.Margin.Cap
		}
	}
}

// Book builds a tolerance cost book from the rate book's rows, or nil
// when the file defines none.
func (f *File) Book() *catalog.Book {
	if len(f.Tolerance) == 0 {
		return nil
	}
	version := f.Version
	if version <= 0 {
		version = 1
	}
	rows := make([]catalog.Row, 0, len(f.Tolerance))
	for _, t := range f.Tolerance {
		affects := make([]types.ToleranceTarget, 0, len(t.Affects))
		for _, a := range t.Affects {
			affects = append(affects, types.ToleranceTarget(a))
		}
		rows = append(rows, catalog.Row{
			ID:          t.ID,
			Process:     t.Process,
			FeatureType: t.FeatureType,
			AppliesTo:   t.AppliesTo,
			Unit:        t.Unit,
			TolFrom:     t.TolFrom,
			TolTo:       t.TolTo,
			Multiplier:  t.Multiplier,
			Affects:     affects,
			Notes:       t.Notes,
		})
	}
	return catalog.New(version, rows)
}

// validate aggregates every structural problem in the book
func (f *File) validate() error {
	var errs error

	for _, m := range f.Materials {
		if m.DensityKgM3 <= 0 || m.CostPerKg <= 0 {
			errs = multierr.Append(errs, errors.Newf(errors.TypeConfig,
				"material %q: density and cost must be positive", m.Code))
		}
	}
	for _, fin := range f.Finishes {
		if fin.CostPerPart < 0 {
			errs = multierr.Append(errs, errors.Newf(errors.TypeConfig,
				"finish %q: cost must not be negative", fin.Code))
		}
	}
	for _, r := range f.Regions {
		if r.Multiplier <= 0 {
			errs = multierr.Append(errs, errors.Newf(errors.TypeConfig,
				"region %q: multiplier must be positive", r.Name))
		}
	}
	for _, t := range f.Tolerance {
		if t.TolTo <= t.TolFrom {
			errs = multierr.Append(errs, errors.Newf(errors.TypeConfig,
				"tolerance row %d: tol_to must exceed tol_from", t.ID))
		}
		if t.Multiplier < 1 {
			errs = multierr.Append(errs, errors.Newf(errors.TypeConfig,
				"tolerance row %d: multiplier must be >= 1", t.ID))
		}
		for _, a := range t.Affects {
			switch types.ToleranceTarget(a) {
			case types.TargetMachineTime, types.TargetSetupTime, types.TargetRisk:
			default:
				errs = multierr.Append(errs, errors.Newf(errors.TypeConfig,
					"tolerance row %d: unknown affects target %q", t.ID, a))
			}
		}
	}
	if f.Margin != nil && (f.Margin.Base < 0 || f.Margin.Base >= 1) {
		errs = multierr.Append(errs, errors.New(errors.TypeConfig,
			"margin base must be in [0, 1)"))
	}
	if f.Overhead != nil && (f.Overhead.Rate < 0 || f.Overhead.Rate >= 1) {
		errs = multierr.Append(errs, errors.New(errors.TypeConfig,
			"overhead rate must be in [0, 1)"))
	}

	if errs != nil {
		return errors.Wrap(errors.TypeConfig,
			fmt.Sprintf("rate book has %d problem(s)", len(multierr.Errors(errs))), errs)
	}
	return nil
}
