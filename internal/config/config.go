// Package config provides configuration management.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"go.uber.org/multierr"

	"cnc-quote/internal/errors"
	"cnc-quote/internal/logging"
)

// Config is the main application configuration
type Config struct {
	// Version is the configuration version
	Version string `json:"version"`

	// Rates contains per-process machine and setup rates
	Rates map[string]ProcessRate `json:"rates"`

	// Materials contains the material fallback table keyed by material code
	Materials map[string]MaterialRate `json:"materials"`

	// Finishes contains per-part finish costs keyed by finish code
	Finishes map[string]float64 `json:"finishes"`

	// Regions contains region cost multipliers
	Regions map[string]float64 `json:"regions"`

	// Overhead contains overhead policy
	Overhead OverheadConfig `json:"overhead"`

	// Margin contains margin policy
	Margin MarginConfig `json:"margin"`

	// Output contains output configuration
	Output OutputConfig `json:"output"`

	// Logging contains logging configuration
	Logging logging.Config `json:"logging"`
}

// ProcessRate contains the rate card for a single process
type ProcessRate struct {
	// SetupBaseMinutes is the baseline setup time
	SetupBaseMinutes float64 `json:"setup_base_minutes"`

	// SetupRatePerMinute is the setup labor rate in dollars per minute
	SetupRatePerMinute float64 `json:"setup_rate_per_minute"`

	// MachineBaseMinutes is the baseline machine time per part
	MachineBaseMinutes float64 `json:"machine_base_minutes"`

	// MachineRatePerHour is the machine rate in dollars per hour
	MachineRatePerHour float64 `json:"machine_rate_per_hour"`

	// RemovalMinutesPerCm3 is machine minutes added per cm3 of part volume
	RemovalMinutesPerCm3 float64 `json:"removal_minutes_per_cm3"`

	// MaxSetupBonusMinutes caps the feature-driven setup bonus
	MaxSetupBonusMinutes float64 `json:"max_setup_bonus_minutes"`
}

// MaterialRate contains fallback pricing for a material
type MaterialRate struct {
	// DensityKgM3 is the material density in kg per cubic meter
	DensityKgM3 float64 `json:"density_kg_m3"`

	// CostPerKg is the material cost in dollars per kg
	CostPerKg float64 `json:"cost_per_kg"`
}

// OverheadConfig contains overhead policy
type OverheadConfig struct {
	// Rate is the overhead fraction applied to direct cost lines
	Rate float64 `json:"rate"`
}

// MarginConfig contains margin policy
type MarginConfig struct {
	// Base is the baseline margin fraction
	Base float64 `json:"base"`

	// ExpressBump is added to the margin for express lead times
	ExpressBump float64 `json:"express_bump"`

	// Cap is the maximum margin fraction
	Cap float64 `json:"cap"`
}

// OutputConfig contains output-related settings
type OutputConfig struct {
	// DefaultFormat is the default output format
	DefaultFormat string `json:"default_format"`

	// ShowLogs includes pipeline logs in rendered output
	ShowLogs bool `json:"show_logs"`
}

// Default returns a default configuration
func Default() *Config {
	return &Config{
		Version: "1.0",
		Rates: map[string]ProcessRate{
			"cnc_milling": {
				SetupBaseMinutes:     30,
				SetupRatePerMinute:   1.2,
				MachineBaseMinutes:   18,
				MachineRatePerHour:   95,
				RemovalMinutesPerCm3: 0.10,
				MaxSetupBonusMinutes: 25,
			},
			"turning": {
				SetupBaseMinutes:     22,
				SetupRatePerMinute:   1.1,
				MachineBaseMinutes:   12,
				MachineRatePerHour:   80,
				RemovalMinutesPerCm3: 0.07,
				MaxSetupBonusMinutes: 20,
			},
			"sheet": {
				SetupBaseMinutes:     15,
				SetupRatePerMinute:   1.0,
				MachineBaseMinutes:   6,
				MachineRatePerHour:   70,
				RemovalMinutesPerCm3: 0.02,
				MaxSetupBonusMinutes: 15,
			},
			"injection_molding": {
				SetupBaseMinutes:     120,
				SetupRatePerMinute:   1.5,
				MachineBaseMinutes:   0.8,
				MachineRatePerHour:   60,
				RemovalMinutesPerCm3: 0.0,
				MaxSetupBonusMinutes: 60,
			},
		},
		Materials: map[string]MaterialRate{
			"AL6061":  {DensityKgM3: 2700, CostPerKg: 6.5},
			"AL5052":  {DensityKgM3: 2680, CostPerKg: 6.2},
			"SS304":   {DensityKgM3: 8000, CostPerKg: 9.8},
			"SS316":   {DensityKgM3: 8000, CostPerKg: 12.5},
			"TI6AL4V": {DensityKgM3: 4430, CostPerKg: 55},
			"ABS":     {DensityKgM3: 1050, CostPerKg: 3.2},
		},
		Finishes: map[string]float64{
			"anodize":     4.5,
			"bead_blast":  3.0,
			"powder_coat": 6.0,
			"passivate":   2.5,
			"zinc_plate":  3.5,
		},
		Regions: map[string]float64{
			"us":   1.0,
			"eu":   1.12,
			"apac": 0.93,
		},
		Overhead: OverheadConfig{Rate: 0.15},
		Margin: MarginConfig{
			Base:        0.28,
			ExpressBump: 0.05,
			Cap:         0.60,
		},
		Output: OutputConfig{
			DefaultFormat: "cli",
			ShowLogs:      false,
		},
		Logging: logging.DefaultConfig(),
	}
}

// Load loads configuration from a file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, errors.Config("parsing config file", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Save saves configuration to a file
func (c *Config) Save(path string) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate checks the configuration for inconsistencies, aggregating
// every problem found rather than stopping at the first.
func (c *Config) Validate() error {
	var errs error

	for process, rate := range c.Rates {
		if rate.MachineRatePerHour <= 0 {
			errs = multierr.Append(errs, errors.Newf(errors.TypeConfig,
				"process %q: machine_rate_per_hour must be positive", process))
		}
		if rate.SetupRatePerMinute <= 0 {
			errs = multierr.Append(errs, errors.Newf(errors.TypeConfig,
				"process %q: setup_rate_per_minute must be positive", process))
		}
		if rate.RemovalMinutesPerCm3 < 0 {
			errs = multierr.Append(errs, errors.Newf(errors.TypeConfig,
				"process %q: removal_minutes_per_cm3 must not be negative", process))
		}
	}

	for code, mat := range c.Materials {
		if mat.DensityKgM3 <= 0 || mat.CostPerKg <= 0 {
			errs = multierr.Append(errs, errors.Newf(errors.TypeConfig,
				"material %q: density and cost must be positive", code))
		}
	}

	for code, cost := range c.Finishes {
		if cost < 0 {
			errs = multierr.Append(errs, errors.Newf(errors.TypeConfig,
				"finish %q: cost must not be negative", code))
		}
	}

	if c.Overhead.Rate < 0 || c.Overhead.Rate >= 1 {
		errs = multierr.Append(errs, errors.New(errors.TypeConfig,
			"overhead rate must be in [0, 1)"))
	}
	if c.Margin.Base < 0 || c.Margin.Base >= 1 {
		errs = multierr.Append(errs, errors.New(errors.TypeConfig,
			"margin base must be in [0, 1)"))
	}
	if c.Margin.Cap < c.Margin.Base {
		errs = multierr.Append(errs, errors.New(errors.TypeConfig,
			"margin cap must not be below margin base"))
	}

	return errs
}

// ProcessRateFor returns the rate card for a process, falling back to
// the cnc_milling card when the process has no entry.
func (c *Config) ProcessRateFor(process string) ProcessRate {
	if rate, ok := c.Rates[process]; ok {
		return rate
	}
	return c.Rates["cnc_milling"]
}

// RegionMultiplier returns the cost multiplier for a region, 1.0 when
// the region is unknown or empty.
func (c *Config) RegionMultiplier(region string) float64 {
	if m, ok := c.Regions[region]; ok && m > 0 {
		return m
	}
	return 1.0
}

// Global configuration instance
var globalConfig = Default()

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// Set sets the global configuration
func Set(config *Config) {
	globalConfig = config
}
