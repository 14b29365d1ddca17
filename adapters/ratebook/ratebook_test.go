package ratebook

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cnc-quote/core/types"
	"cnc-quote/internal/config"
)

const sampleBook = `
version = 7

process "cnc_milling" {
  machine_rate_per_hour = 120
}

material "CU101" {
  density_kg_m3 = 8960
  cost_per_kg   = 11.5
}

finish "brush" {
  cost_per_part = 2.75
}

region "latam" {
  multiplier = 0.88
}

overhead {
  rate = 0.18
}

margin {
  base = 0.3
  cap  = 0.55
}

tolerance_row "fine_bore" {
  id           = 901
  process      = "cnc_milling"
  feature_type = "hole"
  applies_to   = "diameter"
  unit         = "mm"
  tol_from     = 0
  tol_to       = 0.02
  multiplier   = 1.4
  affects      = ["machine_time", "risk"]
}
`

func writeBook(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rates.hcl")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadAndApply(t *testing.T) {
	book, err := Load(writeBook(t, sampleBook))
	if err != nil {
		t.Fatal(err)
	}
	if book.Version != 7 {
		t.Errorf("version = %d, want 7", book.Version)
	}

	cfg := config.Default()
	book.Apply(cfg)

	rate := cfg.Rates["cnc_milling"]
	if rate.MachineRatePerHour != 120 {
		t.Errorf("machine rate = %v, want 120", rate.MachineRatePerHour)
	}
	if rate.SetupBaseMinutes != 30 {
		t.Errorf("setup base = %v, want untouched default 30", rate.SetupBaseMinutes)
	}
	if mat := cfg.Materials["CU101"]; mat.CostPerKg != 11.5 {
		t.Errorf("CU101 cost = %v, want 11.5", mat.CostPerKg)
	}
	if cfg.Finishes["brush"] != 2.75 {
		t.Errorf("brush finish = %v, want 2.75", cfg.Finishes["brush"])
	}
	if cfg.Regions["latam"] != 0.88 {
		t.Errorf("latam multiplier = %v, want 0.88", cfg.Regions["latam"])
	}
	if cfg.Overhead.Rate != 0.18 {
		t.Errorf("overhead rate = %v, want 0.18", cfg.Overhead.Rate)
	}
	if cfg.Margin.Base != 0.3 || cfg.Margin.Cap != 0.55 {
		t.Errorf("margin = %+v, want base 0.3 cap 0.55", cfg.Margin)
	}
	if cfg.Margin.ExpressBump != 0.05 {
		t.Errorf("express bump = %v, want untouched default 0.05", cfg.Margin.ExpressBump)
	}
}

func TestBookRows(t *testing.T) {
	book, err := Load(writeBook(t, sampleBook))
	if err != nil {
		t.Fatal(err)
	}

	costBook := book.Book()
	if costBook == nil {
		t.Fatal("cost book nil despite tolerance_row block")
	}
	if costBook.Version() != 7 {
		t.Errorf("cost book version = %d, want 7", costBook.Version())
	}

	entry := types.ToleranceEntry{
		Key:         "bore",
		FeatureType: "hole",
		AppliesTo:   "diameter",
		Unit:        "mm",
		Value:       0.01,
	}
	matches := costBook.FindMatches(types.ProcessCNCMilling, entry)
	if len(matches) != 1 || matches[0].RowID != 901 {
		t.Fatalf("matches = %v, want custom row 901", matches)
	}
	if !matches[0].AffectsTarget(types.TargetRisk) {
		t.Error("custom row lost its risk target")
	}
}

func TestBookNilWithoutRows(t *testing.T) {
	book, err := Load(writeBook(t, "version = 1\n"))
	if err != nil {
		t.Fatal(err)
	}
	if book.Book() != nil {
		t.Error("cost book built from a file without tolerance rows")
	}
}

func TestLoadRejectsBadSyntax(t *testing.T) {
	if _, err := Load(writeBook(t, "process {{{\n")); err == nil {
		t.Fatal("malformed HCL accepted")
	}
}

// Validation reports every problem in one pass
func TestValidateAggregates(t *testing.T) {
	bad := `
material "X" {
  density_kg_m3 = -1
  cost_per_kg   = 0
}

region "void" {
  multiplier = 0
}

tolerance_row "bogus" {
  id           = 1
  process      = "cnc_milling"
  feature_type = "hole"
  applies_to   = "diameter"
  unit         = "mm"
  tol_from     = 0.5
  tol_to       = 0.1
  multiplier   = 0.9
  affects      = ["paint_booth"]
}
`
	_, err := Load(writeBook(t, bad))
	if err == nil {
		t.Fatal("invalid rate book accepted")
	}
	if !strings.Contains(err.Error(), "5 problem(s)") {
		t.Errorf("error = %v, want 5 aggregated problems", err)
	}
}
