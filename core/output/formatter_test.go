package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"cnc-quote/core/types"
)

func sampleResult() *types.PricingResult {
	return &types.PricingResult{
		Price:        decimal.NewFromFloat(128.50),
		SubtotalCost: decimal.NewFromFloat(100.39),
		TimeMinutes:  73.5,
		Breakdown: []*types.BreakdownLine{
			{Key: "setup_time", Label: "Setup", Amount: decimal.NewFromFloat(12.30)},
			{Key: "machine_time", Label: "Machining", Amount: decimal.NewFromFloat(88.09)},
		},
		Flags: map[string]bool{
			"tolerance.review_required": true,
			"leadtime.express":          false,
		},
		Logs: []string{"[cost] machine_time 45.00 min"},
	}
}

func TestForFormatSelection(t *testing.T) {
	if _, ok := ForFormat("json", Options{}).(*JSONFormatter); !ok {
		t.Error("json did not select the JSON formatter")
	}
	if _, ok := ForFormat("cli", Options{}).(*CLIFormatter); !ok {
		t.Error("cli did not select the CLI formatter")
	}
	if _, ok := ForFormat("", Options{}).(*CLIFormatter); !ok {
		t.Error("empty format did not default to CLI")
	}
}

func TestCLIRender(t *testing.T) {
	var buf bytes.Buffer
	formatter := &CLIFormatter{Options: Options{ShowLogs: true}}
	if err := formatter.Render(&buf, sampleResult()); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	for _, want := range []string{
		"KEY", "setup_time", "$12.30", "machine_time", "$88.09",
		"Subtotal", "$100.39", "Price", "$128.50", "73.50 min",
		"FLAG tolerance.review_required",
		"LOG [cost] machine_time 45.00 min",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "leadtime.express") {
		t.Error("unraised flag rendered")
	}
}

func TestCLIRenderHidesLogsByDefault(t *testing.T) {
	var buf bytes.Buffer
	if err := (&CLIFormatter{}).Render(&buf, sampleResult()); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "LOG ") {
		t.Error("logs rendered without ShowLogs")
	}
}

func TestJSONRender(t *testing.T) {
	var buf bytes.Buffer
	if err := (&JSONFormatter{}).Render(&buf, sampleResult()); err != nil {
		t.Fatal(err)
	}

	var decoded types.PricingResult
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if !decoded.Price.Equal(decimal.NewFromFloat(128.50)) {
		t.Errorf("decoded price = %s, want 128.5", decoded.Price)
	}
	if len(decoded.Breakdown) != 2 {
		t.Errorf("decoded breakdown has %d lines, want 2", len(decoded.Breakdown))
	}
}
