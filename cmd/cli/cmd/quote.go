// Package cmd - quote command
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"cnc-quote/core/catalog"
	"cnc-quote/core/engine"
	"cnc-quote/core/factors"
	"cnc-quote/core/output"
	"cnc-quote/core/types"
	"cnc-quote/internal/config"
	"cnc-quote/internal/logging"
)

var (
	outputFormat string
	express      bool
	showLogs     bool
)

// quoteCmd represents the quote command
var quoteCmd = &cobra.Command{
	Use:   "quote [input.json]",
	Short: "Price a part configuration",
	Long: `Run the pricing pipeline against a part configuration and print the
itemized breakdown.

The input file is a JSON document matching the pricing input schema
(process, material_code, quantity, features, tolerance artifacts).
When tolerance entries are present without a precomputed summary, the
tolerance cost book derives matches and a summary first.

Examples:
  cnc-quote quote part.json
  cnc-quote quote --format json part.json
  cnc-quote quote --express --show-logs part.json`,
	Args: cobra.ExactArgs(1),
	RunE: runQuote,
}

func init() {
	quoteCmd.Flags().StringVarP(&outputFormat, "format", "f", "", "output format (cli, json)")
	quoteCmd.Flags().BoolVar(&express, "express", false, "price with the express lead time bump")
	quoteCmd.Flags().BoolVar(&showLogs, "show-logs", false, "print pipeline diagnostic logs")
}

func runQuote(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cfg := config.Get()

	input, err := readInput(args[0])
	if err != nil {
		return err
	}
	input.Process = types.NormalizeProcess(string(input.Process))

	resolveTolerances(input)

	orchestrator, err := factors.DefaultOrchestrator(cfg)
	if err != nil {
		return fmt.Errorf("building pipeline: %w", err)
	}

	quoteID := uuid.NewString()
	logging.ForQuote(quoteID, input.PartID).Info("pricing part",
		zap.String("process", input.Process.String()))

	var opts []engine.RunOption
	if express {
		opts = append(opts, engine.WithFlag("leadtime.express", true))
	}

	result, err := orchestrator.Run(ctx, *input, opts...)
	if err != nil {
		return fmt.Errorf("pricing failed: %w", err)
	}

	format := outputFormat
	if format == "" {
		format = cfg.Output.DefaultFormat
	}
	formatter := output.ForFormat(format, output.Options{
		ShowLogs: showLogs || cfg.Output.ShowLogs || verbose,
	})
	return formatter.Render(os.Stdout, &result)
}

func readInput(path string) (*types.PricingInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	var input types.PricingInput
	if err := json.Unmarshal(data, &input); err != nil {
		return nil, fmt.Errorf("parsing input: %w", err)
	}
	return &input, nil
}

// resolveTolerances derives matches and a summary from the tolerance
// cost book when the input carries raw entries but no precomputed
// summary. A --ratebook file with tolerance rows overrides the
// built-in book.
func resolveTolerances(input *types.PricingInput) {
	if input.ToleranceSummary != nil || len(input.ToleranceEntries) == 0 {
		return
	}

	book := catalog.DefaultBook()
	if loadedRateBook != nil {
		if custom := loadedRateBook.Book(); custom != nil {
			book = custom
		}
	}

	if len(input.ToleranceMatches) == 0 {
		input.ToleranceMatches, input.ToleranceCatalogVersion = book.BuildMatches(input.Process, input.ToleranceEntries)
	}
	input.ToleranceSummary = catalog.Summarize(input.ToleranceProfile, input.ToleranceEntries, input.ToleranceMatches)
}
