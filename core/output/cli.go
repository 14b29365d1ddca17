package output

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"cnc-quote/core/types"
)

// CLIFormatter renders an aligned cost table
type CLIFormatter struct {
	Options Options
}

// Format returns the format type
func (f *CLIFormatter) Format() Format {
	return FormatCLI
}

// Render writes the itemized cost table, totals and raised flags
func (f *CLIFormatter) Render(w io.Writer, result *types.PricingResult) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintln(tw, "KEY\tITEM\tAMOUNT")
	for _, line := range result.Breakdown {
		fmt.Fprintf(tw, "%s\t%s\t$%s\n", line.Key, line.Label, line.Amount.StringFixed(2))
	}
	fmt.Fprintln(tw, "\t\t")
	fmt.Fprintf(tw, "\tSubtotal\t$%s\n", result.SubtotalCost.StringFixed(2))
	fmt.Fprintf(tw, "\tPrice\t$%s\n", result.Price.StringFixed(2))
	fmt.Fprintf(tw, "\tProduction time\t%.2f min\n", result.TimeMinutes)
	if err := tw.Flush(); err != nil {
		return err
	}

	raised := make([]string, 0, len(result.Flags))
	for name, value := range result.Flags {
		if value {
			raised = append(raised, name)
		}
	}
	if len(raised) > 0 {
		sort.Strings(raised)
		fmt.Fprintln(w)
		for _, name := range raised {
			fmt.Fprintf(w, "FLAG %s\n", name)
		}
	}

	if f.Options.ShowLogs && len(result.Logs) > 0 {
		fmt.Fprintln(w)
		for _, entry := range result.Logs {
			fmt.Fprintf(w, "LOG %s\n", entry)
		}
	}

	return nil
}
