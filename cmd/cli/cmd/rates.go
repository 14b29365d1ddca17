// Package cmd - rates command
package cmd

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"cnc-quote/internal/config"
)

// ratesCmd prints the effective rate tables after any rate book overlay
var ratesCmd = &cobra.Command{
	Use:   "rates",
	Short: "Show the effective rate tables",
	Long: `Print the process rate cards, material table and finish table the
pricing pipeline will use, after applying any --ratebook overlay.`,
	RunE: runRates,
}

func runRates(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)

	fmt.Fprintln(tw, "PROCESS\tSETUP MIN\tSETUP $/MIN\tMACHINE MIN\tMACHINE $/HR\tMIN/CM3")
	for _, name := range sortedKeys(cfg.Rates) {
		r := cfg.Rates[name]
		fmt.Fprintf(tw, "%s\t%.1f\t%.2f\t%.1f\t%.2f\t%.3f\n",
			name, r.SetupBaseMinutes, r.SetupRatePerMinute,
			r.MachineBaseMinutes, r.MachineRatePerHour, r.RemovalMinutesPerCm3)
	}

	fmt.Fprintln(tw, "\t\t\t\t\t")
	fmt.Fprintln(tw, "MATERIAL\tDENSITY KG/M3\t$/KG\t\t\t")
	for _, code := range sortedKeys(cfg.Materials) {
		m := cfg.Materials[code]
		fmt.Fprintf(tw, "%s\t%.0f\t%.2f\t\t\t\n", code, m.DensityKgM3, m.CostPerKg)
	}

	fmt.Fprintln(tw, "\t\t\t\t\t")
	fmt.Fprintln(tw, "FINISH\t$/PART\t\t\t\t")
	for _, code := range sortedKeys(cfg.Finishes) {
		fmt.Fprintf(tw, "%s\t%.2f\t\t\t\t\n", code, cfg.Finishes[code])
	}

	return tw.Flush()
}

func sortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
