// Package cmd provides the CLI commands for cnc-quote.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"cnc-quote/adapters/ratebook"
	"cnc-quote/internal/config"
	"cnc-quote/internal/logging"
)

var (
	cfgFile      string
	rateBookFile string
	verbose      bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "cnc-quote",
	Short: "Quote manufacturing cost for machined and molded parts",
	Long: `cnc-quote prices CNC, sheet-metal and injection-molded parts through
a deterministic pricing factor pipeline and prints an itemized
cost/price breakdown.

Examples:
  cnc-quote quote part.json
  cnc-quote quote --format json --express part.json
  cnc-quote rates --ratebook shop.hcl`,
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.cnc-quote.json)")
	rootCmd.PersistentFlags().StringVar(&rateBookFile, "ratebook", "", "HCL rate book overlaid onto the configuration")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	// Add subcommands
	rootCmd.AddCommand(quoteCmd)
	rootCmd.AddCommand(ratesCmd)
	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	if cfgFile != "" {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
		config.Set(cfg)
	}

	if rateBookFile != "" {
		book, err := ratebook.Load(rateBookFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading rate book: %v\n", err)
			os.Exit(1)
		}
		book.Apply(config.Get())
		loadedRateBook = book
	}

	// Initialize logging
	cfg := config.Get()
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
	}
}

// loadedRateBook is the decoded --ratebook file, when one was given
var loadedRateBook *ratebook.File

// versionCmd prints version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("cnc-quote version 0.1.0")
	},
}
