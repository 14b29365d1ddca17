// Package main is the entry point for the cnc-quote CLI.
package main

import (
	"os"

	"cnc-quote/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
