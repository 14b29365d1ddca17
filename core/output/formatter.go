// Package output provides result formatting.
// This package produces human and machine-readable renderings of a
// pricing result.
package output

import (
	"io"

	"cnc-quote/core/types"
)

// Format represents output format type
type Format string

const (
	// FormatCLI is a human-readable CLI table
	FormatCLI Format = "cli"

	// FormatJSON is machine-readable JSON
	FormatJSON Format = "json"
)

// Formatter produces output in a specific format
type Formatter interface {
	// Format returns the format type
	Format() Format

	// Render produces output for the given result
	Render(w io.Writer, result *types.PricingResult) error
}

// Options adjusts rendering
type Options struct {
	// ShowLogs includes the pipeline diagnostic log
	ShowLogs bool

	// ShowMeta includes per-line meta detail (JSON always includes it)
	ShowMeta bool
}

// ForFormat returns the formatter for a format name, defaulting to the
// CLI table for unknown formats.
func ForFormat(format string, opts Options) Formatter {
	switch Format(format) {
	case FormatJSON:
		return &JSONFormatter{}
	default:
		return &CLIFormatter{Options: opts}
	}
}
