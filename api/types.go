package api

import (
	"cnc-quote/core/types"
	"cnc-quote/internal/errors"
)

// QuoteRequest is the POST /v1/quote payload
type QuoteRequest struct {
	// Input is the part configuration to price
	Input types.PricingInput `json:"input"`

	// Flags seeds caller-derived pipeline flags (e.g. "leadtime.express")
	Flags map[string]bool `json:"flags,omitempty"`

	// LeadTimeClass is a convenience alias: "express" or "rush" raise
	// the leadtime.express flag
	LeadTimeClass string `json:"lead_time_class,omitempty"`
}

// QuoteResponse wraps a pricing result with request metadata
type QuoteResponse struct {
	Result   types.PricingResult `json:"result"`
	Metadata ResponseMetadata    `json:"metadata"`
}

// ResponseMetadata records execution context
type ResponseMetadata struct {
	// RequestID is the server-assigned request identifier
	RequestID string `json:"request_id"`

	// EngineVersion is the pricing engine version
	EngineVersion string `json:"engine_version"`

	// DurationMs is the pipeline execution time
	DurationMs int64 `json:"duration_ms"`
}

// validateQuoteRequest rejects requests the pipeline cannot price
func validateQuoteRequest(req *QuoteRequest) error {
	if req.Input.PartID == "" {
		return errors.Input("input.part_id is required")
	}
	if req.Input.Process == "" {
		return errors.Input("input.process is required")
	}
	return nil
}
