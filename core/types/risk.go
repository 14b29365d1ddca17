// Package types - Risk descriptor types
package types

import "strings"

// RiskSeverity is the DFM risk classification for a part
type RiskSeverity string

const (
	RiskLow      RiskSeverity = "LOW"
	RiskMedium   RiskSeverity = "MEDIUM"
	RiskHigh     RiskSeverity = "HIGH"
	RiskCritical RiskSeverity = "CRITICAL"
)

// severityMarkup maps severity onto the static markup fraction used when
// no explicit markup multiplier was supplied.
var severityMarkup = map[RiskSeverity]float64{
	RiskLow:      0,
	RiskMedium:   0.05,
	RiskHigh:     0.10,
	RiskCritical: 0.18,
}

// MarkupFraction returns the static markup fraction for the severity.
// Unknown severities are neutral.
func (s RiskSeverity) MarkupFraction() float64 {
	return severityMarkup[RiskSeverity(strings.ToUpper(string(s)))]
}

// RiskContribution is one weighted risk-dimension term, used only to
// apportion the markup amount for audit display.
type RiskContribution struct {
	// Dimension names the risk dimension (e.g. "thin_walls")
	Dimension string `json:"dimension"`

	// Weight is the configured dimension weight
	Weight float64 `json:"weight"`

	// Value is the observed dimension score in [0, 1]
	Value float64 `json:"value"`

	// ScoreComponent is the contribution's scoring term
	ScoreComponent float64 `json:"score_component"`
}

// RiskDescriptor is the risk-scoring service output carried in the
// features map under "risk".
type RiskDescriptor struct {
	// Severity is the overall classification
	Severity RiskSeverity `json:"severity"`

	// Score is the aggregate risk score
	Score float64 `json:"score"`

	// Markup is an explicit markup multiplier (>= 1); 0 means unset
	Markup float64 `json:"markup,omitempty"`

	// Contributions are the per-dimension scoring terms
	Contributions []RiskContribution `json:"contributions,omitempty"`
}

// RiskFromFeatures extracts the risk descriptor from a feature snapshot.
// Malformed or missing structures yield nil; individual bad fields are
// treated as absent rather than failing the run.
func RiskFromFeatures(features map[string]any) *RiskDescriptor {
	if features == nil {
		return nil
	}
	switch v := features["risk"].(type) {
	case *RiskDescriptor:
		return v
	case RiskDescriptor:
		return &v
	case map[string]any:
		return riskFromMap(v)
	default:
		return nil
	}
}

func riskFromMap(m map[string]any) *RiskDescriptor {
	severity, ok := m["severity"].(string)
	if !ok || severity == "" {
		return nil
	}

	d := &RiskDescriptor{
		Severity: RiskSeverity(strings.ToUpper(severity)),
		Score:    numberOr(m["score"], 0),
		Markup:   numberOr(m["markup"], 0),
	}

	raw, ok := m["contributions"].([]any)
	if !ok {
		return d
	}
	for _, item := range raw {
		cm, ok := item.(map[string]any)
		if !ok {
			continue
		}
		dim, ok := cm["dimension"].(string)
		if !ok || dim == "" {
			continue
		}
		d.Contributions = append(d.Contributions, RiskContribution{
			Dimension:      dim,
			Weight:         numberOr(cm["weight"], 0),
			Value:          numberOr(cm["value"], 0),
			ScoreComponent: numberOr(cm["score_component"], numberOr(cm["scoreComponent"], 0)),
		})
	}
	return d
}

func numberOr(v any, fallback float64) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return fallback
	}
}
