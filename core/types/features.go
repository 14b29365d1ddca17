// Package types - Feature snapshot accessors
//
// The features map is shaped by upstream geometry extraction and arrives
// either as typed Go values or as generic JSON-decoded structures. These
// accessors tolerate both and treat anything malformed as absent.
package types

// FeatureCount reads a feature counter such as {"holes": {"count": 6}}.
// A bare number under the key is accepted as well.
func FeatureCount(features map[string]any, key string) int {
	if features == nil {
		return 0
	}
	switch v := features[key].(type) {
	case map[string]any:
		n := numberOr(v["count"], 0)
		if n < 0 {
			return 0
		}
		return int(n)
	case float64:
		if v < 0 {
			return 0
		}
		return int(v)
	case int:
		if v < 0 {
			return 0
		}
		return v
	default:
		return 0
	}
}

// FeatureNumber reads a numeric feature such as "volume_mm3"
func FeatureNumber(features map[string]any, key string) (float64, bool) {
	if features == nil {
		return 0, false
	}
	switch v := features[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

// FeatureString reads a string feature such as "quote_line_id"
func FeatureString(features map[string]any, key string) (string, bool) {
	if features == nil {
		return "", false
	}
	s, ok := features[key].(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// FeatureMap reads a nested feature object such as "geometry"
func FeatureMap(features map[string]any, key string) map[string]any {
	if features == nil {
		return nil
	}
	m, _ := features[key].(map[string]any)
	return m
}
