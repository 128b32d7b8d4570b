// Predicate primitives for the query engine's filter pipeline.
//
// Each function evaluates one filter component against the corresponding field group of a
// reconstructed entity.  The engine only sequences these calls; an empty filter component is never
// passed down here (the engine treats it as always-pass).

package match

import (
	"reflect"
	"slices"

	"timestore/db/repr"
)

// Relations matches when, for every relation type in the filter, every filter id is present in the
// entity's id set for that type.
func Relations(entityRelations map[string][]string, filter map[string][]string) bool {
	for relationType, ids := range filter {
		have, found := entityRelations[relationType]
		if !found {
			return false
		}
		for _, id := range ids {
			if !slices.Contains(have, id) {
				return false
			}
		}
	}
	return true
}

// InfoFilters matches when every filter key exists in the info map with an equal value.  Values
// come out of JSON decoding, so compound values compare structurally.
func InfoFilters(info map[string]any, filter map[string]any) bool {
	for k, want := range filter {
		got, found := info[k]
		if !found {
			return false
		}
		if !looseEqual(got, want) {
			return false
		}
	}
	return true
}

// ConfigFilters matches when every filter key exists in the config map with the exact value.
func ConfigFilters(configs map[string]string, filter map[string]string) bool {
	for k, want := range filter {
		got, found := configs[k]
		if !found || got != want {
			return false
		}
	}
	return true
}

// MetricFilters matches when every filter id names a metric present on the entity.
func MetricFilters(metrics []*repr.Metric, filter []string) bool {
	for _, id := range filter {
		if !slices.ContainsFunc(metrics, func(m *repr.Metric) bool { return m.ID == id }) {
			return false
		}
	}
	return true
}

// EventFilters matches when every filter id names an event present on the entity.
func EventFilters(events []*repr.Event, filter []string) bool {
	for _, id := range filter {
		if !slices.ContainsFunc(events, func(e *repr.Event) bool { return e.ID == id }) {
			return false
		}
	}
	return true
}

// Info values decoded from JSON are float64/string/bool/[]any/map[string]any, while filter values
// supplied programmatically (or parsed from the CLI) may be int or int64.  Compare numbers by
// value and everything else structurally.
func looseEqual(a, b any) bool {
	if reflect.DeepEqual(a, b) {
		return true
	}
	an, aok := asFloat(a)
	bn, bok := asFloat(b)
	return aok && bok && an == bn
}

func asFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint64:
		return float64(x), true
	}
	return 0, false
}
