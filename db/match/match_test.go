package match

import (
	"testing"

	"timestore/db/repr"
)

func TestRelations(t *testing.T) {
	entity := map[string][]string{
		"container": {"c_1", "c_2", "c_3"},
		"flow":      {"f_1"},
	}
	if !Relations(entity, map[string][]string{"container": {"c_1", "c_3"}}) {
		t.Fatal("Subset should match")
	}
	if !Relations(entity, map[string][]string{"container": {"c_2"}, "flow": {"f_1"}}) {
		t.Fatal("Multi-type subset should match")
	}
	if Relations(entity, map[string][]string{"container": {"c_4"}}) {
		t.Fatal("Missing id should not match")
	}
	if Relations(entity, map[string][]string{"queue": {"q_1"}}) {
		t.Fatal("Missing relation type should not match")
	}
	if Relations(nil, map[string][]string{"container": {"c_1"}}) {
		t.Fatal("Nil relations should not match a nonempty filter")
	}
}

func TestInfoFilters(t *testing.T) {
	info := map[string]any{
		"infoMapKey1": "infoMapValue1",
		"infoMapKey2": float64(10),
		"isRunning":   true,
	}
	if !InfoFilters(info, map[string]any{"infoMapKey1": "infoMapValue1"}) {
		t.Fatal("String value should match")
	}
	if !InfoFilters(info, map[string]any{"infoMapKey2": 10}) {
		t.Fatal("Numeric value should match across int/float64")
	}
	if !InfoFilters(info, map[string]any{"isRunning": true}) {
		t.Fatal("Bool value should match")
	}
	if InfoFilters(info, map[string]any{"infoMapKey2": "10"}) {
		t.Fatal("String should not match a number")
	}
	if InfoFilters(info, map[string]any{"infoMapKey3": "x"}) {
		t.Fatal("Missing key should not match")
	}
}

func TestConfigFilters(t *testing.T) {
	configs := map[string]string{"config_1": "123", "config_2": "abc"}
	if !ConfigFilters(configs, map[string]string{"config_1": "123"}) {
		t.Fatal("Exact value should match")
	}
	if ConfigFilters(configs, map[string]string{"config_1": "124"}) {
		t.Fatal("Different value should not match")
	}
	if ConfigFilters(configs, map[string]string{"config_3": "abc"}) {
		t.Fatal("Missing key should not match")
	}
}

func TestMetricAndEventFilters(t *testing.T) {
	metrics := []*repr.Metric{
		{ID: "metric1", Values: map[int64]float64{1425016502006: 113}},
		{ID: "metric2", Values: map[int64]float64{1425016502016: 34}},
	}
	if !MetricFilters(metrics, []string{"metric1", "metric2"}) {
		t.Fatal("Present metric ids should match")
	}
	if MetricFilters(metrics, []string{"metric3"}) {
		t.Fatal("Absent metric id should not match")
	}

	events := []*repr.Event{
		{ID: "event_2", Timestamp: 1425016501999},
		{ID: "event_4", Timestamp: 1425016502006},
	}
	if !EventFilters(events, []string{"event_2"}) {
		t.Fatal("Present event id should match")
	}
	if EventFilters(events, []string{"event_1"}) {
		t.Fatal("Absent event id should not match")
	}
}
