// Data representation of timeline entities, the unit of storage and query.

package repr

// An entity is identified by its (Type, ID) pair; a single logical entity may be represented on
// disk by many appended records that all carry the same Identifier and are folded into one Entity
// at read time.

type Identifier struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// The optional field groups are all nil when absent, both in memory and on the wire.  After
// reconstruction the Entity is treated as read-only; projection copies groups by reference and the
// copies alias the source.

type Entity struct {
	Identifier
	CreatedTime int64               `json:"createdtime,omitempty"`
	Configs     map[string]string   `json:"configs,omitempty"`
	Info        map[string]any      `json:"info,omitempty"`
	Metrics     []*Metric           `json:"metrics,omitempty"`
	Events      []*Event            `json:"events,omitempty"`
	RelatesTo   map[string][]string `json:"relatesto,omitempty"`
	IsRelatedTo map[string][]string `json:"isrelatedto,omitempty"`
}

// A Metric is a named time series.  Two metric records with the same ID denote the same series;
// their value maps are unioned during reconstruction.  Keys are epoch millis.

type Metric struct {
	ID     string            `json:"id"`
	Values map[int64]float64 `json:"values,omitempty"`
}

// An Event is an immutable point record.  Events accumulate in file order and are never
// deduplicated.

type Event struct {
	ID        string         `json:"id"`
	Timestamp int64          `json:"timestamp,omitempty"`
	Info      map[string]any `json:"info,omitempty"`
}
