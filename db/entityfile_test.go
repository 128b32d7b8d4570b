package db

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"timestore/db/errs"
	"timestore/db/parse"
)

func TestReadEntityRecords(t *testing.T) {
	// Two records for the same entity plus a blank line; the final record is unterminated.
	input := `{"type":"app","id":"app_1","createdtime":1425016501000,"info":{"state":"RUNNING"},"configs":{"config_1":"123"},"relatesto":{"container":["c_1"]},"events":[{"id":"start","timestamp":1425016501000}],"metrics":[{"id":"cpu","values":{"1425016501000":50}}]}

{"type":"app","id":"app_1","info":{"state":"FINISHED","exit":0},"configs":{"config_1":"124","config_2":"abc"},"relatesto":{"container":["c_1","c_2"]},"events":[{"id":"stop","timestamp":1425016502000}],"metrics":[{"id":"cpu","values":{"1425016502000":10}},{"id":"mem","values":{"1425016502000":512}}]}`
	entity, err := readEntityRecords(strings.NewReader(input), parse.NewEntityCodec())
	if err != nil {
		t.Fatalf("readEntityRecords failed: %q", err)
	}
	if entity.Type != "app" || entity.ID != "app_1" {
		t.Fatalf("Wrong identity: %+v", entity.Identifier)
	}
	if entity.CreatedTime != 1425016501000 {
		t.Fatalf("Zero createdtime in later record must not clobber: %d", entity.CreatedTime)
	}
	if entity.Info["state"] != "FINISHED" || entity.Info["exit"] != float64(0) {
		t.Fatalf("Later info values must win: %v", entity.Info)
	}
	if entity.Configs["config_1"] != "124" || entity.Configs["config_2"] != "abc" {
		t.Fatalf("Configs must be upserted: %v", entity.Configs)
	}
	if !reflect.DeepEqual(entity.RelatesTo["container"], []string{"c_1", "c_2"}) {
		t.Fatalf("Relation ids must be a set union: %v", entity.RelatesTo)
	}
	if len(entity.Events) != 2 {
		t.Fatalf("Events must accumulate: %v", entity.Events)
	}
	if len(entity.Metrics) != 2 {
		t.Fatalf("Metrics must be unioned by id: %v", entity.Metrics)
	}
	for _, m := range entity.Metrics {
		if m.ID == "cpu" {
			if !reflect.DeepEqual(m.Values, map[int64]float64{1425016501000: 50, 1425016502000: 10}) {
				t.Fatalf("Metric values must merge per timestamp: %v", m.Values)
			}
		}
	}
}

func TestReadEntityRecordsIdempotentFold(t *testing.T) {
	record := `{"type":"app","id":"app_1","createdtime":1425016501000,"configs":{"a":"1"},"info":{"k":true},"relatesto":{"container":["c_1"]},"events":[{"id":"e","timestamp":1}],"metrics":[{"id":"cpu","values":{"1":2}}]}`
	once, err := readEntityRecords(strings.NewReader(record), parse.NewEntityCodec())
	if err != nil {
		t.Fatalf("readEntityRecords failed: %q", err)
	}
	twice, err := readEntityRecords(strings.NewReader(record+"\n"+record), parse.NewEntityCodec())
	if err != nil {
		t.Fatalf("readEntityRecords failed: %q", err)
	}
	// Events are the exception: they accumulate, they are never deduplicated.
	if len(twice.Events) != 2 {
		t.Fatalf("Events must accumulate even for identical records: %v", twice.Events)
	}
	twice.Events = once.Events
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("Folding a record into itself must change nothing else: %+v vs %+v", once, twice)
	}
}

func TestReadEntityRecordsLaterCreatedTimeWins(t *testing.T) {
	input := `{"type":"app","id":"app_1","createdtime":1425016501000}
{"type":"app","id":"app_1","createdtime":1425016502000}`
	entity, err := readEntityRecords(strings.NewReader(input), parse.NewEntityCodec())
	if err != nil {
		t.Fatalf("readEntityRecords failed: %q", err)
	}
	if entity.CreatedTime != 1425016502000 {
		t.Fatalf("Nonzero later createdtime must win: %d", entity.CreatedTime)
	}
}

func TestReadEntityRecordsForeignIdentity(t *testing.T) {
	input := `{"type":"app","id":"app_1","configs":{"a":"1"}}
{"type":"app","id":"app_2","configs":{"b":"2"}}`
	entity, err := readEntityRecords(strings.NewReader(input), parse.NewEntityCodec())
	if err != nil {
		t.Fatalf("readEntityRecords failed: %q", err)
	}
	if _, found := entity.Configs["b"]; found {
		t.Fatal("Record with a foreign identity must be skipped")
	}
}

func TestReadEntityRecordsEmptyFile(t *testing.T) {
	_, err := readEntityRecords(strings.NewReader(""), parse.NewEntityCodec())
	if !errors.Is(err, errs.ErrBadRecord) {
		t.Fatalf("Empty file should be a bad record: %q", err)
	}
}

func TestReadEntityRecordsCorruptRecord(t *testing.T) {
	input := `{"type":"app","id":"app_1"}
{"type":"app","id":`
	_, err := readEntityRecords(strings.NewReader(input), parse.NewEntityCodec())
	if !errors.Is(err, errs.ErrBadRecord) {
		t.Fatalf("Corrupt record should abort reconstruction: %q", err)
	}
}
