// Kafka ingest.  The topic <cluster>.entity carries entity envelopes:
//
//	{"user":..., "flow":..., "flowrun":..., "app":..., "mapping":bool, "entity":{...}}
//
// Each good envelope is appended to the file-backed store under its flow path; with "mapping"
// set, the cluster's flow-mapping index also gets a row.  Malformed envelopes are soft errors,
// logged and dropped, so one bad producer cannot stall the partition.

package daemon

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/twmb/franz-go/pkg/kgo"

	. "timestore/common"
	"timestore/db"
	"timestore/db/repr"
)

type entityEnvelope struct {
	User    string       `json:"user"`
	Flow    string       `json:"flow"`
	FlowRun string       `json:"flowrun"`
	App     string       `json:"app"`
	Mapping bool         `json:"mapping,omitempty"`
	Entity  *repr.Entity `json:"entity"`
}

// This runs on a goroutine - one goroutine per cluster.

func runKafka(ctx context.Context, kafkaBroker, cluster string, writer *db.TimelineWriter, verbose bool) {
	topic := cluster + ".entity"
	cl, err := kgo.NewClient(
		kgo.SeedBrokers(kafkaBroker),
		kgo.ConsumerGroup("timestore-ingest"),
		kgo.ConsumeTopics(topic),
	)
	if err != nil {
		// This should be surfaced somehow, but probably we should just back off and retry
		// later, the broker could be down - depends on the error!
		Log.Errorf("%s: Failed to create client: %v", cluster, err)
		return
	}
	defer cl.Close()
	if verbose {
		Log.Infof("%s: Connected!", cluster)
	}

	for {
		fetches := cl.PollFetches(ctx)
		if ctx.Err() != nil {
			return
		}
		if errs := fetches.Errors(); len(errs) > 0 {
			// All errors are retried internally when fetching, but non-retriable errors are
			// returned from polls so that users can notice and take action.
			Log.Errorf("%s: SOFT ERROR: Failed to fetch data! %v", cluster, errs)
		}

		iter := fetches.RecordIter()
		for !iter.Done() {
			record := iter.Next()
			if err := handleEnvelope(writer, cluster, record.Value, verbose); err != nil {
				Log.Errorf("%s: SOFT ERROR: Record dropped: %v", cluster, err)
			}
		}
		if err := cl.CommitUncommittedOffsets(ctx); err != nil {
			Log.Errorf("%s: SOFT ERROR: Commit records failed: %v", cluster, err)
		}
	}
}

func handleEnvelope(writer *db.TimelineWriter, cluster string, data []byte, verbose bool) error {
	envelope := new(entityEnvelope)
	if err := json.Unmarshal(data, envelope); err != nil {
		return err
	}
	if envelope.Entity == nil {
		return fmt.Errorf("Envelope without entity")
	}
	if envelope.User == "" || envelope.Flow == "" || envelope.FlowRun == "" || envelope.App == "" {
		return fmt.Errorf("Envelope without complete flow routing keys")
	}
	cx := &db.WriterContext{
		ClusterID: cluster,
		UserID:    envelope.User,
		FlowName:  envelope.Flow,
		FlowRunID: envelope.FlowRun,
		AppID:     envelope.App,
	}
	if envelope.Mapping {
		if err := writer.WriteFlowMapping(cx); err != nil {
			return err
		}
	}
	if verbose {
		Log.Infof("%s: Got a good entity {id:%s, type:%s}", cluster, envelope.Entity.ID, envelope.Entity.Type)
	}
	return writer.WriteEntity(cx, envelope.Entity)
}
