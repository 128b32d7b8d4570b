// `timestore daemon` - HTTP server exposing the read path, plus optional Kafka ingest.
//
// The server answers the two read operations over REST:
//
//	GET /timeline/clusters/{cluster}/apps/{app}/entities/{entitytype}
//	GET /timeline/clusters/{cluster}/apps/{app}/entities/{entitytype}/{entityid}
//
// Query parameters carry the flow routing keys (userid, flowname, flowrunid), the field
// projection (fields) and, for the collection operation, the filter set (limit,
// createdtimestart, createdtimeend, relatesto, isrelatedto, infofilters, conffilters,
// metricfilters, eventfilters).  A missing single entity is 404; resolution and reconstruction
// failures are 500; bad filter syntax is 400.
//
// Arguments:
//
// -root <directory>
//
//  Storage root for the file-backed store.  Defaults as for the other verbs.
//
// -port <port-number>
//
//  Port to listen on, default 8188.
//
// -db-url <uri>
//
//  Optional.  Serve queries from a Postgres mirror at this URI instead of from the filesystem.
//
// -kafka-broker <host:port>
// -kafka-clusters <name,name,...>
//
//  Optional.  Consume entity envelopes from the topic <cluster>.entity for each named cluster
//  and append them to the file-backed store.  Ingest always writes to the filesystem, also when
//  queries are served from Postgres.
//
// Termination:
//
//  SIGINT, SIGHUP or SIGTERM shuts the server down in an orderly manner.

package daemon

import (
	"errors"
	"flag"
	"strings"

	"timestore/command"
	. "timestore/common"
)

const defaultListenPort = 8188

// Immutable after Validate(); it will be accessed concurrently because every HTTP handler runs
// as a separate goroutine.
type DaemonCommand struct {
	command.SourceArgs
	command.VerboseArgs
	port          uint
	dbURL         string
	kafkaBroker   string
	kafkaClusters string

	ingestClusters []string
}

func New() *DaemonCommand {
	return new(DaemonCommand)
}

func (dc *DaemonCommand) Add(fs *flag.FlagSet) {
	dc.SourceArgs.Add(fs)
	dc.VerboseArgs.Add(fs)
	fs.UintVar(&dc.port, "port", defaultListenPort, "Listen for connections on `port`")
	fs.StringVar(&dc.dbURL, "db-url", "", "Serve queries from the Postgres mirror at `uri`")
	fs.StringVar(&dc.kafkaBroker, "kafka-broker", "", "Consume entity records from `host:port`")
	fs.StringVar(&dc.kafkaClusters, "kafka-clusters", "",
		"Comma-separated cluster `names` to consume topics for")
}

func (dc *DaemonCommand) Summary() []string {
	return []string{
		"Run timestore as an HTTP server answering entity fetch and query",
		"requests, optionally ingesting records from Kafka.",
	}
}

func (dc *DaemonCommand) Validate() error {
	var e1, e2, e3 error
	e1 = dc.SourceArgs.Validate()
	e2 = dc.VerboseArgs.Validate()
	ApplyDefault(&dc.dbURL, DataSourceDatabase)
	ApplyDefault(&dc.kafkaBroker, DataSourceBroker)
	if dc.kafkaClusters != "" {
		for _, name := range strings.Split(dc.kafkaClusters, ",") {
			name = strings.TrimSpace(name)
			if name == "" {
				e3 = errors.New("Empty cluster name in -kafka-clusters")
				break
			}
			dc.ingestClusters = append(dc.ingestClusters, name)
		}
		if dc.kafkaBroker == "" {
			e3 = errors.New("-kafka-clusters requires -kafka-broker")
		}
	} else if dc.kafkaBroker != "" {
		e3 = errors.New("-kafka-broker requires -kafka-clusters")
	}
	return errors.Join(e1, e2, e3)
}
