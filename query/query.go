// `timestore query` - filter and print a collection of entities.

package query

import (
	"encoding/json"
	"errors"
	"flag"
	"io"

	"timestore/command"
	"timestore/db"
)

type QueryCommand struct {
	command.SourceArgs
	command.ContextArgs
	command.VerboseArgs
	entityType string
	fieldSpec  string

	limit         int64
	createdAfter  int64
	createdBefore int64
	relatesTo     string
	isRelatedTo   string
	infoFilters   string
	configFilters string
	metricFilters string
	eventFilters  string

	fields  db.Field
	filters db.EntityFilters
}

func New() *QueryCommand {
	return new(QueryCommand)
}

func (qc *QueryCommand) Add(fs *flag.FlagSet) {
	qc.SourceArgs.Add(fs)
	qc.ContextArgs.Add(fs)
	qc.VerboseArgs.Add(fs)
	fs.StringVar(&qc.entityType, "type", "", "Entity `type` (required)")
	fs.StringVar(&qc.fieldSpec, "fields", "",
		"Comma-separated field `groups` to include [default: identity and createdtime only]")
	fs.Int64Var(&qc.limit, "limit", 0,
		"Maximum `number` of entities to return [default: 100]")
	fs.Int64Var(&qc.createdAfter, "created-after", 0,
		"Keep entities created at or after this `time` (epoch millis, inclusive)")
	fs.Int64Var(&qc.createdBefore, "created-before", 0,
		"Keep entities created at or before this `time` (epoch millis, inclusive)")
	fs.StringVar(&qc.relatesTo, "relates-to", "",
		"Relation filter `expr`, \"type:id1:id2,type2:id3\"")
	fs.StringVar(&qc.isRelatedTo, "is-related-to", "",
		"Reverse-relation filter `expr`, \"type:id1:id2,type2:id3\"")
	fs.StringVar(&qc.infoFilters, "info-filters", "",
		"Info filter `expr`, \"key:value,key2:value2\"")
	fs.StringVar(&qc.configFilters, "config-filters", "",
		"Config filter `expr`, \"key:value,key2:value2\"")
	fs.StringVar(&qc.metricFilters, "metric-filters", "",
		"Comma-separated metric `ids` that must be present")
	fs.StringVar(&qc.eventFilters, "event-filters", "",
		"Comma-separated event `ids` that must be present")
}

func (qc *QueryCommand) Summary() []string {
	return []string{
		"Query the timeline entities of one application by type, with filtering",
		"and field projection.  Results are JSON on stdout, newest first.",
	}
}

func (qc *QueryCommand) Validate() error {
	var e1, e2, e3, e4 error
	e1 = qc.SourceArgs.Validate()
	e2 = qc.ContextArgs.Validate()
	e3 = qc.VerboseArgs.Validate()
	if qc.entityType == "" {
		e4 = errors.New("-type is required")
	}
	var e5, e6, e7, e8, e9 error
	qc.fields, e5 = db.ParseFields(qc.fieldSpec)
	qc.filters.Limit = qc.limit
	qc.filters.CreatedTimeBegin = qc.createdAfter
	qc.filters.CreatedTimeEnd = qc.createdBefore
	qc.filters.RelatesTo, e6 = db.ParseRelationFilterExpr(qc.relatesTo)
	qc.filters.IsRelatedTo, e7 = db.ParseRelationFilterExpr(qc.isRelatedTo)
	qc.filters.InfoFilters, e8 = db.ParseInfoFilterExpr(qc.infoFilters)
	qc.filters.ConfigFilters, e9 = db.ParseConfigFilterExpr(qc.configFilters)
	qc.filters.MetricFilters = db.ParseIDSetExpr(qc.metricFilters)
	qc.filters.EventFilters = db.ParseIDSetExpr(qc.eventFilters)
	return errors.Join(e1, e2, e3, e4, e5, e6, e7, e8, e9)
}

func (qc *QueryCommand) Perform(stdout, stderr io.Writer) error {
	reader, err := db.OpenTimelineReader(qc.Root)
	if err != nil {
		return err
	}
	cx := &db.ReaderContext{
		ClusterID:  qc.Cluster,
		UserID:     qc.User,
		FlowName:   qc.Flow,
		FlowRunID:  qc.FlowRun,
		AppID:      qc.App,
		EntityType: qc.entityType,
	}
	entities, err := reader.GetEntities(cx, &qc.filters, qc.fields)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(entities)
}
