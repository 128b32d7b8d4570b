// `timestore get` - fetch one entity and print it as JSON.

package fetch

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"

	"timestore/command"
	"timestore/db"
	"timestore/db/errs"
)

type FetchCommand struct {
	command.SourceArgs
	command.ContextArgs
	command.VerboseArgs
	entityType string
	entityID   string
	fieldSpec  string

	fields db.Field
}

func New() *FetchCommand {
	return new(FetchCommand)
}

func (fc *FetchCommand) Add(fs *flag.FlagSet) {
	fc.SourceArgs.Add(fs)
	fc.ContextArgs.Add(fs)
	fc.VerboseArgs.Add(fs)
	fs.StringVar(&fc.entityType, "type", "", "Entity `type` (required)")
	fs.StringVar(&fc.entityID, "id", "", "Entity `id` (required)")
	fs.StringVar(&fc.fieldSpec, "fields", "",
		"Comma-separated field `groups` to include (CONFIGS,METRICS,INFO,RELATES_TO,"+
			"IS_RELATED_TO,EVENTS,ALL) [default: identity and createdtime only]")
}

func (fc *FetchCommand) Summary() []string {
	return []string{
		"Fetch a single timeline entity by cluster, app, type and id, and print",
		"it as JSON on stdout.",
	}
}

func (fc *FetchCommand) Validate() error {
	var e1, e2, e3, e4, e5 error
	e1 = fc.SourceArgs.Validate()
	e2 = fc.ContextArgs.Validate()
	e3 = fc.VerboseArgs.Validate()
	if fc.entityType == "" {
		e4 = errors.New("-type is required")
	}
	if fc.entityID == "" {
		e5 = errors.New("-id is required")
	}
	var e6 error
	fc.fields, e6 = db.ParseFields(fc.fieldSpec)
	return errors.Join(e1, e2, e3, e4, e5, e6)
}

func (fc *FetchCommand) Perform(stdout, stderr io.Writer) error {
	reader, err := db.OpenTimelineReader(fc.Root)
	if err != nil {
		return err
	}
	cx := &db.ReaderContext{
		ClusterID:  fc.Cluster,
		UserID:     fc.User,
		FlowName:   fc.Flow,
		FlowRunID:  fc.FlowRun,
		AppID:      fc.App,
		EntityType: fc.entityType,
		EntityID:   fc.entityID,
	}
	entity, err := reader.GetEntity(cx, fc.fields)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return fmt.Errorf("No entity {id:%s, type:%s}", fc.entityID, fc.entityType)
		}
		return err
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(entity)
}
