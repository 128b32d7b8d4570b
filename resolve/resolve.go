// `timestore resolve` - print the flow-run path a query context resolves to.  Mostly a
// diagnostic for checking the flow-mapping index.

package resolve

import (
	"errors"
	"flag"
	"fmt"
	"io"

	"timestore/command"
	"timestore/db"
)

type ResolveCommand struct {
	command.SourceArgs
	command.ContextArgs
	command.VerboseArgs
}

func New() *ResolveCommand {
	return new(ResolveCommand)
}

func (rc *ResolveCommand) Add(fs *flag.FlagSet) {
	rc.SourceArgs.Add(fs)
	rc.ContextArgs.Add(fs)
	rc.VerboseArgs.Add(fs)
}

func (rc *ResolveCommand) Summary() []string {
	return []string{
		"Resolve a cluster/app context to its user/flow/flowrun storage path,",
		"going through the flow-mapping index if the flow keys are not given.",
	}
}

func (rc *ResolveCommand) Validate() error {
	return errors.Join(
		rc.SourceArgs.Validate(),
		rc.ContextArgs.Validate(),
		rc.VerboseArgs.Validate(),
	)
}

func (rc *ResolveCommand) Perform(stdout, stderr io.Writer) error {
	reader, err := db.OpenTimelineReader(rc.Root)
	if err != nil {
		return err
	}
	cx := &db.ReaderContext{
		ClusterID: rc.Cluster,
		UserID:    rc.User,
		FlowName:  rc.Flow,
		FlowRunID: rc.FlowRun,
		AppID:     rc.App,
	}
	flowRunPath, err := reader.ResolveFlowRunPath(cx)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, flowRunPath)
	return nil
}
