// `timestore add` - append entity records to the store.
//
// Input is newline-delimited JSON entity records on stdin or in a file, written under the flow
// path given by the context arguments.  All three flow keys are required here; the writer never
// guesses.  With -with-mapping the cluster's flow-mapping index also gets a row for the
// application, so that later readers can resolve the flow from the app id alone.

package add

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"timestore/command"
	"timestore/db"
	"timestore/db/parse"
)

type AddCommand struct {
	command.SourceArgs
	command.ContextArgs
	command.VerboseArgs
	inputFile   string
	withMapping bool
}

func New() *AddCommand {
	return new(AddCommand)
}

func (ac *AddCommand) Add(fs *flag.FlagSet) {
	ac.SourceArgs.Add(fs)
	ac.ContextArgs.Add(fs)
	ac.VerboseArgs.Add(fs)
	fs.StringVar(&ac.inputFile, "input", "", "Read records from `filename` [default: stdin]")
	fs.BoolVar(&ac.withMapping, "with-mapping", false,
		"Also record the app-to-flow mapping in the cluster index")
}

func (ac *AddCommand) Summary() []string {
	return []string{
		"Append newline-delimited JSON entity records to the store under the",
		"given cluster/user/flow/flowrun/app path.",
	}
}

func (ac *AddCommand) Validate() error {
	var e1, e2, e3, e4 error
	e1 = ac.SourceArgs.Validate()
	e2 = ac.ContextArgs.Validate()
	e3 = ac.VerboseArgs.Validate()
	if ac.User == "" || ac.Flow == "" || ac.FlowRun == "" {
		e4 = errors.New("-user, -flow and -flow-run are all required for add")
	}
	return errors.Join(e1, e2, e3, e4)
}

func (ac *AddCommand) Perform(stdout, stderr io.Writer) error {
	input := os.Stdin
	if ac.inputFile != "" {
		f, err := os.Open(ac.inputFile)
		if err != nil {
			return err
		}
		defer f.Close()
		input = f
	}

	codec := parse.NewEntityCodec()
	writer := db.NewTimelineWriter(ac.Root, codec)
	cx := &db.WriterContext{
		ClusterID: ac.Cluster,
		UserID:    ac.User,
		FlowName:  ac.Flow,
		FlowRunID: ac.FlowRun,
		AppID:     ac.App,
	}
	if ac.withMapping {
		if err := writer.WriteFlowMapping(cx); err != nil {
			return err
		}
	}

	written := 0
	scanner := bufio.NewScanner(input)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		entity, err := codec.DecodeEntity([]byte(line))
		if err != nil {
			return err
		}
		if err := writer.WriteEntity(cx, entity); err != nil {
			return err
		}
		written++
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	if ac.Verbose {
		fmt.Fprintf(stderr, "%d records written\n", written)
	}
	return nil
}
