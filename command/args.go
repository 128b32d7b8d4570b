package command

import (
	"errors"
	"flag"
	"path"

	. "timestore/common"
)

// Default value for storage location on local disk, when neither -root nor the defaults file
// provides one.
const DefaultStorageRoot = "/tmp/timestore_data"

///////////////////////////////////////////////////////////////////////////////////////////////////
//
// You wouldn't think -v would be so complicated.

type VerboseArgs struct {
	Verbose bool
}

func (va *VerboseArgs) Add(fs *flag.FlagSet) {
	fs.BoolVar(&va.Verbose, "v", false, "Print verbose diagnostics to stderr")
	fs.BoolVar(&va.Verbose, "verbose", false, "Print verbose diagnostics to stderr")
}

func (va *VerboseArgs) Validate() error {
	return nil
}

///////////////////////////////////////////////////////////////////////////////////////////////////
//
// Handle -root (the storage root, the core's single configuration value)

type SourceArgs struct {
	Root string
}

func (sa *SourceArgs) Add(fs *flag.FlagSet) {
	fs.StringVar(&sa.Root, "root", "",
		"Storage root `directory` [default: data-source.root in ~/.timestore, else "+
			DefaultStorageRoot+"]")
}

func (sa *SourceArgs) Validate() error {
	ApplyDefault(&sa.Root, DataSourceRoot)
	if sa.Root == "" {
		sa.Root = DefaultStorageRoot
	}
	sa.Root = path.Clean(sa.Root)
	return nil
}

///////////////////////////////////////////////////////////////////////////////////////////////////
//
// Query-context arguments shared by the reading verbs.  The flow routing keys are optional; when
// any is missing the resolver goes through the cluster's flow-mapping index, which is why
// -cluster and -app are always required.

type ContextArgs struct {
	Cluster string
	User    string
	Flow    string
	FlowRun string
	App     string
}

func (ca *ContextArgs) Add(fs *flag.FlagSet) {
	fs.StringVar(&ca.Cluster, "cluster", "", "Cluster `name` (required)")
	fs.StringVar(&ca.User, "user", "", "Owning user `name` of the flow")
	fs.StringVar(&ca.Flow, "flow", "", "Flow `name`")
	fs.StringVar(&ca.FlowRun, "flow-run", "", "Flow run `id`")
	fs.StringVar(&ca.App, "app", "", "Application `id` (required)")
}

func (ca *ContextArgs) Validate() error {
	ApplyDefault(&ca.Cluster, DataSourceCluster)
	var e1, e2 error
	if ca.Cluster == "" {
		e1 = errors.New("-cluster is required")
	}
	if ca.App == "" {
		e2 = errors.New("-app is required")
	}
	return errors.Join(e1, e2)
}
