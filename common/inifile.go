package common

import (
	"errors"
	"os"
	"path"

	ini "github.com/lars-t-hansen/ini"
)

// Optional per-user defaults for command line arguments, read from ~/.timestore at startup.
// Fields that remain unset on the command line pick up their defaults from here.

// MT: Constant after initialization
var (
	p                  = ini.NewParser()
	store              *ini.Store
	dataSource         = p.AddSection("data-source")
	DataSourceRoot     = dataSource.AddString("root")
	DataSourceCluster  = dataSource.AddString("cluster")
	DataSourceDatabase = dataSource.AddString("database")
	DataSourceBroker   = dataSource.AddString("kafka-broker")
)

func init() {
	home := os.Getenv("HOME")
	if home == "" {
		return
	}
	fn := path.Join(path.Clean(home), ".timestore")
	input, err := os.Open(fn)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			Log.Errorf("Error in trying to open %s: %s", fn, err.Error())
		}
		return
	}
	defer input.Close()
	store, err = p.Parse(input)
	if err != nil {
		Log.Errorf("Error in trying to parse %s: %s", fn, err.Error())
		return
	}
}

// ApplyDefault fills *sp from the defaults file if the command line left it empty.
func ApplyDefault(sp *string, f *ini.Field) bool {
	if *sp != "" || store == nil || !f.Present(store) {
		return false
	}
	*sp = os.ExpandEnv(f.StringVal(store))
	return true
}
