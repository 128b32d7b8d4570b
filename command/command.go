package command

import (
	"flag"
	"io"
)

// Represents a timestore command: get, query, resolve, add, daemon.

type Command interface {
	// Add all arguments including shared arguments
	Add(fs *flag.FlagSet)

	// Summarize the command for the help text
	Summary() []string

	// Validate all arguments including shared arguments
	Validate() error
}

// All commands except the daemon run to completion and exit.

type SimpleCommand interface {
	Command

	// Perform the operation
	Perform(stdout, stderr io.Writer) error
}
