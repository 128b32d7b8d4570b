// `timestore` -- query and maintain file-backed timeline entity stores
//
// Run `timestore help` for brief help; each verb accepts -h for its options.

package main

import (
	"flag"
	"fmt"
	"os"

	"timestore/add"
	"timestore/command"
	"timestore/daemon"
	"timestore/fetch"
	"timestore/query"
	"timestore/resolve"
)

// v0.1.0 - initial version: get, query, resolve, add
// v0.2.0 - added 'daemon' verb with Postgres and Kafka support

const TimestoreVersion = "0.2.0"

func main() {
	err := timestore()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func timestore() error {
	anyCmd, _ := commandLine()

	switch cmd := anyCmd.(type) {
	case *daemon.DaemonCommand:
		return cmd.RunDaemon(os.Stdin, os.Stdout, os.Stderr)
	case command.SimpleCommand:
		return cmd.Perform(os.Stdout, os.Stderr)
	default:
		panic("Unexpected command type")
	}
}

func commandLine() (command.Command, string) {
	out := flag.CommandLine.Output()

	if len(os.Args) < 2 {
		fmt.Fprintf(out, "Required operation missing, try `timestore help`\n")
		os.Exit(2)
	}

	var cmd command.Command
	var verb = os.Args[1]
	switch verb {
	case "help", "-h":
		fmt.Fprintf(out, "Usage: %s command [options]\n", os.Args[0])
		fmt.Fprintf(out, "Commands:\n")
		fmt.Fprintf(out, "  add     - append entity records to a store\n")
		fmt.Fprintf(out, "  daemon  - serve the store over HTTP, optionally ingesting from Kafka\n")
		fmt.Fprintf(out, "  get     - fetch a single entity by type and id\n")
		fmt.Fprintf(out, "  query   - select and filter entities of one type\n")
		fmt.Fprintf(out, "  resolve - print the flow-run directory for an app\n")
		fmt.Fprintf(out, "  version - print information about the program\n")
		fmt.Fprintf(out, "  help    - print this message\n")
		fmt.Fprintf(out, "Each command accepts -h to further explain options.\n")
		os.Exit(0)
	case "add":
		cmd = add.New()
	case "daemon":
		cmd = daemon.New()
	case "get":
		cmd = fetch.New()
	case "query":
		cmd = query.New()
	case "resolve":
		cmd = resolve.New()
	case "version":
		fmt.Printf("timestore version(%s)\n", TimestoreVersion)
		os.Exit(0)
	default:
		fmt.Fprintf(out, "Unknown operation `%s`, try `timestore help`\n", verb)
		os.Exit(2)
	}

	fs := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	cmd.Add(fs)

	fs.Usage = func() {
		fmt.Fprintf(out, "Usage: %s %s [options]\n\n", os.Args[0], os.Args[1])
		for _, s := range cmd.Summary() {
			fmt.Fprintln(out, "  ", s)
		}
		fmt.Fprint(out, "\nOptions:\n\n")
		fs.PrintDefaults()
	}
	fs.Parse(os.Args[2:])

	if len(fs.Args()) > 0 {
		fmt.Fprintf(out, "Rest arguments not accepted by `%s`.\n", verb)
		os.Exit(2)
	}

	err := cmd.Validate()
	if err != nil {
		fmt.Fprintf(out, "Bad arguments, try -h\n%v\n", err.Error())
		os.Exit(2)
	}

	return cmd, verb
}
