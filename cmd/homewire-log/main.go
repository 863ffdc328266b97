// Command homewire-log views and analyzes homewire protocol log files.
//
// Log files are written by homewire-switch when logging.protocol_log is set.
//
// Usage:
//
//	homewire-log <command> [flags] <file.hwlog>
//
// Commands:
//
//	view     View log file in human-readable format
//	export   Export log file to JSON lines or CSV
//	stats    Show statistics about the log file
//
// Examples:
//
//	# View only outgoing messages
//	homewire-log view -direction out switch.hwlog
//
//	# Export the traffic of one peer as CSV
//	homewire-log export -format csv -peer 123456 switch.hwlog
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/homewire/homewire-go/cmd/homewire-log/commands"
)

const usage = `homewire-log - homewire protocol log analyzer

Usage:
  homewire-log <command> [flags] <file.hwlog>

Commands:
  view     View log file in human-readable format
  export   Export log file to JSON lines or CSV
  stats    Show statistics about the log file

Use "homewire-log <command> -help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd, args := os.Args[1], os.Args[2:]
	var err error
	switch cmd {
	case "view":
		err = runView(args)
	case "export":
		err = runExport(args)
	case "stats":
		err = runStats(args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func filterFlags(fs *flag.FlagSet) *commands.FilterFlags {
	f := &commands.FilterFlags{}
	fs.StringVar(&f.Session, "session", "", "Filter by run id")
	fs.StringVar(&f.Direction, "direction", "", "Filter by direction (in, out)")
	fs.StringVar(&f.Layer, "layer", "", "Filter by layer (radio, wire, device)")
	fs.StringVar(&f.Category, "category", "", "Filter by category (message, state, error)")
	fs.StringVar(&f.Peer, "peer", "", "Filter by peer id (6 hex digits)")
	fs.StringVar(&f.Types, "type", "", "Filter by message types, comma separated (config, action, info, ...)")
	return f
}

func parse(fs *flag.FlagSet, args []string) (string, error) {
	if err := fs.Parse(args); err != nil {
		return "", err
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return "", fmt.Errorf("log file path required")
	}
	return fs.Arg(0), nil
}

func runView(args []string) error {
	fs := flag.NewFlagSet("view", flag.ExitOnError)
	ff := filterFlags(fs)
	path, err := parse(fs, args)
	if err != nil {
		return err
	}
	filter, err := ff.Build()
	if err != nil {
		return err
	}
	return commands.RunView(path, filter, os.Stdout)
}

func runExport(args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	ff := filterFlags(fs)
	format := fs.String("format", "jsonl", "Output format (jsonl, csv)")
	output := fs.String("o", "", "Output file (default: stdout)")
	path, err := parse(fs, args)
	if err != nil {
		return err
	}
	filter, err := ff.Build()
	if err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}
	return commands.RunExport(path, *format, filter, w)
}

func runStats(args []string) error {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	path, err := parse(fs, args)
	if err != nil {
		return err
	}
	return commands.RunStats(path, os.Stdout)
}
