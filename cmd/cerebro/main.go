// Package main provides the cerebro CLI: it inspects model architectures and serialized
// weight states, and simulates training runs in process.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"
	"k8s.io/klog/v2"
)

const version = "v0.1.0"

type command struct {
	name, usage string
	run         func(args []string)
}

var commands = []command{
	{"version", "Show version", func([]string) { fmt.Printf("cerebro %s\n", version) }},
	{"arch", "Summarize a model architecture JSON file", archCmd},
	{"state", "Decode a serialized weight state", stateCmd},
	{"simulate", "Run the training stages in process with a synthetic trainer", simulateCmd},
}

func main() {
	klog.InitFlags(nil)
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}
	for _, cmd := range commands {
		if cmd.name == args[0] {
			cmd.run(args[1:])
			klog.Flush()
			return
		}
	}
	klog.Errorf("Unknown command %q. See 'cerebro -help'.", args[0])
	os.Exit(1)
}

func usage() {
	out := flag.CommandLine.Output()
	_, _ = fmt.Fprintf(out, "cerebro %s\n\nUsage: cerebro [flags] <command> [command flags]\n\nCommands:\n", version)
	for _, cmd := range commands {
		_, _ = fmt.Fprintf(out, "  %-10s %s\n", cmd.name, cmd.usage)
	}
	_, _ = fmt.Fprintln(out, "\nFlags:")
	flag.PrintDefaults()
}

// newFlagSet returns the flag set of a sub-command; parsing errors exit.
func newFlagSet(name string) *flag.FlagSet {
	return flag.NewFlagSet("cerebro "+name, flag.ExitOnError)
}

// fatalf reports an unrecoverable error and exits.
func fatalf(format string, args ...any) {
	klog.Errorf(format, args...)
	klog.Flush()
	os.Exit(1)
}

var (
	headerRowStyle = lipgloss.NewStyle().Reverse(true).
			Padding(0, 2, 0, 2).Align(lipgloss.Center)

	oddRowStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFF")).
			PaddingLeft(1).PaddingRight(1)
	evenRowStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#999")).
			PaddingLeft(1).PaddingRight(1)

	titleStyle = lipgloss.NewStyle().Bold(true).Padding(1, 4, 1, 4)
)

func newPlainTable(withHeader bool) *lgtable.Table {
	return lgtable.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("99"))).
		StyleFunc(func(row, col int) (s lipgloss.Style) {
			if withHeader && row == lgtable.HeaderRow {
				return headerRowStyle
			}
			if row%2 == 0 {
				s = evenRowStyle
			} else {
				s = oddRowStyle
			}
			if col == 0 {
				s = s.Align(lipgloss.Right)
			} else {
				s = s.Align(lipgloss.Left)
			}
			return
		})
}
