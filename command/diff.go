// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package command

import (
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/mitchellh/cli"
	"github.com/mitchellh/go-homedir"

	"github.com/hashicorp/envguard/snapshot"
)

var _ cli.Command = &DiffCommand{}

type DiffCommand struct {
	ui    cli.Ui
	flags *flag.FlagSet

	// HCL file location
	config string
}

func (c *DiffCommand) init() {
	const configUsageText = "Path to HCL configuration file. Use the same configuration that wrote the snapshot."

	c.flags = flag.NewFlagSet("diff", flag.ContinueOnError)
	c.flags.StringVar(&c.config, "config", "", configUsageText)
	c.flags.SetOutput(io.Discard)
}

// NewDiffCommand produces a new *DiffCommand, initialized for use in a CLI application.
func NewDiffCommand(ui cli.Ui) *DiffCommand {
	c := &DiffCommand{ui: ui}
	c.init()
	return c
}

// DiffCommandFactory provides a cli.CommandFactory that will produce an appropriately-initiated *command.
func DiffCommandFactory(ui cli.Ui) cli.CommandFactory {
	return func() (cli.Command, error) {
		return NewDiffCommand(ui), nil
	}
}

func (c *DiffCommand) Help() string {
	helpText := `Usage: envguard diff [options] SNAPSHOT

Compares the environment of this process with a file written by "envguard snapshot" and lists the variables that
were added, removed or changed since. Exits with 1 when there are differences.
`
	return Usage(helpText, c.flags)
}

func (c *DiffCommand) Synopsis() string {
	return "Compare the current environment with a snapshot"
}

func (c *DiffCommand) Run(args []string) int {
	if err := c.flags.Parse(args); err != nil {
		c.ui.Warn(err.Error())
		c.ui.Warn(c.Help())
		return FlagParseError
	}
	if c.flags.NArg() != 1 {
		c.ui.Warn("diff requires exactly one snapshot file")
		c.ui.Warn(c.Help())
		return FlagParseError
	}

	cfg, err := loadConfig(c.config)
	if err != nil {
		c.ui.Error(fmt.Sprintf("Failed to load configuration, config=%s, error=%s", c.config, err))
		return ConfigError
	}
	l := configureLogging("envguard", cfg.Level())

	redactor, err := cfg.EnvRedactor()
	if err != nil {
		l.Error("Invalid redaction configuration", "config", c.config, "error", err)
		return ConfigError
	}

	path, err := homedir.Expand(c.flags.Arg(0))
	if err != nil {
		l.Error("Invalid snapshot path", "path", c.flags.Arg(0), "error", err)
		return SnapshotError
	}
	stored, err := readFile(path)
	if err != nil {
		l.Error("Failed to read snapshot", "path", path, "error", err)
		return SnapshotError
	}

	// The stored snapshot was redacted when written, so the live one is redacted the same way before comparing.
	current := newFile(redactor, stored.CapturedAt)

	changes := snapshot.Diff(stored.Vars, current.Vars)
	c.ui.Output(formatChanges(changes))
	if changes.Empty() {
		return Success
	}
	return DiffFound
}

// formatChanges renders changes as a two-column table.
func formatChanges(changes snapshot.Changes) string {
	if changes.Empty() {
		return "No environment changes."
	}

	out := new(strings.Builder)
	w := tabwriter.NewWriter(out, 0, 8, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "CHANGE\tNAME")
	for _, row := range []struct {
		kind  string
		names []string
	}{
		{"added", changes.Added},
		{"removed", changes.Removed},
		{"changed", changes.Changed},
	} {
		for _, name := range row.names {
			_, _ = fmt.Fprintf(w, "%s\t%s\n", row.kind, name)
		}
	}
	_ = w.Flush()
	return out.String()
}
