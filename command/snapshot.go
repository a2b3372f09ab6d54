// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package command

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mitchellh/cli"
	"github.com/mitchellh/go-homedir"
)

var _ cli.Command = &SnapshotCommand{}

type SnapshotCommand struct {
	ui    cli.Ui
	flags *flag.FlagSet

	// HCL file location
	config string

	// output is the file to write to; empty means the terminal
	output string

	// now is replaced in tests
	now func() time.Time
}

func (c *SnapshotCommand) init() {
	const (
		configUsageText = "Path to HCL configuration file"
		outputUsageText = "Path of the file the snapshot is written to. The snapshot is printed when this is not set."
	)

	// flag.ContinueOnError allows flag.Parse to return an error if one comes up, rather than doing an `os.Exit(2)`
	// on its own.
	c.flags = flag.NewFlagSet("snapshot", flag.ContinueOnError)
	c.flags.StringVar(&c.config, "config", "", configUsageText)
	c.flags.StringVar(&c.output, "output", "", outputUsageText)

	// When invalid flags are provided, Go will output a usage message of its own. If we direct our flag set to
	// io.Discard, it will effectively be hidden, allowing us to print our own Help message upon failure.
	c.flags.SetOutput(io.Discard)

	c.now = time.Now
}

// NewSnapshotCommand produces a new *SnapshotCommand, initialized for use in a CLI application.
func NewSnapshotCommand(ui cli.Ui) *SnapshotCommand {
	c := &SnapshotCommand{ui: ui}
	c.init()
	return c
}

// SnapshotCommandFactory provides a cli.CommandFactory that will produce an appropriately-initiated *command.
func SnapshotCommandFactory(ui cli.Ui) cli.CommandFactory {
	return func() (cli.Command, error) {
		return NewSnapshotCommand(ui), nil
	}
}

// Help provides help text to users who pass in the --help flag or who enter invalid options.
func (c *SnapshotCommand) Help() string {
	helpText := `Usage: envguard snapshot [options]

Captures the environment of this process as JSON. Values of sensitive variables are redacted, so the output is
suitable for comparing with "envguard diff" but not for restoring an environment.
`
	return Usage(helpText, c.flags)
}

// Synopsis provides a brief description of the command, for inclusion in the application's primary --help.
func (c *SnapshotCommand) Synopsis() string {
	return "Capture the current environment, redacted, as JSON"
}

// Run executes the command.
func (c *SnapshotCommand) Run(args []string) int {
	if err := c.flags.Parse(args); err != nil {
		c.ui.Warn(err.Error())
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

	f := newFile(redactor, c.now())
	l.Debug("captured environment", "vars", f.Vars.Len())

	bts, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		l.Error("Failed to encode snapshot", "error", err)
		return OutputError
	}

	if c.output == "" {
		c.ui.Output(string(bts))
		return Success
	}

	dest, err := homedir.Expand(c.output)
	if err != nil {
		l.Error("Invalid output path", "output", c.output, "error", err)
		return OutputError
	}
	if err = os.WriteFile(dest, append(bts, '\n'), 0o600); err != nil {
		l.Error("Failed to write snapshot", "output", dest, "error", err)
		return OutputError
	}
	l.Info("snapshot written", "output", dest)
	return Success
}
