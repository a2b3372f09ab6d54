// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package command

import (
	"encoding/json"
	"flag"
	"io"

	"github.com/mitchellh/cli"

	"github.com/hashicorp/envguard/version"
)

var _ cli.Command = &VersionCommand{}

type VersionCommand struct {
	ui    cli.Ui
	flags *flag.FlagSet

	json bool
}

func NewVersionCommand(ui cli.Ui) *VersionCommand {
	c := &VersionCommand{ui: ui}
	c.flags = flag.NewFlagSet("version", flag.ContinueOnError)
	c.flags.BoolVar(&c.json, "json", false, "Print version information as JSON")
	c.flags.SetOutput(io.Discard)
	return c
}

// VersionCommandFactory provides a cli.CommandFactory that will produce an appropriately-initiated *command.
func VersionCommandFactory(ui cli.Ui) cli.CommandFactory {
	return func() (cli.Command, error) {
		return NewVersionCommand(ui), nil
	}
}

func (c *VersionCommand) Help() string {
	return Usage("Usage: envguard version [options]", c.flags)
}

func (c *VersionCommand) Run(args []string) int {
	if err := c.flags.Parse(args); err != nil {
		c.ui.Warn(err.Error())
		c.ui.Warn(c.Help())
		return FlagParseError
	}

	v := version.GetVersion()
	if !c.json {
		c.ui.Output(v.FullVersionNumber(true))
		return Success
	}

	bts, err := json.Marshal(v)
	if err != nil {
		c.ui.Error(err.Error())
		return OutputError
	}
	c.ui.Output(string(bts))
	return Success
}

func (c *VersionCommand) Synopsis() string {
	return "Print the current version of envguard"
}
