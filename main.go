// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"fmt"
	"os"

	"github.com/mitchellh/cli"

	"github.com/hashicorp/envguard/command"
	"github.com/hashicorp/envguard/version"
)

func main() {
	os.Exit(realMain(os.Args[1:]))
}

func realMain(args []string) int {
	ui := &cli.BasicUi{
		Reader:      os.Stdin,
		Writer:      os.Stdout,
		ErrorWriter: os.Stderr,
	}
	return run(ui, args, commands(ui))
}

func run(ui cli.Ui, args []string, cmds map[string]cli.CommandFactory) int {
	c := cli.NewCLI("envguard", version.GetVersion().SemanticVersion())
	c.Args = args
	c.Commands = cmds

	rc, err := c.Run()
	if err != nil {
		ui.Error(fmt.Sprintf("Error executing CLI: %s", err.Error()))
		return command.CLIError
	}
	return rc
}

func commands(ui cli.Ui) map[string]cli.CommandFactory {
	return map[string]cli.CommandFactory{
		"snapshot": command.SnapshotCommandFactory(ui),
		"diff":     command.DiffCommandFactory(ui),
		"version":  command.VersionCommandFactory(ui),
	}
}
