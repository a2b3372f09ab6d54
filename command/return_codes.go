// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package command

// Success indicates a successful command execution.
const Success int = 0

// DiffFound indicates that the diff command completed and found differences, in the manner of diff(1).
const DiffFound int = 1

// The following error group is intended for issues within the command's execution.
const (
	// FlagParseError indicates that a command was unable to successfully parse the flags/arguments provided to it.
	FlagParseError int = iota + 16

	// ConfigError indicates that there was an error in the envguard configuration.
	ConfigError

	// SnapshotError indicates that a snapshot file could not be read.
	SnapshotError

	// OutputError indicates an error writing the output of a command.
	OutputError

	// CLIError indicates that the CLI framework failed before or while dispatching to a command.
	CLIError
)
