// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package command

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/hashicorp/envguard/hcl"
	"github.com/hashicorp/envguard/redact"
	"github.com/hashicorp/envguard/snapshot"
	"github.com/hashicorp/envguard/version"
)

// configureLogging takes a logger name, sets the default configuration, grabs the LOG_LEVEL from our ENV vars, and
// returns a configured and usable logger. LOG_LEVEL wins over a level set in the configuration file.
func configureLogging(loggerName string, cfgLevel hclog.Level) hclog.Logger {
	appLogger := hclog.New(&hclog.LoggerOptions{
		Name:   loggerName,
		Color:  hclog.AutoColor,
		Output: os.Stderr,
	})
	hclog.SetDefault(appLogger)
	if cfgLevel != hclog.NoLevel {
		appLogger.SetLevel(cfgLevel)
	}
	if logStr := os.Getenv("LOG_LEVEL"); logStr != "" {
		if level := hclog.LevelFromString(logStr); level != hclog.NoLevel {
			appLogger.SetLevel(level)
			appLogger.Debug("Logger configuration change", "LOG_LEVEL", hclog.Fmt("%s", logStr))
		}
	}
	return hclog.Default()
}

// loadConfig parses the HCL file at path, or returns an empty configuration when path is empty.
func loadConfig(path string) (hcl.HCL, error) {
	if path == "" {
		return hcl.HCL{}, nil
	}
	return hcl.Parse(path)
}

// File is the on-disk form of a captured environment written by the snapshot command.
type File struct {
	Version    string            `json:"version"`
	CapturedAt time.Time         `json:"captured_at"`
	Vars       snapshot.Snapshot `json:"vars"`
}

// newFile captures the current environment and redacts it with r.
func newFile(r *redact.Env, now time.Time) File {
	return File{
		Version:    version.GetVersion().FullVersionNumber(false),
		CapturedAt: now.UTC(),
		Vars:       r.Snapshot(snapshot.Capture()),
	}
}

// readFile loads a File written by the snapshot command.
func readFile(path string) (File, error) {
	var f File
	bts, err := os.ReadFile(path)
	if err != nil {
		return f, err
	}
	if err = json.Unmarshal(bts, &f); err != nil {
		return f, fmt.Errorf("could not parse snapshot file, path=%s, error=%w", path, err)
	}
	return f, nil
}
