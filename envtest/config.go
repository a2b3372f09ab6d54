// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package envtest

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/hashicorp/envguard/guard"
	"github.com/hashicorp/envguard/hcl"
)

const (
	// EnvConfig names an HCL configuration file.
	EnvConfig = "ENVGUARD_CONFIG"
	// EnvMode overrides the guard mode: "blocking" or "non-blocking".
	EnvMode = "ENVGUARD_MODE"
	// EnvTimeout overrides the blocking timeout, e.g. "30s".
	EnvTimeout = "ENVGUARD_TIMEOUT"
	// EnvLogLevel overrides the log level, e.g. "trace".
	EnvLogLevel = "ENVGUARD_LOG_LEVEL"
)

// DefaultConfig builds a guard.Config from the process environment; Setup and Run use its first result. It starts
// from the file named by ENVGUARD_CONFIG, if any, and applies ENVGUARD_MODE, ENVGUARD_TIMEOUT and ENVGUARD_LOG_LEVEL.
func DefaultConfig() (guard.Config, error) {
	var cfg guard.Config
	level := hclog.NoLevel

	if path := os.Getenv(EnvConfig); path != "" {
		h, err := hcl.Parse(path)
		if err != nil {
			return cfg, fmt.Errorf("could not load %s, path=%s: %w", EnvConfig, path, err)
		}
		cfg, err = h.GuardConfig()
		if err != nil {
			return cfg, fmt.Errorf("could not load %s, path=%s: %w", EnvConfig, path, err)
		}
		level = h.Level()
	}

	if s := os.Getenv(EnvMode); s != "" {
		mode, err := guard.ParseMode(s)
		if err != nil {
			return cfg, fmt.Errorf("invalid %s: %w", EnvMode, err)
		}
		cfg.Mode = mode
	}
	if s := os.Getenv(EnvTimeout); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			return cfg, fmt.Errorf("invalid %s, timeout=%s: %w", EnvTimeout, s, err)
		}
		cfg.Timeout = d
	}
	if s := os.Getenv(EnvLogLevel); s != "" {
		level = hclog.LevelFromString(s)
	}

	if level != hclog.NoLevel {
		cfg.Logger = hclog.New(&hclog.LoggerOptions{
			Name:  "envguard",
			Level: level,
		})
	}
	return cfg, nil
}

// processConfig is DefaultConfig as of its first use. Later changes to ENVGUARD_* variables, including ones made
// inside guarded spans, do not affect the configuration of Setup and Run.
var processConfig = sync.OnceValues(DefaultConfig)
