// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package guard

import (
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/hashicorp/envguard/snapshot"
)

// Mode selects what a construction does when another Guard holds the token.
type Mode string

const (
	// Blocking waits in line for the token. This is the default.
	Blocking Mode = "blocking"
	// NonBlocking fails with a ScopeContentionError instead of waiting.
	NonBlocking Mode = "non-blocking"
)

// ParseMode converts a mode name into a Mode. The empty string yields Blocking.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", Blocking:
		return Blocking, nil
	case NonBlocking, "nonblocking":
		return NonBlocking, nil
	default:
		return "", fmt.Errorf("unknown guard mode, mode=%s", s)
	}
}

// Config controls how a Guard is constructed. The zero value is a blocking Guard over the process environment that
// waits forever for the token.
type Config struct {
	// Mode is Blocking or NonBlocking. Empty means Blocking.
	Mode Mode `json:"mode"`

	// Timeout bounds how long a Blocking construction waits for the token. Zero waits forever.
	Timeout time.Duration `json:"timeout"`

	// Logger defaults to the named default hclog logger.
	Logger hclog.Logger `json:"-"`

	// Environment is the table the Guard captures and restores. Defaults to snapshot.OS.
	Environment snapshot.Environment `json:"-"`

	// TracerProvider defaults to the global OpenTelemetry provider.
	TracerProvider trace.TracerProvider `json:"-"`
}

// normalize validates c and fills in its defaults.
func (c Config) normalize() (Config, error) {
	mode, err := ParseMode(string(c.Mode))
	if err != nil {
		return c, ConfigError{config: c, err: err}
	}
	if c.Timeout < 0 {
		return c, ConfigError{config: c, err: fmt.Errorf("timeout must not be negative")}
	}
	if mode == NonBlocking && c.Timeout > 0 {
		return c, ConfigError{config: c, err: fmt.Errorf("timeout only applies to %s mode", Blocking)}
	}
	c.Mode = mode
	if c.Logger == nil {
		c.Logger = hclog.Default().Named("envguard")
	}
	if c.Environment == nil {
		c.Environment = snapshot.OS
	}
	if c.TracerProvider == nil {
		c.TracerProvider = otel.GetTracerProvider()
	}
	return c, nil
}
