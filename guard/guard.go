// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package guard provides scoped, process-wide exclusive ownership of the environment variable table.
//
// Constructing a Guard claims a process-wide token and captures a snapshot of the environment. Disposing the Guard
// restores that snapshot and hands the token to the next Guard in line. Only one Guard is active in a process at any
// moment; constructions that find the token taken either wait their turn in first-come-first-served order
// (Blocking) or fail with a ScopeContentionError (NonBlocking).
//
// Exclusivity only covers code that constructs a Guard. Tests that mutate the environment without one are not
// serialized against guarded tests and must be kept sequential by other means.
package guard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/hashicorp/envguard/snapshot"
)

const tracerName = "github.com/hashicorp/envguard/guard"

var _ io.Closer = &Guard{}

// Guard is one active environment mutation window.
type Guard struct {
	id    string
	snap  snapshot.Snapshot
	env   snapshot.Environment
	log   hclog.Logger
	token *token

	once     sync.Once
	disposed atomic.Bool
}

// New constructs a Blocking Guard over the process environment, waiting as long as it takes for the token.
func New() (*Guard, error) {
	return NewWithConfig(context.Background(), Config{})
}

// NewWithConfig constructs a Guard according to cfg. ctx bounds the wait for the token in Blocking mode.
func NewWithConfig(ctx context.Context, cfg Config) (*Guard, error) {
	return newGuard(ctx, cfg, processToken)
}

func newGuard(ctx context.Context, cfg Config, tok *token) (*Guard, error) {
	cfg, err := cfg.normalize()
	if err != nil {
		return nil, err
	}
	if err = ctx.Err(); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	l := cfg.Logger.With("guard", id)

	ctx, span := cfg.TracerProvider.Tracer(tracerName).Start(ctx, "envguard.acquire",
		trace.WithAttributes(
			attribute.String("envguard.guard_id", id),
			attribute.String("envguard.mode", string(cfg.Mode)),
		))
	defer span.End()

	start := time.Now()
	if err = acquire(ctx, cfg, tok, id); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		l.Debug("environment scope not acquired", "mode", cfg.Mode, "error", err)
		return nil, err
	}
	wait := time.Since(start)
	span.SetAttributes(attribute.Int64("envguard.wait_ms", wait.Milliseconds()))
	l.Trace("environment scope acquired", "mode", cfg.Mode, "wait", wait)

	return &Guard{
		id:    id,
		snap:  snapshot.CaptureFrom(cfg.Environment),
		env:   cfg.Environment,
		log:   l,
		token: tok,
	}, nil
}

func acquire(ctx context.Context, cfg Config, tok *token, id string) error {
	if cfg.Mode == NonBlocking {
		if holder, ok := tok.tryAcquire(id); !ok {
			return &ScopeContentionError{Holder: holder}
		}
		return nil
	}

	parent := ctx
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}
	holder, err := tok.acquire(ctx, id)
	if err == nil {
		return nil
	}
	// A deadline on the caller's ctx is the caller's, not Config.Timeout.
	if cfg.Timeout > 0 && errors.Is(err, context.DeadlineExceeded) && parent.Err() == nil {
		return &ContentionTimeoutError{Holder: holder, Timeout: cfg.Timeout, err: err}
	}
	return fmt.Errorf("waiting for environment scope, holder=%s: %w", holder, err)
}

// ID uniquely identifies the Guard. It appears in logs and in contention errors raised while the Guard is active.
func (g *Guard) ID() string {
	return g.id
}

// Snapshot returns the environment captured when the Guard was constructed.
func (g *Guard) Snapshot() snapshot.Snapshot {
	return g.snap
}

// Disposed reports whether Dispose has completed.
func (g *Guard) Disposed() bool {
	return g.disposed.Load()
}

// Dispose restores the captured environment and releases the token. Only the first call does anything; later calls,
// including concurrent ones, return nil once the first has finished.
//
// The token is released even when restoration fails, so later Guards are not starved. The failure is returned as a
// *snapshot.RestorationError and should fail the enclosing test.
func (g *Guard) Dispose() error {
	var err error
	g.once.Do(func() {
		defer g.token.release(g.id)
		defer g.disposed.Store(true)

		err = g.snap.RestoreTo(g.env)
		if err != nil {
			g.log.Error("environment restoration failed", "error", err)
			return
		}
		g.log.Trace("environment scope released")
	})
	return err
}

// Close is Dispose, for use where an io.Closer is expected.
func (g *Guard) Close() error {
	return g.Dispose()
}
