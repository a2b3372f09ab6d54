// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package envtest ties guarded environment spans to Go tests.
//
//	func TestSomething(t *testing.T) {
//		envtest.Setup(t)
//		envtest.Setenv(t, "FOO", "BAR")
//		// FOO is restored when the test and its subtests finish.
//	}
//
// Tests that use envtest may call t.Parallel: guarded spans still run one at a time, in the order they began
// waiting. Tests that change the environment without envtest get no such protection.
//
// Spans do not nest. A subtest that calls Setup or Run while its parent's Setup span is open waits for a token the
// parent only releases after its subtests finish, so in Blocking mode it deadlocks.
package envtest

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hashicorp/envguard/guard"
)

// Setup begins a guarded span that ends when tb and all its subtests have finished. The Guard is configured with
// DefaultConfig, read once per test binary.
func Setup(tb testing.TB) *guard.Guard {
	tb.Helper()
	cfg, err := processConfig()
	if err != nil {
		tb.Fatalf("envtest: invalid configuration: %s", err)
		return nil
	}
	return SetupWithConfig(tb, cfg)
}

// SetupWithConfig is Setup with an explicit guard.Config.
func SetupWithConfig(tb testing.TB, cfg guard.Config) *guard.Guard {
	tb.Helper()
	g, err := guard.NewWithConfig(context.Background(), cfg)
	if err != nil {
		tb.Fatalf("envtest: could not begin guarded span: %s", err)
		return nil
	}
	tb.Cleanup(func() {
		if err := g.Dispose(); err != nil {
			tb.Errorf("envtest: environment not restored: %s", err)
		}
	})
	return g
}

// Run runs body inside a guarded span that ends as soon as body does, whether it returns, panics, or stops the test
// with tb.FailNow.
func Run(tb testing.TB, body func()) {
	tb.Helper()
	cfg, err := processConfig()
	if err != nil {
		tb.Fatalf("envtest: invalid configuration: %s", err)
		return
	}
	RunWithConfig(tb, cfg, body)
}

// RunWithConfig is Run with an explicit guard.Config.
func RunWithConfig(tb testing.TB, cfg guard.Config, body func()) {
	tb.Helper()
	g, err := guard.NewWithConfig(context.Background(), cfg)
	if err != nil {
		tb.Fatalf("envtest: could not begin guarded span: %s", err)
		return
	}
	defer func() {
		if err := g.Dispose(); err != nil {
			tb.Errorf("envtest: environment not restored: %s", err)
		}
	}()
	body()
}

// Setenv sets key in the process environment and fails the test if the OS rejects it. Call it inside a guarded span.
func Setenv(tb testing.TB, key, value string) {
	tb.Helper()
	require.NoError(tb, os.Setenv(key, value))
}

// Unsetenv removes key from the process environment and fails the test if the OS rejects it. Call it inside a
// guarded span.
func Unsetenv(tb testing.TB, key string) {
	tb.Helper()
	require.NoError(tb, os.Unsetenv(key))
}
