// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package envtest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hashicorp/envguard/guard"
	"github.com/hashicorp/envguard/snapshot"
)

const testKey = "ENVGUARD_ENVTEST_FOO"

func TestMain(m *testing.M) {
	os.Exit(RunMain(m))
}

// fakeT records cleanups and failures instead of acting on them.
type fakeT struct {
	*testing.T
	cleanups []func()
	errors   []string
	fatals   []string
}

func (f *fakeT) Cleanup(fn func()) {
	f.cleanups = append(f.cleanups, fn)
}

func (f *fakeT) Errorf(format string, args ...any) {
	f.errors = append(f.errors, fmt.Sprintf(format, args...))
}

func (f *fakeT) Fatalf(format string, args ...any) {
	f.fatals = append(f.fatals, fmt.Sprintf(format, args...))
}

func (f *fakeT) runCleanups() {
	for i := len(f.cleanups) - 1; i >= 0; i-- {
		f.cleanups[i]()
	}
}

func TestSetup(t *testing.T) {
	require.NoError(t, os.Unsetenv(testKey))

	ft := &fakeT{T: t}
	g := Setup(ft)
	require.NotNil(t, g)
	require.Len(t, ft.cleanups, 1)

	Setenv(t, testKey, "BAR")
	assert.Equal(t, "BAR", os.Getenv(testKey))

	ft.runCleanups()
	assert.True(t, g.Disposed())
	assert.Empty(t, ft.errors)
	_, ok := os.LookupEnv(testKey)
	assert.False(t, ok)
}

func TestSetup_ConfigReadOnce(t *testing.T) {
	_, err := processConfig()
	require.NoError(t, err)

	t.Setenv(EnvMode, "sparkly")
	t.Setenv(EnvTimeout, "not-a-duration")

	ft := &fakeT{T: t}
	g := Setup(ft)
	require.NotNil(t, g)
	assert.Empty(t, ft.fatals)
	ft.runCleanups()

	ran := false
	Run(ft, func() { ran = true })
	assert.True(t, ran)
	assert.Empty(t, ft.fatals)
	assert.Empty(t, ft.errors)
}

func TestSetupWithConfig_Contention(t *testing.T) {
	a, err := guard.New()
	require.NoError(t, err)
	defer a.Dispose()

	ft := &fakeT{T: t}
	g := SetupWithConfig(ft, guard.Config{Mode: guard.NonBlocking})
	assert.Nil(t, g)
	require.Len(t, ft.fatals, 1)
	assert.Contains(t, ft.fatals[0], a.ID())
	assert.Empty(t, ft.cleanups)
}

func TestRun(t *testing.T) {
	require.NoError(t, os.Setenv(testKey, "OLD"))
	defer os.Unsetenv(testKey)

	Run(t, func() {
		Setenv(t, testKey, "NEW")
		Setenv(t, testKey+"_ADDED", "1")
		assert.Equal(t, "NEW", os.Getenv(testKey))
	})

	assert.Equal(t, "OLD", os.Getenv(testKey))
	_, ok := os.LookupEnv(testKey + "_ADDED")
	assert.False(t, ok)
}

func TestRun_UnsetIsRestored(t *testing.T) {
	require.NoError(t, os.Setenv(testKey, "BAR3"))
	defer os.Unsetenv(testKey)

	Run(t, func() {
		Unsetenv(t, testKey)
		_, ok := os.LookupEnv(testKey)
		assert.False(t, ok)
	})

	assert.Equal(t, "BAR3", os.Getenv(testKey))
}

func TestRun_Panic(t *testing.T) {
	require.NoError(t, os.Unsetenv(testKey))

	assert.PanicsWithValue(t, "boom", func() {
		Run(t, func() {
			Setenv(t, testKey, "BAR")
			panic("boom")
		})
	})

	_, ok := os.LookupEnv(testKey)
	assert.False(t, ok)

	// The token was released on the way out.
	g, err := guard.NewWithConfig(context.Background(), guard.Config{Mode: guard.NonBlocking})
	require.NoError(t, err)
	require.NoError(t, g.Dispose())
}

type rejectingEnvironment struct {
	*snapshot.MapEnvironment
}

func (rejectingEnvironment) Setenv(key, value string) error {
	return errors.New("read-only environment")
}

func TestRunWithConfig_RestorationFailure(t *testing.T) {
	env := rejectingEnvironment{snapshot.NewMapEnvironment(map[string]string{"FOO": "OLD"})}
	cfg := guard.Config{Environment: env, Logger: hclog.NewNullLogger()}

	ft := &fakeT{T: t}
	RunWithConfig(ft, cfg, func() {
		require.NoError(t, env.MapEnvironment.Setenv("FOO", "NEW"))
	})

	require.Len(t, ft.errors, 1)
	assert.Contains(t, ft.errors[0], "environment not restored")
	assert.Contains(t, ft.errors[0], "key=FOO")
}

// The two tests below run in parallel and would overwrite each other's value without the guard.
func TestParallelSpansA(t *testing.T) {
	t.Parallel()
	Setup(t)

	_, ok := os.LookupEnv(testKey)
	require.False(t, ok)
	Setenv(t, testKey, "1")

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, "1", os.Getenv(testKey))
}

func TestParallelSpansB(t *testing.T) {
	t.Parallel()
	Setup(t)

	_, ok := os.LookupEnv(testKey)
	require.False(t, ok)
	Setenv(t, testKey, "2")

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, "2", os.Getenv(testKey))
}
