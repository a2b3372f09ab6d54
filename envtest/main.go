// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package envtest

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hashicorp/envguard/snapshot"
)

// Runner is satisfied by *testing.M.
type Runner interface {
	Run() int
}

// RunMain runs the tests in m and checks that they left the environment as they found it. Variables changed outside
// of a guarded span are reported, the environment is restored, and a passing run is turned into a failing one.
//
//	func TestMain(m *testing.M) {
//		os.Exit(envtest.RunMain(m))
//	}
func RunMain(m Runner) int {
	return runMain(m, os.Stderr)
}

func runMain(m Runner, w io.Writer) int {
	before := snapshot.Capture()
	code := m.Run()

	changes := snapshot.Diff(before, snapshot.Capture())
	if changes.Empty() {
		return code
	}

	_, _ = fmt.Fprintf(w, "envtest: tests leaked environment changes, added=[%s], removed=[%s], changed=[%s]\n",
		strings.Join(changes.Added, ","), strings.Join(changes.Removed, ","), strings.Join(changes.Changed, ","))
	if err := before.Restore(); err != nil {
		_, _ = fmt.Fprintf(w, "envtest: %s\n", err)
	}
	if code == 0 {
		return 1
	}
	return code
}
