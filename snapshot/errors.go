// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package snapshot

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
)

const (
	// OpSet marks a failure to set a variable back to its captured value.
	OpSet = "set"
	// OpUnset marks a failure to remove a variable that was not defined at capture time.
	OpUnset = "unset"
)

var _ error = VarError{}

// VarError is returned when the environment rejects a single set or unset during restoration.
type VarError struct {
	Op  string
	Key string
	Err error
}

func (e VarError) Error() string {
	return fmt.Sprintf("environment %s rejected, key=%s, error=%s", e.Op, e.Key, e.Err)
}

func (e VarError) Unwrap() error {
	return e.Err
}

var _ error = &RestorationError{}

// RestorationError is returned when one or more variables could not be restored. The environment no longer matches
// the captured Snapshot, so callers should treat it as a hard failure of the enclosing test.
type RestorationError struct {
	err *multierror.Error
}

func (e *RestorationError) Error() string {
	return fmt.Sprintf("environment restoration incomplete, failures=%d: %s", e.err.Len(), e.err.Error())
}

func (e *RestorationError) Unwrap() error {
	return e.err
}

// Failures returns every variable that could not be restored, in the order they were attempted.
func (e *RestorationError) Failures() []VarError {
	failures := make([]VarError, 0, e.err.Len())
	for _, err := range e.err.Errors {
		var ve VarError
		if errors.As(err, &ve) {
			failures = append(failures, ve)
		}
	}
	return failures
}

func listFormat(errs []error) string {
	msgs := make([]string, len(errs))
	for i, err := range errs {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}
