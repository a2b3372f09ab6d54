// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package guard

import (
	"errors"
	"fmt"
	"time"
)

// ErrScopeActive matches any ScopeContentionError with errors.Is.
var ErrScopeActive = errors.New("environment scope already active")

var _ error = &ScopeContentionError{}

// ScopeContentionError is returned by a NonBlocking construction when another Guard holds the token, or when other
// constructions are already queued for it. The caller may retry or switch to Blocking mode.
type ScopeContentionError struct {
	// Holder is the ID of the Guard that held the token, if any.
	Holder string
}

func (e *ScopeContentionError) Error() string {
	return fmt.Sprintf("%s, holder=%s", ErrScopeActive, e.Holder)
}

func (e *ScopeContentionError) Is(target error) bool {
	return target == ErrScopeActive
}

var _ error = &ContentionTimeoutError{}

// ContentionTimeoutError is returned by a Blocking construction that did not get the token within Config.Timeout.
type ContentionTimeoutError struct {
	Holder  string
	Timeout time.Duration
	err     error
}

func (e *ContentionTimeoutError) Error() string {
	return fmt.Sprintf("scope contention timeout, timeout=%s, holder=%s, error=%s", e.Timeout, e.Holder, e.err)
}

func (e *ContentionTimeoutError) Unwrap() error {
	return e.err
}

var _ error = ConfigError{}

// ConfigError indicates an invalid Config.
type ConfigError struct {
	config Config
	err    error
}

func (e ConfigError) Error() string {
	return fmt.Sprintf("invalid guard config, mode=%s, timeout=%s, error=%s", e.config.Mode, e.config.Timeout, e.err)
}

func (e ConfigError) Unwrap() error {
	return e.err
}

var _ error = &PanicError{}

// PanicError is the panic value raised by Do when its function panicked and the environment could not be restored
// afterwards.
type PanicError struct {
	// Value is what the function panicked with.
	Value any
	// Err is the restoration error, a *snapshot.RestorationError.
	Err error
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic in guarded span, value=%v, restore_error=%s", e.Value, e.Err)
}

func (e *PanicError) Unwrap() error {
	return e.Err
}
