// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package snapshot captures the environment variable table of a process and restores it later.
//
// A Snapshot is immutable once captured. Restoring it removes every variable that was defined after the capture
// and sets every captured variable back to its captured value, so the table ends up identical to the one that was
// captured, including variables that were unset at capture time.
package snapshot

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// Snapshot is an immutable mapping of environment variable names to values.
type Snapshot struct {
	vars map[string]string
}

// Capture reads every variable defined in the process environment.
func Capture() Snapshot {
	return CaptureFrom(OS)
}

// CaptureFrom reads every variable defined in env.
func CaptureFrom(env Environment) Snapshot {
	entries := env.Environ()
	vars := make(map[string]string, len(entries))
	for _, kv := range entries {
		k, v, ok := parseEntry(kv)
		if !ok {
			continue
		}
		vars[k] = v
	}
	return Snapshot{vars: vars}
}

// FromMap builds a Snapshot holding a copy of vars.
func FromMap(vars map[string]string) Snapshot {
	cp := make(map[string]string, len(vars))
	for k, v := range vars {
		cp[k] = v
	}
	return Snapshot{vars: cp}
}

// parseEntry splits a KEY=VALUE entry. Names beginning with '=' are the per-drive working directories Windows keeps
// in its environment block; they cannot be set through the environment API, so they are not part of a Snapshot.
func parseEntry(kv string) (string, string, bool) {
	if kv == "" || kv[0] == '=' {
		return "", "", false
	}
	return strings.Cut(kv, "=")
}

// Restore sets the process environment back to s.
func (s Snapshot) Restore() error {
	return s.RestoreTo(OS)
}

// RestoreTo sets env back to s. Variables that are not present in s are removed, then every variable in s is set to
// its captured value. A rejected set or unset does not stop the restoration; every failure is collected and returned
// as a *RestorationError once all other variables have been restored.
func (s Snapshot) RestoreTo(env Environment) error {
	var result *multierror.Error

	current := CaptureFrom(env)
	for _, k := range current.Keys() {
		if _, ok := s.vars[k]; ok {
			continue
		}
		if err := env.Unsetenv(k); err != nil {
			result = multierror.Append(result, VarError{Op: OpUnset, Key: k, Err: err})
		}
	}

	for _, k := range s.Keys() {
		if err := env.Setenv(k, s.vars[k]); err != nil {
			result = multierror.Append(result, VarError{Op: OpSet, Key: k, Err: err})
		}
	}

	if result == nil {
		return nil
	}
	result.ErrorFormat = listFormat
	return &RestorationError{err: result}
}

// Lookup returns the captured value of key and whether it was defined.
func (s Snapshot) Lookup(key string) (string, bool) {
	v, ok := s.vars[key]
	return v, ok
}

// Len returns the number of captured variables.
func (s Snapshot) Len() int {
	return len(s.vars)
}

// Keys returns the captured variable names in sorted order.
func (s Snapshot) Keys() []string {
	keys := make([]string, 0, len(s.vars))
	for k := range s.vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Map returns a copy of the captured variables.
func (s Snapshot) Map() map[string]string {
	cp := make(map[string]string, len(s.vars))
	for k, v := range s.vars {
		cp[k] = v
	}
	return cp
}

// Equal reports whether s and other hold the same names with the same values.
func (s Snapshot) Equal(other Snapshot) bool {
	if len(s.vars) != len(other.vars) {
		return false
	}
	for k, v := range s.vars {
		if ov, ok := other.vars[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

func (s Snapshot) MarshalJSON() ([]byte, error) {
	if s.vars == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(s.vars)
}

func (s *Snapshot) UnmarshalJSON(b []byte) error {
	var vars map[string]string
	if err := json.Unmarshal(b, &vars); err != nil {
		return err
	}
	*s = FromMap(vars)
	return nil
}

// Changes lists the variable names that differ between two snapshots.
type Changes struct {
	Added   []string `json:"added"`
	Removed []string `json:"removed"`
	Changed []string `json:"changed"`
}

// Empty reports whether no variable differs.
func (c Changes) Empty() bool {
	return len(c.Added) == 0 && len(c.Removed) == 0 && len(c.Changed) == 0
}

// Diff reports the variables added, removed and changed when going from one snapshot to another. Each list is sorted.
func Diff(from, to Snapshot) Changes {
	c := Changes{
		Added:   make([]string, 0),
		Removed: make([]string, 0),
		Changed: make([]string, 0),
	}
	for _, k := range to.Keys() {
		old, ok := from.vars[k]
		switch {
		case !ok:
			c.Added = append(c.Added, k)
		case old != to.vars[k]:
			c.Changed = append(c.Changed, k)
		}
	}
	for _, k := range from.Keys() {
		if _, ok := to.vars[k]; !ok {
			c.Removed = append(c.Removed, k)
		}
	}
	return c
}
