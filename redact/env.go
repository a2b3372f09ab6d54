// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package redact

import (
	"fmt"
	"path"
	"strings"

	"github.com/hashicorp/envguard/snapshot"
)

// DefaultMaskKeys are the variable name patterns whose values are hidden entirely unless configuration says otherwise.
var DefaultMaskKeys = []string{
	"*TOKEN*",
	"*SECRET*",
	"*PASSWORD*",
	"*PASSWD*",
	"*CREDENTIAL*",
	"*_KEY",
}

// Env redacts environment variables. Values of variables whose name matches one of MaskKeys are replaced with
// DefaultReplace outright; all other values go through Redactions.
type Env struct {
	MaskKeys   []string
	Redactions []*Redact
}

// NewEnv validates the mask patterns, which use path.Match syntax and are matched case-insensitively.
func NewEnv(maskKeys []string, redactions []*Redact) (*Env, error) {
	keys := make([]string, len(maskKeys))
	for i, k := range maskKeys {
		k = strings.ToUpper(k)
		if _, err := path.Match(k, ""); err != nil {
			return nil, fmt.Errorf("invalid mask pattern, pattern=%s, error=%w", maskKeys[i], err)
		}
		keys[i] = k
	}
	return &Env{MaskKeys: keys, Redactions: redactions}, nil
}

// Masked reports whether the value of key is hidden entirely.
func (e *Env) Masked(key string) bool {
	upper := strings.ToUpper(key)
	for _, pattern := range e.MaskKeys {
		// Patterns were validated in NewEnv.
		if ok, _ := path.Match(pattern, upper); ok {
			return true
		}
	}
	return false
}

// Value returns the redacted form of one variable's value.
func (e *Env) Value(key, value string) string {
	if e.Masked(key) {
		return DefaultReplace
	}
	return String(value, e.Redactions)
}

// Snapshot returns a copy of s with every value redacted. The result is for display and comparison only; restoring
// it would write redacted values into the environment.
func (e *Env) Snapshot(s snapshot.Snapshot) snapshot.Snapshot {
	vars := s.Map()
	for k, v := range vars {
		vars[k] = e.Value(k, v)
	}
	return snapshot.FromMap(vars)
}
