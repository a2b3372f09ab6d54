// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package redact hides sensitive environment values before they are written out.
package redact

import (
	"crypto/md5"
	"fmt"
	"regexp"
)

const DefaultReplace = "<REDACTED>"

// Redact replaces every match of a regular expression in a value.
type Redact struct {
	ID      string `json:"id"`
	Replace string `json:"replace"`

	re *regexp.Regexp
}

// New compiles matcher into a Redact. id defaults to a hash of matcher and replace defaults to DefaultReplace.
// replace may refer to capture groups of the matcher, e.g. "${1}".
func New(matcher, id, replace string) (*Redact, error) {
	re, err := regexp.Compile(matcher)
	if err != nil {
		return nil, fmt.Errorf("invalid redaction, matcher=%s, error=%w", matcher, err)
	}
	if id == "" {
		id = fmt.Sprintf("%x", md5.Sum([]byte(matcher)))
	}
	if replace == "" {
		replace = DefaultReplace
	}
	return &Redact{ID: id, Replace: replace, re: re}, nil
}

// Apply returns value with every match replaced.
func (x *Redact) Apply(value string) string {
	if value == "" {
		return value
	}
	return x.re.ReplaceAllString(value, x.Replace)
}

// String applies redactions to value in order. Earlier redactions win: a later matcher sees the output of the
// earlier ones, including their replacement text.
func String(value string, redactions []*Redact) string {
	for _, x := range redactions {
		value = x.Apply(value)
	}
	return value
}

// Defaults returns the value redactions applied when no configuration provides its own.
func Defaults() []*Redact {
	return []*Redact{
		mustNew(`(://)[^/\s:@]+:[^/\s@]+@`, "url-credentials", "${1}"+DefaultReplace+"@"),
		mustNew(`\b(?:AKIA|ASIA)[0-9A-Z]{16}\b`, "aws-access-key-id", ""),
		mustNew(`(?s)-----BEGIN [A-Z ]*PRIVATE KEY-----.*?-----END [A-Z ]*PRIVATE KEY-----`, "private-key", ""),
	}
}

func mustNew(matcher, id, replace string) *Redact {
	x, err := New(matcher, id, replace)
	if err != nil {
		panic(err)
	}
	return x
}
