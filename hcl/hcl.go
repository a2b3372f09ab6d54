// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package hcl decodes envguard configuration files.
//
//	log_level = "debug"
//
//	guard {
//	  mode    = "blocking"
//	  timeout = "30s"
//	}
//
//	snapshot {
//	  mask_keys = ["*TOKEN*", "*SECRET*"]
//
//	  redact "regex" {
//	    match   = "AKIA[0-9A-Z]{16}"
//	    replace = "<AWS KEY>"
//	  }
//	}
package hcl

import (
	"fmt"
	"regexp"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/mitchellh/go-homedir"

	"github.com/hashicorp/envguard/guard"
	"github.com/hashicorp/envguard/redact"
)

type HCL struct {
	LogLevel string    `hcl:"log_level,optional" json:"log_level"`
	Guard    *Guard    `hcl:"guard,block" json:"guard"`
	Snapshot *Snapshot `hcl:"snapshot,block" json:"snapshot"`
}

type Guard struct {
	Mode    string `hcl:"mode,optional" json:"mode"`
	Timeout string `hcl:"timeout,optional" json:"timeout"`
}

type Snapshot struct {
	// MaskKeys replaces redact.DefaultMaskKeys when set.
	MaskKeys   []string `hcl:"mask_keys,optional" json:"mask_keys"`
	Redactions []Redact `hcl:"redact,block" json:"redactions"`
}

type Redact struct {
	Label   string `hcl:"name,label"`
	ID      string `hcl:"id,optional"`
	Match   string `hcl:"match"`
	Replace string `hcl:"replace,optional"`
}

// Parse takes a file path, which may start with "~", and decodes the file from disk into HCL types.
func Parse(path string) (HCL, error) {
	var h HCL
	expanded, err := homedir.Expand(path)
	if err != nil {
		return HCL{}, fmt.Errorf("could not expand config path, path=%s, err=%w", path, err)
	}
	err = hclsimple.DecodeFile(expanded, nil, &h)
	if err != nil {
		return HCL{}, err
	}
	return h, nil
}

// GuardConfig builds a guard.Config from the guard block. Fields the file leaves out keep their zero values. The
// logger is not part of the file and is left for the caller to set.
func (h HCL) GuardConfig() (guard.Config, error) {
	var cfg guard.Config
	if h.Guard == nil {
		return cfg, nil
	}
	mode, err := guard.ParseMode(h.Guard.Mode)
	if err != nil {
		return cfg, err
	}
	cfg.Mode = mode
	if h.Guard.Timeout != "" {
		d, err := time.ParseDuration(h.Guard.Timeout)
		if err != nil {
			return cfg, fmt.Errorf("invalid guard timeout, timeout=%s, err=%w", h.Guard.Timeout, err)
		}
		cfg.Timeout = d
	}
	return cfg, nil
}

// Level returns the configured log level, or hclog.NoLevel when none is set.
func (h HCL) Level() hclog.Level {
	if h.LogLevel == "" {
		return hclog.NoLevel
	}
	return hclog.LevelFromString(h.LogLevel)
}

// EnvRedactor builds the redactor for snapshot output. The default mask patterns and value redactions are used
// unless the snapshot block provides its own.
func (h HCL) EnvRedactor() (*redact.Env, error) {
	maskKeys := redact.DefaultMaskKeys
	redactions := redact.Defaults()

	if h.Snapshot != nil && h.Snapshot.MaskKeys != nil {
		maskKeys = h.Snapshot.MaskKeys
	}
	if h.Snapshot != nil && len(h.Snapshot.Redactions) > 0 {
		var err error
		if redactions, err = MapRedacts(h.Snapshot.Redactions); err != nil {
			return nil, err
		}
	}
	return redact.NewEnv(maskKeys, redactions)
}

// MapRedacts maps HCL redactions to "real" `redact.Redact`s
func MapRedacts(redactions []Redact) ([]*redact.Redact, error) {
	err := ValidateRedactions(redactions)
	if err != nil {
		return nil, err
	}

	s := make([]*redact.Redact, len(redactions))
	for i, r := range redactions {
		matcher := r.Match
		if r.Label == "literal" {
			matcher = regexp.QuoteMeta(r.Match)
		}
		red, err := redact.New(matcher, r.ID, r.Replace)
		if err != nil {
			return nil, err
		}
		s[i] = red
	}
	return s, nil
}

// ValidateRedactions takes a slice of redactions and ensures they match valid names.
func ValidateRedactions(redactions []Redact) error {
	hclog.L().Trace("hcl.ValidateRedactions()", "redactions", redactions)
	for _, r := range redactions {
		switch r.Label {
		case "regex":
			_, err := regexp.Compile(r.Match)
			if err != nil {
				return fmt.Errorf("could not compile regex, matcher=%s, err=%s", r.Match, err)
			}
		case "literal":
			continue
		default:
			return fmt.Errorf("invalid redact name, name=%s", r.Label)
		}
	}
	return nil
}
