// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package version reports the version of envguard. Release builds stamp the package variables with -ldflags; other
// builds fall back to the VCS information the Go toolchain embeds.
package version

import (
	"runtime/debug"
	"strings"
)

const slug = "envguard v"

var (
	// version must be of the format <MAJOR>.<MINOR>.<PATCH>.
	version = "0.1.0"

	// prerelease is empty for final releases, or a marker such as "dev", "beta" or "rc1".
	prerelease = "dev"

	// metadata is optional semver build metadata.
	metadata string

	// gitCommit and buildDate are set by the release build.
	gitCommit string
	buildDate string
)

// Version is a container for version information.
type Version struct {
	Version    string `json:"version,omitempty"`
	Prerelease string `json:"prerelease,omitempty"`
	Metadata   string `json:"build_metadata,omitempty"`
	Revision   string `json:"revision,omitempty"`
	BuildDate  string `json:"build_date,omitempty"`
}

// GetVersion produces a Version from the package variables, filling Revision and BuildDate from the embedded build
// info when the build did not set them.
func GetVersion() Version {
	v := Version{
		Version:    version,
		Prerelease: prerelease,
		Metadata:   metadata,
		Revision:   gitCommit,
		BuildDate:  buildDate,
	}
	if v.Revision != "" && v.BuildDate != "" {
		return v
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		v = v.withBuildSettings(info.Settings)
	}
	return v
}

func (v Version) withBuildSettings(settings []debug.BuildSetting) Version {
	for _, s := range settings {
		switch s.Key {
		case "vcs.revision":
			if v.Revision == "" {
				v.Revision = s.Value
			}
		case "vcs.time":
			if v.BuildDate == "" {
				v.BuildDate = s.Value
			}
		}
	}
	return v
}

// SemanticVersion produces a semantic version number, e.g. "1.2.3-rc1+meta".
func (v Version) SemanticVersion() string {
	var b strings.Builder
	b.WriteString(v.Version)
	if v.Prerelease != "" {
		b.WriteString("-" + v.Prerelease)
	}
	if v.Metadata != "" {
		b.WriteString("+" + v.Metadata)
	}
	return b.String()
}

// FullVersionNumber produces a human-readable version line. The revision is included when rev is true, and the build
// date whenever it is known.
func (v Version) FullVersionNumber(rev bool) string {
	s := slug + v.SemanticVersion()
	if rev && v.Revision != "" {
		s += " (" + v.Revision + ")"
	}
	if v.BuildDate != "" {
		s += ", built " + v.BuildDate
	}
	return s
}
