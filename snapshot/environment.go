// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package snapshot

import "os"

// Environment is the set of operations a Snapshot needs from an environment variable table.
type Environment interface {
	Environ() []string
	Setenv(key, value string) error
	Unsetenv(key string) error
}

// OS is the environment of the current process.
var OS Environment = osEnvironment{}

var _ Environment = osEnvironment{}

type osEnvironment struct{}

func (osEnvironment) Environ() []string {
	return os.Environ()
}

func (osEnvironment) Setenv(key, value string) error {
	return os.Setenv(key, value)
}

func (osEnvironment) Unsetenv(key string) error {
	return os.Unsetenv(key)
}
