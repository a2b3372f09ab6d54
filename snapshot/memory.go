// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package snapshot

import (
	"fmt"
	"strings"
	"sync"
)

var _ Environment = &MapEnvironment{}

// MapEnvironment is an in-memory Environment. It applies the same name and value rules as the process environment
// on Unix, which makes it useful for exercising restoration without touching the real process table.
type MapEnvironment struct {
	mu   sync.Mutex
	vars map[string]string
}

// NewMapEnvironment returns a MapEnvironment seeded with a copy of vars.
func NewMapEnvironment(vars map[string]string) *MapEnvironment {
	cp := make(map[string]string, len(vars))
	for k, v := range vars {
		cp[k] = v
	}
	return &MapEnvironment{vars: cp}
}

func (m *MapEnvironment) Environ() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	entries := make([]string, 0, len(m.vars))
	for k, v := range m.vars {
		entries = append(entries, k+"="+v)
	}
	return entries
}

func (m *MapEnvironment) Setenv(key, value string) error {
	if err := validate(key, value); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.vars == nil {
		m.vars = make(map[string]string)
	}
	m.vars[key] = value
	return nil
}

func (m *MapEnvironment) Unsetenv(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.vars, key)
	return nil
}

// Lookup returns the value of key and whether it is defined.
func (m *MapEnvironment) Lookup(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.vars[key]
	return v, ok
}

func validate(key, value string) error {
	switch {
	case key == "":
		return fmt.Errorf("invalid environment name, name is empty")
	case strings.ContainsAny(key, "=\x00"):
		return fmt.Errorf("invalid environment name, name=%q", key)
	case strings.ContainsRune(value, 0):
		return fmt.Errorf("invalid environment value, name=%q", key)
	}
	return nil
}
