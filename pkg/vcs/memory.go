/*
Copyright © 2025 ReleaseKit Authors
SPDX-License-Identifier: Apache-2.0
*/

package vcs

import (
	"context"
	"fmt"
)

// MemoryCommit records a CheckIn call against the Memory provider.
type MemoryCommit struct {
	Message string
	Paths   []string
}

// Memory is an in-memory Provider for tests and dry runs. The zero
// value is a usable, clean repository without tags or commits.
type Memory struct {
	Tag         string
	Subjects    []string
	Dirty       bool
	Unreachable bool

	CreatedTags []string
	CheckIns    []MemoryCommit
}

// Available reports the inverse of Unreachable.
func (m *Memory) Available(_ context.Context) bool {
	return !m.Unreachable
}

// IsDirty returns the configured dirty state.
func (m *Memory) IsDirty(_ context.Context) (bool, error) {
	if m.Unreachable {
		return false, ErrUnavailable
	}
	return m.Dirty, nil
}

// CurrentTag returns the configured tag, if any.
func (m *Memory) CurrentTag(_ context.Context) (string, bool, error) {
	if m.Unreachable {
		return "", false, ErrUnavailable
	}
	return m.Tag, m.Tag != "", nil
}

// CommitsSince returns the configured subject lines.
func (m *Memory) CommitsSince(_ context.Context, _ string) ([]string, error) {
	if m.Unreachable {
		return nil, ErrUnavailable
	}
	return m.Subjects, nil
}

// TagExists reports whether the tag was configured or created.
func (m *Memory) TagExists(_ context.Context, name string) (bool, error) {
	if m.Unreachable {
		return false, ErrUnavailable
	}
	if name == m.Tag {
		return true, nil
	}
	for _, t := range m.CreatedTags {
		if t == name {
			return true, nil
		}
	}
	return false, nil
}

// CreateTag records the tag, failing if it was already created or
// matches the configured current tag.
func (m *Memory) CreateTag(ctx context.Context, name string) error {
	if m.Unreachable {
		return ErrUnavailable
	}
	if exists, err := m.TagExists(ctx, name); err != nil {
		return err
	} else if exists {
		return fmt.Errorf("%w: %q", ErrTagExists, name)
	}
	m.CreatedTags = append(m.CreatedTags, name)
	return nil
}

// CheckIn records the commit.
func (m *Memory) CheckIn(_ context.Context, message string, paths ...string) error {
	if m.Unreachable {
		return ErrUnavailable
	}
	m.CheckIns = append(m.CheckIns, MemoryCommit{Message: message, Paths: paths})
	return nil
}
