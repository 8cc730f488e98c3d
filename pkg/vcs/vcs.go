/*
Copyright © 2025 ReleaseKit Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package vcs abstracts the version control system as a capability
// interface. The bump and suggestion logic never depend on a concrete
// VCS; they consume a Provider. Two implementations exist: Git, which
// shells out to the git executable, and Memory, used in tests.
package vcs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/releasekit/pepver/pkg/version"
)

// Error types for VCS failures
var (
	// ErrUnavailable indicates the VCS executable or repository cannot be reached.
	ErrUnavailable = errors.New("version control system is not available")
	// ErrTagExists indicates the tag to be created already exists.
	ErrTagExists = errors.New("tag already exists")
	// ErrNoRepository indicates no repository root was found above the given path.
	ErrNoRepository = errors.New("no repository found")
)

// Provider is the capability set consumed by the core. Implementations
// must be safe for sequential use within a single invocation; no
// concurrent use is required.
type Provider interface {
	// Available reports whether the provider can serve requests at all.
	Available(ctx context.Context) bool

	// IsDirty reports whether the working tree has uncommitted changes.
	// Untracked files do not count as dirty.
	IsDirty(ctx context.Context) (bool, error)

	// CurrentTag returns the most recent release tag reachable from the
	// current head. The second return is false when no tag exists yet.
	CurrentTag(ctx context.Context) (string, bool, error)

	// CommitsSince returns the subject lines of every commit after the
	// given tag, up to and including the current head. An empty tag
	// means the full history.
	CommitsSince(ctx context.Context, tag string) ([]string, error)

	// TagExists reports whether a tag with the given name exists.
	TagExists(ctx context.Context, name string) (bool, error)

	// CreateTag creates a lightweight tag with the given name at the
	// current head, failing with ErrTagExists if it already exists.
	CreateTag(ctx context.Context, name string) error

	// CheckIn stages the given paths and commits them with the message.
	CheckIn(ctx context.Context, message string, paths ...string) error
}

// TagName renders the tag for a version, with or without the "v" prefix.
func TagName(v version.Version, prependV bool) string {
	if prependV {
		return "v" + v.String()
	}
	return v.String()
}

// ParseTag converts a tag name back into a version, tolerating the "v"
// prefix the same way Parse does.
func ParseTag(tag string) (version.Version, error) {
	return version.Parse(tag)
}

// FindRepositoryRoot walks up from start looking for a ".git" entry
// (a directory for regular clones, a file for worktrees and submodules)
// and returns the directory containing it.
func FindRepositoryRoot(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving %q: %w", start, err)
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%w above %s", ErrNoRepository, start)
		}
		dir = parent
	}
}
