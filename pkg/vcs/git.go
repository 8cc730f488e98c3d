/*
Copyright © 2025 ReleaseKit Authors
SPDX-License-Identifier: Apache-2.0
*/

package vcs

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

const gitExecutable = "git"

// Git is a Provider backed by the git executable, operating on the
// repository containing dir.
type Git struct {
	dir string
}

// NewGit creates a git-backed provider rooted at dir.
func NewGit(dir string) *Git {
	return &Git{dir: dir}
}

// Dir returns the working directory the provider operates in.
func (g *Git) Dir() string {
	return g.dir
}

// run executes a git subcommand in the provider directory and returns
// its trimmed stdout.
func (g *Git) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, gitExecutable, args...)
	cmd.Dir = g.dir

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	slog.Debug("running git", "args", args, "dir", g.dir)
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git %s: %w: %s",
			strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return strings.TrimSpace(stdout.String()), nil
}

// Available reports whether git exists on the path and dir is inside a
// work tree.
func (g *Git) Available(ctx context.Context) bool {
	if _, err := exec.LookPath(gitExecutable); err != nil {
		return false
	}
	_, err := g.run(ctx, "rev-parse", "--git-dir")
	return err == nil
}

// IsDirty reports whether the working tree has uncommitted changes.
// Untracked files are not considered dirty, matching the porcelain
// "??" status prefix.
func (g *Git) IsDirty(ctx context.Context) (bool, error) {
	out, err := g.run(ctx, "status", "--porcelain")
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "??") {
			return true, nil
		}
	}
	return false, nil
}

// CurrentTag returns the most recent tag reachable from HEAD, or false
// when the repository has no tags yet.
func (g *Git) CurrentTag(ctx context.Context) (string, bool, error) {
	out, err := g.run(ctx, "describe", "--tags", "--abbrev=0")
	if err == nil {
		return out, out != "", nil
	}

	// describe fails on a repository without tags; distinguish that
	// from a broken repository by listing tags.
	tags, listErr := g.run(ctx, "tag", "--list")
	if listErr != nil {
		return "", false, fmt.Errorf("%w: %v", ErrUnavailable, listErr)
	}
	if tags == "" {
		return "", false, nil
	}
	return "", false, fmt.Errorf("%w: %v", ErrUnavailable, err)
}

// CommitsSince returns the subjects of every commit after tag up to
// HEAD. With an empty tag the full history is returned. The subjects
// come back newest first, though no consumer depends on the order.
func (g *Git) CommitsSince(ctx context.Context, tag string) ([]string, error) {
	args := []string{"log", "--pretty=format:%s"}
	if tag != "" {
		args = append(args, fmt.Sprintf("%s..HEAD", tag))
	}

	out, err := g.run(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if out == "" {
		return nil, nil
	}
	return strings.Split(out, "\n"), nil
}

// TagExists reports whether the named tag exists in the repository.
func (g *Git) TagExists(ctx context.Context, name string) (bool, error) {
	existing, err := g.run(ctx, "tag", "--list", name)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return existing != "", nil
}

// CreateTag creates a lightweight tag at HEAD, refusing to move an
// existing tag.
func (g *Git) CreateTag(ctx context.Context, name string) error {
	exists, err := g.TagExists(ctx, name)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %q", ErrTagExists, name)
	}

	if _, err := g.run(ctx, "tag", name); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	slog.Info("created tag", "tag", name)
	return nil
}

// CheckIn stages the given paths and commits them.
func (g *Git) CheckIn(ctx context.Context, message string, paths ...string) error {
	args := append([]string{"add", "--"}, paths...)
	if _, err := g.run(ctx, args...); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if _, err := g.run(ctx, "commit", "-m", message); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	slog.Info("checked in manifest", "message", message, "paths", paths)
	return nil
}
