/*
Copyright © 2025 ReleaseKit Authors
SPDX-License-Identifier: Apache-2.0
*/

package vcs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/releasekit/pepver/pkg/version"
)

func TestTagName(t *testing.T) {
	v := version.MustParse("1.2.3rc1")

	assert.Equal(t, "v1.2.3rc1", TagName(v, true))
	assert.Equal(t, "1.2.3rc1", TagName(v, false))
}

func TestParseTag(t *testing.T) {
	v, err := ParseTag("v1.2.3")
	require.NoError(t, err)
	assert.Equal(t, version.New(1, 2, 3), v)

	_, err = ParseTag("release-one")
	assert.ErrorIs(t, err, version.ErrInvalidFormat)
}

func TestFindRepositoryRoot(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, ".git"), 0o755))
	nested := filepath.Join(root, "a", "b", "c")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	found, err := FindRepositoryRoot(nested)
	require.NoError(t, err)
	assert.Equal(t, root, found)
}

func TestFindRepositoryRootGitFile(t *testing.T) {
	// Worktrees keep .git as a file, not a directory.
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ".git"), []byte("gitdir: elsewhere\n"), 0o644))

	found, err := FindRepositoryRoot(root)
	require.NoError(t, err)
	assert.Equal(t, root, found)
}

func TestFindRepositoryRootNotFound(t *testing.T) {
	_, err := FindRepositoryRoot(t.TempDir())
	assert.ErrorIs(t, err, ErrNoRepository)
}

func TestMemoryProvider(t *testing.T) {
	ctx := context.Background()
	m := &Memory{
		Tag:      "v1.0.0",
		Subjects: []string{"feat: one", "fix: two"},
	}

	assert.True(t, m.Available(ctx))

	dirty, err := m.IsDirty(ctx)
	require.NoError(t, err)
	assert.False(t, dirty)

	tag, ok, err := m.CurrentTag(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "v1.0.0", tag)

	subjects, err := m.CommitsSince(ctx, tag)
	require.NoError(t, err)
	assert.Len(t, subjects, 2)

	exists, err := m.TagExists(ctx, "v1.1.0")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, m.CreateTag(ctx, "v1.1.0"))
	assert.Equal(t, []string{"v1.1.0"}, m.CreatedTags)

	for _, tag := range []string{"v1.0.0", "v1.1.0"} {
		exists, err = m.TagExists(ctx, tag)
		require.NoError(t, err)
		assert.True(t, exists, tag)
	}

	err = m.CreateTag(ctx, "v1.1.0")
	assert.ErrorIs(t, err, ErrTagExists)

	err = m.CreateTag(ctx, "v1.0.0")
	assert.ErrorIs(t, err, ErrTagExists)

	require.NoError(t, m.CheckIn(ctx, "chore: bump", "pyproject.toml"))
	require.Len(t, m.CheckIns, 1)
	assert.Equal(t, "chore: bump", m.CheckIns[0].Message)
}

func TestMemoryProviderUnreachable(t *testing.T) {
	ctx := context.Background()
	m := &Memory{Unreachable: true}

	assert.False(t, m.Available(ctx))

	_, err := m.IsDirty(ctx)
	assert.ErrorIs(t, err, ErrUnavailable)
	_, _, err = m.CurrentTag(ctx)
	assert.ErrorIs(t, err, ErrUnavailable)
	_, err = m.CommitsSince(ctx, "")
	assert.ErrorIs(t, err, ErrUnavailable)
	_, err = m.TagExists(ctx, "v1")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, m.CreateTag(ctx, "v1"), ErrUnavailable)
	assert.ErrorIs(t, m.CheckIn(ctx, "msg"), ErrUnavailable)
}

func TestMemoryImplementsProvider(t *testing.T) {
	var _ Provider = (*Memory)(nil)
	var _ Provider = (*Git)(nil)
}

func TestGitNoTagsMeansNoError(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, ok, err := repo.CurrentTag(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGitTagLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	commitFile(t, repo, "a.txt", "feat: first change")

	exists, err := repo.TagExists(ctx, "v0.1.0")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, repo.CreateTag(ctx, "v0.1.0"))

	exists, err = repo.TagExists(ctx, "v0.1.0")
	require.NoError(t, err)
	assert.True(t, exists)

	tag, ok, err := repo.CurrentTag(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "v0.1.0", tag)

	err = repo.CreateTag(ctx, "v0.1.0")
	assert.ErrorIs(t, err, ErrTagExists)

	commitFile(t, repo, "b.txt", "fix: second change")
	commitFile(t, repo, "c.txt", "docs: third change")

	subjects, err := repo.CommitsSince(ctx, tag)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"fix: second change", "docs: third change"}, subjects)
}

func TestGitIsDirty(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	commitFile(t, repo, "tracked.txt", "chore: baseline")

	dirty, err := repo.IsDirty(ctx)
	require.NoError(t, err)
	assert.False(t, dirty)

	// Untracked files do not make the tree dirty.
	require.NoError(t, os.WriteFile(filepath.Join(repo.Dir(), "untracked.txt"), []byte("x"), 0o644))
	dirty, err = repo.IsDirty(ctx)
	require.NoError(t, err)
	assert.False(t, dirty)

	// Modifying a tracked file does.
	require.NoError(t, os.WriteFile(filepath.Join(repo.Dir(), "tracked.txt"), []byte("changed"), 0o644))
	dirty, err = repo.IsDirty(ctx)
	require.NoError(t, err)
	assert.True(t, dirty)
}

// newTestRepo initializes a scratch git repository, skipping the test
// when git is not installed.
func newTestRepo(t *testing.T) *Git {
	t.Helper()

	dir := t.TempDir()
	repo := NewGit(dir)
	ctx := context.Background()

	if _, err := repo.run(ctx, "--version"); err != nil {
		t.Skipf("git not installed: %v", err)
	}
	if _, err := repo.run(ctx, "init"); err != nil {
		t.Fatalf("git init: %v", err)
	}

	for _, args := range [][]string{
		{"config", "user.name", "test"},
		{"config", "user.email", "test@example.com"},
		{"config", "commit.gpgsign", "false"},
	} {
		if _, err := repo.run(ctx, args...); err != nil {
			t.Fatalf("git %v: %v", args, err)
		}
	}
	return repo
}

func commitFile(t *testing.T, repo *Git, name, message string) {
	t.Helper()

	require.NoError(t, os.WriteFile(filepath.Join(repo.Dir(), name), []byte(name), 0o644))
	if err := repo.CheckIn(context.Background(), message, name); err != nil {
		t.Fatalf("check in %s: %v", name, err)
	}
}

func TestGitUnavailableOutsideRepository(t *testing.T) {
	repo := NewGit(t.TempDir())
	ctx := context.Background()

	if _, err := repo.run(ctx, "--version"); err != nil {
		t.Skipf("git not installed: %v", err)
	}

	assert.False(t, repo.Available(ctx))

	_, err := repo.IsDirty(ctx)
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}
