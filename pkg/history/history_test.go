/*
Copyright © 2025 ReleaseKit Authors
SPDX-License-Identifier: Apache-2.0
*/

package history

import (
	"testing"

	"github.com/releasekit/pepver/pkg/bump"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		subject  string
		category Category
		breaking bool
	}{
		{"feature", "feat: add suggestion policy", CategoryFeature, false},
		{"feature with scope", "feat(parser): accept rc spelling", CategoryFeature, false},
		{"breaking feature", "feat!: drop legacy manifest keys", CategoryFeature, true},
		{"breaking feature with scope", "feat(api)!: rename bump endpoint", CategoryFeature, true},
		{"fix", "fix: handle empty tag list", CategoryFix, false},
		{"perf", "perf: cache compiled pattern", CategoryPerf, false},
		{"refactor", "refactor: extract vcs interface", CategoryRefactor, false},
		{"chore", "chore: bump dependencies", CategoryChore, false},
		{"docs", "docs: document dirty-tree guard", CategoryDocs, false},
		{"build", "build: pin toolchain", CategoryBuild, false},
		{"style", "style: gofmt", CategoryStyle, false},
		{"test", "test: cover epoch parsing", CategoryTest, false},
		{"case insensitive type", "Fix: handle empty tag list", CategoryFix, false},
		{"uppercase type", "FEAT: shouting", CategoryFeature, false},
		{"unknown type", "ci: run fuzzers nightly", CategoryOther, false},
		{"unknown type breaking", "revert!: undo release", CategoryOther, true},
		{"no colon", "update stuff", CategoryOther, false},
		{"empty subject", "", CategoryOther, false},
		{"colon without description", "feat:", CategoryOther, false},
		{"merge commit", "Merge branch 'main' into dev", CategoryOther, false},
		{"leading whitespace", "  fix: trim me", CategoryFix, false},
		{"bang inside description", "feat: add support for ! markers", CategoryFeature, false},
		{"scope with dashes", "fix(commit-parser): accept empty scope", CategoryFix, false},
		{"numeric type", "123: not a type", CategoryOther, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			category, breaking := Classify(tt.subject)
			if category != tt.category || breaking != tt.breaking {
				t.Errorf("Classify(%q) = (%s, %v), want (%s, %v)",
					tt.subject, category, breaking, tt.category, tt.breaking)
			}
		})
	}
}

func TestCollect(t *testing.T) {
	commits := NewCommits([]string{
		"feat: one",
		"feat(scope): two",
		"fix: three",
		"something else",
		"chore!: four",
	})

	stats := Collect(commits)

	if stats.Total != 5 {
		t.Errorf("Total = %d, want 5", stats.Total)
	}
	if !stats.Breaking {
		t.Error("Breaking should be true")
	}
	expected := map[Category]int{
		CategoryFeature: 2,
		CategoryFix:     1,
		CategoryChore:   1,
		CategoryOther:   1,
	}
	for category, count := range expected {
		if stats.Counts[category] != count {
			t.Errorf("Counts[%s] = %d, want %d", category, stats.Counts[category], count)
		}
	}
}

func TestSuggest(t *testing.T) {
	tests := []struct {
		name     string
		subjects []string
		expected bump.Action
	}{
		{
			name:     "single fix",
			subjects: []string{"fix: x"},
			expected: bump.ActionMicro,
		},
		{
			name:     "fix and feature",
			subjects: []string{"fix: x", "feat: y"},
			expected: bump.ActionMinor,
		},
		{
			name:     "breaking wins over everything",
			subjects: []string{"feat: y", "feat!: z"},
			expected: bump.ActionMajor,
		},
		{
			name:     "breaking on unknown type still wins",
			subjects: []string{"fix: x", "revert!: z"},
			expected: bump.ActionMajor,
		},
		{
			name:     "perf is minor",
			subjects: []string{"perf: faster compare"},
			expected: bump.ActionMinor,
		},
		{
			name:     "refactor is minor",
			subjects: []string{"refactor: split packages", "docs: readme"},
			expected: bump.ActionMinor,
		},
		{
			name:     "chore docs build are micro",
			subjects: []string{"chore: tidy", "docs: typo", "build: pin"},
			expected: bump.ActionMicro,
		},
		{
			name:     "style and test alone are post",
			subjects: []string{"style: gofmt", "test: add cases"},
			expected: bump.ActionPost,
		},
		{
			name:     "unclassified subjects are post",
			subjects: []string{"Merge branch 'main'", "wip"},
			expected: bump.ActionPost,
		},
		{
			name:     "empty history is post",
			subjects: nil,
			expected: bump.ActionPost,
		},
		{
			name:     "order does not matter",
			subjects: []string{"feat: y", "fix: x"},
			expected: bump.ActionMinor,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Suggest(NewCommits(tt.subjects)); got != tt.expected {
				t.Errorf("Suggest(%v) = %s, want %s", tt.subjects, got, tt.expected)
			}
		})
	}
}
