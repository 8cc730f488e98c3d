/*
Copyright © 2025 ReleaseKit Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package history classifies conventional-commit subject lines and
// reduces a commit history into a single bump action.
//
// Classification looks at the subject line only. A "BREAKING CHANGE"
// footer in the commit body is not detected; the explicit "!" marker
// before the colon is the sole breaking-change signal.
package history

import (
	"regexp"
	"strings"

	"github.com/releasekit/pepver/pkg/bump"
)

// Category is the semantic category of a commit subject.
type Category string

const (
	CategoryFeature  Category = "feat"
	CategoryFix      Category = "fix"
	CategoryPerf     Category = "perf"
	CategoryRefactor Category = "refactor"
	CategoryChore    Category = "chore"
	CategoryDocs     Category = "docs"
	CategoryBuild    Category = "build"
	CategoryStyle    Category = "style"
	CategoryTest     Category = "test"
	// CategoryOther is the fallback for unrecognized types and subjects
	// that do not match the conventional-commit grammar at all.
	CategoryOther Category = "other"
)

// subjectPattern is the conventional-commit subject grammar:
// type, optional (scope), optional "!", colon, description.
var subjectPattern = regexp.MustCompile(`^([A-Za-z]+)(?:\([^)]*\))?(!)?:\s*(.+)$`)

// Classify maps a single commit subject line to its category and
// breaking-change flag. Types are matched case-insensitively; unknown
// types and non-matching subjects fall back to CategoryOther rather
// than failing.
func Classify(subject string) (Category, bool) {
	m := subjectPattern.FindStringSubmatch(strings.TrimSpace(subject))
	if m == nil {
		return CategoryOther, false
	}

	breaking := m[2] == "!"

	switch Category(strings.ToLower(m[1])) {
	case CategoryFeature:
		return CategoryFeature, breaking
	case CategoryFix:
		return CategoryFix, breaking
	case CategoryPerf:
		return CategoryPerf, breaking
	case CategoryRefactor:
		return CategoryRefactor, breaking
	case CategoryChore:
		return CategoryChore, breaking
	case CategoryDocs:
		return CategoryDocs, breaking
	case CategoryBuild:
		return CategoryBuild, breaking
	case CategoryStyle:
		return CategoryStyle, breaking
	case CategoryTest:
		return CategoryTest, breaking
	default:
		return CategoryOther, breaking
	}
}

// Commit is a classified commit record, constructed fresh from a raw
// subject line and never mutated.
type Commit struct {
	Subject  string   `json:"subject" yaml:"subject"`
	Category Category `json:"category" yaml:"category"`
	Breaking bool     `json:"breaking,omitempty" yaml:"breaking,omitempty"`
}

// NewCommit classifies a raw subject line into a Commit.
func NewCommit(subject string) Commit {
	category, breaking := Classify(subject)
	return Commit{Subject: subject, Category: category, Breaking: breaking}
}

// NewCommits classifies a sequence of raw subject lines.
func NewCommits(subjects []string) []Commit {
	commits := make([]Commit, 0, len(subjects))
	for _, s := range subjects {
		commits = append(commits, NewCommit(s))
	}
	return commits
}

// Stats aggregates a commit history: per-category counts and whether
// any commit was marked breaking.
type Stats struct {
	Counts   map[Category]int `json:"counts" yaml:"counts"`
	Breaking bool             `json:"breaking" yaml:"breaking"`
	Total    int              `json:"total" yaml:"total"`
}

// Collect computes commit statistics over a history.
func Collect(commits []Commit) Stats {
	stats := Stats{Counts: make(map[Category]int)}
	for _, c := range commits {
		stats.Counts[c.Category]++
		stats.Breaking = stats.Breaking || c.Breaking
		stats.Total++
	}
	return stats
}

// Suggest reduces a commit history into one bump action, as a maximum
// over priorities independent of commit order:
//
//  1. any breaking commit: major
//  2. any feat, perf or refactor: minor
//  3. any fix, chore, docs or build: micro
//  4. otherwise (style, test, other, or an empty history): post
//
// An empty history is a valid input meaning "no semantically meaningful
// change" and resolves to post.
func Suggest(commits []Commit) bump.Action {
	stats := Collect(commits)

	if stats.Breaking {
		return bump.ActionMajor
	}
	for _, c := range []Category{CategoryFeature, CategoryPerf, CategoryRefactor} {
		if stats.Counts[c] > 0 {
			return bump.ActionMinor
		}
	}
	for _, c := range []Category{CategoryFix, CategoryChore, CategoryDocs, CategoryBuild} {
		if stats.Counts[c] > 0 {
			return bump.ActionMicro
		}
	}
	return bump.ActionPost
}
