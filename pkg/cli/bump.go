/*
Copyright © 2025 ReleaseKit Authors
SPDX-License-Identifier: Apache-2.0
*/

package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/releasekit/pepver/pkg/bump"
	perrors "github.com/releasekit/pepver/pkg/errors"
	"github.com/releasekit/pepver/pkg/history"
	"github.com/releasekit/pepver/pkg/manifest"
	"github.com/releasekit/pepver/pkg/serializer"
	"github.com/releasekit/pepver/pkg/vcs"
	pver "github.com/releasekit/pepver/pkg/version"
)

// Pseudo actions handled by the bump command on top of the version
// transitions in pkg/bump.
const (
	actionTag     = "tag"
	actionSuggest = "suggest"
	actionAuto    = "auto"
)

// newProvider returns the VCS provider for a project root.
// Overridable in tests.
var newProvider = func(dir string) vcs.Provider {
	return vcs.NewGit(dir)
}

var (
	outputFlag = &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "Output file path (default: stdout)",
	}
	formatFlag = &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"F"},
		Value:   string(serializer.FormatTable),
		Usage: fmt.Sprintf("Output format (supported values: %s)",
			strings.Join(serializer.SupportedFormats(), ", ")),
	}
)

func bumpCmd() *cli.Command {
	return &cli.Command{
		Name:                  "bump",
		EnableShellCompletion: true,
		Usage:                 "Bump the project version in pyproject.toml",
		ArgsUsage:             "<action>",
		Description: `Apply a version transition to the project manifest. Actions:

  major, minor, micro    increment a release segment (patch is an alias for micro)
  premajor, preminor,    increment a release segment and start a pre-release
  prepatch
  prerelease             advance the current pre-release
  no-pre-release         finalize a pre-release
  post, dev              increment or start a post/dev segment
  epoch                  increment the epoch and restart at the default version
  reset                  strip post, dev and local segments
  tag                    create a VCS tag for the current version, no bump
  suggest                print the action suggested by commit history, no write
  auto                   apply the suggested action

Examples:

  pepver bump minor
  pepver bump prerelease --pre beta
  pepver bump auto --commit --tag`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name: "pre",
				Usage: fmt.Sprintf("Pre-release kind for pre* actions (supported values: %s)",
					strings.Join(preKindNames(), ", ")),
			},
			&cli.BoolFlag{
				Name:    "commit",
				Aliases: []string{"c"},
				Usage:   "Commit the rewritten manifest",
			},
			&cli.BoolFlag{
				Name:    "tag",
				Aliases: []string{"t"},
				Usage:   "Create a VCS tag for the new version",
			},
			&cli.BoolFlag{
				Name:    "dirty",
				Aliases: []string{"d"},
				Usage:   "Allow tagging with uncommitted changes in the working tree",
			},
			&cli.BoolFlag{
				Name:    "no-prepend-v",
				Usage:   "Do not prefix tag names with v",
				Sources: cli.EnvVars("PEPVER_NO_PREPEND_V"),
			},
			&cli.BoolFlag{
				Name:    "dry-run",
				Aliases: []string{"n"},
				Usage:   "Compute and print the result without writing anything",
			},
			&cli.StringFlag{
				Name:    "project",
				Aliases: []string{"p"},
				Usage:   "Project root (default: discovered from the working directory)",
				Sources: cli.EnvVars("PEPVER_PROJECT"),
			},
			&cli.StringFlag{
				Name:    "message",
				Aliases: []string{"m"},
				Usage:   "Commit message, {old} and {new} expand to the versions",
				Sources: cli.EnvVars("PEPVER_COMMIT_MESSAGE"),
			},
			outputFlag,
			formatFlag,
		},
		Action: runBump,
	}
}

// bumpCmdOptions holds parsed options for the bump command.
type bumpCmdOptions struct {
	action     string
	pre        pver.PreKind
	commit     bool
	tag        bool
	allowDirty bool
	noPrependV bool
	dryRun     bool
	project    string
	message    string
	format     serializer.Format
	output     string
}

// parseBumpCmdOptions parses and validates command options.
func parseBumpCmdOptions(cmd *cli.Command) (*bumpCmdOptions, error) {
	if cmd.Args().Len() != 1 {
		return nil, perrors.Newf(perrors.ErrCodeInvalidRequest,
			"expected exactly one action argument, got %d", cmd.Args().Len())
	}

	opts := &bumpCmdOptions{
		action:     cmd.Args().First(),
		commit:     cmd.Bool("commit"),
		tag:        cmd.Bool("tag"),
		allowDirty: cmd.Bool("dirty"),
		noPrependV: cmd.Bool("no-prepend-v"),
		dryRun:     cmd.Bool("dry-run"),
		project:    cmd.String("project"),
		message:    cmd.String("message"),
		format:     serializer.Format(cmd.String("format")),
		output:     cmd.String("output"),
	}

	if opts.format.IsUnknown() {
		return nil, perrors.Newf(perrors.ErrCodeInvalidRequest,
			"unknown output format %q, supported values: %s",
			opts.format, strings.Join(serializer.SupportedFormats(), ", "))
	}

	if pre := cmd.String("pre"); pre != "" {
		kind, ok := pver.ParsePreKind(pre)
		if !ok {
			return nil, perrors.Newf(perrors.ErrCodeInvalidRequest,
				"unknown pre-release kind %q, supported values: %s",
				pre, strings.Join(preKindNames(), ", "))
		}
		opts.pre = kind
	}

	return opts, nil
}

// bumpOutcome is the result of a version transition.
type bumpOutcome struct {
	Project   string `json:"project" yaml:"project"`
	Action    string `json:"action" yaml:"action"`
	Previous  string `json:"previous" yaml:"previous"`
	Version   string `json:"version" yaml:"version"`
	Tag       string `json:"tag,omitempty" yaml:"tag,omitempty"`
	Committed bool   `json:"committed" yaml:"committed"`
	DryRun    bool   `json:"dryRun" yaml:"dryRun"`
}

// suggestOutcome is the result of a history-based suggestion.
type suggestOutcome struct {
	Project   string         `json:"project" yaml:"project"`
	Current   string         `json:"current" yaml:"current"`
	Tag       string         `json:"tag,omitempty" yaml:"tag,omitempty"`
	Suggested string         `json:"suggested" yaml:"suggested"`
	Version   string         `json:"version" yaml:"version"`
	Commits   int            `json:"commits" yaml:"commits"`
	Breaking  bool           `json:"breaking" yaml:"breaking"`
	Counts    map[string]int `json:"counts,omitempty" yaml:"counts,omitempty"`
}

func runBump(ctx context.Context, cmd *cli.Command) error {
	opts, err := parseBumpCmdOptions(cmd)
	if err != nil {
		return err
	}

	root, err := resolveProjectRoot(opts.project)
	if err != nil {
		return err
	}

	m, err := manifest.Load(root)
	if err != nil {
		code := perrors.ErrCodeManifest
		if errors.Is(err, pver.ErrInvalidFormat) {
			code = perrors.ErrCodeInvalidVersion
		}
		return perrors.WrapWithContext(code, "loading project manifest", err,
			map[string]any{"project": root})
	}

	opts.noPrependV = opts.noPrependV || m.Tool().NoPrependV
	if opts.message == "" {
		opts.message = m.Tool().CommitMessage
	}

	// The manifest may live below the repository root; git commands
	// run from the repository when one is found.
	providerDir := root
	if repoRoot, err := vcs.FindRepositoryRoot(root); err == nil {
		providerDir = repoRoot
	}
	provider := newProvider(providerDir)

	var result any
	switch opts.action {
	case actionTag:
		result, err = runTagOnly(ctx, opts, m, provider)
	case actionSuggest:
		result, err = runSuggest(ctx, opts, m, provider)
	case actionAuto:
		var suggested bump.Action
		suggested, err = suggestAction(ctx, m, provider)
		if err == nil {
			result, err = applyBump(ctx, opts, m, provider, bump.Request{Action: suggested})
		}
	default:
		var action bump.Action
		action, err = bump.ParseAction(opts.action)
		if err != nil {
			return perrors.Wrap(perrors.ErrCodeInvalidRequest,
				fmt.Sprintf("unknown action %q", opts.action), err)
		}
		result, err = applyBump(ctx, opts, m, provider, bump.Request{Action: action, Pre: opts.pre})
	}
	if err != nil {
		return err
	}

	w := serializer.NewFileWriterOrStdout(opts.format, opts.output)
	defer func() {
		if err := w.Close(); err != nil {
			slog.Warn("failed to close output writer", "error", err)
		}
	}()
	return w.Serialize(ctx, result)
}

// applyBump performs a version transition and persists it, including
// the optional commit and tag steps.
func applyBump(ctx context.Context, opts *bumpCmdOptions, m *manifest.Manifest,
	provider vcs.Provider, req bump.Request) (*bumpOutcome, error) {
	previous := m.Version()

	next, err := bump.Apply(previous, req)
	if err != nil {
		if errors.Is(err, bump.ErrUnsupportedTransition) {
			return nil, perrors.Wrap(perrors.ErrCodeUnsupportedTransition,
				fmt.Sprintf("cannot apply %s to %s", req.Action, previous), err)
		}
		return nil, perrors.Wrap(perrors.ErrCodeInvalidRequest, "applying bump", err)
	}

	outcome := &bumpOutcome{
		Project:  m.Name(),
		Action:   string(req.Action),
		Previous: previous.String(),
		Version:  next.String(),
		DryRun:   opts.dryRun,
	}
	if opts.tag {
		outcome.Tag = vcs.TagName(next, !opts.noPrependV)
	}

	slog.Info("bumping version",
		"project", m.Name(),
		"action", req.Action,
		"previous", outcome.Previous,
		"version", outcome.Version,
		"dryRun", opts.dryRun)

	if opts.dryRun {
		return outcome, nil
	}

	if opts.commit || opts.tag {
		if err := ensureAvailable(ctx, provider); err != nil {
			return nil, err
		}
	}
	if opts.tag {
		if err := guardDirty(ctx, opts, provider); err != nil {
			return nil, err
		}
		// Refuse before the manifest is touched, not after.
		exists, err := provider.TagExists(ctx, outcome.Tag)
		if err != nil {
			return nil, perrors.Wrap(perrors.ErrCodeVcsUnavailable, "checking tag", err)
		}
		if exists {
			return nil, perrors.Newf(perrors.ErrCodeTagExists, "tag %s already exists", outcome.Tag)
		}
	}

	if err := m.SetVersion(next); err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeManifest, "rewriting project manifest", err)
	}

	if opts.commit {
		message := opts.message
		if message != "" {
			message = strings.ReplaceAll(message, "{old}", previous.String())
			message = strings.ReplaceAll(message, "{new}", next.String())
		} else {
			message = m.CommitMessage(previous, next)
		}
		if err := provider.CheckIn(ctx, message, m.VersionFile()); err != nil {
			return nil, perrors.Wrap(perrors.ErrCodeVcsUnavailable, "committing manifest", err)
		}
		outcome.Committed = true
	}

	if opts.tag {
		if err := createTag(ctx, provider, outcome.Tag); err != nil {
			return nil, err
		}
	}

	return outcome, nil
}

// runTagOnly tags the current manifest version without bumping.
func runTagOnly(ctx context.Context, opts *bumpCmdOptions, m *manifest.Manifest,
	provider vcs.Provider) (*bumpOutcome, error) {
	current := m.Version()
	tag := vcs.TagName(current, !opts.noPrependV)

	outcome := &bumpOutcome{
		Project:  m.Name(),
		Action:   actionTag,
		Previous: current.String(),
		Version:  current.String(),
		Tag:      tag,
		DryRun:   opts.dryRun,
	}
	if opts.dryRun {
		return outcome, nil
	}

	if err := ensureAvailable(ctx, provider); err != nil {
		return nil, err
	}
	if err := guardDirty(ctx, opts, provider); err != nil {
		return nil, err
	}
	if err := createTag(ctx, provider, tag); err != nil {
		return nil, err
	}
	return outcome, nil
}

// runSuggest reports the suggested action and resulting version
// without writing anything.
func runSuggest(ctx context.Context, opts *bumpCmdOptions, m *manifest.Manifest,
	provider vcs.Provider) (*suggestOutcome, error) {
	scan, err := scanHistory(ctx, provider)
	if err != nil {
		return nil, err
	}

	current := m.Version()
	warnTagDrift(scan, current)

	suggested := history.Suggest(scan.commits)
	next, err := bump.Apply(current, bump.Request{Action: suggested})
	if err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeUnsupportedTransition,
			fmt.Sprintf("cannot apply suggested %s to %s", suggested, current), err)
	}

	counts := make(map[string]int, len(scan.stats.Counts))
	for category, n := range scan.stats.Counts {
		counts[string(category)] = n
	}

	return &suggestOutcome{
		Project:   m.Name(),
		Current:   current.String(),
		Tag:       scan.tag,
		Suggested: string(suggested),
		Version:   next.String(),
		Commits:   scan.stats.Total,
		Breaking:  scan.stats.Breaking,
		Counts:    counts,
	}, nil
}

// suggestAction computes the history-based action for auto mode.
func suggestAction(ctx context.Context, m *manifest.Manifest, provider vcs.Provider) (bump.Action, error) {
	scan, err := scanHistory(ctx, provider)
	if err != nil {
		return "", err
	}
	warnTagDrift(scan, m.Version())

	suggested := history.Suggest(scan.commits)
	slog.Info("suggesting action from commit history",
		"project", m.Name(),
		"commits", scan.stats.Total,
		"breaking", scan.stats.Breaking,
		"suggested", suggested)
	return suggested, nil
}

// historyScan is the classified commit history since the last tag.
type historyScan struct {
	commits []history.Commit
	stats   history.Stats
	tag     string
	tagged  bool
}

// scanHistory reads the commit subjects since the last tag and
// classifies them.
func scanHistory(ctx context.Context, provider vcs.Provider) (historyScan, error) {
	if err := ensureAvailable(ctx, provider); err != nil {
		return historyScan{}, err
	}

	tag, found, err := provider.CurrentTag(ctx)
	if err != nil {
		return historyScan{}, perrors.Wrap(perrors.ErrCodeVcsUnavailable, "reading current tag", err)
	}
	if !found {
		slog.Debug("no tags found, using full history")
	}

	subjects, err := provider.CommitsSince(ctx, tag)
	if err != nil {
		return historyScan{}, perrors.Wrap(perrors.ErrCodeVcsUnavailable, "reading commit history", err)
	}

	commits := history.NewCommits(subjects)
	return historyScan{
		commits: commits,
		stats:   history.Collect(commits),
		tag:     tag,
		tagged:  found,
	}, nil
}

// warnTagDrift flags a manifest version that no longer matches the
// last release tag.
func warnTagDrift(scan historyScan, current pver.Version) {
	if !scan.tagged {
		return
	}
	if !pver.CanParse(scan.tag) {
		slog.Warn("last tag is not a version", "tag", scan.tag)
		return
	}
	if tagVersion, _ := vcs.ParseTag(scan.tag); !tagVersion.Equal(current) {
		slog.Warn("manifest version differs from the last tag",
			"manifest", current.String(), "tag", scan.tag)
	}
}

// ensureAvailable verifies the VCS provider can serve requests.
func ensureAvailable(ctx context.Context, provider vcs.Provider) error {
	if !provider.Available(ctx) {
		return perrors.New(perrors.ErrCodeVcsUnavailable,
			"version control is not available in this project")
	}
	return nil
}

// guardDirty refuses to tag on a dirty working tree unless the user
// allowed it.
func guardDirty(ctx context.Context, opts *bumpCmdOptions, provider vcs.Provider) error {
	if opts.allowDirty {
		return nil
	}
	dirty, err := provider.IsDirty(ctx)
	if err != nil {
		return perrors.Wrap(perrors.ErrCodeVcsUnavailable, "checking working tree state", err)
	}
	if dirty {
		return perrors.New(perrors.ErrCodeDirtyRepository,
			"working tree has uncommitted changes, commit them or pass --dirty")
	}
	return nil
}

// createTag creates the tag, mapping an existing tag to the
// structured taxonomy.
func createTag(ctx context.Context, provider vcs.Provider, tag string) error {
	if err := provider.CreateTag(ctx, tag); err != nil {
		if errors.Is(err, vcs.ErrTagExists) {
			return perrors.Wrap(perrors.ErrCodeTagExists,
				fmt.Sprintf("tag %s already exists", tag), err)
		}
		return perrors.Wrap(perrors.ErrCodeVcsUnavailable, "creating tag", err)
	}
	return nil
}

// resolveProjectRoot finds the directory holding pyproject.toml,
// starting at the given path (or the working directory) and walking up.
func resolveProjectRoot(start string) (string, error) {
	if start == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", perrors.Wrap(perrors.ErrCodeManifest, "resolving working directory", err)
		}
		start = wd
	}

	dir, err := filepath.Abs(start)
	if err != nil {
		return "", perrors.Wrap(perrors.ErrCodeManifest, "resolving project root", err)
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, manifest.FileName)); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", perrors.Newf(perrors.ErrCodeManifest,
				"no %s found in %s or any parent directory", manifest.FileName, start)
		}
		dir = parent
	}
}

// preKindNames lists the accepted values of the --pre flag.
func preKindNames() []string {
	return []string{
		pver.Alpha.Name(),
		pver.Beta.Name(),
		pver.ReleaseCandidate.Name(),
	}
}
