/*
Copyright © 2025 ReleaseKit Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package manifest reads and rewrites the project version stored in
// pyproject.toml, or in a dynamic version file referenced by it.
//
// Rewrites are text-surgical: only the version substring is replaced,
// so the surrounding whitespace, quoting and comments of the manifest
// survive a bump. Writes are atomic; a failed write never leaves a
// partially written manifest behind.
package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/releasekit/pepver/pkg/version"
)

// FileName is the well-known manifest file name.
const FileName = "pyproject.toml"

// Error types for manifest failures
var (
	// ErrNotFound indicates the manifest file does not exist.
	ErrNotFound = errors.New("project manifest not found")
	// ErrNoVersion indicates no version could be located in the
	// manifest or its dynamic version file.
	ErrNoVersion = errors.New("no version found in project manifest")
)

// ToolConfig is the [tool.pepver] section of pyproject.toml.
type ToolConfig struct {
	// NoPrependV disables the "v" prefix on created tags.
	NoPrependV bool `toml:"no-prepend-v"`
	// SourcePath points at the dynamic version file, relative to the
	// project root.
	SourcePath string `toml:"source-path"`
	// CommitMessage overrides the message used by --commit. The
	// placeholders {old} and {new} expand to the two versions.
	CommitMessage string `toml:"commit-message"`
}

// pyproject mirrors the parts of the manifest this tool reads.
type pyproject struct {
	Project struct {
		Name    string   `toml:"name"`
		Version string   `toml:"version"`
		Dynamic []string `toml:"dynamic"`
	} `toml:"project"`
	Tool struct {
		Pepver ToolConfig `toml:"pepver"`
		PDM    struct {
			Version struct {
				Source string `toml:"source"`
				Path   string `toml:"path"`
			} `toml:"version"`
		} `toml:"pdm"`
	} `toml:"tool"`
}

// versionAssignment matches a `version = "..."` line inside the static
// manifest; the quoting style is captured so it can be preserved.
var versionAssignment = regexp.MustCompile(`(?m)^(\s*version\s*=\s*)(["'])([^"']*)(["'])`)

// dynamicAssignment matches the module-level __version__ attribute in a
// dynamic version file.
var dynamicAssignment = regexp.MustCompile(`(?m)^(__version__\s*=\s*)(["'])([^"']*)(["'])(\s*(?:#.*)?)$`)

// Manifest is a loaded project manifest with its version located and
// parsed. The version is read once at load time; Save rewrites exactly
// the located substring.
type Manifest struct {
	dir  string
	path string

	// versionFile is the file that physically stores the version:
	// the manifest itself, or the dynamic version file.
	versionFile string
	pattern     *regexp.Regexp

	current version.Version
	tool    ToolConfig
	name    string
}

// Load reads the manifest in dir and locates the project version,
// following a dynamic version declaration when present.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, FileName)
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var doc pyproject
	if err := toml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	m := &Manifest{
		dir:  dir,
		path: path,
		tool: doc.Tool.Pepver,
		name: doc.Project.Name,
	}

	switch {
	case doc.Project.Version != "":
		m.versionFile = path
		m.pattern = versionAssignment
	case slices.Contains(doc.Project.Dynamic, "version"):
		rel := doc.Tool.Pepver.SourcePath
		if rel == "" {
			rel = doc.Tool.PDM.Version.Path
		}
		if rel == "" {
			return nil, fmt.Errorf("%w: dynamic version without a source path", ErrNoVersion)
		}
		m.versionFile = filepath.Join(dir, rel)
		m.pattern = dynamicAssignment
	default:
		return nil, fmt.Errorf("%w: %s", ErrNoVersion, path)
	}

	text, err := m.readVersionText()
	if err != nil {
		return nil, err
	}
	m.current, err = version.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("version %q in %s: %w", text, m.versionFile, err)
	}

	return m, nil
}

// Name returns the project name from the manifest.
func (m *Manifest) Name() string {
	return m.name
}

// Version returns the version recorded in the manifest at load time.
func (m *Manifest) Version() version.Version {
	return m.current
}

// Tool returns the [tool.pepver] configuration section.
func (m *Manifest) Tool() ToolConfig {
	return m.tool
}

// VersionFile returns the path of the file that stores the version.
// This is the file to check in after a bump.
func (m *Manifest) VersionFile() string {
	return m.versionFile
}

// Dir returns the project root directory.
func (m *Manifest) Dir() string {
	return m.dir
}

// readVersionText re-reads the version file and extracts the current
// version substring.
func (m *Manifest) readVersionText() (string, error) {
	raw, err := os.ReadFile(m.versionFile)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", m.versionFile, err)
	}
	loc := m.locate(raw)
	if loc == nil {
		return "", fmt.Errorf("%w: no version assignment in %s", ErrNoVersion, m.versionFile)
	}
	return string(raw[loc[6]:loc[7]]), nil
}

// tableHeader matches TOML table headers, used to bound the [project]
// section when rewriting the static manifest.
var tableHeader = regexp.MustCompile(`(?m)^\s*\[([^\]]+)\]`)

// locate finds the version assignment in raw and returns submatch
// indexes in raw's coordinates. For the static manifest the search is
// bounded to the [project] table so a version key in another table,
// such as [tool.poetry], is never touched.
func (m *Manifest) locate(raw []byte) []int {
	lo, hi := 0, len(raw)
	if m.pattern == versionAssignment {
		lo, hi = -1, len(raw)
		for _, h := range tableHeader.FindAllSubmatchIndex(raw, -1) {
			name := string(raw[h[2]:h[3]])
			if lo < 0 && name == "project" {
				lo = h[1]
				continue
			}
			if lo >= 0 {
				hi = h[0]
				break
			}
		}
		if lo < 0 {
			return nil
		}
	}
	loc := m.pattern.FindSubmatchIndex(raw[lo:hi])
	if loc == nil {
		return nil
	}
	for i := range loc {
		if loc[i] >= 0 {
			loc[i] += lo
		}
	}
	return loc
}

// SetVersion rewrites the version in place, replacing only the version
// substring and swapping the file atomically. The in-memory manifest is
// updated on success.
func (m *Manifest) SetVersion(v version.Version) error {
	raw, err := os.ReadFile(m.versionFile)
	if err != nil {
		return fmt.Errorf("reading %s: %w", m.versionFile, err)
	}

	loc := m.locate(raw)
	if loc == nil {
		return fmt.Errorf("%w: no version assignment in %s", ErrNoVersion, m.versionFile)
	}

	// Replace group 3 (the quoted version text) only.
	start, end := loc[6], loc[7]
	next := make([]byte, 0, len(raw)+16)
	next = append(next, raw[:start]...)
	next = append(next, v.String()...)
	next = append(next, raw[end:]...)

	if err := writeFileAtomic(m.versionFile, next); err != nil {
		return err
	}

	m.current = v
	return nil
}

// writeFileAtomic writes data to a temporary file next to path and
// renames it into place, preserving the original file mode. The
// temporary file is removed on every failure path.
func writeFileAtomic(path string, data []byte) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("creating temporary manifest: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing temporary manifest: %w", err)
	}
	if err := tmp.Chmod(info.Mode().Perm()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("setting manifest mode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temporary manifest: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

// CommitMessage renders the commit message for a bump, using the
// configured template or the default.
func (m *Manifest) CommitMessage(old, next version.Version) string {
	msg := m.tool.CommitMessage
	if msg == "" {
		msg = "chore: bump version to {new}"
	}
	msg = strings.ReplaceAll(msg, "{old}", old.String())
	msg = strings.ReplaceAll(msg, "{new}", next.String())
	return msg
}
