/*
Copyright © 2025 ReleaseKit Authors
SPDX-License-Identifier: Apache-2.0
*/

package version

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Error types for version parsing failures
var (
	ErrEmptyVersion  = errors.New("version string is empty")
	ErrInvalidFormat = errors.New("version string is not a valid PEP 440 identifier")
)

// PreKind identifies the pre-release phase of a version.
// The zero value means no pre-release segment is present.
type PreKind uint8

const (
	// PreNone indicates the absence of a pre-release segment.
	PreNone PreKind = iota
	// Alpha is the earliest pre-release phase, spelled "a" in canonical form.
	Alpha
	// Beta follows alpha, spelled "b" in canonical form.
	Beta
	// ReleaseCandidate is the last pre-release phase, spelled "rc" in canonical form.
	ReleaseCandidate
)

// String returns the canonical single-letter spelling of the pre-release kind.
func (k PreKind) String() string {
	switch k {
	case Alpha:
		return "a"
	case Beta:
		return "b"
	case ReleaseCandidate:
		return "rc"
	default:
		return ""
	}
}

// Name returns the long spelling used in CLI flags and messages.
func (k PreKind) Name() string {
	switch k {
	case Alpha:
		return "alpha"
	case Beta:
		return "beta"
	case ReleaseCandidate:
		return "release-candidate"
	default:
		return ""
	}
}

// ParsePreKind maps any accepted spelling of a pre-release phase to its kind.
// Returns PreNone and false if the value is not a known spelling.
func ParsePreKind(s string) (PreKind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "a", "alpha":
		return Alpha, true
	case "b", "beta":
		return Beta, true
	case "c", "rc", "pre", "preview", "release-candidate", "release_candidate":
		return ReleaseCandidate, true
	default:
		return PreNone, false
	}
}

// Pre is an optional pre-release segment. Kind == PreNone means absent,
// in which case Number must be zero.
type Pre struct {
	Kind   PreKind `json:"kind,omitempty" yaml:"kind,omitempty"`
	Number int     `json:"number,omitempty" yaml:"number,omitempty"`
}

// Version is an immutable PEP 440 version identifier. The release part is
// always normalized to exactly three segments. Optional segments use
// presence flags so that zero-valued numbers (e.g. "1.0.post0") remain
// representable. Version values are comparable with == after normalization.
type Version struct {
	Epoch int `json:"epoch,omitempty" yaml:"epoch,omitempty"`

	Major int `json:"major" yaml:"major"`
	Minor int `json:"minor" yaml:"minor"`
	Micro int `json:"micro" yaml:"micro"`

	Pre Pre `json:"pre,omitempty" yaml:"pre,omitempty"`

	HasPost bool `json:"-" yaml:"-"`
	Post    int  `json:"post,omitempty" yaml:"post,omitempty"`

	HasDev bool `json:"-" yaml:"-"`
	Dev    int  `json:"dev,omitempty" yaml:"dev,omitempty"`

	// Local is the opaque local segment after "+". Preserved verbatim,
	// never produced by bump operations.
	Local string `json:"local,omitempty" yaml:"local,omitempty"`
}

// Default returns the version a project starts from when none is recorded.
func Default() Version {
	return Version{Minor: 1}
}

// New creates a final release version with the given release segments.
func New(major, minor, micro int) Version {
	return Version{Major: major, Minor: minor, Micro: micro}
}

// pep440 is the PEP 440 appendix B grammar, restricted to the parts this
// tool understands. Case-insensitive, optional "v" prefix, separators
// between optional segments may be ".", "-" or "_".
var pep440 = regexp.MustCompile(`(?i)^v?` +
	`(?:(\d+)!)?` + // epoch
	`(\d+(?:\.\d+)*)` + // release
	`(?:[-_.]?(alpha|a|beta|b|preview|pre|c|rc)[-_.]?(\d+)?)?` + // pre
	`(?:(?:-(\d+))|(?:[-_.]?(post|rev|r)[-_.]?(\d+)?))?` + // post
	`(?:[-_.]?(dev)[-_.]?(\d+)?)?` + // dev
	`(?:\+([a-zA-Z0-9]+(?:[-_.][a-zA-Z0-9]+)*))?$`) // local

// Parse converts a version string into a normalized Version.
// All PEP 440 spellings are accepted: "1.0.0a1", "1.0.0.alpha1" and
// "1.0.0-rc.1" parse to the same value. Release parts beyond the third
// are not significant; fewer than three are zero-padded.
// Returns an error wrapping ErrInvalidFormat if the string does not
// match the grammar.
func Parse(s string) (Version, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Version{}, ErrEmptyVersion
	}

	m := pep440.FindStringSubmatch(trimmed)
	if m == nil {
		return Version{}, fmt.Errorf("%w: %q", ErrInvalidFormat, s)
	}

	var v Version

	if m[1] != "" {
		v.Epoch = mustAtoi(m[1])
	}

	parts := strings.Split(m[2], ".")
	segments := [3]int{}
	for i, part := range parts {
		if i >= len(segments) {
			break
		}
		segments[i] = mustAtoi(part)
	}
	v.Major, v.Minor, v.Micro = segments[0], segments[1], segments[2]

	if m[3] != "" {
		kind, _ := ParsePreKind(m[3])
		v.Pre = Pre{Kind: kind, Number: atoiOrZero(m[4])}
	}

	switch {
	case m[5] != "": // implicit post, e.g. "1.0-1"
		v.HasPost = true
		v.Post = mustAtoi(m[5])
	case m[6] != "":
		v.HasPost = true
		v.Post = atoiOrZero(m[7])
	}

	if m[8] != "" {
		v.HasDev = true
		v.Dev = atoiOrZero(m[9])
	}

	v.Local = strings.ToLower(m[10])

	return v, nil
}

// MustParse parses a version string and panics if parsing fails.
// Only use this for hardcoded strings or in tests. For user input or
// runtime data, always use Parse and handle errors explicitly.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(fmt.Sprintf("MustParse: %v", err))
	}
	return v
}

// CanParse reports whether the string is a valid PEP 440 identifier.
func CanParse(s string) bool {
	_, err := Parse(s)
	return err == nil
}

// String returns the canonical PEP 440 form: epoch omitted when zero,
// exactly three release segments, pre-release as letter+number without
// separator, post as ".postN", dev as ".devN", local as "+local".
func (v Version) String() string {
	var b strings.Builder

	if v.Epoch > 0 {
		fmt.Fprintf(&b, "%d!", v.Epoch)
	}
	fmt.Fprintf(&b, "%d.%d.%d", v.Major, v.Minor, v.Micro)
	if v.Pre.Kind != PreNone {
		fmt.Fprintf(&b, "%s%d", v.Pre.Kind, v.Pre.Number)
	}
	if v.HasPost {
		fmt.Fprintf(&b, ".post%d", v.Post)
	}
	if v.HasDev {
		fmt.Fprintf(&b, ".dev%d", v.Dev)
	}
	if v.Local != "" {
		fmt.Fprintf(&b, "+%s", v.Local)
	}

	return b.String()
}

// Release returns the three release segments as a comparable array.
func (v Version) Release() [3]int {
	return [3]int{v.Major, v.Minor, v.Micro}
}

// IsPreRelease reports whether the version carries a pre-release segment.
func (v Version) IsPreRelease() bool {
	return v.Pre.Kind != PreNone
}

// IsPostRelease reports whether the version carries a post-release segment.
func (v Version) IsPostRelease() bool {
	return v.HasPost
}

// IsDev reports whether the version is a development snapshot.
func (v Version) IsDev() bool {
	return v.HasDev
}

// IsLocal reports whether the version carries a local segment.
func (v Version) IsLocal() bool {
	return v.Local != ""
}

// IsFinal reports whether the version has no pre, post, dev or local segment.
func (v Version) IsFinal() bool {
	return !v.IsPreRelease() && !v.IsPostRelease() && !v.IsDev() && !v.IsLocal()
}

// Equal reports whether two versions are identical in all segments,
// including the local segment.
func (v Version) Equal(other Version) bool {
	return v == other
}

// Less reports whether v sorts strictly before other in PEP 440 precedence.
func (v Version) Less(other Version) bool {
	return v.Compare(other) < 0
}

// Compare returns -1 if v < other, 0 if equal, and 1 if v > other,
// using PEP 440 precedence: epoch, then release segments, then the
// pre/post/dev segments where a dev release precedes everything of the
// same release, a pre-release precedes the final release, and a post
// release follows it. Local segments are the final tiebreaker.
func (v Version) Compare(other Version) int {
	if c := cmpInt(v.Epoch, other.Epoch); c != 0 {
		return c
	}
	if c := cmpInt(v.Major, other.Major); c != 0 {
		return c
	}
	if c := cmpInt(v.Minor, other.Minor); c != 0 {
		return c
	}
	if c := cmpInt(v.Micro, other.Micro); c != 0 {
		return c
	}
	if c := cmpPre(v, other); c != 0 {
		return c
	}
	if c := cmpPost(v, other); c != 0 {
		return c
	}
	if c := cmpDev(v, other); c != 0 {
		return c
	}
	return cmpLocal(v.Local, other.Local)
}

// cmpPre ranks the pre-release position of a version: a bare dev release
// sorts before any pre-release of the same release, and any pre-release
// sorts before the final release.
func cmpPre(a, b Version) int {
	if c := cmpInt(preRank(a), preRank(b)); c != 0 {
		return c
	}
	if a.Pre.Kind == PreNone {
		return 0
	}
	if c := cmpInt(int(a.Pre.Kind), int(b.Pre.Kind)); c != 0 {
		return c
	}
	return cmpInt(a.Pre.Number, b.Pre.Number)
}

func preRank(v Version) int {
	switch {
	case v.Pre.Kind == PreNone && !v.HasPost && v.HasDev:
		return -1
	case v.Pre.Kind != PreNone:
		return 0
	default:
		return 1
	}
}

func cmpPost(a, b Version) int {
	an, bn := -1, -1
	if a.HasPost {
		an = a.Post
	}
	if b.HasPost {
		bn = b.Post
	}
	return cmpInt(an, bn)
}

func cmpDev(a, b Version) int {
	switch {
	case a.HasDev && b.HasDev:
		return cmpInt(a.Dev, b.Dev)
	case a.HasDev:
		// a dev snapshot precedes the corresponding non-dev version
		return -1
	case b.HasDev:
		return 1
	default:
		return 0
	}
}

// cmpLocal compares local segments per PEP 440: absent sorts first,
// then dot-separated parts pairwise with numeric parts comparing
// numerically and ranking above alphanumeric parts.
func cmpLocal(a, b string) int {
	if a == b {
		return 0
	}
	if a == "" {
		return -1
	}
	if b == "" {
		return 1
	}

	as := strings.FieldsFunc(a, isLocalSep)
	bs := strings.FieldsFunc(b, isLocalSep)
	for i := 0; i < len(as) && i < len(bs); i++ {
		an, aErr := strconv.Atoi(as[i])
		bn, bErr := strconv.Atoi(bs[i])
		switch {
		case aErr == nil && bErr == nil:
			if c := cmpInt(an, bn); c != 0 {
				return c
			}
		case aErr == nil:
			return 1
		case bErr == nil:
			return -1
		default:
			if c := strings.Compare(as[i], bs[i]); c != 0 {
				return c
			}
		}
	}
	return cmpInt(len(as), len(bs))
}

func isLocalSep(r rune) bool {
	return r == '.' || r == '-' || r == '_'
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// mustAtoi converts digits already validated by the grammar.
func mustAtoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		panic(fmt.Sprintf("version: non-numeric segment %q escaped grammar", s))
	}
	return n
}

func atoiOrZero(s string) int {
	if s == "" {
		return 0
	}
	return mustAtoi(s)
}
