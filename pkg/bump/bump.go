/*
Copyright © 2025 ReleaseKit Authors
SPDX-License-Identifier: Apache-2.0
*/

package bump

import (
	"errors"
	"fmt"

	"github.com/releasekit/pepver/pkg/version"
)

// Error types for illegal transitions
var (
	// ErrUnsupportedTransition indicates the requested action is not legal
	// for the current version state.
	ErrUnsupportedTransition = errors.New("bump transition is not supported for the current version")
	// ErrUnknownAction indicates the action name is not part of the closed set.
	ErrUnknownAction = errors.New("unknown bump action")
)

// Action is a version transition request. The set is closed; use
// ParseAction to map user input onto it.
type Action string

const (
	// ActionMajor increments the major release segment.
	ActionMajor Action = "major"
	// ActionMinor increments the minor release segment.
	ActionMinor Action = "minor"
	// ActionMicro increments the micro (patch) release segment.
	ActionMicro Action = "micro"
	// ActionPreMajor increments major and starts an alpha pre-release.
	ActionPreMajor Action = "premajor"
	// ActionPreMinor increments minor and starts an alpha pre-release.
	ActionPreMinor Action = "preminor"
	// ActionPrePatch increments micro and starts an alpha pre-release.
	ActionPrePatch Action = "prepatch"
	// ActionPreRelease advances the pre-release segment for a given kind.
	ActionPreRelease Action = "prerelease"
	// ActionNoPreRelease finalizes a pre-release version.
	ActionNoPreRelease Action = "no-pre-release"
	// ActionPost increments (or initializes) the post-release segment.
	ActionPost Action = "post"
	// ActionDev increments (or initializes) the dev-release segment.
	ActionDev Action = "dev"
	// ActionEpoch increments the epoch and restarts the version at the
	// default release, marking a change of versioning scheme.
	ActionEpoch Action = "epoch"
	// ActionReset drops the post, dev and local segments, keeping the
	// release and pre-release parts intact.
	ActionReset Action = "reset"
)

// Actions returns all valid actions in display order.
func Actions() []Action {
	return []Action{
		ActionMajor, ActionMinor, ActionMicro,
		ActionPreMajor, ActionPreMinor, ActionPrePatch,
		ActionPreRelease, ActionNoPreRelease,
		ActionPost, ActionDev, ActionEpoch, ActionReset,
	}
}

// IsValid reports whether the action is part of the closed set.
func (a Action) IsValid() bool {
	switch a {
	case ActionMajor, ActionMinor, ActionMicro,
		ActionPreMajor, ActionPreMinor, ActionPrePatch,
		ActionPreRelease, ActionNoPreRelease,
		ActionPost, ActionDev, ActionEpoch, ActionReset:
		return true
	default:
		return false
	}
}

// String returns the action name.
func (a Action) String() string {
	return string(a)
}

// ParseAction maps a user-facing action name onto the closed action set.
// "patch" is accepted as an alias for "micro".
func ParseAction(s string) (Action, error) {
	if s == "patch" {
		return ActionMicro, nil
	}
	a := Action(s)
	if !a.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownAction, s)
	}
	return a, nil
}

// Request carries an action together with its parameters. Pre is only
// consulted for ActionPreRelease; when left as PreNone the engine keeps
// the current pre-release kind, or starts an alpha on a final version.
type Request struct {
	Action Action
	Pre    version.PreKind
}

// Apply derives a new version from the current one under the requested
// transition. It is a pure function: the input version is never mutated
// and no external state is consulted. Every transition clears the local
// segment on output, and every transition except ActionEpoch preserves
// the epoch. Illegal transitions return an error wrapping
// ErrUnsupportedTransition.
func Apply(current version.Version, req Request) (version.Version, error) {
	var next version.Version
	var err error

	switch req.Action {
	case ActionMajor:
		next = release(current, current.Major+1, 0, 0)
	case ActionMinor:
		next = release(current, current.Major, current.Minor+1, 0)
	case ActionMicro:
		next = release(current, current.Major, current.Minor, current.Micro+1)
	case ActionPreMajor:
		next = release(current, current.Major+1, 0, 0)
		next.Pre = version.Pre{Kind: version.Alpha, Number: 1}
	case ActionPreMinor:
		next = release(current, current.Major, current.Minor+1, 0)
		next.Pre = version.Pre{Kind: version.Alpha, Number: 1}
	case ActionPrePatch:
		next = release(current, current.Major, current.Minor, current.Micro+1)
		next.Pre = version.Pre{Kind: version.Alpha, Number: 1}
	case ActionPreRelease:
		next, err = preRelease(current, req.Pre)
	case ActionNoPreRelease:
		next, err = finalize(current)
	case ActionPost:
		next = current
		next.Local = ""
		if next.HasPost {
			next.Post++
		} else {
			next.HasPost, next.Post = true, 1
		}
	case ActionDev:
		next = current
		next.Local = ""
		if next.HasDev {
			next.Dev++
		} else {
			next.HasDev, next.Dev = true, 1
		}
	case ActionEpoch:
		next = version.Default()
		next.Epoch = current.Epoch + 1
	case ActionReset:
		next = current
		next.HasPost, next.Post = false, 0
		next.HasDev, next.Dev = false, 0
		next.Local = ""
	default:
		return version.Version{}, fmt.Errorf("%w: %q", ErrUnknownAction, req.Action)
	}

	if err != nil {
		return version.Version{}, err
	}
	return next, nil
}

// release builds a final version with the given segments, keeping only
// the epoch from the current version.
func release(current version.Version, major, minor, micro int) version.Version {
	return version.Version{
		Epoch: current.Epoch,
		Major: major,
		Minor: minor,
		Micro: micro,
	}
}

// preRelease implements the prerelease(kind) transition: start an alpha
// of the next micro on a final version, increment the number on the
// same kind, restart the number on a higher kind, and refuse a kind
// regression.
func preRelease(current version.Version, kind version.PreKind) (version.Version, error) {
	if current.Pre.Kind == version.PreNone {
		if kind == version.PreNone {
			kind = version.Alpha
		}
		next := release(current, current.Major, current.Minor, current.Micro+1)
		next.Pre = version.Pre{Kind: kind, Number: 1}
		return next, nil
	}

	if kind == version.PreNone {
		kind = current.Pre.Kind
	}

	next := release(current, current.Major, current.Minor, current.Micro)
	switch {
	case kind == current.Pre.Kind:
		next.Pre = version.Pre{Kind: kind, Number: current.Pre.Number + 1}
	case kind > current.Pre.Kind:
		next.Pre = version.Pre{Kind: kind, Number: 1}
	default:
		return version.Version{}, fmt.Errorf(
			"%w: cannot move %s version %s back to %s",
			ErrUnsupportedTransition, current.Pre.Kind.Name(), current, kind.Name())
	}
	return next, nil
}

// finalize strips the pre-release marker, keeping the release segments.
func finalize(current version.Version) (version.Version, error) {
	if current.Pre.Kind == version.PreNone {
		return version.Version{}, fmt.Errorf(
			"%w: version %s has no pre-release part to remove",
			ErrUnsupportedTransition, current)
	}
	return release(current, current.Major, current.Minor, current.Micro), nil
}
