/*
Copyright © 2025 ReleaseKit Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package cli implements the command-line interface for the pepver tool.
//
// # Overview
//
// pepver bumps PEP 440 versions stored in a Python project manifest
// (pyproject.toml), optionally committing the rewritten manifest and
// tagging the release, and can suggest the next version from
// conventional-commit history.
//
// # Commands
//
// bump - apply a version transition:
//
//	pepver bump minor
//	pepver bump prerelease --pre beta
//	pepver bump tag
//	pepver bump suggest
//	pepver bump auto --commit --tag
//
// # Global Flags
//
//	--log-level    log level: debug, info, warn, error (default: warn)
//	--help, -h     show command help
//	--version, -v  show version information
//
// # Configuration
//
// Flags take precedence over PEPVER_* environment variables, which take
// precedence over the [tool.pepver] table in pyproject.toml
// (no-prepend-v, source-path, commit-message).
//
// # Exit Codes
//
//	0 - success
//	1 - any failure; the error message carries the structured error code
package cli
