/*
Copyright © 2025 ReleaseKit Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package serializer renders command results in multiple formats.
//
// The package supports three output formats:
//   - JSON: machine-readable structured data with indentation
//   - YAML: human-readable structured output
//   - Table: flattened key/value pairs for terminal viewing
//
// Usage:
//
//	w := serializer.NewWriter(serializer.FormatJSON, os.Stdout)
//	defer w.Close()
//	if err := w.Serialize(ctx, result); err != nil {
//		log.Fatal(err)
//	}
//
// The table format flattens nested structures into dotted keys, so a
// bump result renders as:
//
//	FIELD      VALUE
//	-----      -----
//	Action     minor
//	Current    1.2.3
//	Next       1.3.0
package serializer
