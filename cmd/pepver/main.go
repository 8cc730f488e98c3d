/*
Copyright © 2025 ReleaseKit Authors
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"github.com/releasekit/pepver/pkg/cli"
)

func main() {
	cli.Execute()
}
