// SPDX-License-Identifier: Apache-2.0

// Command aletheia verifies content credentials embedded in media and
// reports them in a normalized, display-ready form.
package main

import (
	"os"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
