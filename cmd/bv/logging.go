// SPDX-License-Identifier: MPL-2.0

package main

import (
	"os"

	"github.com/charmbracelet/log"
)

// logger emits diagnostics to stderr so command output on stdout stays
// machine-readable. Verbose mode lowers the level to Debug.
var logger = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: false,
})

func applyLogLevel() {
	if verbose {
		logger.SetLevel(log.DebugLevel)
	} else {
		logger.SetLevel(log.InfoLevel)
	}
}
