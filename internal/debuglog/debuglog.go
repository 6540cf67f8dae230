// Package debuglog prints verbose diagnostics when STUDYBUDDY_DEBUG=1.
package debuglog

import (
	"log"
	"os"
	"strings"
)

// EnvVar switches debug output on.
const EnvVar = "STUDYBUDDY_DEBUG"

var enabled = isOn(os.Getenv(EnvVar))

func isOn(value string) bool {
	return strings.EqualFold(strings.TrimSpace(value), "1")
}

// Printf logs through the standard logger when debug output is on.
func Printf(format string, args ...interface{}) {
	if enabled {
		log.Printf(format, args...)
	}
}
