// Package debug provides gated diagnostic logging for taskbed.
// Output is enabled with TASKBED_DEBUG=1 and goes to stderr so it never
// mixes with command output.
package debug

import (
	"fmt"
	"os"
	"sync"
)

var (
	once    sync.Once
	enabled bool
	quiet   bool
)

func load() {
	once.Do(func() {
		enabled = os.Getenv("TASKBED_DEBUG") != ""
		quiet = os.Getenv("TASKBED_QUIET") != ""
	})
}

// Enabled reports whether debug logging is on.
func Enabled() bool {
	load()
	return enabled
}

// IsQuiet reports whether advisory warnings should be suppressed.
func IsQuiet() bool {
	load()
	return quiet
}

// Logf writes a debug line to stderr when TASKBED_DEBUG is set.
func Logf(format string, args ...interface{}) {
	load()
	if !enabled {
		return
	}
	fmt.Fprintf(os.Stderr, "[taskbed] "+format+"\n", args...)
}
