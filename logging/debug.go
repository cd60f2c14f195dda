package logging

import "sync/atomic"

var debug atomic.Bool

// SetDebug toggles Debugf output process-wide.
func SetDebug(enabled bool) {
	debug.Store(enabled)
}
