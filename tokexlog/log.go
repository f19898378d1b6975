// Package tokexlog holds the process-wide debug sink described in spec.md
// §5: a single global logger whose level is raised for the duration of one
// Match call and restored on every exit path, the same shape the teacher's
// sibling projects use for their own global loggers (a package-level
// log.Logger guarded by go-kit/log/level).
package tokexlog

import (
	"io"
	"sync"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// Logger is the process-wide sink. It discards everything below Error by
// default; WithDebug temporarily allows Debug-level records.
var Logger log.Logger = level.NewFilter(log.NewLogfmtLogger(io.Discard), level.AllowError())

var mu sync.Mutex

// WithDebug raises Logger to allow debug-level records for the duration of
// the caller's match call and returns a restore func that must be deferred
// immediately. When enabled is false, restore is a no-op: the sink is left
// exactly as it was found.
func WithDebug(enabled bool, w io.Writer) (restore func()) {
	if !enabled {
		return func() {}
	}

	mu.Lock()
	prev := Logger
	if w == nil {
		w = io.Discard
	}
	Logger = level.NewFilter(log.NewLogfmtLogger(w), level.AllowDebug())
	mu.Unlock()

	return func() {
		mu.Lock()
		Logger = prev
		mu.Unlock()
	}
}

// Debug logs a debug-level record with the given key/value pairs.
func Debug(keyvals ...interface{}) {
	_ = level.Debug(Logger).Log(keyvals...)
}
