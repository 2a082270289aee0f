// Package enginelog provides the engine's structured-by-convention logger:
// a small interface over the standard library's log package, following
// Gekko3D-gekko's logging.go (teacher's pack neighbor for this concern —
// akmonengine-feather itself logs nothing, so the logging idiom is learned
// from the rest of the retrieval pack rather than invented from scratch).
package enginelog

import (
	"fmt"
	"log"
	"os"
	"sync"
)

// Logger is the engine's ambient logging surface, used for step-timing
// (World.Debug.Time) and per-phase tracing (World.Debug.BroadPhase etc,
// SPEC_FULL.md §6.1). A world with no logger configured uses NewNopLogger,
// so StepWorld never has to nil-check.
type Logger interface {
	Debugf(format string, args ...any)
	Warnf(format string, args ...any)
}

// StdLogger logs through the standard library's log.Logger, matching the
// teacher pack's DefaultLogger (Gekko3D-gekko/logging.go): a prefix, debug
// gating, separate writers for debug/warn output.
type StdLogger struct {
	mu     sync.Mutex
	debug  bool
	prefix string
	out    *log.Logger
	err    *log.Logger
}

// NewStdLogger builds a Logger writing to stdout/stderr with the given
// prefix. debug gates Debugf; Warnf always logs.
func NewStdLogger(prefix string, debug bool) *StdLogger {
	flags := log.LstdFlags | log.Lmicroseconds
	return &StdLogger{
		debug:  debug,
		prefix: prefix,
		out:    log.New(os.Stdout, "", flags),
		err:    log.New(os.Stderr, "", flags),
	}
}

// SetDebug toggles whether Debugf actually writes.
func (l *StdLogger) SetDebug(enabled bool) {
	l.mu.Lock()
	l.debug = enabled
	l.mu.Unlock()
}

func (l *StdLogger) prefixf(level, format string, args ...any) string {
	if l.prefix != "" {
		return fmt.Sprintf("[%s] %s: %s", l.prefix, level, fmt.Sprintf(format, args...))
	}
	return fmt.Sprintf("%s: %s", level, fmt.Sprintf(format, args...))
}

func (l *StdLogger) Debugf(format string, args ...any) {
	l.mu.Lock()
	dbg := l.debug
	l.mu.Unlock()
	if !dbg {
		return
	}
	l.out.Print(l.prefixf("DEBUG", format, args...))
}

func (l *StdLogger) Warnf(format string, args ...any) {
	l.err.Print(l.prefixf("WARN", format, args...))
}

type nopLogger struct{}

// NewNopLogger returns a Logger that discards everything — the default for
// a World that doesn't set Logger explicitly.
func NewNopLogger() Logger { return nopLogger{} }

func (nopLogger) Debugf(format string, args ...any) {}
func (nopLogger) Warnf(format string, args ...any)  {}
