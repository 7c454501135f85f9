// Package log provides leveled, categorized logging gated by --verbose.
// The TUI logs to a file so output cannot corrupt the alternate screen;
// web mode logs to stderr. Disabled logging is a no-op.
package log

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Level is log severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Category groups related messages.
type Category string

const (
	CatScan  Category = "scan"  // filesystem walking and fingerprinting
	CatMatch Category = "match" // tree merge and classification
	CatDiff  Category = "diff"  // line diff computation
	CatUI    Category = "ui"    // TUI updates
	CatWeb   Category = "web"   // HTTP server
)

var (
	mu      sync.Mutex
	out     io.Writer
	closer  io.Closer
	minimum = LevelInfo
)

// SetupWriter enables logging to w.
func SetupWriter(w io.Writer, min Level) {
	mu.Lock()
	defer mu.Unlock()
	out = w
	minimum = min
}

// SetupFile enables logging to the named file, creating it if needed.
func SetupFile(path string, min Level) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	mu.Lock()
	defer mu.Unlock()
	if closer != nil {
		_ = closer.Close()
	}
	out = f
	closer = f
	minimum = min
	return nil
}

// Close tears down a file target, if any.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if closer != nil {
		_ = closer.Close()
		closer = nil
	}
	out = nil
}

func logf(level Level, cat Category, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	if out == nil || level < minimum {
		return
	}
	ts := time.Now().Format("15:04:05.000")
	fmt.Fprintf(out, "%s %-5s [%s] %s\n", ts, level, cat, fmt.Sprintf(format, args...))
}

func Debugf(cat Category, format string, args ...any) { logf(LevelDebug, cat, format, args...) }
func Infof(cat Category, format string, args ...any)  { logf(LevelInfo, cat, format, args...) }
func Warnf(cat Category, format string, args ...any)  { logf(LevelWarn, cat, format, args...) }
func Errorf(cat Category, format string, args ...any) { logf(LevelError, cat, format, args...) }
