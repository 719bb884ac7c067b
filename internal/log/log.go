// Package log provides categorised, leveled logging for snippetleaf.
//
// Logging is off until Init or InitWithTeaLog is called (the root command
// does so for --debug or SNIPPETLEAF_DEBUG). Every entry is also published
// on a broker so the playground can show a live log pane.
package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/superle3/snippet-leaf/internal/pubsub"
)

// EnvDebug enables logging when set to a non-empty value.
const EnvDebug = "SNIPPETLEAF_DEBUG"

// EnvLogFile overrides the debug log path.
const EnvLogFile = "SNIPPETLEAF_LOG"

// Level represents log severity.
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

// Category groups related log messages.
type Category string

const (
	CatSnippet Category = "snippet" // snippet parsing and matching
	CatExpand  Category = "expand"  // queue flushing and transactions
	CatTabstop Category = "tabstop" // tabstop tracking and navigation
	CatHistory Category = "history" // undo/redo coordination
	CatEditor  Category = "editor"  // host editor dispatch
	CatLua     Category = "lua"     // replacement functions
	CatConfig  Category = "config"  // configuration loading/saving
	CatWatcher Category = "watcher" // file watcher events
	CatCache   Category = "cache"   // compiled snippet cache
	CatUI      Category = "ui"      // playground
	CatKeys    Category = "keys"    // keystroke handling
)

type logger struct {
	mu       sync.Mutex
	closer   io.Closer
	writer   io.Writer
	minLevel Level
	broker   *pubsub.Broker[string]
}

var (
	mu            sync.RWMutex
	defaultLogger *logger
)

// Init starts logging to the file at path and returns a cleanup function.
func Init(path string) (func(), error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644) //nolint:gosec // G304: user-chosen debug log path
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	install(f, f)
	return closeFn(f), nil
}

// InitWithTeaLog starts logging through tea.LogToFile, which also captures
// Bubble Tea's own log output while a program runs.
func InitWithTeaLog(path string, prefix string) (func(), error) {
	f, err := tea.LogToFile(path, prefix)
	if err != nil {
		return nil, fmt.Errorf("opening tea log: %w", err)
	}
	install(f, f)
	return closeFn(f), nil
}

// InitWriter logs to w; used by tests and the expand command's --trace flag.
func InitWriter(w io.Writer) func() {
	install(w, nil)
	return func() { install(nil, nil) }
}

// EnabledByEnv reports whether SNIPPETLEAF_DEBUG asks for logging.
func EnabledByEnv() bool {
	return strings.TrimSpace(os.Getenv(EnvDebug)) != ""
}

func install(w io.Writer, c io.Closer) {
	mu.Lock()
	defer mu.Unlock()
	if defaultLogger != nil && defaultLogger.broker != nil {
		defaultLogger.broker.Close()
	}
	if w == nil {
		defaultLogger = nil
		return
	}
	defaultLogger = &logger{
		writer:   w,
		closer:   c,
		minLevel: LevelDebug,
		broker:   pubsub.NewBroker[string](),
	}
}

func closeFn(c io.Closer) func() {
	return func() {
		mu.Lock()
		if defaultLogger != nil && defaultLogger.closer == c {
			defaultLogger.broker.Close()
			defaultLogger = nil
		}
		mu.Unlock()
		_ = c.Close()
	}
}

// SetMinLevel sets the minimum log level.
func SetMinLevel(level Level) {
	mu.RLock()
	defer mu.RUnlock()
	if defaultLogger != nil {
		defaultLogger.mu.Lock()
		defaultLogger.minLevel = level
		defaultLogger.mu.Unlock()
	}
}

// Debug logs at debug level.
func Debug(cat Category, msg string, fields ...any) {
	write(LevelDebug, cat, msg, fields...)
}

// Info logs at info level.
func Info(cat Category, msg string, fields ...any) {
	write(LevelInfo, cat, msg, fields...)
}

// Warn logs at warning level.
func Warn(cat Category, msg string, fields ...any) {
	write(LevelWarn, cat, msg, fields...)
}

// Error logs at error level.
func Error(cat Category, msg string, fields ...any) {
	write(LevelError, cat, msg, fields...)
}

// ErrorErr logs an error with the error value.
func ErrorErr(cat Category, msg string, err error, fields ...any) {
	if err != nil {
		fields = append(fields, "error", err.Error())
	} else {
		fields = append(fields, "error", "<nil>")
	}
	write(LevelError, cat, msg, fields...)
}

func write(level Level, cat Category, msg string, fields ...any) {
	mu.RLock()
	l := defaultLogger
	mu.RUnlock()
	if l == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if level < l.minLevel {
		return
	}

	entry := format(time.Now(), level, cat, msg, fields...)
	_, _ = io.WriteString(l.writer, entry)
	l.broker.Publish(pubsub.CreatedEvent, entry)
}

// format renders "2026-01-02T15:04:05 [WARN] [expand] msg key=value".
func format(ts time.Time, level Level, cat Category, msg string, fields ...any) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s [%s] [%s] %s", ts.Format("2006-01-02T15:04:05"), level, cat, msg)
	for i := 0; i+1 < len(fields); i += 2 {
		fmt.Fprintf(&b, " %v=%v", fields[i], fields[i+1])
	}
	if len(fields)%2 != 0 {
		fmt.Fprintf(&b, " %v=<missing>", fields[len(fields)-1])
	}
	b.WriteByte('\n')
	return b.String()
}

// Event is a pubsub event carrying one log line.
type Event = pubsub.Event[string]

// Listener wraps a continuous listener for log events.
type Listener = pubsub.ContinuousListener[string]

// NewListener subscribes to log lines until ctx is cancelled. It returns nil
// when logging is off.
func NewListener(ctx context.Context) *Listener {
	mu.RLock()
	defer mu.RUnlock()
	if defaultLogger == nil {
		return nil
	}
	return pubsub.NewContinuousListener(ctx, defaultLogger.broker)
}
