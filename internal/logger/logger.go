// Package logger writes the CLI's diagnostic output to stderr. Debug, Info,
// Warn and Section only print under --verbose, where they trace each embed,
// search and completion call. Error always prints.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

type level string

const (
	levelDebug level = "DEBUG"
	levelInfo  level = "INFO"
	levelWarn  level = "WARN"
	levelError level = "ERROR"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
)

// SetVerbose turns the verbose levels on or off.
func SetVerbose(v bool) {
	mu.Lock()
	verbose = v
	mu.Unlock()
}

func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput redirects all levels to w. Tests pass a buffer.
func SetOutput(w io.Writer) {
	mu.Lock()
	output = w
	mu.Unlock()
}

func Debug(format string, args ...any) { write(levelDebug, format, args) }

func Info(format string, args ...any) { write(levelInfo, format, args) }

func Warn(format string, args ...any) { write(levelWarn, format, args) }

// Error prints regardless of verbosity. The REPL and TUI use it to report a
// failed turn and carry on.
func Error(format string, args ...any) { write(levelError, format, args) }

// Section prints a banner separating pipeline stages.
func Section(name string) {
	mu.Lock()
	defer mu.Unlock()
	if verbose {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}

// Timed logs how long a step took when the returned func is called.
//
//	defer logger.Timed("embed query")()
func Timed(step string) func() {
	start := time.Now()
	return func() {
		Debug("%s took %s", step, time.Since(start).Round(time.Millisecond))
	}
}

// write holds the exclusive lock so concurrent lines never interleave.
func write(l level, format string, args []any) {
	mu.Lock()
	defer mu.Unlock()
	if !verbose && l != levelError {
		return
	}
	fmt.Fprintf(output, "[%s] %s\n", l, fmt.Sprintf(format, args...))
}
