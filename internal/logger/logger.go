// Package logger provides leveled logging to a file for the whole
// application. The TUI owns the terminal, so nothing is ever written
// to stdout or stderr.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
)

var (
	mu      sync.Mutex
	file    *os.File
	std     = log.New(io.Discard, "", log.LstdFlags)
	debugOn bool
)

// InitLogging opens (or creates) the log file at path. When debug is false,
// Debugf calls are dropped.
func InitLogging(debug bool, path string) error {
	mu.Lock()
	defer mu.Unlock()

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	file = f
	std = log.New(f, "", log.LstdFlags)
	debugOn = debug

	return nil
}

// Close flushes and closes the log file. Logging after Close is a no-op.
func Close() {
	mu.Lock()
	defer mu.Unlock()

	if file != nil {
		_ = file.Close()
		file = nil
	}

	std = log.New(io.Discard, "", log.LstdFlags)
}

func logf(level, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()

	std.Printf(level+" "+format, args...)
}

func Debugf(format string, args ...any) {
	mu.Lock()
	on := debugOn
	mu.Unlock()

	if !on {
		return
	}

	logf("DEBUG", format, args...)
}

func Infof(format string, args ...any) {
	logf("INFO", format, args...)
}

func Warnf(format string, args ...any) {
	logf("WARN", format, args...)
}

func Errorf(format string, args ...any) {
	logf("ERROR", format, args...)
}
