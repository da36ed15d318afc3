// Package diag prints warnings and debug messages to stderr and, optionally,
// to a rotated log file
package diag

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	mu       sync.Mutex
	logger   = log.New(os.Stderr, "", 0)
	file     *lumberjack.Logger
	verbose  bool
	silenced int
)

// SetOutput redirects console diagnostics
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	logger.SetOutput(w)
}

// SetPrefix sets the program name printed before every message
func SetPrefix(name string) {
	mu.Lock()
	defer mu.Unlock()
	if name == "" {
		logger.SetPrefix("")
		return
	}
	logger.SetPrefix(name + ": ")
}

func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

func Verbose() bool {
	mu.Lock()
	defer mu.Unlock()
	return verbose
}

// LogToFile copies diagnostics to a file rotated at maxSize megabytes.
// An empty path stops file logging.
func LogToFile(path string, maxSize int) error {
	mu.Lock()
	defer mu.Unlock()

	if file != nil {
		err := file.Close()
		file = nil
		if err != nil {
			return fmt.Errorf("error closing log file: %v", err)
		}
	}
	if path == "" {
		return nil
	}

	if maxSize <= 0 {
		maxSize = 1
	}
	file = &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSize,
		MaxBackups: 3,
	}
	return nil
}

// Close flushes and closes the log file, if any
func Close() error {
	return LogToFile("", 0)
}

// Silence suppresses all diagnostics until the returned function is called.
// Calls nest.
func Silence() (restore func()) {
	mu.Lock()
	silenced++
	mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			mu.Lock()
			silenced--
			mu.Unlock()
		})
	}
}

func Silenced() bool {
	mu.Lock()
	defer mu.Unlock()
	return silenced > 0
}

func output(debug bool, msg string) {
	mu.Lock()
	defer mu.Unlock()

	if silenced > 0 || (debug && !verbose) {
		return
	}
	logger.Print(msg)
	if file != nil {
		fmt.Fprintln(file, logger.Prefix()+msg)
	}
}

// Warn prints a message followed by the error
func Warn(err error, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if err != nil {
		msg += ": " + err.Error()
	}
	output(false, msg)
}

// Warnf prints a message
func Warnf(format string, args ...any) {
	output(false, fmt.Sprintf(format, args...))
}

// Debugf prints a message in verbose mode only
func Debugf(format string, args ...any) {
	output(true, fmt.Sprintf(format, args...))
}
