package foyer

import (
	"fmt"
	"log"
	"os"
	"sync"
)

// Logger is the logging abstraction used throughout the framework. The
// framework never writes to a concrete logging backend directly; every
// component that needs to record something (the server flushing a response,
// the HTTP/3 front door, middlewares) goes through this interface, so the
// backend can be swapped for zap, logrus, slog or anything else without
// touching framework code.
//
// Implementations must be safe for concurrent use: the server calls the
// logger from every request goroutine.
type Logger interface {
	// Debug records diagnostic detail that is usually disabled in production.
	Debug(msg string, args ...any)
	// Info records normal operational events such as server start and stop.
	Info(msg string, args ...any)
	// Warn records recoverable anomalies, e.g. a request hitting a rate limit.
	Warn(msg string, args ...any)
	// Error records failures that were turned into an error response.
	Error(msg string, args ...any)
	// Fatalln records an unrecoverable failure and terminates the process.
	Fatalln(msg string, args ...any)
}

var (
	defaultLogger   Logger = &stdLogger{l: log.New(os.Stderr, "", log.LstdFlags)}
	defaultLoggerMu sync.RWMutex
)

// SetDefaultLogger replaces the package-level logger used by servers and
// middlewares that were not given an explicit one. Call it before the server
// starts accepting requests; swapping the logger mid-flight is safe but
// in-flight requests may still log through the previous backend.
func SetDefaultLogger(l Logger) {
	if l == nil {
		return
	}
	defaultLoggerMu.Lock()
	defaultLogger = l
	defaultLoggerMu.Unlock()
}

// GetDefaultLogger returns the current package-level logger.
func GetDefaultLogger() Logger {
	defaultLoggerMu.RLock()
	defer defaultLoggerMu.RUnlock()
	return defaultLogger
}

// stdLogger is the fallback backend over the standard library logger. It
// formats args printf-style when the message contains verbs, mirroring how
// call sites in this package phrase their messages.
type stdLogger struct {
	l *log.Logger
}

func (s *stdLogger) output(level, msg string, args ...any) {
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	s.l.Printf("[%s] %s", level, msg)
}

func (s *stdLogger) Debug(msg string, args ...any) { s.output("DEBUG", msg, args...) }
func (s *stdLogger) Info(msg string, args ...any)  { s.output("INFO", msg, args...) }
func (s *stdLogger) Warn(msg string, args ...any)  { s.output("WARN", msg, args...) }
func (s *stdLogger) Error(msg string, args ...any) { s.output("ERROR", msg, args...) }

func (s *stdLogger) Fatalln(msg string, args ...any) {
	s.output("FATAL", msg, args...)
	os.Exit(1)
}
