package internal

import (
	"log"
	"os"
)

// LogLevel controls logging verbosity.
type LogLevel int

const (
	LogLevelError LogLevel = iota
	LogLevelWarn
	LogLevelInfo
)

// Logger is the leveled logger shared by the service, HTTP and CLI
// surfaces. The level comes from the LOG_LEVEL environment variable;
// anything unrecognized falls back to INFO.
type Logger struct {
	level LogLevel
}

// NewDefaultLogger creates a logger configured from LOG_LEVEL.
func NewDefaultLogger() *Logger {
	level := LogLevelInfo
	switch os.Getenv("LOG_LEVEL") {
	case "ERROR":
		level = LogLevelError
	case "WARN":
		level = LogLevelWarn
	}
	return &Logger{level: level}
}

func (l *Logger) Error(format string, args ...interface{}) {
	if l.level >= LogLevelError {
		log.Printf("[ERROR] "+format, args...)
	}
}

func (l *Logger) Warn(format string, args ...interface{}) {
	if l.level >= LogLevelWarn {
		log.Printf("[WARN] "+format, args...)
	}
}

func (l *Logger) Info(format string, args ...interface{}) {
	if l.level >= LogLevelInfo {
		log.Printf("[INFO] "+format, args...)
	}
}

// DefaultLogger is the fallback instance used when a component is built
// without an explicit logger.
var DefaultLogger = NewDefaultLogger()
