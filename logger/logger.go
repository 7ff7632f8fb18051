// Package logger wraps zap for structured logging.
package logger

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultLogFile is where JSON logs go unless SetLogPath is called.
const DefaultLogFile = "datagen.log"

var (
	mu      sync.Mutex
	log     *zap.Logger
	once    sync.Once
	file    *os.File
	logFile = DefaultLogFile
	level   = zap.NewAtomicLevelAt(zap.InfoLevel)
)

// InitLogger initializes the Zap logger: human-readable output on stderr
// and JSON lines appended to the log file.
func InitLogger() {
	once.Do(func() {
		consoleEncoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
		consoleCore := zapcore.NewCore(consoleEncoder, zapcore.Lock(os.Stderr), level)

		core := consoleCore
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err == nil {
			file = f
			fileEncoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
			fileCore := zapcore.NewCore(fileEncoder, zapcore.AddSync(f), level)
			core = zapcore.NewTee(consoleCore, fileCore)
		}

		log = zap.New(core, zap.AddCaller())
		if err != nil {
			log.Warn("Log file unavailable, logging to console only",
				zap.String("path", logFile), zap.Error(err))
		}
	})
}

// GetLogger provides access to the initialized logger.
func GetLogger() *zap.Logger {
	mu.Lock()
	defer mu.Unlock()
	if log == nil {
		InitLogger()
	}
	return log
}

// SetLogPath changes the log file. It only takes effect before the logger
// is initialized, or after ResetLogger.
func SetLogPath(path string) {
	mu.Lock()
	defer mu.Unlock()
	if path != "" {
		logFile = path
	}
}

// SetLevel changes the minimum level of both outputs at runtime.
func SetLevel(l zapcore.Level) {
	level.SetLevel(l)
}

// ResetLogger flushes and discards the current logger so the next call to
// GetLogger builds a fresh one.
func ResetLogger() {
	mu.Lock()
	defer mu.Unlock()
	if log != nil {
		_ = log.Sync()
	}
	if file != nil {
		_ = file.Close()
		file = nil
	}
	log = nil
	once = sync.Once{}
	logFile = DefaultLogFile
}

// Sync ensures buffered logs are written before the application exits.
func Sync() {
	mu.Lock()
	defer mu.Unlock()
	if log != nil {
		_ = log.Sync()
	}
}
