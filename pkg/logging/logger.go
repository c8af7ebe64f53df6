// Package logging provides the workspace logger. Messages go to a
// rotating file under the prdpilot dotdir; nothing here writes to the
// terminal, which belongs to pkg/ui.
package logging

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger wraps the rotating file log.
type Logger struct {
	logger        *log.Logger
	jsonMode      bool
	correlationID string
}

var (
	globalLogger *Logger
	once         sync.Once
)

// Dir returns the prdpilot dotdir, creating it if needed.
func Dir() string {
	dir := filepath.Join(os.Getenv("HOME"), ".prdpilot")
	_ = os.MkdirAll(dir, 0755)
	return dir
}

// LogPath returns the rotating log file path.
func LogPath() string {
	return filepath.Join(Dir(), "prdpilot.log")
}

// GetLogger returns the singleton logger, initializing the rotating file
// handler on first use. JSON mode and a correlation id can be injected
// through the environment for scripted runs.
func GetLogger() *Logger {
	once.Do(func() {
		logFile := &lumberjack.Logger{
			Filename:   LogPath(),
			MaxSize:    15, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		}
		globalLogger = &Logger{
			logger: log.New(logFile, "", log.LstdFlags),
		}
		if os.Getenv("PRDPILOT_JSON_LOGS") == "1" {
			globalLogger.jsonMode = true
		}
		globalLogger.correlationID = os.Getenv("PRDPILOT_CORRELATION_ID")
	})
	return globalLogger
}

// Close flushes and closes the underlying file.
func (l *Logger) Close() error {
	if logFile, ok := l.logger.Writer().(*lumberjack.Logger); ok {
		return logFile.Close()
	}
	return nil
}

// Log writes a message to the log file only.
func (l *Logger) Log(message string) {
	if l.jsonMode {
		_ = json.NewEncoder(l.logger.Writer()).Encode(map[string]any{"level": "info", "msg": message, "cid": l.correlationID})
		return
	}
	l.logger.Print(message)
}

// Logf writes a formatted message to the log file only.
func (l *Logger) Logf(format string, v ...interface{}) {
	if l.jsonMode {
		l.Log(fmt.Sprintf(format, v...))
		return
	}
	l.logger.Printf(format, v...)
}

// LogError records an error.
func (l *Logger) LogError(err error) {
	if l.jsonMode {
		_ = json.NewEncoder(l.logger.Writer()).Encode(map[string]any{"level": "error", "error": err.Error(), "cid": l.correlationID})
		return
	}
	l.logger.Printf("Error: %s", err)
}
