package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"runtime"
	"sync"

	"github.com/gin-gonic/gin"
)

type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
	FATAL
)

func (l LogLevel) String() string {
	return [...]string{"DEBUG", "INFO", "WARN", "ERROR", "FATAL"}[l]
}

var (
	mu       sync.RWMutex
	minLevel = INFO
)

// Setup routes both the application log and gin's request log to out and
// sets the lowest level that is written.
func Setup(out io.Writer, level LogLevel) {
	mu.Lock()
	defer mu.Unlock()

	minLevel = level
	log.SetOutput(out)
	log.SetFlags(log.LstdFlags)
	gin.DefaultWriter = out
	gin.DefaultErrorWriter = out
}

func enabled(level LogLevel) bool {
	mu.RLock()
	defer mu.RUnlock()
	return level >= minLevel
}

func logWithLevel(level LogLevel, format string, v ...interface{}) {
	if !enabled(level) {
		return
	}
	_, f, l, _ := runtime.Caller(2)
	log.Printf("[%s] %s:%d: %s", level, shortFile(f), l, fmt.Sprintf(format, v...))
}

func shortFile(path string) string {
	for i := len(path) - 1; i > 0; i-- {
		if path[i] == '/' {
			for j := i - 1; j > 0; j-- {
				if path[j] == '/' {
					return path[j+1:]
				}
			}
			return path
		}
	}
	return path
}

func Debug(format string, v ...interface{}) {
	logWithLevel(DEBUG, format, v...)
}

func Info(format string, v ...interface{}) {
	logWithLevel(INFO, format, v...)
}

func Warn(format string, v ...interface{}) {
	logWithLevel(WARN, format, v...)
}

func Error(format string, v ...interface{}) {
	logWithLevel(ERROR, format, v...)
}

func Fatal(format string, v ...interface{}) {
	logWithLevel(FATAL, format, v...)
	os.Exit(1)
}
