package logging

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	loggers   = make(map[string]*logrus.Entry)
	loggersMu sync.Mutex

	base     = logrus.New()
	baseOnce sync.Once
)

// Configure sets the level, formatter and output shared by every component logger.
// An empty level or format keeps the LOG_LEVEL / LOG_FORMAT environment defaults.
func Configure(level, format string, out io.Writer) {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	baseOnce.Do(initBase)
	applyLevel(level)
	applyFormat(format)
	if out != nil {
		base.SetOutput(out)
	}
}

// NewLogger returns the logger for a component, creating it on first use.
func NewLogger(component string) *logrus.Entry {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	baseOnce.Do(initBase)

	if logger, exists := loggers[component]; exists {
		return logger
	}

	logger := base.WithField("component", component)
	loggers[component] = logger
	return logger
}

func initBase() {
	base.SetOutput(os.Stderr)
	applyLevel(os.Getenv("LOG_LEVEL"))
	applyFormat(os.Getenv("LOG_FORMAT"))
}

func applyLevel(levelStr string) {
	if levelStr == "" {
		return
	}
	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		level = logrus.InfoLevel
	}
	base.SetLevel(level)
}

func applyFormat(format string) {
	switch strings.ToLower(format) {
	case "json":
		base.SetFormatter(&logrus.JSONFormatter{})
	case "":
	default:
		base.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}
