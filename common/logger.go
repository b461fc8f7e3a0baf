package common

import (
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

var (
	loggerOnce sync.Once
	baseLogger *log.Logger
)

// Logger returns the process-wide base logger, creating it on first use.
// It writes to stderr with RFC3339 timestamps and the "oxy" prefix at info level.
//
// Returns:
//   - *log.Logger: the shared base logger
func Logger() *log.Logger {
	loggerOnce.Do(func() {
		baseLogger = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			TimeFormat:      time.RFC3339,
			Prefix:          "oxy",
			Level:           log.InfoLevel,
		})
	})
	return baseLogger
}

// NewLogger returns a child of the base logger tagged with the given prefix.
// Children created before a SetLogLevel call keep the level they were created with.
//
// Parameters:
//   - prefix: the component name shown in each line (e.g. "animator")
//
// Returns:
//   - *log.Logger: the prefixed logger
func NewLogger(prefix string) *log.Logger {
	return Logger().WithPrefix("oxy/" + prefix)
}

// SetLogLevel parses a level name ("debug", "info", "warn", "error", "fatal") and applies it to the base logger.
//
// Parameters:
//   - level: the level name
//
// Returns:
//   - error: an error if the level name is not recognized
func SetLogLevel(level string) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return err
	}
	Logger().SetLevel(lvl)
	return nil
}
