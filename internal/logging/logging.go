// Package logging configures the process-wide phuslu logger.
package logging

import (
	"os"

	"github.com/phuslu/log"

	"github.com/mind-engage/examportal/internal/config"
)

// Setup installs log.DefaultLogger: human-readable console output offline,
// JSON lines online. Unknown levels fall back to info.
func Setup(level string, mode config.Mode) {
	lvl := log.ParseLevel(level)
	if level == "" {
		lvl = log.InfoLevel
	}

	logger := log.Logger{
		Level:      lvl,
		Caller:     1,
		TimeFormat: "15:04:05",
		Writer:     &log.ConsoleWriter{ColorOutput: true, EndWithMessage: true},
	}
	if mode == config.ModeOnline {
		logger.TimeFormat = ""
		logger.Writer = &log.IOWriter{Writer: os.Stderr}
	}
	log.DefaultLogger = logger
}
