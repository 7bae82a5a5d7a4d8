package logging

import (
	"testing"

	"github.com/phuslu/log"
	"github.com/stretchr/testify/assert"

	"github.com/mind-engage/examportal/internal/config"
)

func TestSetup(t *testing.T) {
	prev := log.DefaultLogger
	t.Cleanup(func() { log.DefaultLogger = prev })

	Setup("debug", config.ModeOffline)
	assert.Equal(t, log.DebugLevel, log.DefaultLogger.Level)
	assert.IsType(t, &log.ConsoleWriter{}, log.DefaultLogger.Writer)

	Setup("", config.ModeOnline)
	assert.Equal(t, log.InfoLevel, log.DefaultLogger.Level)
	assert.IsType(t, &log.IOWriter{}, log.DefaultLogger.Writer)
}
