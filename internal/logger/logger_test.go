package logger_test

import (
	"sync"
	"testing"

	"deploy-planner/internal/logger"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestGetLogger(t *testing.T) {
	t.Parallel()

	log := logger.GetLogger()
	assert.NotNil(t, log)

	// Subsequent calls return the same instance
	assert.Same(t, log, logger.GetLogger())

	log.Info("Test log message")
	log.Debug("Test debug message")
}

//nolint:paralleltest // mutates the process-wide level
func TestSetLevel(t *testing.T) {
	defer logger.SetLevel(zapcore.InfoLevel)

	for _, level := range []zapcore.Level{
		zapcore.DebugLevel,
		zapcore.WarnLevel,
		zapcore.ErrorLevel,
	} {
		logger.SetLevel(level)
		assert.Equal(t, level, logger.Level())
		assert.Equal(t, level == zapcore.DebugLevel, logger.GetLogger().Core().Enabled(zapcore.DebugLevel))
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"INFO", zapcore.InfoLevel},
		{" warn ", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"verbose", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, logger.ParseLevel(tt.input))
		})
	}
}

func TestLoggerConcurrency(t *testing.T) {
	t.Parallel()

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			log := logger.GetLogger()
			assert.NotNil(t, log)
			log.Info("Concurrent log message")
		}()
	}
	wg.Wait()
}
