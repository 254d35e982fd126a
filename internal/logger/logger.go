package logger

import (
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Logger struct {
	atomicLevel zap.AtomicLevel
	logger      *zap.Logger
	mu          sync.RWMutex
}

var (
	instance *Logger   //nolint:gochecknoglobals // Singleton pattern for logger
	once     sync.Once //nolint:gochecknoglobals // Singleton pattern for logger
)

// initialize builds the process-wide logger. Output goes to stderr so stdout
// stays reserved for reports and the MCP stdio transport.
func initialize() {
	once.Do(func() {
		instance = &Logger{
			atomicLevel: zap.NewAtomicLevelAt(zap.InfoLevel),
		}

		encoderCfg := zap.NewDevelopmentEncoderConfig()
		encoderCfg.TimeKey = "timestamp"
		encoderCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000") // HH:MM:SS.mmm format
		encoderCfg.CallerKey = ""                                           // remove caller
		encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder

		core := zapcore.NewCore(
			zapcore.NewConsoleEncoder(encoderCfg),
			zapcore.Lock(os.Stderr),
			instance.atomicLevel,
		)

		instance.logger = zap.New(core)
	})
}

func GetLogger() *zap.Logger {
	initialize()

	instance.mu.RLock()
	defer instance.mu.RUnlock()
	return instance.logger
}

func SetLevel(level zapcore.Level) {
	initialize()

	instance.mu.Lock()
	defer instance.mu.Unlock()
	instance.atomicLevel.SetLevel(level)
}

// Level returns the current minimum level.
func Level() zapcore.Level {
	initialize()
	return instance.atomicLevel.Level()
}

// ParseLevel maps a configuration string to a level. Unknown strings mean info.
func ParseLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
