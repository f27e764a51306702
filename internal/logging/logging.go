package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// thin wrapper around zap's sugared logger
type Logger struct {
	*zap.SugaredLogger
}

func NewLogger(verbose bool) *Logger {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.DisableStacktrace = true
	cfg.DisableCaller = !verbose

	logger, err := cfg.Build()
	if err != nil {
		logger = zap.NewNop()
	}

	return &Logger{logger.Sugar()}
}

// logger that discards everything, for tests
func NewNop() *Logger {
	return &Logger{zap.NewNop().Sugar()}
}
