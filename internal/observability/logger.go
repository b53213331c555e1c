package observability

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger creates a structured zap logger.
// debug level gives a coloured console encoder; any other level gives JSON.
func NewLogger(level string) *zap.Logger {
	logger, err := buildConfig(level).Build()
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	return logger
}

// NewFileLogger is NewLogger with output also appended to path.
func NewFileLogger(level, path string) (*zap.Logger, error) {
	cfg := buildConfig(level)
	if path != "" {
		cfg.OutputPaths = append(cfg.OutputPaths, path)
		// Colour escapes would litter the file.
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	return cfg.Build()
}

func buildConfig(level string) zap.Config {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	if level == "debug" {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		cfg.Encoding = "console"
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return cfg
	}

	if lvl, err := zapcore.ParseLevel(level); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	return cfg
}
