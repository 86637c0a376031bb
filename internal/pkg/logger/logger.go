package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	Level       string // debug, info, warn, error
	Environment string // development, production
	ServiceName string
}

// New builds a JSON logger for production and a console logger otherwise.
// An unknown level falls back to info.
func New(cfg Config) (*zap.Logger, error) {
	var zc zap.Config
	if cfg.Environment == "production" {
		zc = zap.NewProductionConfig()
		zc.EncoderConfig.TimeKey = "timestamp"
		zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		zc = zap.NewDevelopmentConfig()
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zc.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
	}
	zc.Level = zap.NewAtomicLevelAt(ParseLevel(cfg.Level))

	return zc.Build(zap.Fields(
		zap.String("service", cfg.ServiceName),
		zap.String("env", cfg.Environment),
	))
}

func ParseLevel(s string) zapcore.Level {
	level, err := zapcore.ParseLevel(s)
	if err != nil {
		return zapcore.InfoLevel
	}
	return level
}
