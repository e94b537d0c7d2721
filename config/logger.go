package config

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLevel parses the configured level.
func (c LogConfig) ZapLevel() (zapcore.Level, error) {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(c.Level)); err != nil {
		return zapcore.InfoLevel, err
	}
	return l, nil
}

// NewLogger builds a logger writing to stderr. Development mode uses the
// console encoder and stack traces on warnings.
func (c LogConfig) NewLogger() (*zap.Logger, error) {
	level, err := c.ZapLevel()
	if err != nil {
		return nil, err
	}

	zapCfg := zap.NewProductionConfig()
	if c.Development {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	zapCfg.OutputPaths = []string{"stderr"}
	zapCfg.ErrorOutputPaths = []string{"stderr"}
	return zapCfg.Build()
}
