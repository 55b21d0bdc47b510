package main

import (
	"fmt"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// newLogger builds a zap logger at the level named by the log-level flag or
// config key, falling back to info on an unrecognized name.
func newLogger() *zap.Logger {
	level := zap.InfoLevel
	if lvl := viper.GetString("log_level"); lvl != "" {
		if err := level.UnmarshalText([]byte(lvl)); err != nil {
			fmt.Printf("invalid log level %q, using info\n", lvl)
		}
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.Encoding = "console"
	cfg.EncoderConfig.TimeKey = ""

	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
