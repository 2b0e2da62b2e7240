package main

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// newLogger 构造控制台格式的日志器
func newLogger(w io.Writer, cfg *Config) (zerolog.Logger, error) {
	level := zerolog.InfoLevel
	if cfg.LogLevel != "" {
		l, err := zerolog.ParseLevel(cfg.LogLevel)
		if err != nil {
			return zerolog.Nop(), err
		}
		level = l
	}
	if cfg.Verbose {
		level = zerolog.DebugLevel
	}

	out := zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}
	return zerolog.New(out).Level(level).With().Timestamp().Logger(), nil
}
