package config

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/natefinch/lumberjack"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// SetupLogger собирает логгер сервиса: консоль (или JSON в stdout при
// LOG_FORMAT=json) плюс файл с ротацией, если задан LOG_FILE.
func SetupLogger(cfg Config) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.TimeFieldFormat = time.RFC3339Nano

	ctx := zerolog.New(zerolog.MultiLevelWriter(logWriters(cfg)...)).With().
		Timestamp().
		Str("svc", "recommend-service")
	if lvl <= zerolog.DebugLevel {
		ctx = ctx.Caller()
	}
	logger := ctx.Logger()
	log.Logger = logger
	return logger
}

func logWriters(cfg Config) []io.Writer {
	var out []io.Writer
	if cfg.LogFormat == "json" {
		out = append(out, os.Stdout)
	} else {
		out = append(out, zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}
	if cfg.LogFile == "" {
		return out
	}
	if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
		// файл недоступен: пишем только в stdout
		return out
	}
	return append(out, &lumberjack.Logger{
		Filename:   cfg.LogFile,
		MaxSize:    50, // MB
		MaxBackups: 5,
		MaxAge:     30, // days
		Compress:   true,
	})
}
