package app

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"ecommerce-api/internal/config"
	"ecommerce-api/internal/logx"
)

// NewLogger builds the JSON logger selected by cfg.Log.Backend.
func NewLogger(cfg *config.Config) logx.Logger {
	return newLogger(cfg.Log, os.Stdout)
}

func newLogger(cfg config.Log, w io.Writer) logx.Logger {
	if cfg.Backend == config.LogBackendLogrus {
		l := logrus.New()
		l.SetOutput(w)
		l.SetFormatter(&logrus.JSONFormatter{})
		lvl, err := logrus.ParseLevel(cfg.Level)
		if err != nil {
			lvl = logrus.InfoLevel
		}
		l.SetLevel(lvl)
		return logx.NewLogrusAdapter(l)
	}

	base := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: slogLevel(cfg.Level),
	}))
	return logx.NewSlogAdapter(base)
}

func slogLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
