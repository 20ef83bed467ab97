package logger

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/baechuer/paradies-dashboard/middleware"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

const serviceName = "dashboard-bff"

// Log is the process-wide logger. It is a usable console logger until Init runs.
var Log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

func Init() {
	InitWithWriter(os.Stdout)
}

// InitWithWriter configures Log from LOG_LEVEL and LOG_FORMAT ("json" or "console").
func InitWithWriter(w io.Writer) {
	level, err := zerolog.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	out := w
	if os.Getenv("LOG_FORMAT") != "json" {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	Log = zerolog.New(out).With().
		Timestamp().
		Str("service", serviceName).
		Logger().
		Level(level)
	zlog.Logger = Log
}

// Ctx returns a logger tagged with the request id carried by ctx, if any.
func Ctx(ctx context.Context) *zerolog.Logger {
	if reqID := middleware.GetRequestID(ctx); reqID != "" {
		l := Log.With().Str("request_id", reqID).Logger()
		return &l
	}
	return &Log
}

// Component returns a child logger for one subsystem.
func Component(name string) zerolog.Logger {
	return Log.With().Str("component", name).Logger()
}
