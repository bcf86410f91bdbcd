package logger

import (
	"context"
	"io"
	"os"
	"time"

	appCtx "github.com/baechuer/real-time-ressys/services/explore-service/internal/pkg/context"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

var Log zerolog.Logger

func Init() {
	InitWithWriter(os.Stdout)
}

// InitWithWriter reads LOG_LEVEL and LOG_FORMAT ("json" or "console")
// and sets both Log and the global zerolog logger.
func InitWithWriter(w io.Writer) {
	setup(w, os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
}

// Configure re-initializes stdout logging from loaded config, which may
// include values from .env that Init could not see yet.
func Configure(level, format string) {
	setup(os.Stdout, level, format)
}

func setup(w io.Writer, levelName, format string) {
	level, err := zerolog.ParseLevel(levelName)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	var l zerolog.Logger
	if format == "json" {
		l = zerolog.New(w).With().Timestamp().Logger().Level(level)
	} else {
		l = zerolog.New(zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.RFC3339,
			NoColor:    true,
		}).With().Timestamp().Logger().Level(level)
	}

	Log = l.With().Str("service", "explore-service").Logger()
	zlog.Logger = Log
}

// Ctx returns a logger with Request-ID context if available
func Ctx(ctx context.Context) *zerolog.Logger {
	if reqID := appCtx.GetRequestID(ctx); reqID != "" {
		l := Log.With().Str("request_id", reqID).Logger()
		return &l
	}
	return &Log
}
