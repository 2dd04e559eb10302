package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/vectorapi/vector-agent/internal/config"
)

func Init(lcfg config.LoggingConfig) {
	// level
	level := strings.ToLower(lcfg.Level)
	levelVal := zerolog.InfoLevel
	switch level {
	case "debug":
		levelVal = zerolog.DebugLevel
	case "info":
		levelVal = zerolog.InfoLevel
	case "warn", "warning":
		levelVal = zerolog.WarnLevel
	case "error":
		levelVal = zerolog.ErrorLevel
	}
	zerolog.SetGlobalLevel(levelVal)

	var out io.Writer = os.Stderr
	if lcfg.File != "" {
		out = io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   lcfg.File,
			MaxSize:    10, // MB
			MaxBackups: 3,
		})
	}

	// format
	if strings.ToLower(lcfg.Format) == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339})
	} else {
		// default json
		log.Logger = zerolog.New(out).With().Timestamp().Logger()
	}
}
