package config

import (
	"os"

	logger "github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
	"gopkg.in/natefinch/lumberjack.v2"
)

// SetupLogger configures the process logger from the registry: prefixed
// text output, the configured level, and rotation when logging to a file.
func SetupLogger() {
	logger.SetFormatter(&prefixed.TextFormatter{
		FullTimestamp: true,
	})

	level, err := logger.ParseLevel(Get().Logger.Level)
	if err != nil {
		level = logger.InfoLevel
		logger.WithField("level", Get().Logger.Level).
			Warn("unknown log level, falling back to info")
	}
	logger.SetLevel(level)

	out := Get().Logger.Output
	if out == "" {
		logger.SetOutput(os.Stdout)
		return
	}

	logger.SetOutput(&lumberjack.Logger{
		Filename:   out,
		MaxSize:    Get().Logger.MaxSizeMB,
		MaxBackups: Get().Logger.MaxBackups,
		MaxAge:     Get().Logger.MaxAgeDays,
	})
}
