package main

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// configureLogger creates a logger from the configured default level and the
// --log-level/--verbose flags, with --log-level taking precedence.
// Returns a configured logger or error if the log-level is invalid.
func configureLogger(cmd *cobra.Command, defaultLevel string) (*logrus.Logger, error) {
	levelStr := defaultLevel

	// --log-level overrides the config file; --verbose only raises the
	// default
	if flagLevel, _ := cmd.Flags().GetString("log-level"); flagLevel != "" {
		levelStr = flagLevel
	} else if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		levelStr = "debug"
	}

	var logLevel logrus.Level
	switch levelStr {
	case "debug":
		logLevel = logrus.DebugLevel
	case "info", "":
		logLevel = logrus.InfoLevel
	case "warn":
		logLevel = logrus.WarnLevel
	case "error":
		logLevel = logrus.ErrorLevel
	default:
		return nil, fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", levelStr)
	}

	logger := logrus.New()
	logger.SetLevel(logLevel)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})

	return logger, nil
}
