package main

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/anita-ai/anita/internal/logging"
)

func main() {
	logger, err := logging.BootstrapFromEnv(logging.BootstrapOptions{Writer: os.Stderr})
	if err != nil {
		logger = logging.NewLogger(logging.DefaultConfig(), os.Stderr, "anita")
		slog.SetDefault(logger)
		logger.Error("invalid logging configuration", "error", err)
		os.Exit(1)
	}

	os.Exit(runMain(Execute, logger))
}

func runMain(execute func() error, logger *slog.Logger) int {
	err := execute()
	if err == nil {
		return 0
	}
	if errors.Is(err, context.Canceled) {
		logger.Error("command canceled", "exit_code", 130, "error", err)
		return 130
	}
	logger.Error("command failed", "exit_code", 1, "error", err)
	return 1
}
