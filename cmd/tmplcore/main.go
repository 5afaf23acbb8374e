package main

import (
	"os"

	"github.com/mitsuhiko/tmplcore/internal/cli"
	"github.com/mitsuhiko/tmplcore/internal/logging"
)

// main is the entry point for the tmplcore binary.
func main() {
	logger := logging.NewLogger(os.Stderr, logging.LevelInfo, false)
	if err := cli.Execute(os.Args[1:], logger); err != nil {
		logger.Error("command failed", "error", err)
		os.Exit(1)
	}
}
