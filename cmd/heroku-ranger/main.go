package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"

	"github.com/Alwanly/heroku-ranger/internal/config"
	"github.com/Alwanly/heroku-ranger/internal/ranger/command"
	"github.com/Alwanly/heroku-ranger/pkg/logger"
)

var version = "dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	cfg, err := config.LoadCLIConfig()
	if err != nil {
		printError(stderr, err)
		return 1
	}

	log, err := logger.NewLogger("heroku-ranger", cfg.LogFormat, cfg.LogLevel)
	if err != nil {
		printError(stderr, err)
		return 1
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	correlationID := uuid.NewString()
	ctx = logger.WithCorrelationID(ctx, correlationID)
	log = log.WithRequestID(correlationID)

	root := command.NewRootCommand(command.Options{
		Version:    version,
		DefaultApp: cfg.AppName,
		Setup:      newSetup(cfg, log),
		Logger:     log,
	})
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		log.Debug("command failed", logger.Err(err))
		printError(stderr, err)
		return 1
	}
	return 0
}

// printError uses the platform CLI's error prefix on every line.
func printError(w io.Writer, err error) {
	for _, line := range strings.Split(err.Error(), "\n") {
		fmt.Fprintf(w, " !   %s\n", line)
	}
}
