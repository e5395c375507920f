package main

import (
	"bufio"
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"procurement-tracker/internal/adapters/cli"
	"procurement-tracker/internal/adapters/repl"
	"procurement-tracker/internal/app"
	"procurement-tracker/internal/config"
	"procurement-tracker/internal/logger"
	"procurement-tracker/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zl, err := logger.NewConsole(cfg.Log.ConsoleLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, cleanup, err := app.Build(ctx, cfg, observability.NewMetrics(nil), zl)
	if err != nil {
		log.Fatalf("startup: %v", err)
	}
	defer cleanup()

	if len(os.Args) > 1 {
		cli.Run(ctx, svc, os.Args[1:])
		return
	}
	repl.Run(ctx, svc, bufio.NewReader(os.Stdin), os.Stdout)
}
