package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/infra/initializer"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/app"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/config"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/webapi"
	log "github.com/charmbracelet/log"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load(".env")
	if err != nil {
		return fmt.Errorf("failed to load application configuration: %w", err)
	}

	deps, err := initializer.InitializeDependencies(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	defer func() {
		if cerr := deps.Close(); cerr != nil {
			slog.Error("Failed to release dependencies", "error", cerr)
		}
	}()

	fiberApp := webapi.SetupApp(app.New(deps, cfg))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := fiberApp.ShutdownWithContext(shutdownCtx); err != nil {
			deps.Logger.Error("Graceful shutdown failed", "error", err)
		}
	}()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	deps.Logger.Info("Starting server",
		"env", cfg.Env,
		"address", addr,
		"scheme", cfg.Server.Scheme,
	)
	return fiberApp.Listen(addr)
}
