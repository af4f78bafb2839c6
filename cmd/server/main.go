package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/nfrund/confirmflow/internal/app"
	"github.com/nfrund/confirmflow/internal/config"
	"github.com/nfrund/confirmflow/internal/logging"
	"github.com/nfrund/confirmflow/internal/server"
)

func main() {
	logging.New()

	cfg, err := config.New()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	deps, err := app.Build(context.Background(), cfg, app.Options{})
	if err != nil {
		slog.Error("Failed to initialize dependencies", "error", err)
		os.Exit(1)
	}
	defer deps.Close()

	// Create a new server instance and start it.
	s := server.New(cfg, deps)
	if err := s.Start(); err != nil {
		slog.Error("Server stopped with error", "error", err)
		deps.Close()
		os.Exit(1)
	}
}
