package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"threadqa/internal/app"
	"threadqa/internal/config"
)

// loadConfig loads configuration and installs the default logger writing to w.
func loadConfig(w io.Writer) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if verbose {
		cfg.LogLevel = slog.LevelDebug
	}

	slog.SetDefault(cfg.NewLogger(w))
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)
	return cfg, nil
}

// loadApp loads configuration and wires the application, logging to w.
func loadApp(ctx context.Context, w io.Writer) (*app.App, error) {
	cfg, err := loadConfig(w)
	if err != nil {
		return nil, err
	}
	return app.New(ctx, cfg)
}
