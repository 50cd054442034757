package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"threadqa/internal/http"
)

const shutdownTimeout = 10 * time.Second

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Start the HTTP API.

POST /api/ answers a question; GET /api/health reports corpus and vector
store status. The server shuts down gracefully on SIGINT or SIGTERM.`,
		Example: `  # Listen on API_PORT (default 8000)
  threadqa serve

  # Seed the database from a corpus file and listen on 9000
  CORPUS_PATH=./discourse.json threadqa serve --port 9000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := loadApp(ctx, os.Stdout)
			if err != nil {
				return err
			}
			defer func() {
				if err := a.Close(); err != nil {
					slog.Warn("Error during close", "error", err)
				}
			}()

			if port == "" {
				port = a.Config.APIPort
			}

			router := http.NewRouter(&http.Deps{
				Engine: a.Engine,
				Health: a.Health,
			})
			srv := &nethttp.Server{
				Addr:              ":" + port,
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
			}

			return runServer(ctx, srv)
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "port to listen on (overrides API_PORT)")

	return cmd
}

// runServer serves srv until ctx is canceled or the listener fails, then
// shuts it down.
func runServer(ctx context.Context, srv *nethttp.Server) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("Starting API server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			return fmt.Errorf("API server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutting down API server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down API server: %w", err)
		}
		return nil
	})

	return g.Wait()
}
