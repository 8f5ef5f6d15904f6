package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/boardsnap/boardsnap/internal/config"
	"github.com/boardsnap/boardsnap/internal/handlers"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var port string
	var capacity int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Starts the boardsnap HTTP API on the specified port.

POST an image to /api/analyze to recognise a position, or open
/open?image=<url> in a browser to go straight to lichess.`,
		Example: `  # Start server on default port 8888
  boardsnap serve

  # Start server on custom port
  boardsnap serve --port 3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := config.Load(root.configPath)
			if err != nil {
				return err
			}

			if !root.verbose {
				gin.SetMode(gin.ReleaseMode)
			}

			handler := handlers.New(handlers.Options{
				Settings:       store,
				LichessBaseURL: store.LichessBaseURL(),
				RequestTimeout: store.RequestTimeout(),
				Capacity:       capacity,
			})

			addr := ":" + port
			server := &http.Server{
				Addr:              addr,
				Handler:           handler.Router(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Warn("boardsnap API available", "addr", addr, "url", "http://localhost"+addr, "config", store.Path())
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "8888", "Port to listen on")
	cmd.Flags().IntVar(&capacity, "history", 0, "Number of analyses kept in memory (0 for the default)")

	return cmd
}
