package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/plantcare/internal/catalog"
	"github.com/lehigh-university-libraries/plantcare/internal/config"
	"github.com/lehigh-university-libraries/plantcare/internal/handlers"
	"github.com/lehigh-university-libraries/plantcare/internal/identification"
	"github.com/lehigh-university-libraries/plantcare/internal/images"
	"github.com/lehigh-university-libraries/plantcare/internal/storage"
)

type serveFlags struct {
	port      string
	catalog   string
	imagesDir string
	provider  string
}

func newServeCmd() *cobra.Command {
	var flags serveFlags

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the plant identification API",
		Long: `Starts the HTTP API on the configured port.

Settings come from the environment (or a .env file); flags override them.
The care catalog is loaded once at startup and a missing or invalid catalog
stops the server from starting.`,
		Example: `  # Start server on default port 8000
  plantcare serve

  # Use the demo classifier on a custom port
  plantcare serve --port 3000 --provider demo`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := flags.apply(cmd, cfg); err != nil {
				return err
			}

			cat, err := catalog.Open(cmd.Context(), cfg.CatalogPath)
			if err != nil {
				return fmt.Errorf("failed to load care catalog: %w", err)
			}

			gateway, err := identification.NewFromConfig(cfg, cat)
			if err != nil {
				return err
			}

			handler := handlers.New(gateway, cat, storage.New(cfg.SessionTTL),
				images.NewLibrary(cfg.ImagesDir), images.NewUploads(cfg.UploadsDir))

			addr := ":" + cfg.Port
			server := &http.Server{
				Addr:              addr,
				Handler:           handlers.CORS(cfg.CORSOrigins, handler.Routes()),
				ReadHeaderTimeout: 10 * time.Second,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Plant API available", "addr", addr, "url", "http://localhost"+addr, "environment", cfg.Environment)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
				// Give server 5 seconds to shut down gracefully
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

	cmd.Flags().StringVarP(&flags.port, "port", "p", "", "Port to listen on (default from PORT, else 8000)")
	cmd.Flags().StringVar(&flags.catalog, "catalog", "", "Care catalog JSON file or URL (default from PLANTCARE_CATALOG)")
	cmd.Flags().StringVar(&flags.imagesDir, "images", "", "Reference image directory (default from PLANTCARE_IMAGES_DIR)")
	cmd.Flags().StringVar(&flags.provider, "provider", "", "Classifier provider: hosted, gemini, ollama, openai or demo")

	return cmd
}

func (f serveFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	if cmd.Flags().Changed("port") {
		cfg.Port = f.port
	}
	if cmd.Flags().Changed("catalog") {
		cfg.CatalogPath = f.catalog
	}
	if cmd.Flags().Changed("images") {
		cfg.ImagesDir = f.imagesDir
	}
	if cmd.Flags().Changed("provider") {
		cfg.Provider = strings.ToLower(f.provider)
	}
	return cfg.Validate()
}
