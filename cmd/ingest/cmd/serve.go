package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/talkingphoto-ai/ingest/internal/server"
)

// serveCmd starts the HTTP ingestion API.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP server for the photo ingestion API",
	Long: `Start an HTTP server exposing the ingestion pipeline.

Endpoints:
  POST /process    - Validate and normalize an uploaded photo
  GET  /ws/process - WebSocket variant with per-stage progress
  GET  /tips       - Troubleshooting tip tables
  GET  /health     - Health check
  GET  /metrics    - Prometheus metrics

Examples:
  ingest serve
  ingest serve --port 8080
  ingest serve --host 0.0.0.0 --port 3000`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		host := cfg.Server.Host
		if cmd.Flags().Changed("host") {
			host, _ = cmd.Flags().GetString("host")
		}
		port := cfg.Server.Port
		if cmd.Flags().Changed("port") {
			port, _ = cmd.Flags().GetInt("port")
		}
		corsOrigin := cfg.Server.CORSOrigin
		if cmd.Flags().Changed("cors-origin") {
			corsOrigin, _ = cmd.Flags().GetString("cors-origin")
		}
		maxUploadMB := cfg.Server.MaxUploadMB
		if cmd.Flags().Changed("max-upload-size") {
			maxUploadMB, _ = cmd.Flags().GetInt64("max-upload-size")
		}
		preview := cfg.Server.PreviewEnabled
		if cmd.Flags().Changed("preview") {
			preview, _ = cmd.Flags().GetBool("preview")
		}

		srv, err := server.NewServer(server.Config{
			Host:           host,
			Port:           port,
			CORSOrigin:     corsOrigin,
			MaxUploadMB:    maxUploadMB,
			PreviewEnabled: preview,
			Pipeline:       cfg.Pipeline,
			ModelsDir:      cfg.ModelsDir,
		})
		if err != nil {
			return fmt.Errorf("creating server: %w", err)
		}

		mux := http.NewServeMux()
		srv.SetupRoutes(mux)

		addr := fmt.Sprintf("%s:%d", host, port)
		httpServer := &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       time.Duration(cfg.Server.TimeoutSec) * time.Second,
			WriteTimeout:      time.Duration(cfg.Server.TimeoutSec) * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			slog.Info("ingestion server listening", "addr", addr)
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				errCh <- err
			}
		}()

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-errCh:
			return fmt.Errorf("server error: %w", err)
		case sig := <-stop:
			slog.Info("shutting down", "signal", sig.String())
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(),
			time.Duration(cfg.Server.ShutdownTimeoutSec)*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		slog.Info("server stopped")
		return nil
	},
}

func init() {
	serveCmd.Flags().String("host", "localhost", "host interface to bind")
	serveCmd.Flags().Int("port", 8080, "port to listen on")
	serveCmd.Flags().String("cors-origin", "*", "allowed CORS origin")
	serveCmd.Flags().Int64("max-upload-size", 25, "maximum upload size in MB accepted by the HTTP layer")
	serveCmd.Flags().Bool("preview", false, "include a base64 JPEG preview in responses")
	rootCmd.AddCommand(serveCmd)
}
