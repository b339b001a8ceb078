package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/veridoc-tech/veridoc/internal/config"
	"github.com/veridoc-tech/veridoc/internal/pipeline"
	"github.com/veridoc-tech/veridoc/internal/server"
)

// serveCmd represents the serve command.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP server for passport record postprocessing",
	Long: `Start an HTTP server exposing the postprocessing pipeline as a REST API.

Endpoints:
  GET  /health                  - health check
  POST /v1/postprocess          - process a single document
  POST /v1/postprocess/batch    - process a batch of documents
  GET  /metrics                 - Prometheus metrics

Examples:
  veridoc serve
  veridoc serve --port 9090 --host 0.0.0.0
  veridoc serve --cors-origin "https://app.example.com" --max-body-size 25`,
	SilenceUsage: true,
	RunE:         runServeCommand,
}

// configToServerConfig maps centralized configuration to server.Config.
// CLI flags override config file values through Viper's precedence system.
func configToServerConfig(cfg *config.Config, cmd *cobra.Command) server.Config {
	serverConfig := server.DefaultConfig()

	serverConfig.Host = cfg.Server.Host
	if cmd.Flags().Changed("host") {
		serverConfig.Host, _ = cmd.Flags().GetString("host")
	}

	serverConfig.Port = cfg.Server.Port
	if cmd.Flags().Changed("port") {
		serverConfig.Port, _ = cmd.Flags().GetInt("port")
	}

	serverConfig.CORSOrigin = cfg.Server.CORSOrigin
	if cmd.Flags().Changed("cors-origin") {
		serverConfig.CORSOrigin, _ = cmd.Flags().GetString("cors-origin")
	}

	serverConfig.MaxBodyMB = int64(cfg.Server.MaxBodyMB)
	if cmd.Flags().Changed("max-body-size") {
		size, _ := cmd.Flags().GetInt64("max-body-size")
		serverConfig.MaxBodyMB = size
	}

	pipelineConfig := pipeline.DefaultConfig()
	pipelineConfig.RefDataDir = cfg.RefDataDir
	if cmd.Flags().Changed("refdata-dir") {
		dir, _ := cmd.Flags().GetString("refdata-dir")
		if dir != "" {
			pipelineConfig.RefDataDir = dir
		}
	}
	pipelineConfig.Parallel.MaxWorkers = cfg.Batch.Workers
	serverConfig.PipelineConfig = pipelineConfig

	return serverConfig
}

func runServeCommand(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	serverConfig := configToServerConfig(cfg, cmd)

	timeout := time.Duration(cfg.Server.TimeoutSec) * time.Second
	if cmd.Flags().Changed("timeout") {
		sec, _ := cmd.Flags().GetInt("timeout")
		timeout = time.Duration(sec) * time.Second
	}
	shutdownTimeout := time.Duration(cfg.Server.ShutdownTimeout) * time.Second
	if cmd.Flags().Changed("shutdown-timeout") {
		sec, _ := cmd.Flags().GetInt("shutdown-timeout")
		shutdownTimeout = time.Duration(sec) * time.Second
	}

	srv, err := server.NewServer(serverConfig, slog.Default())
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	mux := http.NewServeMux()
	srv.SetupRoutes(mux)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", serverConfig.Host, serverConfig.Port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       timeout,
		WriteTimeout:      timeout,
	}

	errChan := make(chan error, 1)
	go func() {
		slog.Info("Starting postprocessing server",
			"address", httpServer.Addr,
			"cors_origin", serverConfig.CORSOrigin,
			"max_body_mb", serverConfig.MaxBodyMB)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		slog.Info("Received shutdown signal", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("Server stopped")
	return nil
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("host", "H", "localhost", "server host")
	serveCmd.Flags().IntP("port", "p", 8080, "server port")
	serveCmd.Flags().String("cors-origin", "*", "allowed CORS origin")
	serveCmd.Flags().Int64("max-body-size", 10, "maximum request body size in MB")
	serveCmd.Flags().Int("timeout", 30, "request read/write timeout in seconds")
	serveCmd.Flags().Int("shutdown-timeout", 10, "graceful shutdown timeout in seconds")
}
