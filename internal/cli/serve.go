package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ppiankov/clauserisk/internal/metrics"
	"github.com/ppiankov/clauserisk/internal/server"
)

var serveAddr string

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve clause analysis over HTTP",
	Long: `Serve exposes the analyzer as an HTTP API:
  POST /v1/analyze   body = document text (text/plain or text/html), returns the JSON result
  GET  /healthz      liveness
  GET  /readyz       embedding provider reachability
  GET  /metrics      Prometheus metrics

Concurrent requests share only the embedding provider and the catalog cache.

Example:
  clauserisk serve --addr :8080
  curl --data-binary @contract.txt localhost:8080/v1/analyze`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default: server.addr)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	m := metrics.New()
	p, err := buildPipeline(cfg, logger, m)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := p.Ready(ctx); err != nil {
		// Keep serving; /readyz reports the provider state
		logger.Warn("embedding provider not ready", zap.Error(err))
	}

	handler := server.NewHandler(p, cfg.Server, m, logger, Version)
	srv := server.NewServer(cfg.Server.Addr, handler.Routes(), cfg.Server.RequestTimeout, logger)

	fmt.Fprintf(os.Stderr, "✓ Listening on %s (provider %s/%s)\n", cfg.Server.Addr, cfg.Embedding.Provider, cfg.Embedding.Model)

	return srv.Run(ctx)
}
