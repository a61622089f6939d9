package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"textorder/internal/api"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and playground",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	if !verbose {
		gin.SetMode(gin.ReleaseMode)
	}

	metricsPath := ""
	if cfg.Metrics.Enabled && cfg.Metrics.Port == 0 {
		metricsPath = cfg.Metrics.Path
	}
	server := api.NewServer(a.catalog, a.processor,
		api.WithStore(a.store),
		api.WithEvaluator(a.evaluator),
		api.WithCollector(a.collector),
		api.WithMonitor(a.monitor),
		api.WithLogger(log.Named("api")),
		api.WithJWTSecret(cfg.Auth.JWTSecret),
		api.WithAccessLog(cfg.Server.AccessLog),
		api.WithParseTimeout(cfg.LLM.Timeout),
		api.WithMetricsPath(metricsPath),
		api.WithModels(a.models...),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	servers := []*http.Server{server.HTTPServer(cfg.Server.Addr())}
	if cfg.Metrics.Enabled && cfg.Metrics.Port > 0 {
		mux := http.NewServeMux()
		mux.Handle(cfg.Metrics.Path, a.collector.Handler())
		servers = append(servers, &http.Server{
			Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Metrics.Port),
			Handler: mux,
		})
	}

	errCh := make(chan error, len(servers))
	for _, srv := range servers {
		go func(srv *http.Server) {
			log.Info("server_started", map[string]any{"addr": srv.Addr})
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}(srv)
	}

	var serveErr error
	select {
	case <-ctx.Done():
		log.Info("server_stopping", nil)
	case serveErr = <-errCh:
		log.Error("server_failed", serveErr, nil)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	for _, srv := range servers {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server_shutdown_failed", err, map[string]any{"addr": srv.Addr})
		}
	}
	return serveErr
}
