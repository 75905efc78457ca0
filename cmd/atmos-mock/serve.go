package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/sagarc03/atmos"
	"github.com/sagarc03/atmos/atmostest"
	"github.com/sagarc03/atmos/config"
	"github.com/sagarc03/atmos/keybackend"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the mock endpoint",
	Long:  `Start the mock Atmos endpoint and block until SIGINT or SIGTERM.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().Int("port", 9022, "HTTP server port (env: ATMOS_SERVER_PORT)")
	serveCmd.Flags().Bool("metrics", true, "serve Prometheus metrics")
	serveCmd.Flags().String("metrics-path", "/metrics", "metrics endpoint path")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	store, err := keybackend.NewCredentialStore(cfg.Keys)
	if err != nil {
		return fmt.Errorf("load keys: %w", err)
	}
	creds := store.Credentials()
	if len(creds) == 0 {
		slog.Warn("no credentials configured, every request will be rejected")
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      newRouter(cfg, creds, prometheus.NewRegistry()),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting mock endpoint", "addr", server.Addr, "uids", len(creds))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

// newRouter mounts the Atmos API under /rest with request logging, optional
// CORS and the metrics endpoint.
func newRouter(cfg *config.Config, creds []atmos.Credential, reg *prometheus.Registry) http.Handler {
	r := chi.NewRouter()
	r.Use(requestLogger)

	if cfg.CORS.Enabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CORS.AllowedOrigins,
			AllowedMethods:   cfg.CORS.AllowedMethods,
			AllowedHeaders:   cfg.CORS.AllowedHeaders,
			ExposedHeaders:   cfg.CORS.ExposedHeaders,
			AllowCredentials: cfg.CORS.AllowCredentials,
			MaxAge:           cfg.CORS.MaxAge,
		}))
	}

	var api http.Handler = atmostest.NewHandler(creds...)
	if cfg.Metrics.Enabled {
		requests := prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "atmos",
			Subsystem: "mock",
			Name:      "requests_total",
			Help:      "Requests served by the mock endpoint",
		}, []string{"code", "method"})
		reg.MustRegister(
			requests,
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		api = promhttp.InstrumentHandlerCounter(requests, api)
		r.Handle(cfg.Metrics.Path, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	}

	r.Handle("/rest/*", api)
	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		slog.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"uid", r.Header.Get(atmos.HeaderUID),
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
		)
	})
}
