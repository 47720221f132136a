// Package telemetry provides a standardized, one-stop-shop setup of the
// Prometheus metrics surface for the storage engine.
package telemetry

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Config holds all the configuration for the telemetry system.
type Config struct {
	// Enabled toggles the entire telemetry system on or off.
	Enabled bool `yaml:"enabled"`
	// ServiceName is the name of the service that will appear in metrics.
	ServiceName string `yaml:"service_name"`
	// PrometheusPort is the port on which to expose the /metrics endpoint.
	PrometheusPort int `yaml:"prometheus_port"`
}

// Telemetry represents the active telemetry components.
type Telemetry struct {
	// Registry is the metrics registry components register themselves with.
	// Nil metrics are never handed out: when telemetry is disabled the
	// registry still works, it just isn't exposed over HTTP.
	Registry *prometheus.Registry
}

// ShutdownFunc gracefully shuts down the telemetry endpoint.
type ShutdownFunc func(ctx context.Context) error

// New initializes the metrics registry and, when enabled, exposes it on the
// configured Prometheus port. It returns the active components and a
// shutdown function.
func New(config Config, logger *zap.Logger) (*Telemetry, ShutdownFunc, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	tel := &Telemetry{Registry: registry}

	if !config.Enabled {
		return tel, func(ctx context.Context) error { return nil }, nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	addr := fmt.Sprintf(":%d", config.PrometheusPort)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	server := &http.Server{Handler: mux}
	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			logger.Error("prometheus http server failed", zap.Error(err))
		}
	}()
	logger.Info("telemetry endpoint started",
		zap.String("service", config.ServiceName),
		zap.String("addr", addr))

	shutdown := func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown metrics server: %w", err)
		}
		return nil
	}

	return tel, shutdown, nil
}
