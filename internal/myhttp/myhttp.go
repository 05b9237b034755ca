// Package myhttp is the HTTP plumbing shared by the controller API and the
// diff server: an instrumented mux and a graceful server loop.
package myhttp

import (
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel/metric"
	"golang.org/x/xerrors"
)

// NewServerMux returns a mux whose *WithMiddleware routes are traced, logged
// with trace ids, profiled per handler and timed.
func NewServerMux(logger *slog.Logger, meter metric.Meter) (*myRouter, error) {
	duration, err := meter.Int64Histogram(
		"http_requests_duration_micro_seconds",
		metric.WithUnit("us"),
		metric.WithDescription("Time spent serving HTTP requests"),
	)
	if err != nil {
		return nil, xerrors.Errorf("failed to create histogram: %w", err)
	}
	return &myRouter{
		ServeMux: http.NewServeMux(),
		logger:   logger,
		duration: duration,
	}, nil
}
