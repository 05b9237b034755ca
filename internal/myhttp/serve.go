package myhttp

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/net/netutil"
	"golang.org/x/xerrors"

	"image-diff-controller/internal/env"
)

type ServerConfig struct {
	Address                string
	TerminationGracePeriod time.Duration
	Lameduck               time.Duration
	KeepAlive              bool
	MaxConnections         int
}

// ServerConfigFromEnv reads the server settings, falling back to address.
func ServerConfigFromEnv(address string) ServerConfig {
	return ServerConfig{
		Address:                env.OrDefault("ADDRESS", address),
		TerminationGracePeriod: env.OrDefault("TERMINATION_GRACE_PERIOD", 10*time.Second),
		Lameduck:               env.OrDefault("LAMEDUCK", 1*time.Second),
		KeepAlive:              env.OrDefault("HTTP_KEEPALIVE", true),
		MaxConnections:         env.OrDefault("MAX_CONNECTIONS", 65532),
	}
}

// Serve runs handler until ctx is done or SIGTERM arrives, then keeps serving
// for the lameduck period before shutting down gracefully.
func Serve(ctx context.Context, c ServerConfig, handler http.Handler, logger *slog.Logger) error {
	listener, err := net.Listen("tcp", c.Address)
	if err != nil {
		return xerrors.Errorf("failed to listen on address %s: %w", c.Address, err)
	}

	server := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	server.SetKeepAlivesEnabled(c.KeepAlive)

	serveErr := make(chan error, 1)
	go func() {
		if err := server.Serve(netutil.LimitListener(listener, c.MaxConnections)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to serve HTTP", "error", err)
			serveErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case <-ctx.Done():
	case <-quit:
	case err := <-serveErr:
		return xerrors.Errorf("failed to serve HTTP: %w", err)
	}
	time.Sleep(c.Lameduck)

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.TerminationGracePeriod)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return xerrors.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}
