package main

import (
	"context"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
	"golang.org/x/xerrors"

	"image-diff-controller/internal/cache"
	"image-diff-controller/internal/env"
	"image-diff-controller/internal/myhttp"
	"image-diff-controller/internal/observability"
	"image-diff-controller/internal/routes"
)

type Server struct {
	config          myhttp.ServerConfig
	cacheSize       int
	cacheExpiration time.Duration
	redisAddress    string
	redisPassword   string
	redisDB         int
}

func NewServer() *Server {
	return &Server{
		config:          myhttp.ServerConfigFromEnv("0.0.0.0:8080"),
		cacheSize:       env.OrDefault("CACHE_SIZE", 256),
		cacheExpiration: env.OrDefault("CACHE_EXPIRATION", 24*time.Hour),
		redisAddress:    env.OrDefault("REDIS_ADDR", ""),
		redisPassword:   env.OrDefault("REDIS_PASSWORD", ""),
		redisDB:         env.OrDefault("REDIS_DB", 0),
	}
}

var Debug = false

// newCache keeps recent results in memory and shares them through Redis when
// REDIS_ADDR is set.
func (s *Server) newCache() (cache.Cache, func() error, error) {
	memory, err := cache.NewMemoryCache(s.cacheSize)
	if err != nil {
		return nil, nil, err
	}
	if s.redisAddress == "" {
		return memory, func() error { return nil }, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     s.redisAddress,
		Password: s.redisPassword,
		DB:       s.redisDB,
	})
	return &cache.Tiered{Near: memory, Far: cache.NewRedisCache(client, "diff-server:")}, client.Close, nil
}

func (s *Server) Start(ctx context.Context) error {
	telemetry, err := observability.Setup(ctx, "diff-server", Debug)
	if err != nil {
		return err
	}

	c, closeCache, err := s.newCache()
	if err != nil {
		return xerrors.Errorf("failed to create cache: %w", err)
	}
	defer func() {
		if err := closeCache(); err != nil {
			telemetry.Logger.Warn("failed to close cache", "error", err)
		}
	}()

	mux, err := myhttp.NewServerMux(telemetry.Logger, telemetry.Meter)
	if err != nil {
		return xerrors.Errorf("failed to create mux: %w", err)
	}

	mux.HandleFuncWithMiddleware("POST /diff", routes.Diff(c, s.cacheExpiration))

	mux.HandleOperational(Debug)

	if err := myhttp.Serve(ctx, s.config, mux, telemetry.Logger); err != nil {
		return err
	}

	return telemetry.Shutdown(context.WithoutCancel(ctx))
}

func main() {
	if err := env.Load(); err != nil {
		log.Fatalf("Failed to load .env: %v", err)
	}

	Debug = env.OrDefault("DEBUG", false)
	ctx := context.Background()

	server := NewServer()
	if err := server.Start(ctx); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
