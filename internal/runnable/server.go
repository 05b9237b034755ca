// Package runnable adapts the controller API server to the manager's
// Runnable interface.
package runnable

import (
	"context"

	"golang.org/x/xerrors"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"

	"image-diff-controller/internal/myhttp"
	"image-diff-controller/internal/observability"
	"image-diff-controller/internal/routes"
	"image-diff-controller/internal/storage"
)

type Server struct {
	config        myhttp.ServerConfig
	kubeConfig    *rest.Config
	storageClient storage.Storage
}

func NewServer(kubeConfig *rest.Config, storageClient storage.Storage) *Server {
	return &Server{
		config:        myhttp.ServerConfigFromEnv("0.0.0.0:8082"),
		kubeConfig:    kubeConfig,
		storageClient: storageClient,
	}
}

var Debug = false

// NeedLeaderElection lets every replica serve the API, since worker callbacks
// may land on any of them.
func (s *Server) NeedLeaderElection() bool {
	return false
}

func (s *Server) Start(ctx context.Context) error {
	telemetry, err := observability.Setup(ctx, "image-diff-controller", Debug)
	if err != nil {
		return err
	}

	clientset, err := kubernetes.NewForConfig(s.kubeConfig)
	if err != nil {
		return xerrors.Errorf("failed to create kubernetes clientset: %w", err)
	}
	dynamicClient, err := dynamic.NewForConfig(s.kubeConfig)
	if err != nil {
		return xerrors.Errorf("failed to create kubernetes dynamic client: %w", err)
	}

	mux, err := myhttp.NewServerMux(telemetry.Logger, telemetry.Meter)
	if err != nil {
		return xerrors.Errorf("failed to create mux: %w", err)
	}

	mux.HandleFuncWithMiddleware("GET /api/{namespace}/{group}/{version}/{kind}/{name}", routes.Read(dynamicClient))
	mux.HandleFuncWithMiddleware("GET /api/{namespace}/{group}/{version}/{kind}/{name}/artifacts", routes.ListArtifacts(dynamicClient, s.storageClient))
	mux.HandleFuncWithMiddleware("PATCH /api/{namespace}/{group}/{version}/{kind}/{name}/artifacts", routes.UpdateArtifacts(dynamicClient))

	mux.HandleFuncWithMiddleware("GET /api/{$}", routes.ListNamespaces(clientset))
	mux.HandleFuncWithMiddleware("GET /api/{namespace}/{group}/{version}/{kind}", routes.ListResources(dynamicClient))

	mux.HandleOperational(Debug)

	if err := myhttp.Serve(ctx, s.config, mux, telemetry.Logger); err != nil {
		return err
	}

	return telemetry.Shutdown(context.WithoutCancel(ctx))
}
