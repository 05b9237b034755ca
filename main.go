package main

import (
	"crypto/tls"
	"flag"
	"os"
	"time"

	// Import all Kubernetes client auth plugins (e.g. Azure, GCP, OIDC, etc.)
	// to ensure that exec-entrypoint and run can make use of them.
	_ "k8s.io/client-go/plugin/pkg/client/auth"

	coreV1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/runtime"
	utilruntime "k8s.io/apimachinery/pkg/util/runtime"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	"k8s.io/klog/v2"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/healthz"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"
	metricsserver "sigs.k8s.io/controller-runtime/pkg/metrics/server"
	"sigs.k8s.io/controller-runtime/pkg/webhook"
	// +kubebuilder:scaffold:imports

	idV1 "image-diff-controller/api/v1"
	"image-diff-controller/internal/controllers"
	"image-diff-controller/internal/env"
	"image-diff-controller/internal/retry"
	"image-diff-controller/internal/runnable"
	"image-diff-controller/internal/source"
	"image-diff-controller/internal/storage"
)

var (
	scheme = runtime.NewScheme()
)

func init() {
	utilruntime.Must(clientgoscheme.AddToScheme(scheme))
	utilruntime.Must(idV1.AddToScheme(scheme))
}

type options struct {
	metricsAddr          string
	secureMetrics        bool
	enableHTTP2          bool
	probeAddr            string
	enableLeaderElection bool
	debug                bool

	fetchTimeout time.Duration

	distributed  bool
	callbackHost string
	workerImage  string
}

// bindFlags registers the manager flags. Every flag falls back to the
// upper-cased environment variable of the same name.
func (o *options) bindFlags(fs *flag.FlagSet) {
	fs.StringVar(&o.metricsAddr, "metrics-bind-address", env.OrDefault("METRICS_BIND_ADDRESS", "0.0.0.0:8080"), "The address the metric endpoint binds to.")
	fs.BoolVar(&o.secureMetrics, "metrics-secure", env.OrDefault("METRICS_SECURE", false), "If set the metrics endpoint is served securely")
	fs.BoolVar(&o.enableHTTP2, "enable-http2", env.OrDefault("ENABLE_HTTP2", false), "If set, HTTP/2 will be enabled for the metrics and webhook servers")
	fs.StringVar(&o.probeAddr, "health-probe-bind-address", env.OrDefault("HEALTH_PROBE_BIND_ADDRESS", "0.0.0.0:8081"), "The address the probe endpoint binds to.")
	fs.BoolVar(&o.enableLeaderElection, "enable-leader-election", env.OrDefault("ENABLE_LEADER_ELECTION", false), "Enable leader election for controller manager.")
	fs.BoolVar(&o.debug, "debug", env.OrDefault("DEBUG", false), "Serve pprof and log as text on the API server")

	fs.DurationVar(&o.fetchTimeout, "http-timeout", env.OrDefault("HTTP_TIMEOUT", 30*time.Second), "Timeout for downloading images over HTTP")

	fs.BoolVar(&o.distributed, "distributed", env.OrDefault("DISTRIBUTED", false), "Compare in worker Jobs/CronJobs instead of in the manager")
	fs.StringVar(&o.callbackHost, "distributed-callback-host", env.OrDefault("DISTRIBUTED_CALLBACK_HOST", "image-diff-controller.image-diff-controller.svc.cluster.local:8082"), "Host the workers report their results to")
	fs.StringVar(&o.workerImage, "distributed-worker-image", env.OrDefault("DISTRIBUTED_WORKER_IMAGE", "ghcr.io/image-diff-controller/worker:main"), "The image to use for the distributed worker jobs")
}

// workerEnv forwards the storage settings of the controller to worker pods.
func workerEnv() []coreV1.EnvVar {
	var vars []coreV1.EnvVar
	for _, name := range []string{"STORAGE_BACKEND", "S3_BUCKET", "S3_ENDPOINT_URL", "S3_REGION", "AWS_REGION", "AWS_ACCESS_KEY_ID", "AWS_SECRET_ACCESS_KEY", "AWS_SESSION_TOKEN", "GO_LOG"} {
		if value, ok := os.LookupEnv(name); ok {
			vars = append(vars, coreV1.EnvVar{Name: name, Value: value})
		}
	}
	return vars
}

func main() {
	if err := env.Load(); err != nil {
		klog.ErrorS(err, "unable to load .env")
		os.Exit(1)
	}

	var o options
	o.bindFlags(flag.CommandLine)
	opts := zap.Options{}
	opts.BindFlags(flag.CommandLine)
	klog.InitFlags(flag.CommandLine)
	flag.Parse()

	zapLogger := zap.New(zap.UseFlagOptions(&opts))
	klog.SetLogger(zapLogger)
	ctrl.SetLogger(zapLogger)
	runnable.Debug = o.debug

	entrypointLogger := ctrl.Log.WithName("entrypoint")

	// if the enable-http2 flag is false (the default), http/2 should be disabled
	// due to its vulnerabilities. More specifically, disabling http/2 will
	// prevent from being vulnerable to the HTTP/2 Stream Cancelation and
	// Rapid Reset CVEs. For more information see:
	// - https://github.com/advisories/GHSA-qppj-fm5r-hxr3
	// - https://github.com/advisories/GHSA-4374-p667-p6c8
	disableHTTP2 := func(c *tls.Config) {
		entrypointLogger.Info("disabling http/2")
		c.NextProtos = []string{"http/1.1"}
	}

	tlsOpts := []func(*tls.Config){}
	if !o.enableHTTP2 {
		tlsOpts = append(tlsOpts, disableHTTP2)
	}

	m, err := ctrl.NewManager(ctrl.GetConfigOrDie(), ctrl.Options{
		Scheme: scheme,
		Metrics: metricsserver.Options{
			BindAddress:   o.metricsAddr,
			SecureServing: o.secureMetrics,
			TLSOpts:       tlsOpts,
		},
		HealthProbeBindAddress: o.probeAddr,
		WebhookServer: webhook.NewServer(webhook.Options{
			TLSOpts: tlsOpts,
		}),
		LeaderElection:   o.enableLeaderElection,
		LeaderElectionID: "image-diff-controller",
	})
	if err != nil {
		entrypointLogger.Error(err, "unable to create manager")
		os.Exit(1)
	}

	ctx := ctrl.SetupSignalHandler()

	s, err := storage.New(ctx, storage.ConfigFromEnv())
	if err != nil {
		entrypointLogger.Error(err, "unable to create storage backend")
		os.Exit(1)
	}
	loader := &source.Loader{
		Storage: s,
		Client:  retry.NewClient(o.fetchTimeout, retry.NewExponentialBackOff(100*time.Millisecond, 5*time.Second, 3, nil)),
	}

	if err := (&controllers.ImageComparisonReconciler{
		Client:                  m.GetClient(),
		Scheme:                  m.GetScheme(),
		Log:                     ctrl.Log.WithName("controllers").WithName("imagecomparison"),
		Recorder:                m.GetEventRecorderFor("imagecomparison-controller"),
		Loader:                  loader,
		Storage:                 s,
		Distributed:             o.distributed,
		DistributedCallbackHost: o.callbackHost,
		DistributedWorkerImage:  o.workerImage,
		DistributedWorkerEnv:    workerEnv(),
	}).SetupWithManager(m); err != nil {
		entrypointLogger.Error(err, "unable to create controller", "controller", "ImageComparison")
		os.Exit(1)
	}

	if err := (&controllers.ScheduledImageComparisonReconciler{
		Client:                  m.GetClient(),
		Scheme:                  m.GetScheme(),
		Log:                     ctrl.Log.WithName("controllers").WithName("scheduledimagecomparison"),
		Recorder:                m.GetEventRecorderFor("scheduledimagecomparison-controller"),
		Loader:                  loader,
		Storage:                 s,
		Distributed:             o.distributed,
		DistributedCallbackHost: o.callbackHost,
		DistributedWorkerImage:  o.workerImage,
		DistributedWorkerEnv:    workerEnv(),
	}).SetupWithManager(m); err != nil {
		entrypointLogger.Error(err, "unable to create controller", "controller", "ScheduledImageComparison")
		os.Exit(1)
	}

	if err := m.Add(runnable.NewServer(m.GetConfig(), s)); err != nil {
		entrypointLogger.Error(err, "unable to add Server runnable")
		os.Exit(1)
	}

	if err := m.AddHealthzCheck("healthz", healthz.Ping); err != nil {
		entrypointLogger.Error(err, "unable to set up health check")
		os.Exit(1)
	}
	if err := m.AddReadyzCheck("readyz", healthz.Ping); err != nil {
		entrypointLogger.Error(err, "unable to set up ready check")
		os.Exit(1)
	}

	entrypointLogger.Info("starting manager")
	if err := m.Start(ctx); err != nil {
		entrypointLogger.Error(err, "problem running manager")
		os.Exit(1)
	}
}
