package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/xerrors"

	"image-diff-controller/internal/compare"
	"image-diff-controller/internal/env"
	"image-diff-controller/internal/retry"
	"image-diff-controller/internal/routes"
	"image-diff-controller/internal/source"
	"image-diff-controller/internal/storage"
)

type Worker struct {
	Loader  *source.Loader
	Storage storage.Storage
	Client  *http.Client
	Options compare.Options
}

func main() {
	if err := env.Load(); err != nil {
		log.Fatalf("failed to load .env: %v", err)
	}

	var optionsJSON string
	var callbackURL string
	var previousFrom string
	flag.StringVar(&optionsJSON, "options", env.OrDefault("COMPARE_OPTIONS", "{}"), "Comparison options as JSON")
	flag.StringVar(&callbackURL, "callback", env.OrDefault("CALLBACK_URL", ""), "Callback URL to send results to")
	flag.StringVar(&previousFrom, "previous-from", env.OrDefault("PREVIOUS_FROM", ""), "Resource URL whose status.targetUrl is used as the baseline")

	flag.Parse()

	var options compare.Options
	if err := json.Unmarshal([]byte(optionsJSON), &options); err != nil {
		log.Fatalf("failed to parse options: %v", err)
	}

	ctx := context.Background()

	s, err := storage.New(ctx, storage.ConfigFromEnv())
	if err != nil {
		log.Fatalf("failed to create storage backend: %v", err)
	}

	// retry.Transport has no per-try timeout, so the client timeout bounds all attempts.
	client := retry.NewClient(
		env.OrDefault("HTTP_TIMEOUT", 30*time.Second),
		retry.NewExponentialBackOff(10*time.Millisecond, 1*time.Second, 3, nil),
	)
	worker := &Worker{
		Loader:  &source.Loader{Storage: s, Client: client},
		Storage: s,
		Client:  client,
		Options: options,
	}

	args := flag.Args()
	var result *routes.ArtifactsRequest
	switch {
	case previousFrom != "" && len(args) == 1:
		baseline, err := worker.previousTarget(ctx, previousFrom)
		if err != nil {
			log.Fatalf("failed to read previous target: %v", err)
		}
		result, err = worker.rotate(ctx, baseline, args[0])
		if err != nil {
			log.Fatalf("failed to process comparison: %v", err)
		}
	case len(args) == 2:
		result, err = worker.process(ctx, args[0], args[1])
		if err != nil {
			log.Fatalf("failed to process comparison: %v", err)
		}
	default:
		log.Fatalf("usage: worker [flags] baseline target | worker -previous-from URL [flags] target")
	}

	j, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatalf("failed to marshal result: %v", err)
	}

	if callbackURL == "" {
		fmt.Println(string(j))
		return
	}
	if err := worker.callback(ctx, callbackURL, j); err != nil {
		log.Fatalf("failed to send callback: %v", err)
	}
}

// process compares baseline with target and stores both inputs and the diff.
func (w *Worker) process(ctx context.Context, baseline string, target string) (*routes.ArtifactsRequest, error) {
	pair, err := w.Loader.LoadPair(ctx, baseline, target)
	if err != nil {
		return nil, err
	}

	result, err := compare.Run(pair.Baseline, pair.Target, w.Options)
	if err != nil {
		return nil, xerrors.Errorf("failed to generate diff: %w", err)
	}

	output := outputOf(result)
	now := time.Now()

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		url, err := w.Storage.Put(ctx, storage.Key("ImageComparison", "capture", source.Extension(pair.BaselineData), now, baseline), pair.BaselineData)
		if err != nil {
			return xerrors.Errorf("failed to upload baseline: %w", err)
		}
		output.BaselineURL = url
		return nil
	})
	eg.Go(func() error {
		url, err := w.Storage.Put(ctx, storage.Key("ImageComparison", "capture", source.Extension(pair.TargetData), now, target), pair.TargetData)
		if err != nil {
			return xerrors.Errorf("failed to upload target: %w", err)
		}
		output.TargetURL = url
		return nil
	})
	eg.Go(func() error {
		url, err := w.Storage.Put(ctx, storage.Key("ImageComparison", "diff", "png", now, baseline, target), result.Image)
		if err != nil {
			return xerrors.Errorf("failed to upload diff image: %w", err)
		}
		output.DiffURL = url
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return output, nil
}

// rotate stores target and compares it with the previously stored target.
// An empty baseline only stores the target.
func (w *Worker) rotate(ctx context.Context, baseline string, target string) (*routes.ArtifactsRequest, error) {
	targetImage, targetData, err := w.Loader.Load(ctx, target)
	if err != nil {
		return nil, xerrors.Errorf("failed to load target: %w", err)
	}

	output := &routes.ArtifactsRequest{BaselineURL: baseline}
	now := time.Now()

	if baseline != "" {
		baselineImage, _, err := w.Loader.Load(ctx, baseline)
		if err != nil {
			return nil, xerrors.Errorf("failed to load baseline: %w", err)
		}
		result, err := compare.Run(baselineImage, targetImage, w.Options)
		if err != nil {
			return nil, xerrors.Errorf("failed to generate diff: %w", err)
		}
		output = outputOf(result)
		output.BaselineURL = baseline
		output.DiffURL, err = w.Storage.Put(ctx, storage.Key("ScheduledImageComparison", "diff", "png", now, baseline, target), result.Image)
		if err != nil {
			return nil, xerrors.Errorf("failed to upload diff image: %w", err)
		}
	}

	output.TargetURL, err = w.Storage.Put(ctx, storage.Key("ScheduledImageComparison", "capture", source.Extension(targetData), now, target, string(targetData)), targetData)
	if err != nil {
		return nil, xerrors.Errorf("failed to upload target: %w", err)
	}
	return output, nil
}

func outputOf(result *compare.Result) *routes.ArtifactsRequest {
	return &routes.ArtifactsRequest{
		DiffAmount:  result.DiffAmount,
		DiffSize:    result.DiffSize,
		HasDiff:     result.HasDiff,
		Fingerprint: result.Fingerprint,
		Rectangles:  result.Rectangles,
	}
}

func (w *Worker) previousTarget(ctx context.Context, resourceURL string) (string, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, resourceURL, nil)
	if err != nil {
		return "", xerrors.Errorf("failed to create request: %w", err)
	}
	response, err := w.Client.Do(request)
	if err != nil {
		return "", xerrors.Errorf("failed to send request: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return "", xerrors.Errorf("unexpected status %s", response.Status)
	}

	var resource struct {
		Status struct {
			TargetURL string `json:"targetUrl"`
		} `json:"status"`
	}
	if err := json.NewDecoder(response.Body).Decode(&resource); err != nil {
		return "", xerrors.Errorf("failed to decode resource: %w", err)
	}
	return resource.Status.TargetURL, nil
}

func (w *Worker) callback(ctx context.Context, callbackURL string, data []byte) error {
	request, err := http.NewRequestWithContext(ctx, http.MethodPatch, callbackURL, bytes.NewReader(data))
	if err != nil {
		return xerrors.Errorf("failed to create request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")

	response, err := w.Client.Do(request)
	if err != nil {
		return xerrors.Errorf("failed to send request: %w", err)
	}
	defer response.Body.Close()
	_, _ = io.Copy(io.Discard, response.Body)

	if response.StatusCode >= 300 {
		return xerrors.Errorf("callback returned %s", response.Status)
	}
	return nil
}
