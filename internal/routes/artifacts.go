package routes

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"time"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/dynamic"

	v1 "image-diff-controller/api/v1"
	"image-diff-controller/internal/myhttp"
	"image-diff-controller/internal/storage"
)

const (
	imageComparisonKind          = "imagecomparison"
	scheduledImageComparisonKind = "scheduledimagecomparison"
)

type ArtifactsResponse struct {
	Baseline    string   `json:"baseline,omitempty"`
	Target      string   `json:"target,omitempty"`
	Diff        string   `json:"diff,omitempty"`
	DiffAmount  float64  `json:"diffAmount,omitempty"`
	DiffSize    int      `json:"diffSize,omitempty"`
	HasDiff     bool     `json:"hasDiff,omitempty"`
	Fingerprint string   `json:"fingerprint,omitempty"`
	Rectangles  []string `json:"rectangles,omitempty"`
}

// ArtifactsRequest is what a worker reports back after a comparison.
type ArtifactsRequest struct {
	BaselineURL string   `json:"baselineURL"`
	TargetURL   string   `json:"targetURL"`
	DiffURL     string   `json:"diffURL"`
	DiffAmount  float64  `json:"diffAmount"`
	DiffSize    int      `json:"diffSize"`
	HasDiff     bool     `json:"hasDiff"`
	Fingerprint string   `json:"fingerprint"`
	Rectangles  []string `json:"rectangles"`
}

type artifactStatus struct {
	baselineURL string
	targetURL   string
	result      v1.ComparisonResult
}

func statusOf(kind string, object map[string]any) (*artifactStatus, error) {
	switch kind {
	case imageComparisonKind:
		var c v1.ImageComparison
		if err := runtime.DefaultUnstructuredConverter.FromUnstructured(object, &c); err != nil {
			return nil, err
		}
		return &artifactStatus{c.Status.BaselineURL, c.Status.TargetURL, c.Status.ComparisonResult}, nil
	case scheduledImageComparisonKind:
		var c v1.ScheduledImageComparison
		if err := runtime.DefaultUnstructuredConverter.FromUnstructured(object, &c); err != nil {
			return nil, err
		}
		return &artifactStatus{c.Status.BaselineURL, c.Status.TargetURL, c.Status.ComparisonResult}, nil
	}
	return nil, nil
}

func ListArtifacts(dynamicClient dynamic.Interface, storageClient storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind := r.PathValue("kind")
		if kind != imageComparisonKind && kind != scheduledImageComparisonKind {
			http.Error(w, "Unsupported resource kind", http.StatusBadRequest)
			return
		}

		u, err := dynamicClient.Resource(resource(r)).Namespace(r.PathValue("namespace")).Get(r.Context(), r.PathValue("name"), metav1.GetOptions{})
		if err != nil {
			if apierrors.IsNotFound(err) {
				http.NotFound(w, r)
				return
			}
			internalError(w, r, "failed to get resource", err)
			return
		}

		status, err := statusOf(kind, u.Object)
		if err != nil {
			internalError(w, r, "failed to convert "+kind, err)
			return
		}

		response := ArtifactsResponse{
			Baseline:    encodeArtifact(r.Context(), storageClient, status.baselineURL),
			Target:      encodeArtifact(r.Context(), storageClient, status.targetURL),
			Diff:        encodeArtifact(r.Context(), storageClient, status.result.DiffURL),
			DiffAmount:  status.result.DiffAmount,
			DiffSize:    status.result.DiffSize,
			HasDiff:     status.result.HasDiff,
			Fingerprint: status.result.Fingerprint,
			Rectangles:  status.result.Rectangles,
		}
		writeJSON(w, r, response)
	}
}

// encodeArtifact returns the base64 content behind url, or "" when it cannot
// be read.
func encodeArtifact(ctx context.Context, storageClient storage.Storage, url string) string {
	if url == "" {
		return ""
	}
	data, err := storageClient.Get(ctx, url)
	if err != nil {
		myhttp.Logger(ctx).Warn("failed to read artifact", "url", url, "error", err)
		return ""
	}
	return base64.StdEncoding.EncodeToString(data)
}

func UpdateArtifacts(dynamicClient dynamic.Interface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind := r.PathValue("kind")
		if kind != imageComparisonKind && kind != scheduledImageComparisonKind {
			http.Error(w, "Unsupported resource kind", http.StatusBadRequest)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request body", http.StatusBadRequest)
			return
		}

		var request ArtifactsRequest
		if err := json.Unmarshal(body, &request); err != nil {
			http.Error(w, "Invalid JSON format", http.StatusBadRequest)
			return
		}

		// Every field is written so a clean run clears an earlier difference.
		patchData, err := json.Marshal(map[string]any{
			"status": map[string]any{
				"baselineUrl":        request.BaselineURL,
				"targetUrl":          request.TargetURL,
				"diffUrl":            request.DiffURL,
				"diffAmount":         request.DiffAmount,
				"diffSize":           request.DiffSize,
				"hasDiff":            request.HasDiff,
				"fingerprint":        request.Fingerprint,
				"rectangles":         request.Rectangles,
				"lastComparisonTime": metav1.NewTime(time.Now()),
			},
		})
		if err != nil {
			internalError(w, r, "failed to marshal patch data", err)
			return
		}

		u, err := dynamicClient.Resource(resource(r)).Namespace(r.PathValue("namespace")).Patch(
			r.Context(),
			r.PathValue("name"),
			types.MergePatchType,
			patchData,
			metav1.PatchOptions{},
			"status",
		)
		if err != nil {
			if apierrors.IsNotFound(err) {
				http.NotFound(w, r)
				return
			}
			internalError(w, r, "failed to patch status", err)
			return
		}
		writeJSON(w, r, u)
	}
}
