package routes

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"image-diff-controller/internal/cache"
	"image-diff-controller/internal/compare"
	diffimage "image-diff-controller/internal/diff/image"
	"image-diff-controller/internal/myhttp"
	"image-diff-controller/internal/source"
)

const maxUploadSize = 64 << 20

type DiffResponse struct {
	DiffData string `json:"diffData"`
	compare.Result
}

// Diff compares the "baseline" and "target" files of a multipart form. The
// optional "options" field carries compare.Options as JSON. Responses are
// cached by the hash of the inputs when c is not nil.
func Diff(c cache.Cache, expiration time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := myhttp.Logger(r.Context())

		r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			http.Error(w, "Failed to parse multipart form", http.StatusBadRequest)
			return
		}

		baseline, err := formFile(r, "baseline")
		if err != nil {
			http.Error(w, "Failed to read baseline file", http.StatusBadRequest)
			return
		}
		target, err := formFile(r, "target")
		if err != nil {
			http.Error(w, "Failed to read target file", http.StatusBadRequest)
			return
		}

		var options compare.Options
		if v := r.FormValue("options"); v != "" {
			if err := json.Unmarshal([]byte(v), &options); err != nil {
				http.Error(w, "Invalid options JSON", http.StatusBadRequest)
				return
			}
		}

		key := compare.Key(baseline, target, options)
		if c != nil {
			if b, err := c.Get(r.Context(), key); err == nil {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("X-Cache", "HIT")
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write(b)
				return
			} else if !errors.Is(err, cache.ErrMiss) {
				logger.Warn("failed to read cache", "error", err)
			}
		}

		baselineImage, err := source.Decode(baseline)
		if err != nil {
			http.Error(w, "Failed to decode baseline image", http.StatusBadRequest)
			return
		}
		targetImage, err := source.Decode(target)
		if err != nil {
			http.Error(w, "Failed to decode target image", http.StatusBadRequest)
			return
		}

		result, err := compare.Run(baselineImage, targetImage, options)
		if err != nil {
			if errors.Is(err, diffimage.ErrInvalidArgument) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			internalError(w, r, "failed to compare images", err)
			return
		}

		b, err := json.Marshal(DiffResponse{
			DiffData: base64.StdEncoding.EncodeToString(result.Image),
			Result:   *result,
		})
		if err != nil {
			internalError(w, r, "failed to marshal json", err)
			return
		}

		if c != nil {
			if err := c.Set(r.Context(), key, b, expiration); err != nil {
				logger.Warn("failed to write cache", "error", err)
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(b)
	}
}

func formFile(r *http.Request, name string) ([]byte, error) {
	file, _, err := r.FormFile(name)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}
