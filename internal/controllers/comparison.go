package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/xerrors"
	coreV1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/tools/record"

	idV1 "image-diff-controller/api/v1"
	"image-diff-controller/internal/compare"
	diffimage "image-diff-controller/internal/diff/image"
	"image-diff-controller/internal/source"
	"image-diff-controller/internal/storage"
)

func compareOptions(o idV1.ComparisonOptions) compare.Options {
	return compare.Options{
		Format:          o.Format,
		ColorDistortion: o.ColorDistortion,
		DiffColor:       o.DiffColor,
		DiffSizeTrigger: o.DiffSizeTrigger,
		MergeDistance:   o.MergeDistance,
		Raw:             o.Raw,
		Expected: compare.Scope{
			IgnoredAreas:    o.Expected.IgnoredAreas,
			CoordsToCompare: o.Expected.CoordsToCompare,
		},
		Actual: compare.Scope{
			IgnoredAreas:    o.Actual.IgnoredAreas,
			CoordsToCompare: o.Actual.CoordsToCompare,
		},
	}
}

func comparisonResult(diffURL string, result *compare.Result) idV1.ComparisonResult {
	return idV1.ComparisonResult{
		DiffURL:     diffURL,
		DiffAmount:  result.DiffAmount,
		DiffSize:    result.DiffSize,
		HasDiff:     result.HasDiff,
		Fingerprint: result.Fingerprint,
		Rectangles:  result.Rectangles,
	}
}

// workerArgs are the bin/worker flags that reproduce the comparison options.
func workerArgs(o idV1.ComparisonOptions, callbackURL string) ([]string, error) {
	options, err := json.Marshal(compareOptions(o))
	if err != nil {
		return nil, xerrors.Errorf("failed to marshal options: %w", err)
	}
	return []string{"--options", string(options), "--callback", callbackURL}, nil
}

func callbackURL(host string, namespace string, kind string, name string) string {
	return fmt.Sprintf("http://%s/api/%s/%s/%s/%s/%s", host, namespace, idV1.GroupVersion.Group, idV1.GroupVersion.Version, kind, name)
}

// uploads stores several artifacts concurrently. Empty data is skipped.
type uploads struct {
	storage storage.Storage
	kind    string
	now     time.Time
	eg      *errgroup.Group
	ctx     context.Context
}

func newUploads(ctx context.Context, s storage.Storage, kind string) *uploads {
	eg, ctx := errgroup.WithContext(ctx)
	return &uploads{storage: s, kind: kind, now: time.Now(), eg: eg, ctx: ctx}
}

func (u *uploads) put(category string, data []byte, url *string, inputs ...string) {
	if len(data) == 0 {
		return
	}
	u.eg.Go(func() error {
		key := storage.Key(u.kind, category, source.Extension(data), u.now, inputs...)
		path, err := u.storage.Put(u.ctx, key, data)
		if err != nil {
			return xerrors.Errorf("failed to upload %s: %w", category, err)
		}
		*url = path
		return nil
	})
}

func (u *uploads) wait() error {
	return u.eg.Wait()
}

// recordInvalid turns invalid comparison options into a warning event. It
// reports whether err was handled, since retrying cannot fix the options.
func recordInvalid(recorder record.EventRecorder, object runtime.Object, err error) bool {
	if !errors.Is(err, diffimage.ErrInvalidArgument) {
		return false
	}
	recorder.Eventf(object, coreV1.EventTypeWarning, "InvalidOptions", "Comparison options are invalid: %s", err)
	return true
}

func recordResult(recorder record.EventRecorder, object runtime.Object, name string, result idV1.ComparisonResult) {
	if result.HasDiff {
		recorder.Eventf(object, coreV1.EventTypeWarning, "DifferenceDetected", "Images differ: %q (%d pixels, %.2f%%)", name, result.DiffSize, result.DiffAmount*100)
		return
	}
	recorder.Eventf(object, coreV1.EventTypeNormal, "ComparisonCompleted", "Comparison completed successfully: %q (difference: %.2f%%)", name, result.DiffAmount*100)
}
