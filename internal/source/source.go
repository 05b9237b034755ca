// Package source loads the images to compare from local files, artifact
// storage or HTTP(S) URLs.
package source

import (
	"bytes"
	"context"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"
	"golang.org/x/xerrors"

	"image-diff-controller/internal/storage"
)

// maxImageSize bounds downloads so a misbehaving server cannot exhaust memory.
const maxImageSize = 64 << 20

type Loader struct {
	Storage storage.Storage
	Client  *http.Client
}

// Fetch returns the raw bytes behind ref. http:// and https:// references are
// downloaded, everything else is read through the storage backend.
func (l *Loader) Fetch(ctx context.Context, ref string) ([]byte, error) {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return l.download(ctx, ref)
	}
	if l.Storage == nil {
		return nil, xerrors.Errorf("no storage backend to read %s", ref)
	}
	data, err := l.Storage.Get(ctx, ref)
	if err != nil {
		return nil, xerrors.Errorf("failed to read %s: %w", ref, err)
	}
	return data, nil
}

func (l *Loader) download(ctx context.Context, url string) ([]byte, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, xerrors.Errorf("failed to create request: %w", err)
	}

	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	response, err := client.Do(request)
	if err != nil {
		return nil, xerrors.Errorf("failed to download %s: %w", url, err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, xerrors.Errorf("failed to download %s: %s", url, response.Status)
	}

	data, err := io.ReadAll(io.LimitReader(response.Body, maxImageSize+1))
	if err != nil {
		return nil, xerrors.Errorf("failed to read %s: %w", url, err)
	}
	if len(data) > maxImageSize {
		return nil, xerrors.Errorf("%s is larger than %d bytes", url, maxImageSize)
	}
	return data, nil
}

// Load fetches and decodes one image.
func (l *Loader) Load(ctx context.Context, ref string) (image.Image, []byte, error) {
	data, err := l.Fetch(ctx, ref)
	if err != nil {
		return nil, nil, err
	}
	img, err := Decode(data)
	if err != nil {
		return nil, nil, xerrors.Errorf("failed to decode %s: %w", ref, err)
	}
	return img, data, nil
}

// Pair is a baseline and a target loaded together.
type Pair struct {
	Baseline     image.Image
	BaselineData []byte
	Target       image.Image
	TargetData   []byte
}

// LoadPair loads both images concurrently.
func (l *Loader) LoadPair(ctx context.Context, baseline string, target string) (*Pair, error) {
	pair := &Pair{}

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		img, data, err := l.Load(ctx, baseline)
		if err != nil {
			return xerrors.Errorf("failed to load baseline: %w", err)
		}
		pair.Baseline, pair.BaselineData = img, data
		return nil
	})
	eg.Go(func() error {
		img, data, err := l.Load(ctx, target)
		if err != nil {
			return xerrors.Errorf("failed to load target: %w", err)
		}
		pair.Target, pair.TargetData = img, data
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return pair, nil
}

// Decode accepts PNG, JPEG, GIF, BMP, TIFF and WebP.
func Decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return img, nil
}

// Extension guesses the file extension of encoded image data.
func Extension(data []byte) string {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "bin"
	}
	if format == "jpeg" {
		return "jpg"
	}
	return format
}
