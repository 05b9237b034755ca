package storage

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"image"
	"image/png"
	"strings"
	"time"

	"image-diff-controller/internal/env"
)

type Storage interface {
	// Put stores data under key and returns the URL it can be read back from.
	Put(ctx context.Context, key string, data []byte) (string, error)
	// Get reads data from a URL returned by Put.
	Get(ctx context.Context, url string) ([]byte, error)
}

type Config struct {
	Backend string
	File    FileConfig
	S3      S3Config
}

// ConfigFromEnv reads STORAGE_BACKEND, DIRECTORY and the S3_* settings.
func ConfigFromEnv() Config {
	return Config{
		Backend: env.OrDefault("STORAGE_BACKEND", "file"),
		File: FileConfig{
			Directory: env.OrDefault("DIRECTORY", "/tmp"),
		},
		S3: S3Config{
			Bucket:      env.OrDefault("S3_BUCKET", ""),
			EndpointURL: env.OrDefault("S3_ENDPOINT_URL", ""),
			Region:      env.OrDefault("S3_REGION", ""),
		},
	}
}

func New(ctx context.Context, c Config) (Storage, error) {
	switch c.Backend {
	case "file", "":
		return NewFileStorage(ctx, c.File)
	case "s3":
		return NewS3Storage(ctx, c.S3)
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", c.Backend)
	}
}

// Key builds an object key of the form kind/category/hash/timestamp.ext,
// where hash identifies the inputs the artifact was produced from.
func Key(kind string, category string, ext string, now time.Time, inputs ...string) string {
	h := sha256.New()
	h.Write([]byte(strings.Join(inputs, "\x00")))
	hash := fmt.Sprintf("%x", h.Sum(nil))[:16]
	return fmt.Sprintf("%s/%s/%s/%s.%s", kind, category, hash, now.UTC().Format("20060102150405"), ext)
}

// PutPNG encodes img as PNG and stores it under key.
func PutPNG(ctx context.Context, s Storage, key string, img image.Image) (string, error) {
	var buffer bytes.Buffer
	if err := png.Encode(&buffer, img); err != nil {
		return "", fmt.Errorf("failed to encode png: %w", err)
	}
	return s.Put(ctx, key, buffer.Bytes())
}
