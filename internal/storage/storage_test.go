package storage

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestFileStorage(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := New(ctx, Config{Backend: "file", File: FileConfig{Directory: dir}})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	url, err := s.Put(ctx, "ImageComparison/diff/abc/1.png", []byte("data"))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if diff := cmp.Diff(filepath.Join(dir, "ImageComparison", "diff", "abc", "1.png"), url); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}

	for _, u := range []string{url, "file://" + url} {
		data, err := s.Get(ctx, u)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if diff := cmp.Diff([]byte("data"), data); diff != "" {
			t.Errorf("(-want +got):\n%s", diff)
		}
	}

	if _, err := s.Get(ctx, filepath.Join(dir, "missing")); err == nil {
		t.Error("Expected an error for a missing file")
	}
}

func TestPutPNG(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStorage(ctx, FileConfig{Directory: t.TempDir()})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	url, err := PutPNG(ctx, s, "a.png", img)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	data, err := s.Get(ctx, url)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	decoded, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	r, _, _, _ := decoded.At(1, 1).RGBA()
	if r != 0xffff {
		t.Errorf("Expected a red pixel, got %v", decoded.At(1, 1))
	}
}

func TestKey(t *testing.T) {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	key := Key("ImageComparison", "diff", "png", now, "a", "b")

	if !strings.HasPrefix(key, "ImageComparison/diff/") || !strings.HasSuffix(key, "/20240102030405.png") {
		t.Errorf("Unexpected key: %s", key)
	}
	if key == Key("ImageComparison", "diff", "png", now, "ab") {
		t.Error("Expected input boundaries to change the key")
	}
}

func TestSplitS3URL(t *testing.T) {
	type result struct {
		Bucket string
		Key    string
		Err    bool
	}

	tests := []struct {
		name string
		in   string
		want result
	}{
		{
			func() string {
				_, _, line, _ := runtime.Caller(1)
				return fmt.Sprintf("L%d", line)
			}(),
			"s3://bucket/path/to/a.png",
			result{"bucket", "path/to/a.png", false},
		},
		{
			func() string {
				_, _, line, _ := runtime.Caller(1)
				return fmt.Sprintf("L%d", line)
			}(),
			"path/to/a.png",
			result{"default", "path/to/a.png", false},
		},
		{
			func() string {
				_, _, line, _ := runtime.Caller(1)
				return fmt.Sprintf("L%d", line)
			}(),
			"s3://bucket",
			result{"", "", true},
		},
	}
	for _, tt := range tests {
		name := tt.name
		in := tt.in
		want := tt.want
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			bucket, key, err := splitS3URL(in, "default")
			got := result{bucket, key, err != nil}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "s3")
	t.Setenv("S3_BUCKET", "artifacts")
	t.Setenv("S3_ENDPOINT_URL", "http://minio:9000")

	want := Config{
		Backend: "s3",
		File:    FileConfig{Directory: "/tmp"},
		S3:      S3Config{Bucket: "artifacts", EndpointURL: "http://minio:9000"},
	}
	if diff := cmp.Diff(want, ConfigFromEnv()); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestFileStorage_Escape(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStorage(ctx, FileConfig{Directory: t.TempDir()})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, err := s.Put(ctx, "../outside.png", []byte("data")); err == nil {
		t.Error("Expected an error for a key outside the directory")
	}
}
