package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

type stubCache struct {
	values map[string][]byte
	gets   []string
	setErr error
}

func (s *stubCache) Set(ctx context.Context, key string, value []byte, expiration time.Duration) error {
	if s.setErr != nil {
		return s.setErr
	}
	s.values[key] = value
	return nil
}

func (s *stubCache) Get(ctx context.Context, key string) ([]byte, error) {
	s.gets = append(s.gets, key)
	v, ok := s.values[key]
	if !ok {
		return nil, ErrMiss
	}
	return v, nil
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewMemoryCache(2)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	_ = c.Set(ctx, "a", []byte("1"), 0)
	_ = c.Set(ctx, "b", []byte("2"), 0)
	if _, err := c.Get(ctx, "a"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	_ = c.Set(ctx, "c", []byte("3"), 0)

	if _, err := c.Get(ctx, "b"); !errors.Is(err, ErrMiss) {
		t.Errorf("Expected the least recently used key to be evicted, got %v", err)
	}
	got, err := c.Get(ctx, "a")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if diff := cmp.Diff([]byte("1"), got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestMemoryCache_InvalidSize(t *testing.T) {
	if _, err := NewMemoryCache(0); err == nil {
		t.Error("Expected an error for a zero sized cache")
	}
}

func TestTiered(t *testing.T) {
	ctx := context.Background()

	t.Run("FillsNearOnFarHit", func(t *testing.T) {
		near, _ := NewMemoryCache(8)
		far := &stubCache{values: map[string][]byte{"k": []byte("v")}}
		c := &Tiered{Near: near, Far: far}

		for i := 0; i < 2; i++ {
			got, err := c.Get(ctx, "k")
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if diff := cmp.Diff([]byte("v"), got); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		}
		if diff := cmp.Diff([]string{"k"}, far.gets); diff != "" {
			t.Errorf("(-want +got):\n%s", diff)
		}
	})

	t.Run("Miss", func(t *testing.T) {
		near, _ := NewMemoryCache(8)
		c := &Tiered{Near: near, Far: &stubCache{values: map[string][]byte{}}}
		if _, err := c.Get(ctx, "missing"); !errors.Is(err, ErrMiss) {
			t.Errorf("Expected ErrMiss, got %v", err)
		}
	})

	t.Run("FarWriteFails", func(t *testing.T) {
		near, _ := NewMemoryCache(8)
		c := &Tiered{Near: near, Far: &stubCache{setErr: errors.New("down")}}
		if err := c.Set(ctx, "k", []byte("v"), time.Minute); err == nil {
			t.Error("Expected the far error to be reported")
		}
		if _, err := near.Get(ctx, "k"); err != nil {
			t.Errorf("Expected the near tier to be written, got %v", err)
		}
	})
}
