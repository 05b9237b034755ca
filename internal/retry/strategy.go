package retry

import (
	"math"
	"math/rand"
	"time"

	"golang.org/x/exp/constraints"
)

// Strategy returns how long to wait before the given retry (0-based) and
// whether the retry budget is exhausted.
type Strategy interface {
	Backoff(retry uint) (time.Duration, bool)
}

type never struct{}

func NewNever() Strategy {
	return never{}
}

func (never) Backoff(uint) (time.Duration, bool) {
	return 0, true
}

// Jitter maps an upper bound n > 0 to a value in [0, n).
type Jitter func(n int64) int64

type exponentialBackOff struct {
	base       time.Duration
	max        time.Duration
	maxRetries uint
	jitter     Jitter
}

// NewExponentialBackOff waits a random duration up to min(base*2^retry, max)
// ("full jitter"). A nil jitter uses math/rand.
func NewExponentialBackOff(base time.Duration, max time.Duration, maxRetries uint, jitter Jitter) Strategy {
	if jitter == nil {
		jitter = rand.Int63n
	}
	return &exponentialBackOff{
		base:       base,
		max:        max,
		maxRetries: maxRetries,
		jitter:     jitter,
	}
}

func (e *exponentialBackOff) Backoff(retry uint) (time.Duration, bool) {
	if retry >= e.maxRetries {
		return 0, true
	}
	ceiling := clamp(shiftLeft(int64(e.base), retry), 1, max(int64(e.max), 1))
	return time.Duration(e.jitter(ceiling)), false
}

// shiftLeft returns v<<n, saturating at math.MaxInt64.
func shiftLeft(v int64, n uint) int64 {
	if v <= 0 {
		return 0
	}
	if n >= 63 || v > math.MaxInt64>>n {
		return math.MaxInt64
	}
	return v << n
}

func clamp[T constraints.Ordered](v T, lo T, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
