// Package timing measures a single invocation of an operation.
package timing

import (
	"context"
	"math"
	"time"
)

// Result is the outcome of one measured invocation. On failure Err holds the
// original error and ElapsedMs the time it took to fail.
type Result[T any] struct {
	Data         T       `json:"data"`
	ElapsedMs    float64 `json:"executionTime"`
	Succeeded    bool    `json:"success"`
	Err          error   `json:"-"`
	ErrorMessage string  `json:"error,omitempty"`
}

var since = time.Since

// Measure invokes fn once and records the elapsed time from just before the
// call until it returns. Both readings come from the monotonic clock.
func Measure[T any](ctx context.Context, fn func(ctx context.Context) (T, error)) Result[T] {
	start := time.Now()
	data, err := fn(ctx)
	elapsed := since(start)

	result := Result[T]{
		Data:      data,
		ElapsedMs: Milliseconds(elapsed),
		Succeeded: err == nil,
	}
	if err != nil {
		result.Err = err
		result.ErrorMessage = err.Error()
	}
	return result
}

// Milliseconds converts d to milliseconds rounded to two decimal places.
// Negative durations clamp to zero.
func Milliseconds(d time.Duration) float64 {
	if d < 0 {
		return 0
	}
	ms := float64(d) / float64(time.Millisecond)
	return math.Round(ms*100) / 100
}
