package services

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"
)

const flightTimeout = 30 * time.Second

// shareFlight runs fn once per key for every concurrent caller. The flight is
// detached from the cancellation of whichever caller started it, so one
// abandoned request cannot fail the others; each caller still stops waiting
// when its own ctx is done.
func shareFlight[T any](ctx context.Context, group *singleflight.Group, key string, fn func(ctx context.Context) (T, error)) (T, error) {
	results := group.DoChan(key, func() (any, error) {
		flightCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), flightTimeout)
		defer cancel()
		return fn(flightCtx)
	})

	var zero T
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-results:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	}
}
