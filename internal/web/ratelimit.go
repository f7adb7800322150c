package web

import (
	"context"
	"time"
)

// RateLimiter hands out up to max tokens per window.
type RateLimiter struct {
	ch chan struct{}
}

func NewRateLimiter(ctx context.Context, maxPerWindow int, window time.Duration) *RateLimiter {
	if maxPerWindow <= 0 {
		return &RateLimiter{ch: nil}
	}
	ch := make(chan struct{}, maxPerWindow)
	for i := 0; i < maxPerWindow; i++ {
		ch <- struct{}{}
	}
	rl := &RateLimiter{ch: ch}
	go func() {
		ticker := time.NewTicker(window)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				rl.refill(maxPerWindow)
			}
		}
	}()
	return rl
}

func (r *RateLimiter) refill(n int) {
	for i := 0; i < n; i++ {
		select {
		case r.ch <- struct{}{}:
		default:
			return
		}
	}
}

func (r *RateLimiter) Allow() bool {
	if r.ch == nil {
		return true
	}
	select {
	case <-r.ch:
		return true
	default:
		return false
	}
}
