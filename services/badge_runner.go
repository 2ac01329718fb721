package services

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/N1femi/Thriva/internal/badge"
)

// BadgeRunner runs badge recomputes off the request path. Failures and
// panics are logged and never reach the caller.
type BadgeRunner struct {
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewBadgeRunner(timeout time.Duration) *BadgeRunner {
	return &BadgeRunner{timeout: timeout}
}

// Go starts fn on its own goroutine with a fresh context bounded by the
// runner timeout; the request context may already be gone when it runs.
func (r *BadgeRunner) Go(domain badge.Domain, userID uuid.UUID, fn func(ctx context.Context) error) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer func() {
			if p := recover(); p != nil {
				log.Printf("BadgeRunner: %s recompute panicked for user %s: %v", domain, userID, p)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()

		if err := fn(ctx); err != nil {
			log.Printf("BadgeRunner: %s recompute failed for user %s: %v", domain, userID, err)
		}
	}()
}

// Wait blocks until in-flight recomputes finish or ctx is done.
func (r *BadgeRunner) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
