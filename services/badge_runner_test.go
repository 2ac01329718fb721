package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/N1femi/Thriva/internal/badge"
)

func TestBadgeRunner_SwallowsErrorsAndPanics(t *testing.T) {
	runner := NewBadgeRunner(time.Second)
	var ran atomic.Int32

	runner.Go(badge.DomainFriends, uuid.New(), func(ctx context.Context) error {
		ran.Add(1)
		return errors.New("db down")
	})
	runner.Go(badge.DomainChat, uuid.New(), func(ctx context.Context) error {
		ran.Add(1)
		panic("boom")
	})
	runner.Go(badge.DomainJournal, uuid.New(), func(ctx context.Context) error {
		ran.Add(1)
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, runner.Wait(ctx))
	assert.Equal(t, int32(3), ran.Load())
}

func TestBadgeRunner_BoundsWorkWithTimeout(t *testing.T) {
	runner := NewBadgeRunner(20 * time.Millisecond)
	done := make(chan error, 1)

	runner.Go(badge.DomainCalendar, uuid.New(), func(ctx context.Context) error {
		<-ctx.Done()
		done <- ctx.Err()
		return ctx.Err()
	})

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	case <-time.After(time.Second):
		t.Fatal("recompute context was never cancelled")
	}
}

func TestBadgeRunner_WaitHonoursContext(t *testing.T) {
	runner := NewBadgeRunner(time.Minute)
	release := make(chan struct{})
	defer close(release)

	runner.Go(badge.DomainChat, uuid.New(), func(ctx context.Context) error {
		<-release
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, runner.Wait(ctx), context.DeadlineExceeded)
}
