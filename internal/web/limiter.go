package web

// limiter.go implements concurrency control for cleaning jobs.
//
// The limiter uses a semaphore to restrict parallel pipeline runs to a
// configurable maximum. When all slots are occupied, new requests wait up to
// maxWait before failing with errTooManyJobs. Graceful shutdown uses
// WaitForDrain to let running jobs finish.

import (
	"context"
	"errors"
	"sync"
	"time"
)

// errTooManyJobs is returned when all job slots are occupied and the wait
// timeout expires. Clients should retry after a short delay.
var errTooManyJobs = errors.New("too many concurrent cleaning jobs")

const defaultMaxConcurrentJobs = 5

const defaultMaxJobWait = 30 * time.Second

// jobLimiter controls concurrent cleaning jobs using a semaphore.
type jobLimiter struct {
	semaphore chan struct{}
	maxWait   time.Duration

	mu     sync.RWMutex
	active int
}

func newJobLimiter(maxConcurrent int, maxWait time.Duration) *jobLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = defaultMaxConcurrentJobs
	}
	if maxWait <= 0 {
		maxWait = defaultMaxJobWait
	}

	return &jobLimiter{
		semaphore: make(chan struct{}, maxConcurrent),
		maxWait:   maxWait,
	}
}

// Acquire attempts to acquire a job slot.
// Returns nil on success, errTooManyJobs if the timeout expires.
// The caller MUST call Release() when the job completes (use defer).
func (l *jobLimiter) Acquire(ctx context.Context) error {
	waitCtx, cancel := context.WithTimeout(ctx, l.maxWait)
	defer cancel()

	select {
	case l.semaphore <- struct{}{}:
		l.mu.Lock()
		l.active++
		l.mu.Unlock()
		return nil

	case <-waitCtx.Done():
		// Distinguish caller cancellation from slot timeout
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return errTooManyJobs

	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release releases a previously acquired slot.
// Must be called exactly once for each successful Acquire.
func (l *jobLimiter) Release() {
	l.mu.Lock()
	l.active--
	l.mu.Unlock()

	<-l.semaphore
}

// ActiveCount returns the number of currently running jobs.
func (l *jobLimiter) ActiveCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.active
}

// Available returns the number of free slots.
func (l *jobLimiter) Available() int {
	return cap(l.semaphore) - len(l.semaphore)
}

// WaitForDrain blocks until all running jobs complete or the context is
// cancelled. Used for graceful shutdown.
func (l *jobLimiter) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if l.ActiveCount() == 0 {
				return nil
			}
		}
	}
}
