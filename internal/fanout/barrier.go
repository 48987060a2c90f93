// Package fanout runs groups of concurrent requests and joins on their completion.
package fanout

import (
	"context"
	"sync"
)

// Barrier fires a callback exactly once after n completions have been
// signalled. Done may be called from any goroutine.
type Barrier struct {
	mu         sync.Mutex
	remaining  int
	fired      bool
	onComplete func()
	done       chan struct{}
}

// NewBarrier returns a barrier expecting n completions. With n <= 0 the
// callback runs before NewBarrier returns.
func NewBarrier(n int, onComplete func()) *Barrier {
	b := &Barrier{
		remaining:  n,
		onComplete: onComplete,
		done:       make(chan struct{}),
	}
	if n <= 0 {
		b.fire()
	}
	return b
}

// Done signals one completion. Calls past the expected count are ignored.
func (b *Barrier) Done() {
	b.mu.Lock()
	if b.fired {
		b.mu.Unlock()
		return
	}
	b.remaining--
	last := b.remaining == 0
	b.mu.Unlock()

	if last {
		b.fire()
	}
}

func (b *Barrier) fire() {
	b.mu.Lock()
	if b.fired {
		b.mu.Unlock()
		return
	}
	b.fired = true
	b.mu.Unlock()

	if b.onComplete != nil {
		b.onComplete()
	}
	close(b.done)
}

// Remaining returns how many completions are still outstanding.
func (b *Barrier) Remaining() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fired {
		return 0
	}
	return b.remaining
}

// Wait blocks until the callback has run or ctx is cancelled.
func (b *Barrier) Wait(ctx context.Context) error {
	select {
	case <-b.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
