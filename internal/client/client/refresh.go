package client

import (
	"context"
	"sync"
)

// refreshQueue lets exactly one credential refresh run at a time. Callers
// that hit 401 while it runs wait for its result; they are released in the
// order they arrived.
//
// gen counts successful refreshes. A request remembers the generation it was
// sent with; a 401 for an older generation is answered by replaying with the
// current credential instead of refreshing again.
type refreshQueue struct {
	refresh func(ctx context.Context) error
	onFail  func(ctx context.Context)

	mu      sync.Mutex
	gen     uint64
	waiters []chan error
}

func (q *refreshQueue) generation() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.gen
}

// wait blocks until the credential is newer than sentGen. The refresh runs
// detached from ctx so one caller giving up does not fail the others.
func (q *refreshQueue) wait(ctx context.Context, sentGen uint64) error {
	q.mu.Lock()
	if sentGen < q.gen {
		q.mu.Unlock()
		return nil
	}
	ch := make(chan error, 1)
	q.waiters = append(q.waiters, ch)
	if len(q.waiters) == 1 {
		go q.run(context.WithoutCancel(ctx))
	}
	q.mu.Unlock()

	select {
	case err := <-ch:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *refreshQueue) run(ctx context.Context) {
	err := q.refresh(ctx)

	q.mu.Lock()
	waiters := q.waiters
	q.waiters = nil
	if err == nil {
		q.gen++
	}
	q.mu.Unlock()

	if err != nil && q.onFail != nil {
		q.onFail(ctx)
	}
	for _, w := range waiters {
		w <- err
	}
}
