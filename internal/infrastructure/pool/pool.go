// Package pool provides a bounded worker pool for blocking inference calls.
// Bounding the number of concurrent backend invocations keeps the health and
// metrics endpoints responsive while the backend is saturated.
package pool

import "context"

// Pool bounds the number of concurrently executing tasks
type Pool struct {
	slots chan struct{}
}

// New creates a Pool allowing at most size concurrent tasks
func New(size int) *Pool {
	if size < 1 {
		size = 1
	}
	return &Pool{slots: make(chan struct{}, size)}
}

// Do runs fn once a slot is available. It returns the context error if the
// caller gives up before a slot frees, otherwise fn's error.
func (p *Pool) Do(ctx context.Context, fn func() error) error {
	select {
	case p.slots <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-p.slots }()

	return fn()
}

// Size returns the pool capacity
func (p *Pool) Size() int {
	return cap(p.slots)
}
