package services

import (
	"context"
	"sync"

	apperrors "github.com/zatekoja/doctorconnect/pkg/errors"
)

// FetchFunc loads one snapshot of a list
type FetchFunc[T any] func(ctx context.Context) (T, error)

// FeedResult is the outcome of one fetch that was still current when it
// finished. Seq grows with every started fetch.
type FeedResult[T any] struct {
	Value T
	Err   error
	Seq   uint64
}

// Feed runs fetches with latest-wins semantics: starting a fetch cancels the
// one in flight, and a fetch that was superseded or canceled reports nothing.
type Feed[T any] struct {
	fetch FetchFunc[T]

	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
	closed bool
}

// NewFeed creates a feed over fetch
func NewFeed[T any](fetch FetchFunc[T]) *Feed[T] {
	return &Feed[T]{fetch: fetch}
}

// Refresh starts a fetch, canceling the previous one. ok is false when this
// fetch was superseded, canceled, or the feed is closed; the caller must
// then leave its state untouched.
func (f *Feed[T]) Refresh(ctx context.Context) (result FeedResult[T], ok bool) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return result, false
	}
	if f.cancel != nil {
		f.cancel()
	}
	f.seq++
	seq := f.seq
	ctx, cancel := context.WithCancel(ctx)
	f.cancel = cancel
	f.mu.Unlock()

	value, err := f.fetch(ctx)
	// read before our own cancel below, which always sets ctx.Err
	canceled := ctx.Err() != nil

	f.mu.Lock()
	defer f.mu.Unlock()
	current := !f.closed && f.seq == seq
	if current {
		f.cancel = nil
	}
	cancel()

	if !current || canceled || apperrors.IsCanceled(err) {
		return result, false
	}
	return FeedResult[T]{Value: value, Err: err, Seq: seq}, true
}

// Close cancels any fetch in flight and refuses new ones
func (f *Feed[T]) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
}
