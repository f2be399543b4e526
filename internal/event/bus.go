// Package event provides the in-process bus connecting review mutations to
// the rating aggregator and user registrations to the notifier.  Dispatch
// is deliberately synchronous: Publish runs every subscribed handler on the
// caller's own goroutine and only then returns, so by the time a request
// handler answers the client, every side effect of its write has already
// been attempted.
package event

import (
	"context"
	"sync"

	"github.com/iliyamo/title-review-api/internal/model"
)

// ReviewMutated is published after a review is created, updated or deleted.
// It carries only the affected title; subscribers reload whatever state
// they need.
type ReviewMutated struct {
	TitleID uint64
}

// UserRegistered is published after a signup request is accepted, including
// idempotent re-submissions for an existing user.
type UserRegistered struct {
	User model.User
}

// Bus is a synchronous publish/subscribe channel with one topic per event
// type.  Subscriptions are expected to happen during startup, before any
// request traffic; the mutex only guards against a late subscriber racing a
// publish, it does not make handlers concurrent.
type Bus struct {
	mu             sync.RWMutex
	reviewMutated  []func(context.Context, ReviewMutated)
	userRegistered []func(context.Context, UserRegistered)
}

// New returns an empty bus.
func New() *Bus {
	return &Bus{}
}

// SubscribeReviewMutated registers a handler for review mutation events.
func (b *Bus) SubscribeReviewMutated(fn func(context.Context, ReviewMutated)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.reviewMutated = append(b.reviewMutated, fn)
}

// SubscribeUserRegistered registers a handler for registration events.
func (b *Bus) SubscribeUserRegistered(fn func(context.Context, UserRegistered)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.userRegistered = append(b.userRegistered, fn)
}

// PublishReviewMutated invokes all review mutation handlers in subscription
// order before returning.
func (b *Bus) PublishReviewMutated(ctx context.Context, ev ReviewMutated) {
	b.mu.RLock()
	handlers := b.reviewMutated
	b.mu.RUnlock()
	for _, fn := range handlers {
		fn(ctx, ev)
	}
}

// PublishUserRegistered invokes all registration handlers in subscription
// order before returning.
func (b *Bus) PublishUserRegistered(ctx context.Context, ev UserRegistered) {
	b.mu.RLock()
	handlers := b.userRegistered
	b.mu.RUnlock()
	for _, fn := range handlers {
		fn(ctx, ev)
	}
}
