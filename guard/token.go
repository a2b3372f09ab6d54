// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package guard

import (
	"context"
	"sync"
)

// processToken is the single token shared by every Guard in the process. It starts available.
var processToken = newToken()

// token is a mutual-exclusion token that is handed to waiters in the order they asked for it.
type token struct {
	mu     sync.Mutex
	holder string
	queue  []*waiter
}

type waiter struct {
	id    string
	ready chan struct{}
}

func newToken() *token {
	return &token{}
}

// tryAcquire claims the token for id if nobody holds it and nobody is queued for it. On failure it returns the
// current holder.
func (t *token) tryAcquire(id string) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.holder == "" && len(t.queue) == 0 {
		t.holder = id
		return "", true
	}
	return t.holder, false
}

// acquire claims the token for id, joining the back of the queue if it is taken. If ctx ends first, id leaves the
// queue and the context error is returned together with the holder at that moment.
func (t *token) acquire(ctx context.Context, id string) (string, error) {
	t.mu.Lock()
	if t.holder == "" && len(t.queue) == 0 {
		t.holder = id
		t.mu.Unlock()
		return "", nil
	}
	w := &waiter{id: id, ready: make(chan struct{})}
	t.queue = append(t.queue, w)
	t.mu.Unlock()

	select {
	case <-w.ready:
		return "", nil
	case <-ctx.Done():
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	select {
	case <-w.ready:
		// The token was handed over while ctx ended. Pass it on rather than keep a claim the caller will not use.
		t.handoff()
	default:
		t.remove(w)
	}
	return t.holder, ctx.Err()
}

// release gives the token up on behalf of id. Releasing a token that id does not hold does nothing.
func (t *token) release(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.holder != id {
		return
	}
	t.handoff()
}

// handoff passes the token to the head of the queue, or marks it available. t.mu must be held.
func (t *token) handoff() {
	if len(t.queue) == 0 {
		t.holder = ""
		return
	}
	next := t.queue[0]
	t.queue[0] = nil
	t.queue = t.queue[1:]
	t.holder = next.id
	close(next.ready)
}

// remove drops w from the queue. t.mu must be held.
func (t *token) remove(w *waiter) {
	for i, q := range t.queue {
		if q == w {
			t.queue = append(t.queue[:i], t.queue[i+1:]...)
			return
		}
	}
}

// current returns the holder, or "" when the token is available.
func (t *token) current() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.holder
}

// waiting returns the number of queued claims.
func (t *token) waiting() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.queue)
}
