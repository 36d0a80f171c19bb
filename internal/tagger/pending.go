package tagger

import "sync"

// Continuation receives the outcome of a lookup. On failure tags is nil.
type Continuation func(tags TagList, err error)

// PendingTracker records which keys have a request in flight and who is waiting on them.
type PendingTracker struct {
	mu      sync.Mutex
	waiters map[LookupKey][]Continuation
}

func NewPendingTracker() *PendingTracker {
	return &PendingTracker{waiters: make(map[LookupKey][]Continuation)}
}

// IsPending reports whether a request for key is in flight.
func (p *PendingTracker) IsPending(key LookupKey) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.waiters[key]
	return ok
}

// Register marks key as in flight and reports true when the caller is the
// first, in which case it must issue the request and deliver to cont itself.
// Otherwise cont is queued until [PendingTracker.Resolve].
func (p *PendingTracker) Register(key LookupKey, cont Continuation) (first bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if queued, ok := p.waiters[key]; ok {
		p.waiters[key] = append(queued, cont)
		return false
	}
	p.waiters[key] = nil
	return true
}

// Resolve clears key and returns its queued continuations in registration order.
func (p *PendingTracker) Resolve(key LookupKey) []Continuation {
	p.mu.Lock()
	defer p.mu.Unlock()

	queued := p.waiters[key]
	delete(p.waiters, key)
	return queued
}

// Len reports the number of keys in flight.
func (p *PendingTracker) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.waiters)
}
