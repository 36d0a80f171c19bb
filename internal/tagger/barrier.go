package tagger

import "sync"

// barrier collects one result per scope and fires once when all are in.
type barrier struct {
	mu     sync.Mutex
	tags   [numScopes]TagList
	errs   [numScopes]error
	filled [numScopes]bool
	count  int
	fired  bool
	fire   func(tags [numScopes]TagList, errs [numScopes]error)
}

func newBarrier(fire func(tags [numScopes]TagList, errs [numScopes]error)) *barrier {
	return &barrier{fire: fire}
}

// set fills the slot for s. A failed lookup fills its slot with an empty list.
// The call that fills the last slot runs fire, outside the lock. Repeated
// results for a filled slot are dropped and reported as false.
func (b *barrier) set(s Scope, tags TagList, err error) bool {
	b.mu.Lock()
	if b.filled[s] {
		b.mu.Unlock()
		return false
	}
	if tags == nil {
		tags = TagList{}
	}
	b.tags[s], b.errs[s], b.filled[s] = tags, err, true
	b.count++

	if b.count < numScopes || b.fired {
		b.mu.Unlock()
		return true
	}
	b.fired = true
	tagsCopy, errsCopy := b.tags, b.errs
	b.mu.Unlock()

	b.fire(tagsCopy, errsCopy)
	return true
}

// pending reports how many slots are still empty.
func (b *barrier) pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return numScopes - b.count
}
