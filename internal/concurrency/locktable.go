package concurrency

import (
	"sync"
	"time"
)

// lockTable hands out one lock per auction identifier. Entries are
// reference-counted and removed when the last user releases, so the map
// stays bounded by the number of auctions under contention right now, not
// by every auction ever seen.
//
// Locks are capacity-1 channels rather than sync.Mutex because acquisition
// has to support a bounded wait.
type lockTable struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
}

type lockEntry struct {
	refs int
	ch   chan struct{}
}

func newLockTable() *lockTable {
	return &lockTable{entries: make(map[string]*lockEntry)}
}

func (t *lockTable) checkout(id string) *lockEntry {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry, ok := t.entries[id]
	if !ok {
		entry = &lockEntry{ch: make(chan struct{}, 1)}
		t.entries[id] = entry
	}
	entry.refs++
	return entry
}

func (t *lockTable) checkin(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry, ok := t.entries[id]
	if !ok {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(t.entries, id)
	}
}

// Lock blocks until the per-auction lock is free and returns the release
// function.
func (t *lockTable) Lock(id string) func() {
	entry := t.checkout(id)
	entry.ch <- struct{}{}
	return func() {
		<-entry.ch
		t.checkin(id)
	}
}

// TryLock waits up to timeout for the per-auction lock. On timeout it
// returns ok=false with nothing held.
func (t *lockTable) TryLock(id string, timeout time.Duration) (func(), bool) {
	entry := t.checkout(id)

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case entry.ch <- struct{}{}:
		return func() {
			<-entry.ch
			t.checkin(id)
		}, true
	case <-timer.C:
		t.checkin(id)
		return nil, false
	}
}

// size reports how many auctions currently have a lock entry.
func (t *lockTable) size() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}
