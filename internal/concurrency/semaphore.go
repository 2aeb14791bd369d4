package concurrency

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"auction-engine/internal/domain"
)

// SemaphoreStrategy guards each auction with a binary weighted semaphore
// and a bounded-wait acquire. Same protection scope as TryLockStrategy
// with a different mechanism and, by default, a more patient timeout.
type SemaphoreStrategy struct {
	deps    Deps
	timeout time.Duration

	mu   sync.Mutex
	sems map[string]*semEntry
}

type semEntry struct {
	refs int
	sem  *semaphore.Weighted
}

func NewSemaphoreStrategy(deps Deps, timeout time.Duration) *SemaphoreStrategy {
	return &SemaphoreStrategy{
		deps:    deps,
		timeout: timeout,
		sems:    make(map[string]*semEntry),
	}
}

func (s *SemaphoreStrategy) Kind() Kind {
	return KindSemaphore
}

func (s *SemaphoreStrategy) PlaceBid(ctx context.Context, auctionID string, bidder *domain.User, amount domain.Money) (*domain.Bid, error) {
	entry := s.checkout(auctionID)

	acquireCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := entry.sem.Acquire(acquireCtx, 1); err != nil {
		s.checkin(auctionID)
		return nil, fmt.Errorf("%w: auction %s after %s", domain.ErrLockTimeout, auctionID, s.timeout)
	}
	defer func() {
		entry.sem.Release(1)
		s.checkin(auctionID)
	}()

	return s.deps.admit(ctx, auctionID, bidder, amount)
}

func (s *SemaphoreStrategy) checkout(id string) *semEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.sems[id]
	if !ok {
		entry = &semEntry{sem: semaphore.NewWeighted(1)}
		s.sems[id] = entry
	}
	entry.refs++
	return entry
}

func (s *SemaphoreStrategy) checkin(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.sems[id]
	if !ok {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(s.sems, id)
	}
}
