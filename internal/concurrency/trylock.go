package concurrency

import (
	"context"
	"fmt"
	"time"

	"auction-engine/internal/domain"
)

// TryLockStrategy is the bounded-wait variant of MutexStrategy: it waits
// up to the configured timeout for the per-auction lock and fails closed
// with a conflict instead of queueing forever.
type TryLockStrategy struct {
	deps    Deps
	locks   *lockTable
	timeout time.Duration
}

func NewTryLockStrategy(deps Deps, timeout time.Duration) *TryLockStrategy {
	return &TryLockStrategy{
		deps:    deps,
		locks:   newLockTable(),
		timeout: timeout,
	}
}

func (s *TryLockStrategy) Kind() Kind {
	return KindTryLock
}

func (s *TryLockStrategy) PlaceBid(ctx context.Context, auctionID string, bidder *domain.User, amount domain.Money) (*domain.Bid, error) {
	release, ok := s.locks.TryLock(auctionID, s.timeout)
	if !ok {
		return nil, fmt.Errorf("%w: auction %s after %s", domain.ErrLockTimeout, auctionID, s.timeout)
	}
	defer release()

	return s.deps.admit(ctx, auctionID, bidder, amount)
}
