package concurrency

import (
	"context"

	"auction-engine/internal/domain"
)

// MutexStrategy serializes admissions with one blocking lock per auction
// identifier. It never reports a lock conflict: callers wait as long as it
// takes. Adequate only for single-instance deployments.
type MutexStrategy struct {
	deps  Deps
	locks *lockTable
}

func NewMutexStrategy(deps Deps) *MutexStrategy {
	return &MutexStrategy{
		deps:  deps,
		locks: newLockTable(),
	}
}

func (s *MutexStrategy) Kind() Kind {
	return KindMutex
}

func (s *MutexStrategy) PlaceBid(ctx context.Context, auctionID string, bidder *domain.User, amount domain.Money) (*domain.Bid, error) {
	release := s.locks.Lock(auctionID)
	defer release()

	return s.deps.admit(ctx, auctionID, bidder, amount)
}
