package concurrency

import (
	"context"

	"auction-engine/internal/domain"
)

// OptimisticStrategy holds no lock at all: it reads a snapshot, runs the
// admission logic against it, and commits with a conditional write keyed
// on the version read. A competing writer that committed first turns the
// save into ErrVersionConflict, which is surfaced to the caller as-is.
// One attempt, no internal retry; retry policy belongs to the caller.
type OptimisticStrategy struct {
	deps Deps
}

func NewOptimisticStrategy(deps Deps) *OptimisticStrategy {
	return &OptimisticStrategy{deps: deps}
}

func (s *OptimisticStrategy) Kind() Kind {
	return KindOptimistic
}

func (s *OptimisticStrategy) PlaceBid(ctx context.Context, auctionID string, bidder *domain.User, amount domain.Money) (*domain.Bid, error) {
	return s.deps.admit(ctx, auctionID, bidder, amount)
}
