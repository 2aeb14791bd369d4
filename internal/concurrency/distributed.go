package concurrency

import (
	"context"
	"time"

	"auction-engine/internal/domain"
)

// DistributedStrategy takes a lease-based lock in a shared out-of-process
// store, keyed by auction identifier, so admissions are serialized across
// every instance of the engine. The lease guarantees eventual release even
// if a holder crashes; it must be configured comfortably above the
// expected critical-section duration, because a critical section that
// outlives its lease can theoretically race the next holder. The handle's
// fencing token is there for commit layers that want to close that gap.
type DistributedStrategy struct {
	deps   Deps
	locker domain.DistributedLocker
	lease  time.Duration
	wait   time.Duration
}

func NewDistributedStrategy(deps Deps, locker domain.DistributedLocker, lease, wait time.Duration) *DistributedStrategy {
	return &DistributedStrategy{
		deps:   deps,
		locker: locker,
		lease:  lease,
		wait:   wait,
	}
}

func (s *DistributedStrategy) Kind() Kind {
	return KindDistributed
}

func (s *DistributedStrategy) PlaceBid(ctx context.Context, auctionID string, bidder *domain.User, amount domain.Money) (*domain.Bid, error) {
	handle, err := s.locker.Acquire(ctx, auctionID, s.lease, s.wait)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := s.locker.Release(ctx, handle); err != nil {
			// The lease expires on its own; log and move on.
			s.deps.Log.Warn("Failed to release distributed lock",
				"auction_id", auctionID, "fencing_token", handle.FencingToken, "error", err)
		}
	}()

	return s.deps.admit(ctx, auctionID, bidder, amount)
}
