package concurrency

import (
	"context"
	"time"

	"auction-engine/internal/domain"
)

// PessimisticStrategy delegates exclusion to the storage layer: the
// repository takes an exclusive record lock on the auction row and runs
// the whole admission, bid append included, inside one transaction. A lock
// the storage engine cannot grant within its timeout comes back as a
// conflict.
type PessimisticStrategy struct {
	deps Deps
}

func NewPessimisticStrategy(deps Deps) *PessimisticStrategy {
	return &PessimisticStrategy{deps: deps}
}

func (s *PessimisticStrategy) Kind() Kind {
	return KindPessimistic
}

func (s *PessimisticStrategy) PlaceBid(ctx context.Context, auctionID string, bidder *domain.User, amount domain.Money) (*domain.Bid, error) {
	bid, err := s.deps.Auctions.PlaceBidLocked(ctx, auctionID, func(auction *domain.Auction) (*domain.Bid, error) {
		return auction.PlaceBid(bidder, amount, time.Now())
	})
	if err != nil {
		return nil, err
	}

	s.deps.afterAdmit(ctx, bid)
	return bid, nil
}
