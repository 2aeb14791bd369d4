package concurrency

import (
	"context"
	"fmt"
	"time"

	"auction-engine/internal/domain"
	"auction-engine/pkg/logger"
)

// Kind is the closed set of concurrency-control strategies. New strategies
// are added here and in the kindNames table, which keeps the mapping
// exhaustive at compile time instead of hiding behind string lookups.
type Kind int

const (
	KindMutex Kind = iota
	KindTryLock
	KindSemaphore
	KindOptimistic
	KindPessimistic
	KindDistributed
)

var kindNames = map[Kind]string{
	KindMutex:       "mutex",
	KindTryLock:     "trylock",
	KindSemaphore:   "semaphore",
	KindOptimistic:  "optimistic",
	KindPessimistic: "pessimistic",
	KindDistributed: "distributed",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// ParseKind maps a configured strategy name to its Kind. Names exist only
// at the configuration boundary.
func ParseKind(name string) (Kind, error) {
	for kind, n := range kindNames {
		if n == name {
			return kind, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", domain.ErrUnknownStrategy, name)
}

// Strategy arbitrates concurrent bid attempts on a per-auction basis. For
// a fixed auction no two PlaceBid invocations may be inside the domain
// critical section at once, and an admitted bid must be durably visible to
// the next admitted attempt before its admissibility check runs.
type Strategy interface {
	Kind() Kind
	PlaceBid(ctx context.Context, auctionID string, bidder *domain.User, amount domain.Money) (*domain.Bid, error)
}

// Deps are the collaborators every strategy shares. The strategies decide
// how access is serialized; everything else about admission is common.
type Deps struct {
	Auctions domain.AuctionRepository
	Events   domain.EventSink
	Log      logger.Logger

	// Extender, when set, is offered every admitted bid so an auction
	// closing within ExtensionWindow gets its end pushed out.
	Extender        domain.AuctionExtender
	ExtensionWindow time.Duration
}

// admit is the shared admission path: read a fresh snapshot (inside the
// caller's guard, when there is one), run the domain critical section,
// commit auction and bid in one versioned write. The atomic versioned
// commit keeps a mid-run strategy swap safe, and it is load-bearing for
// the optimistic path: a reader must never see the bumped version without
// the bid, or it would pass the admissibility check at the same amount.
func (d Deps) admit(ctx context.Context, auctionID string, bidder *domain.User, amount domain.Money) (*domain.Bid, error) {
	auction, err := d.Auctions.Get(ctx, auctionID)
	if err != nil {
		return nil, err
	}

	bid, err := auction.PlaceBid(bidder, amount, time.Now())
	if err != nil {
		return nil, err
	}

	if err := d.Auctions.SaveVersionedWithBid(ctx, auction, bid); err != nil {
		return nil, err
	}

	d.afterAdmit(ctx, bid)
	return bid, nil
}

// afterAdmit runs the side effects of a successful admission: the event
// and, near the end time, the anti-sniping extension. Failures here never
// unwind the admitted bid.
func (d Deps) afterAdmit(ctx context.Context, bid *domain.Bid) {
	d.emitBidPlaced(ctx, bid)

	if d.Extender == nil || d.ExtensionWindow <= 0 {
		return
	}
	if err := d.Extender.ExtendIfClosing(ctx, bid.AuctionID, d.ExtensionWindow); err != nil {
		d.Log.Error("Failed to extend closing auction", "auction_id", bid.AuctionID, "error", err)
	}
}

func (d Deps) emitBidPlaced(ctx context.Context, bid *domain.Bid) {
	if d.Events == nil {
		return
	}
	event := &domain.Event{
		Type:      domain.EventBidPlaced,
		AuctionID: bid.AuctionID,
		UserID:    bid.BidderID,
		Amount:    bid.Amount.Amount(),
		Timestamp: bid.PlacedAt,
	}
	if err := d.Events.Publish(ctx, event); err != nil {
		d.Log.Error("Failed to publish bid event", "auction_id", bid.AuctionID, "error", err)
	}
}
