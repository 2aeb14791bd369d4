package concurrency

import (
	"context"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"

	"auction-engine/internal/domain"
	"auction-engine/pkg/logger"
)

// Outcome classes recorded per attempt.
const (
	OutcomeAdmitted       = "admitted"
	OutcomeConflict       = "conflict"
	OutcomeRejected       = "rejected"
	OutcomeInfrastructure = "infrastructure"
)

// statsCacheSize bounds the per-auction stats map; cold auctions age out.
const statsCacheSize = 1024

// AuctionStats aggregates bid attempts against one auction.
type AuctionStats struct {
	Attempts               int64
	Admitted               int64
	Conflicts              int64
	DomainRejections       int64
	InfrastructureFailures int64
	TotalElapsed           time.Duration
	LastElapsed            time.Duration
}

// InstrumentedStrategy wraps a strategy with latency and outcome
// recording. It is side-effect-only: the wrapped call's result passes
// through untouched, and recording runs on every path, error or not.
type InstrumentedStrategy struct {
	next Strategy
	log  logger.Logger

	mu    sync.Mutex
	stats *lru.Cache
}

func Instrument(next Strategy, log logger.Logger) *InstrumentedStrategy {
	cache, err := lru.New(statsCacheSize)
	if err != nil {
		panic(err) // only fails on a non-positive size
	}
	return &InstrumentedStrategy{
		next:  next,
		log:   log,
		stats: cache,
	}
}

func (s *InstrumentedStrategy) Kind() Kind {
	return s.next.Kind()
}

func (s *InstrumentedStrategy) PlaceBid(ctx context.Context, auctionID string, bidder *domain.User, amount domain.Money) (bid *domain.Bid, err error) {
	start := time.Now()
	defer func() {
		elapsed := time.Since(start)
		outcome := classify(err)
		s.record(auctionID, outcome, elapsed)

		if err != nil {
			s.log.Debug("Bid attempt finished",
				"strategy", s.next.Kind().String(),
				"auction_id", auctionID,
				"outcome", outcome,
				"elapsed", elapsed,
				"error", err)
			return
		}
		s.log.Debug("Bid attempt finished",
			"strategy", s.next.Kind().String(),
			"auction_id", auctionID,
			"outcome", outcome,
			"elapsed", elapsed,
			"amount", amount.Amount())
	}()

	return s.next.PlaceBid(ctx, auctionID, bidder, amount)
}

// Stats returns the aggregated counters for one auction, if still cached.
func (s *InstrumentedStrategy) Stats(auctionID string) (AuctionStats, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	value, ok := s.stats.Get(auctionID)
	if !ok {
		return AuctionStats{}, false
	}
	return *value.(*AuctionStats), true
}

func (s *InstrumentedStrategy) record(auctionID, outcome string, elapsed time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var entry *AuctionStats
	if value, ok := s.stats.Get(auctionID); ok {
		entry = value.(*AuctionStats)
	} else {
		entry = &AuctionStats{}
		s.stats.Add(auctionID, entry)
	}

	entry.Attempts++
	entry.TotalElapsed += elapsed
	entry.LastElapsed = elapsed
	switch outcome {
	case OutcomeAdmitted:
		entry.Admitted++
	case OutcomeConflict:
		entry.Conflicts++
	case OutcomeInfrastructure:
		entry.InfrastructureFailures++
	default:
		entry.DomainRejections++
	}
}

func classify(err error) string {
	switch {
	case err == nil:
		return OutcomeAdmitted
	case domain.IsConflict(err):
		return OutcomeConflict
	case domain.IsInfrastructure(err):
		return OutcomeInfrastructure
	default:
		return OutcomeRejected
	}
}
