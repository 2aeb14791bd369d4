package memory

import (
	"context"
	"fmt"
	"sync"

	"auction-engine/internal/domain"
)

// Store is an in-process implementation of the auction and bid
// repositories with the same contract as the MySQL adapter: snapshot
// reads, versioned conditional writes, and record-locked admission. It
// backs single-instance deployments and the concurrency tests.
type Store struct {
	mu       sync.RWMutex
	auctions map[string]*domain.Auction
	bids     map[string][]*domain.Bid

	recordMu sync.Mutex
	records  map[string]*sync.Mutex
}

func NewStore() *Store {
	return &Store{
		auctions: make(map[string]*domain.Auction),
		bids:     make(map[string][]*domain.Bid),
		records:  make(map[string]*sync.Mutex),
	}
}

func (s *Store) Create(ctx context.Context, auction *domain.Auction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.auctions[auction.ID]; exists {
		return fmt.Errorf("auction %s already exists", auction.ID)
	}
	s.auctions[auction.ID] = auction.Clone()
	return nil
}

// Get returns an isolated snapshot; mutating it does not touch the store
// until a save commits.
func (s *Store) Get(ctx context.Context, auctionID string) (*domain.Auction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.auctions[auctionID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrAuctionNotFound, auctionID)
	}
	return stored.Clone(), nil
}

// SaveVersioned commits the snapshot only if nobody committed since it was
// read. The per-record mutex mirrors the row lock a database would take
// for the duration of the write.
func (s *Store) SaveVersioned(ctx context.Context, auction *domain.Auction) error {
	record := s.record(auction.ID)
	record.Lock()
	defer record.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.auctions[auction.ID]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrAuctionNotFound, auction.ID)
	}
	if stored.Version != auction.Version {
		return fmt.Errorf("%w: auction %s at version %d, read at %d",
			domain.ErrVersionConflict, auction.ID, stored.Version, auction.Version)
	}

	committed := auction.Clone()
	committed.Version = auction.Version + 1
	s.auctions[auction.ID] = committed
	auction.Version = committed.Version
	return nil
}

// SaveVersionedWithBid commits the snapshot and the admitted bid under
// one lock, so a reader never sees the bumped version without the bid.
func (s *Store) SaveVersionedWithBid(ctx context.Context, auction *domain.Auction, bid *domain.Bid) error {
	record := s.record(auction.ID)
	record.Lock()
	defer record.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.auctions[auction.ID]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrAuctionNotFound, auction.ID)
	}
	if stored.Version != auction.Version {
		return fmt.Errorf("%w: auction %s at version %d, read at %d",
			domain.ErrVersionConflict, auction.ID, stored.Version, auction.Version)
	}

	committed := auction.Clone()
	committed.Version = auction.Version + 1
	s.auctions[auction.ID] = committed
	s.bids[auction.ID] = append(s.bids[auction.ID], bid)
	auction.Version = committed.Version
	return nil
}

// PlaceBidLocked holds the record lock for the whole admission, so no
// other writer can interleave between read and commit.
func (s *Store) PlaceBidLocked(ctx context.Context, auctionID string, admit func(*domain.Auction) (*domain.Bid, error)) (*domain.Bid, error) {
	record := s.record(auctionID)
	record.Lock()
	defer record.Unlock()

	s.mu.RLock()
	stored, ok := s.auctions[auctionID]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrAuctionNotFound, auctionID)
	}

	work := stored.Clone()
	bid, err := admit(work)
	if err != nil {
		return nil, err
	}

	work.Version = stored.Version + 1
	s.mu.Lock()
	s.auctions[auctionID] = work
	s.bids[auctionID] = append(s.bids[auctionID], bid)
	s.mu.Unlock()
	return bid, nil
}

func (s *Store) ListByAuction(ctx context.Context, auctionID string) ([]*domain.Bid, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bids := s.bids[auctionID]
	out := make([]*domain.Bid, len(bids))
	copy(out, bids)
	return out, nil
}

func (s *Store) record(auctionID string) *sync.Mutex {
	s.recordMu.Lock()
	defer s.recordMu.Unlock()

	record, ok := s.records[auctionID]
	if !ok {
		record = &sync.Mutex{}
		s.records[auctionID] = record
	}
	return record
}
