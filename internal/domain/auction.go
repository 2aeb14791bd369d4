package domain

import (
	"fmt"
	"time"

	"auction-engine/pkg/utils"
)

type AuctionStatus int

const (
	AuctionNotStarted AuctionStatus = iota
	AuctionActive
	AuctionEnded
	AuctionCanceled
)

func (s AuctionStatus) String() string {
	switch s {
	case AuctionNotStarted:
		return "not_started"
	case AuctionActive:
		return "active"
	case AuctionEnded:
		return "ended"
	case AuctionCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// MinAuctionDuration is the default minimum window between start and end.
const MinAuctionDuration = time.Hour

// AuctionParams carries the caller-supplied part of a new auction.
type AuctionParams struct {
	InitialPrice Money
	MinIncrement Money
	StartTime    time.Time
	EndTime      time.Time
}

// Auction is the contended resource. The bid collection is owned
// exclusively by the aggregate; nothing appends to it except PlaceBid, and
// PlaceBid must only ever run under a concurrency strategy's guard.
type Auction struct {
	ID           string
	Owner        *User
	Product      *Product
	InitialPrice Money
	MinIncrement Money
	StartTime    time.Time
	EndTime      time.Time
	Status       AuctionStatus
	Bids         []*Bid
	WinnerID     string

	// Version is the storage CAS stamp; incremented by the repository on
	// every successful versioned save.
	Version int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewAuction validates the construction-time invariants: the price floor,
// a positive bid increment, and the minimum auction window. Ownership of
// the product is checked at registration, not here.
func NewAuction(owner *User, product *Product, params AuctionParams, floor Money) (*Auction, error) {
	if owner == nil || product == nil {
		return nil, fmt.Errorf("%w: missing owner or product", ErrInvalidBid)
	}
	if params.InitialPrice.LessThan(floor) {
		return nil, fmt.Errorf("%w: %s < %s", ErrPriceBelowFloor, params.InitialPrice, floor)
	}
	if params.MinIncrement.IsZero() {
		return nil, ErrInvalidMinIncrement
	}
	if params.EndTime.Before(params.StartTime.Add(MinAuctionDuration)) {
		return nil, fmt.Errorf("%w: need at least %s", ErrInvalidAuctionWindow, MinAuctionDuration)
	}

	now := time.Now()
	return &Auction{
		ID:           utils.GenerateID("auction"),
		Owner:        owner,
		Product:      product,
		InitialPrice: params.InitialPrice,
		MinIncrement: params.MinIncrement,
		StartTime:    params.StartTime,
		EndTime:      params.EndTime,
		Status:       AuctionNotStarted,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Start transitions NOT_STARTED -> ACTIVE once now has reached the start
// time. Before that instant it is a no-op and reports false. Calling it
// again after the transition fails the transition guard.
func (a *Auction) Start(now time.Time) (bool, error) {
	if now.Before(a.StartTime) {
		return false, nil
	}
	if a.Status != AuctionNotStarted {
		return false, fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, a.Status, AuctionActive)
	}
	a.Status = AuctionActive
	a.UpdatedAt = now
	return true, nil
}

// End transitions ACTIVE -> ENDED once now has reached the end time and
// returns the winning bid, if any. With a winner the product is marked
// sold. Before the end time it is a no-op and reports false.
func (a *Auction) End(now time.Time) (*Bid, bool, error) {
	if now.Before(a.EndTime) {
		return nil, false, nil
	}
	if a.Status != AuctionActive {
		return nil, false, fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, a.Status, AuctionEnded)
	}
	a.Status = AuctionEnded
	a.UpdatedAt = now

	winner := a.HighestBid()
	if winner != nil {
		a.WinnerID = winner.BidderID
		a.Product.Status = ProductSold
	}
	return winner, true, nil
}

// Cancel transitions NOT_STARTED -> CANCELED. Only the owner may cancel,
// and only before the auction starts.
func (a *Auction) Cancel(requester *User) error {
	if requester == nil || requester.ID != a.Owner.ID {
		return ErrUnauthorizedCancel
	}
	if a.Status != AuctionNotStarted {
		return fmt.Errorf("%w: status is %s", ErrCannotCancelActive, a.Status)
	}
	a.Status = AuctionCanceled
	a.UpdatedAt = time.Now()
	return nil
}

// PlaceBid validates and records a bid. This is the critical section every
// concurrency strategy serializes around: the caller must hold the active
// strategy's guard for this auction.
//
// A bid equal to the recorded highest means another bidder already won the
// race at that amount, so it is reported as a conflict rather than a
// validation failure.
func (a *Auction) PlaceBid(bidder *User, amount Money, now time.Time) (*Bid, error) {
	if a.Status != AuctionActive {
		return nil, fmt.Errorf("%w: auction is %s", ErrInvalidBid, a.Status)
	}
	if bidder == nil {
		return nil, fmt.Errorf("%w: missing bidder", ErrInvalidBid)
	}
	if bidder.ID == a.Owner.ID {
		return nil, fmt.Errorf("%w: owner cannot bid on own auction", ErrInvalidBid)
	}

	if highest := a.HighestBid(); highest == nil {
		if amount.LessThan(a.InitialPrice) {
			return nil, fmt.Errorf("%w: %s < initial price %s", ErrInvalidBidAmount, amount, a.InitialPrice)
		}
	} else {
		if amount.Cmp(highest.Amount) == 0 {
			return nil, fmt.Errorf("%w: %s equals current highest", ErrBidConflict, amount)
		}
		if floor := highest.Amount.Add(a.MinIncrement); amount.LessThan(floor) {
			return nil, fmt.Errorf("%w: %s < required %s", ErrInvalidBidAmount, amount, floor)
		}
	}

	bid := &Bid{
		ID:        utils.GenerateID("bid"),
		AuctionID: a.ID,
		BidderID:  bidder.ID,
		Amount:    amount,
		PlacedAt:  now,
	}
	a.Bids = append(a.Bids, bid)
	a.UpdatedAt = now
	return bid, nil
}

// HighestBid returns the current highest bid, or nil when no bid has been
// admitted. Bids are appended in strictly increasing amount order, so the
// last one is the highest.
func (a *Auction) HighestBid() *Bid {
	if len(a.Bids) == 0 {
		return nil
	}
	return a.Bids[len(a.Bids)-1]
}

// Extend pushes the end time out, never in.
func (a *Auction) Extend(until time.Time) bool {
	if !until.After(a.EndTime) {
		return false
	}
	a.EndTime = until
	a.UpdatedAt = time.Now()
	return true
}

// Clone returns an isolated snapshot of the aggregate. Bids are immutable
// and shared; the product is copied because End mutates its status.
func (a *Auction) Clone() *Auction {
	clone := *a
	clone.Product = a.Product.clone()
	clone.Bids = make([]*Bid, len(a.Bids))
	copy(clone.Bids, a.Bids)
	return &clone
}
