package domain

import "time"

// Bid is immutable once created. A rejected bid attempt never produces a
// Bid at all.
type Bid struct {
	ID        string
	AuctionID string
	BidderID  string
	Amount    Money
	PlacedAt  time.Time
}
