package domain

import (
	"context"
	"time"
)

type EventType string

const (
	EventAuctionStarted  EventType = "auction_started"
	EventAuctionEnded    EventType = "auction_ended"
	EventAuctionExtended EventType = "auction_extended"
	EventBidPlaced       EventType = "bid_placed"
)

// Event is what the engine emits on transitions and admitted bids. For
// auction_ended events UserID carries the winner, if any.
type Event struct {
	Type      EventType `json:"type"`
	AuctionID string    `json:"auction_id"`
	UserID    string    `json:"user_id,omitempty"`
	Amount    int64     `json:"amount,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// EventSink receives events for downstream delivery. The engine only
// emits; it never delivers to clients itself.
type EventSink interface {
	Publish(ctx context.Context, event *Event) error
}
