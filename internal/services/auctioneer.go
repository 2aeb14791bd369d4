package services

import (
	"context"
	"time"

	"auction-engine/internal/domain"
	"auction-engine/pkg/logger"
)

// Auctioneer implements the strategy-independent domain operations:
// registration, start/end transitions, cancellation. It assumes whoever
// calls it at a contended instant already holds the required exclusion;
// it never locks anything itself.
type Auctioneer struct {
	auctions  domain.AuctionRepository
	bids      domain.BidRepository
	events    domain.EventSink
	scheduler domain.AuctionScheduler
	floor     domain.Money
	log       logger.Logger
}

func NewAuctioneer(
	auctions domain.AuctionRepository,
	bids domain.BidRepository,
	events domain.EventSink,
	floor domain.Money,
	log logger.Logger,
) *Auctioneer {
	return &Auctioneer{
		auctions: auctions,
		bids:     bids,
		events:   events,
		floor:    floor,
		log:      log,
	}
}

// SetScheduler breaks the construction cycle: the scheduler needs the
// auctioneer to execute transitions, the auctioneer needs the scheduler to
// register jobs.
func (a *Auctioneer) SetScheduler(scheduler domain.AuctionScheduler) {
	a.scheduler = scheduler
}

// RegisterAuction validates ownership, persists the new auction in
// NOT_STARTED, and schedules its start and end transitions.
func (a *Auctioneer) RegisterAuction(ctx context.Context, owner *domain.User, product *domain.Product, params domain.AuctionParams) (*domain.Auction, error) {
	if product.OwnerID != owner.ID {
		return nil, domain.ErrUnauthorizedOwner
	}
	if product.Status == domain.ProductSold {
		return nil, domain.ErrAlreadySold
	}

	auction, err := domain.NewAuction(owner, product, params, a.floor)
	if err != nil {
		return nil, err
	}

	if err := a.auctions.Create(ctx, auction); err != nil {
		return nil, err
	}

	if a.scheduler != nil {
		if err := a.scheduler.ScheduleAuctionStart(ctx, auction.ID, auction.StartTime); err != nil {
			return nil, err
		}
		if err := a.scheduler.ScheduleAuctionEnd(ctx, auction.ID, auction.EndTime); err != nil {
			return nil, err
		}
	}

	a.log.Info("Auction registered",
		"auction_id", auction.ID, "owner_id", owner.ID, "product_id", product.ID,
		"start_time", auction.StartTime, "end_time", auction.EndTime)
	return auction, nil
}

// StartAuction transitions to ACTIVE once now has reached the start time.
// Calls before that instant are no-ops, so the scheduler may fire early or
// repeatedly without harm.
func (a *Auctioneer) StartAuction(ctx context.Context, auctionID string, now time.Time) error {
	auction, err := a.auctions.Get(ctx, auctionID)
	if err != nil {
		return err
	}

	started, err := auction.Start(now)
	if err != nil {
		return err
	}
	if !started {
		a.log.Debug("Start not due yet", "auction_id", auctionID, "start_time", auction.StartTime)
		return nil
	}

	if err := a.auctions.SaveVersioned(ctx, auction); err != nil {
		return err
	}

	a.emit(ctx, &domain.Event{
		Type:      domain.EventAuctionStarted,
		AuctionID: auction.ID,
		Timestamp: now,
	})
	a.log.Info("Auction started", "auction_id", auction.ID)
	return nil
}

// EndAuction transitions to ENDED once now has reached the end time. With
// at least one admitted bid the product is sold to the highest bidder and
// the ended event carries the winner.
func (a *Auctioneer) EndAuction(ctx context.Context, auctionID string, now time.Time) error {
	auction, err := a.auctions.Get(ctx, auctionID)
	if err != nil {
		return err
	}

	winner, ended, err := auction.End(now)
	if err != nil {
		return err
	}
	if !ended {
		a.log.Debug("End not due yet", "auction_id", auctionID, "end_time", auction.EndTime)
		return nil
	}

	if err := a.auctions.SaveVersioned(ctx, auction); err != nil {
		return err
	}

	event := &domain.Event{
		Type:      domain.EventAuctionEnded,
		AuctionID: auction.ID,
		Timestamp: now,
	}
	if winner != nil {
		event.UserID = winner.BidderID
		event.Amount = winner.Amount.Amount()
	}
	a.emit(ctx, event)

	a.log.Info("Auction ended",
		"auction_id", auction.ID, "winner_id", auction.WinnerID, "bids", len(auction.Bids))
	return nil
}

// CancelAuction is only available to the owner, and only before the
// auction starts. Pending transition jobs are dropped.
func (a *Auctioneer) CancelAuction(ctx context.Context, auctionID string, requester *domain.User) error {
	auction, err := a.auctions.Get(ctx, auctionID)
	if err != nil {
		return err
	}

	if err := auction.Cancel(requester); err != nil {
		return err
	}

	if err := a.auctions.SaveVersioned(ctx, auction); err != nil {
		return err
	}

	if a.scheduler != nil {
		if err := a.scheduler.CancelSchedule(ctx, auctionID); err != nil {
			a.log.Error("Failed to cancel scheduled jobs", "auction_id", auctionID, "error", err)
		}
	}

	a.log.Info("Auction cancelled", "auction_id", auctionID)
	return nil
}

// ExtendIfClosing pushes the end time out by window when a live auction is
// about to close. Called after a successful admission to blunt sniping.
func (a *Auctioneer) ExtendIfClosing(ctx context.Context, auctionID string, window time.Duration) error {
	auction, err := a.auctions.Get(ctx, auctionID)
	if err != nil {
		return err
	}
	if auction.Status != domain.AuctionActive {
		return nil
	}

	now := time.Now()
	remaining := auction.EndTime.Sub(now)
	if remaining <= 0 || remaining > window {
		return nil
	}

	newEnd := now.Add(window)
	if !auction.Extend(newEnd) {
		return nil
	}

	if err := a.auctions.SaveVersioned(ctx, auction); err != nil {
		return err
	}

	if a.scheduler != nil {
		if err := a.scheduler.RescheduleAuctionEnd(ctx, auctionID, newEnd); err != nil {
			return err
		}
	}

	a.emit(ctx, &domain.Event{
		Type:      domain.EventAuctionExtended,
		AuctionID: auctionID,
		Timestamp: now,
	})
	a.log.Info("Auction extended", "auction_id", auctionID, "new_end_time", newEnd)
	return nil
}

// Bids returns the admitted bid history for an auction.
func (a *Auctioneer) Bids(ctx context.Context, auctionID string) ([]*domain.Bid, error) {
	return a.bids.ListByAuction(ctx, auctionID)
}

func (a *Auctioneer) emit(ctx context.Context, event *domain.Event) {
	if a.events == nil {
		return
	}
	if err := a.events.Publish(ctx, event); err != nil {
		a.log.Error("Failed to publish event",
			"type", string(event.Type), "auction_id", event.AuctionID, "error", err)
	}
}
