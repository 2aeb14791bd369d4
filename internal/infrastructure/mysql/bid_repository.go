package mysql

import (
	"context"
	"database/sql"

	"auction-engine/internal/domain"
)

// BidRepository reads the append-only bid log. Writes go through the
// auction repository's versioned or locked commits, never through here.
type BidRepository struct {
	db *sql.DB
}

func NewBidRepository(db *sql.DB) *BidRepository {
	return &BidRepository{db: db}
}

func (r *BidRepository) ListByAuction(ctx context.Context, auctionID string) ([]*domain.Bid, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, auction_id, bidder_id, amount, placed_at FROM bids WHERE auction_id = ? ORDER BY amount ASC`,
		auctionID)
	if err != nil {
		return nil, storageErr("list bids", err)
	}
	defer rows.Close()

	var bids []*domain.Bid
	for rows.Next() {
		var (
			bid    domain.Bid
			amount int64
		)
		if err := rows.Scan(&bid.ID, &bid.AuctionID, &bid.BidderID, &amount, &bid.PlacedAt); err != nil {
			return nil, storageErr("scan bid", err)
		}
		bid.Amount = domain.MustMoney(amount)
		bids = append(bids, &bid)
	}
	return bids, rows.Err()
}
