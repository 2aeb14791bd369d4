package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"

	"auction-engine/internal/domain"
)

// MySQL error numbers worth mapping: a lock wait timeout or a deadlock
// rollback means another writer held the row, which is a conflict, not an
// outage.
const (
	errLockWaitTimeout = 1205
	errDeadlock        = 1213
)

type AuctionRepository struct {
	db *sql.DB
}

func NewAuctionRepository(db *sql.DB) *AuctionRepository {
	return &AuctionRepository{db: db}
}

const auctionColumns = `
	id, owner_id, owner_name,
	product_id, product_name, product_description, product_image_url, product_status,
	initial_price, min_increment, start_time, end_time, status,
	winner_id, version, created_at, updated_at
`

func (r *AuctionRepository) Create(ctx context.Context, auction *domain.Auction) error {
	query := `
        INSERT INTO auctions (` + auctionColumns + `)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `
	_, err := r.db.ExecContext(ctx, query,
		auction.ID, auction.Owner.ID, auction.Owner.DisplayName,
		auction.Product.ID, auction.Product.Name, auction.Product.Description,
		auction.Product.ImageURL, int(auction.Product.Status),
		auction.InitialPrice.Amount(), auction.MinIncrement.Amount(),
		auction.StartTime, auction.EndTime, int(auction.Status),
		auction.WinnerID, auction.Version, auction.CreatedAt, auction.UpdatedAt)
	if err != nil {
		return storageErr("create auction", err)
	}
	return nil
}

func (r *AuctionRepository) Get(ctx context.Context, auctionID string) (*domain.Auction, error) {
	query := `SELECT ` + auctionColumns + ` FROM auctions WHERE id = ?`
	auction, err := r.scanAuction(r.db.QueryRowContext(ctx, query, auctionID))
	if err != nil {
		return nil, err
	}

	bids, err := r.loadBids(ctx, r.db, auctionID)
	if err != nil {
		return nil, err
	}
	auction.Bids = bids
	return auction, nil
}

// SaveVersioned is the optimistic commit: the update is conditioned on the
// version stamp the snapshot was read at. Zero affected rows means another
// writer committed first.
func (r *AuctionRepository) SaveVersioned(ctx context.Context, auction *domain.Auction) error {
	if err := r.saveVersioned(ctx, r.db, auction); err != nil {
		return err
	}
	auction.Version++
	return nil
}

// SaveVersionedWithBid runs the versioned update and the bid insert in one
// transaction. A reader must never see the bumped version without the bid
// that bumped it; a split commit would let a concurrent snapshot pass the
// admissibility check at the same amount.
func (r *AuctionRepository) SaveVersionedWithBid(ctx context.Context, auction *domain.Auction, bid *domain.Bid) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr("begin versioned save", err)
	}
	defer tx.Rollback()

	if err := r.saveVersioned(ctx, tx, auction); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO bids (id, auction_id, bidder_id, amount, placed_at) VALUES (?, ?, ?, ?, ?)`,
		bid.ID, bid.AuctionID, bid.BidderID, bid.Amount.Amount(), bid.PlacedAt); err != nil {
		return storageErr("insert bid", err)
	}

	if err := tx.Commit(); err != nil {
		return storageErr("commit versioned save", err)
	}
	auction.Version++
	return nil
}

func (r *AuctionRepository) saveVersioned(ctx context.Context, e execer, auction *domain.Auction) error {
	query := `
        UPDATE auctions
        SET status = ?, end_time = ?, winner_id = ?, product_status = ?,
            updated_at = ?, version = version + 1
        WHERE id = ? AND version = ?
    `
	result, err := e.ExecContext(ctx, query,
		int(auction.Status), auction.EndTime, auction.WinnerID,
		int(auction.Product.Status), auction.UpdatedAt,
		auction.ID, auction.Version)
	if err != nil {
		return storageErr("save auction", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return storageErr("save auction", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: auction %s at version %d", domain.ErrVersionConflict, auction.ID, auction.Version)
	}
	return nil
}

// PlaceBidLocked runs the admission inside one transaction holding an
// exclusive row lock on the auction, so read, check, bid insert and
// auction update cannot interleave with any other writer.
func (r *AuctionRepository) PlaceBidLocked(ctx context.Context, auctionID string, admit func(*domain.Auction) (*domain.Bid, error)) (*domain.Bid, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, storageErr("begin admission", err)
	}
	defer tx.Rollback()

	query := `SELECT ` + auctionColumns + ` FROM auctions WHERE id = ? FOR UPDATE`
	auction, err := r.scanAuction(tx.QueryRowContext(ctx, query, auctionID))
	if err != nil {
		return nil, err
	}

	bids, err := r.loadBids(ctx, tx, auctionID)
	if err != nil {
		return nil, err
	}
	auction.Bids = bids

	bid, err := admit(auction)
	if err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO bids (id, auction_id, bidder_id, amount, placed_at) VALUES (?, ?, ?, ?, ?)`,
		bid.ID, bid.AuctionID, bid.BidderID, bid.Amount.Amount(), bid.PlacedAt); err != nil {
		return nil, storageErr("insert bid", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE auctions SET updated_at = ?, version = version + 1 WHERE id = ?`,
		auction.UpdatedAt, auctionID); err != nil {
		return nil, storageErr("update auction", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, storageErr("commit admission", err)
	}
	return bid, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func (r *AuctionRepository) scanAuction(row rowScanner) (*domain.Auction, error) {
	var (
		auction       domain.Auction
		owner         domain.User
		product       domain.Product
		initialPrice  int64
		minIncrement  int64
		status        int
		productStatus int
	)

	err := row.Scan(
		&auction.ID, &owner.ID, &owner.DisplayName,
		&product.ID, &product.Name, &product.Description,
		&product.ImageURL, &productStatus,
		&initialPrice, &minIncrement,
		&auction.StartTime, &auction.EndTime, &status,
		&auction.WinnerID, &auction.Version, &auction.CreatedAt, &auction.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAuctionNotFound
		}
		return nil, storageErr("load auction", err)
	}

	product.OwnerID = owner.ID
	product.Status = domain.ProductStatus(productStatus)
	auction.Owner = &owner
	auction.Product = &product
	auction.Status = domain.AuctionStatus(status)
	auction.InitialPrice = domain.MustMoney(initialPrice)
	auction.MinIncrement = domain.MustMoney(minIncrement)
	return &auction, nil
}

// loadBids orders by amount: that is the invariant the aggregate's bid
// collection maintains, and placed_at can tie within column precision.
func (r *AuctionRepository) loadBids(ctx context.Context, q querier, auctionID string) ([]*domain.Bid, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, auction_id, bidder_id, amount, placed_at FROM bids WHERE auction_id = ? ORDER BY amount ASC`,
		auctionID)
	if err != nil {
		return nil, storageErr("load bids", err)
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
	if err := rows.Err(); err != nil {
		return nil, storageErr("load bids", err)
	}
	return bids, nil
}

func storageErr(op string, err error) error {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		if mysqlErr.Number == errLockWaitTimeout || mysqlErr.Number == errDeadlock {
			return fmt.Errorf("%w: %s: %v", domain.ErrLockTimeout, op, err)
		}
	}
	return fmt.Errorf("%w: %s: %v", domain.ErrStorageUnavailable, op, err)
}

// ListEnding returns active auctions whose end time falls before the given
// instant. Used by operational tooling; the scheduler itself works off its
// job table.
func (r *AuctionRepository) ListEnding(ctx context.Context, before time.Time) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id FROM auctions WHERE status = ? AND end_time <= ?`,
		int(domain.AuctionActive), before)
	if err != nil {
		return nil, storageErr("list ending auctions", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, storageErr("scan auction id", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
