package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"auction-engine/internal/domain"
)

func storeWithAuction(t *testing.T) (*Store, *domain.Auction, *domain.User) {
	t.Helper()

	owner := domain.NewUser("seller")
	product, err := domain.NewProduct(owner.ID, "oak bookcase", "", "")
	require.NoError(t, err)

	auction, err := domain.NewAuction(owner, product, domain.AuctionParams{
		InitialPrice: domain.MustMoney(1000),
		MinIncrement: domain.MustMoney(100),
		StartTime:    time.Now().Add(-time.Minute),
		EndTime:      time.Now().Add(2 * time.Hour),
	}, domain.MustMoney(100))
	require.NoError(t, err)

	started, err := auction.Start(time.Now())
	require.NoError(t, err)
	require.True(t, started)

	store := NewStore()
	require.NoError(t, store.Create(context.Background(), auction))
	return store, auction, owner
}

func TestCreateRejectsDuplicate(t *testing.T) {
	t.Parallel()

	store, auction, _ := storeWithAuction(t)
	require.Error(t, store.Create(context.Background(), auction))
}

func TestGetReturnsIsolatedSnapshot(t *testing.T) {
	t.Parallel()

	store, auction, _ := storeWithAuction(t)
	ctx := context.Background()

	snapshot, err := store.Get(ctx, auction.ID)
	require.NoError(t, err)

	_, err = snapshot.PlaceBid(domain.NewUser("bidder"), domain.MustMoney(1000), time.Now())
	require.NoError(t, err)

	// The uncommitted bid is invisible to other readers.
	fresh, err := store.Get(ctx, auction.ID)
	require.NoError(t, err)
	require.Empty(t, fresh.Bids)
}

func TestGetUnknownAuction(t *testing.T) {
	t.Parallel()

	store := NewStore()
	_, err := store.Get(context.Background(), "auction_missing")
	require.ErrorIs(t, err, domain.ErrAuctionNotFound)
}

func TestSaveVersionedCommitsAndBumpsVersion(t *testing.T) {
	t.Parallel()

	store, auction, _ := storeWithAuction(t)
	ctx := context.Background()

	snapshot, err := store.Get(ctx, auction.ID)
	require.NoError(t, err)
	readVersion := snapshot.Version

	_, err = snapshot.PlaceBid(domain.NewUser("bidder"), domain.MustMoney(1000), time.Now())
	require.NoError(t, err)
	require.NoError(t, store.SaveVersioned(ctx, snapshot))
	require.Equal(t, readVersion+1, snapshot.Version)

	fresh, err := store.Get(ctx, auction.ID)
	require.NoError(t, err)
	require.Len(t, fresh.Bids, 1)
	require.Equal(t, readVersion+1, fresh.Version)
}

func TestSaveVersionedRejectsStaleSnapshot(t *testing.T) {
	t.Parallel()

	store, auction, _ := storeWithAuction(t)
	ctx := context.Background()

	first, err := store.Get(ctx, auction.ID)
	require.NoError(t, err)
	second, err := store.Get(ctx, auction.ID)
	require.NoError(t, err)

	fast := domain.NewUser("fast")
	_, err = first.PlaceBid(fast, domain.MustMoney(1000), time.Now())
	require.NoError(t, err)
	require.NoError(t, store.SaveVersioned(ctx, first))

	_, err = second.PlaceBid(domain.NewUser("slow"), domain.MustMoney(1000), time.Now())
	require.NoError(t, err)
	err = store.SaveVersioned(ctx, second)
	require.ErrorIs(t, err, domain.ErrVersionConflict)

	// The losing snapshot changed nothing.
	fresh, err := store.Get(ctx, auction.ID)
	require.NoError(t, err)
	require.Len(t, fresh.Bids, 1)
	require.Equal(t, fast.ID, fresh.HighestBid().BidderID)
}

func TestSaveVersionedWithBidCommitsBothOrNeither(t *testing.T) {
	t.Parallel()

	store, auction, _ := storeWithAuction(t)
	ctx := context.Background()

	snapshot, err := store.Get(ctx, auction.ID)
	require.NoError(t, err)
	bid, err := snapshot.PlaceBid(domain.NewUser("bidder"), domain.MustMoney(1000), time.Now())
	require.NoError(t, err)

	require.NoError(t, store.SaveVersionedWithBid(ctx, snapshot, bid))
	require.Equal(t, int64(1), snapshot.Version)

	fresh, err := store.Get(ctx, auction.ID)
	require.NoError(t, err)
	require.Len(t, fresh.Bids, 1)
	require.Equal(t, int64(1), fresh.Version)

	bids, err := store.ListByAuction(ctx, auction.ID)
	require.NoError(t, err)
	require.Len(t, bids, 1)
	require.Equal(t, bid.ID, bids[0].ID)
}

func TestSaveVersionedWithBidRejectsStaleSnapshotEntirely(t *testing.T) {
	t.Parallel()

	store, auction, _ := storeWithAuction(t)
	ctx := context.Background()

	first, err := store.Get(ctx, auction.ID)
	require.NoError(t, err)
	second, err := store.Get(ctx, auction.ID)
	require.NoError(t, err)

	winning, err := first.PlaceBid(domain.NewUser("fast"), domain.MustMoney(1000), time.Now())
	require.NoError(t, err)
	require.NoError(t, store.SaveVersionedWithBid(ctx, first, winning))

	losing, err := second.PlaceBid(domain.NewUser("slow"), domain.MustMoney(1000), time.Now())
	require.NoError(t, err)
	err = store.SaveVersionedWithBid(ctx, second, losing)
	require.ErrorIs(t, err, domain.ErrVersionConflict)

	// The losing commit left neither a version bump nor a bid.
	bids, err := store.ListByAuction(ctx, auction.ID)
	require.NoError(t, err)
	require.Len(t, bids, 1)
	require.Equal(t, winning.ID, bids[0].ID)

	fresh, err := store.Get(ctx, auction.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), fresh.Version)
}

func TestPlaceBidLocked(t *testing.T) {
	t.Parallel()

	store, auction, _ := storeWithAuction(t)
	ctx := context.Background()
	bidder := domain.NewUser("bidder")

	bid, err := store.PlaceBidLocked(ctx, auction.ID, func(a *domain.Auction) (*domain.Bid, error) {
		return a.PlaceBid(bidder, domain.MustMoney(1000), time.Now())
	})
	require.NoError(t, err)
	require.Equal(t, bidder.ID, bid.BidderID)

	fresh, err := store.Get(ctx, auction.ID)
	require.NoError(t, err)
	require.Len(t, fresh.Bids, 1)
	require.Equal(t, int64(1), fresh.Version)

	bids, err := store.ListByAuction(ctx, auction.ID)
	require.NoError(t, err)
	require.Len(t, bids, 1)
	require.Equal(t, bid.ID, bids[0].ID)
}

func TestPlaceBidLockedRollsBackOnRejection(t *testing.T) {
	t.Parallel()

	store, auction, owner := storeWithAuction(t)
	ctx := context.Background()

	_, err := store.PlaceBidLocked(ctx, auction.ID, func(a *domain.Auction) (*domain.Bid, error) {
		return a.PlaceBid(owner, domain.MustMoney(1000), time.Now())
	})
	require.ErrorIs(t, err, domain.ErrInvalidBid)

	fresh, err := store.Get(ctx, auction.ID)
	require.NoError(t, err)
	require.Empty(t, fresh.Bids)
	require.Zero(t, fresh.Version)

	bids, err := store.ListByAuction(ctx, auction.ID)
	require.NoError(t, err)
	require.Empty(t, bids)
}
