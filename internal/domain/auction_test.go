package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testProduct(t *testing.T, owner *User) *Product {
	t.Helper()
	product, err := NewProduct(owner.ID, "vintage camera", "1960s rangefinder", "http://img.example/camera.jpg")
	require.NoError(t, err)
	return product
}

func activeAuction(t *testing.T) (*Auction, *User) {
	t.Helper()
	owner := NewUser("seller")
	auction, err := NewAuction(owner, testProduct(t, owner), AuctionParams{
		InitialPrice: MustMoney(1000),
		MinIncrement: MustMoney(100),
		StartTime:    time.Now().Add(-time.Minute),
		EndTime:      time.Now().Add(2 * time.Hour),
	}, MustMoney(100))
	require.NoError(t, err)

	started, err := auction.Start(time.Now())
	require.NoError(t, err)
	require.True(t, started)
	return auction, owner
}

func TestNewProductNameLength(t *testing.T) {
	t.Parallel()

	owner := NewUser("seller")

	_, err := NewProduct(owner.ID, "ab", "", "")
	require.ErrorIs(t, err, ErrInvalidProductName)

	long := make([]byte, 101)
	for i := range long {
		long[i] = 'x'
	}
	_, err = NewProduct(owner.ID, string(long), "", "")
	require.ErrorIs(t, err, ErrInvalidProductName)

	product, err := NewProduct(owner.ID, "abc", "", "")
	require.NoError(t, err)
	require.Equal(t, ProductAvailable, product.Status)
}

func TestNewAuctionValidation(t *testing.T) {
	owner := NewUser("seller")
	start := time.Now().Add(time.Hour)

	tests := []struct {
		name        string
		params      AuctionParams
		expectedErr error
	}{
		{
			name: "price_below_floor",
			params: AuctionParams{
				InitialPrice: MustMoney(50),
				MinIncrement: MustMoney(100),
				StartTime:    start,
				EndTime:      start.Add(2 * time.Hour),
			},
			expectedErr: ErrPriceBelowFloor,
		},
		{
			name: "zero_increment",
			params: AuctionParams{
				InitialPrice: MustMoney(1000),
				MinIncrement: MustMoney(0),
				StartTime:    start,
				EndTime:      start.Add(2 * time.Hour),
			},
			expectedErr: ErrInvalidMinIncrement,
		},
		{
			name: "window_too_short",
			params: AuctionParams{
				InitialPrice: MustMoney(1000),
				MinIncrement: MustMoney(100),
				StartTime:    start,
				EndTime:      start.Add(30 * time.Minute),
			},
			expectedErr: ErrInvalidAuctionWindow,
		},
		{
			name: "valid",
			params: AuctionParams{
				InitialPrice: MustMoney(1000),
				MinIncrement: MustMoney(100),
				StartTime:    start,
				EndTime:      start.Add(MinAuctionDuration),
			},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			auction, err := NewAuction(owner, testProduct(t, owner), tc.params, MustMoney(100))
			if tc.expectedErr != nil {
				require.ErrorIs(t, err, tc.expectedErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, AuctionNotStarted, auction.Status)
			require.NotEmpty(t, auction.ID)
		})
	}
}

func TestAuctionStart(t *testing.T) {
	t.Parallel()

	owner := NewUser("seller")
	start := time.Now().Add(time.Hour)
	auction, err := NewAuction(owner, testProduct(t, owner), AuctionParams{
		InitialPrice: MustMoney(1000),
		MinIncrement: MustMoney(100),
		StartTime:    start,
		EndTime:      start.Add(2 * time.Hour),
	}, MustMoney(100))
	require.NoError(t, err)

	// Before the start time firing is a harmless no-op.
	started, err := auction.Start(time.Now())
	require.NoError(t, err)
	require.False(t, started)
	require.Equal(t, AuctionNotStarted, auction.Status)

	started, err = auction.Start(start)
	require.NoError(t, err)
	require.True(t, started)
	require.Equal(t, AuctionActive, auction.Status)

	_, err = auction.Start(start.Add(time.Second))
	require.ErrorIs(t, err, ErrInvalidStatusTransition)
}

func TestAuctionEndWithWinner(t *testing.T) {
	t.Parallel()

	auction, _ := activeAuction(t)
	bidder := NewUser("bidder")

	_, err := auction.PlaceBid(bidder, MustMoney(1000), time.Now())
	require.NoError(t, err)

	// Not due yet.
	winner, ended, err := auction.End(time.Now())
	require.NoError(t, err)
	require.False(t, ended)
	require.Nil(t, winner)

	winner, ended, err = auction.End(auction.EndTime)
	require.NoError(t, err)
	require.True(t, ended)
	require.NotNil(t, winner)
	require.Equal(t, bidder.ID, winner.BidderID)
	require.Equal(t, bidder.ID, auction.WinnerID)
	require.Equal(t, AuctionEnded, auction.Status)
	require.Equal(t, ProductSold, auction.Product.Status)
}

func TestAuctionEndWithoutBids(t *testing.T) {
	t.Parallel()

	auction, _ := activeAuction(t)

	winner, ended, err := auction.End(auction.EndTime)
	require.NoError(t, err)
	require.True(t, ended)
	require.Nil(t, winner)
	require.Empty(t, auction.WinnerID)
	require.Equal(t, AuctionEnded, auction.Status)
	require.Equal(t, ProductAvailable, auction.Product.Status)
}

func TestAuctionEndBeforeStartFails(t *testing.T) {
	t.Parallel()

	owner := NewUser("seller")
	auction, err := NewAuction(owner, testProduct(t, owner), AuctionParams{
		InitialPrice: MustMoney(1000),
		MinIncrement: MustMoney(100),
		StartTime:    time.Now().Add(-2 * time.Hour),
		EndTime:      time.Now().Add(-time.Hour),
	}, MustMoney(100))
	require.NoError(t, err)

	_, _, err = auction.End(time.Now())
	require.ErrorIs(t, err, ErrInvalidStatusTransition)
}

func TestAuctionCancel(t *testing.T) {
	t.Parallel()

	owner := NewUser("seller")
	start := time.Now().Add(time.Hour)
	auction, err := NewAuction(owner, testProduct(t, owner), AuctionParams{
		InitialPrice: MustMoney(1000),
		MinIncrement: MustMoney(100),
		StartTime:    start,
		EndTime:      start.Add(2 * time.Hour),
	}, MustMoney(100))
	require.NoError(t, err)

	require.ErrorIs(t, auction.Cancel(NewUser("stranger")), ErrUnauthorizedCancel)

	require.NoError(t, auction.Cancel(owner))
	require.Equal(t, AuctionCanceled, auction.Status)
}

func TestAuctionCancelAfterStartFails(t *testing.T) {
	t.Parallel()

	auction, owner := activeAuction(t)
	require.ErrorIs(t, auction.Cancel(owner), ErrCannotCancelActive)
}

func TestPlaceBid(t *testing.T) {
	tests := []struct {
		name        string
		setup       func(t *testing.T, auction *Auction)
		bidder      func(owner *User) *User
		amount      Money
		expectedErr error
	}{
		{
			name:        "first_bid_below_initial_price",
			bidder:      func(*User) *User { return NewUser("bidder") },
			amount:      MustMoney(999),
			expectedErr: ErrInvalidBidAmount,
		},
		{
			name:   "first_bid_at_initial_price",
			bidder: func(*User) *User { return NewUser("bidder") },
			amount: MustMoney(1000),
		},
		{
			name:        "owner_cannot_bid",
			bidder:      func(owner *User) *User { return owner },
			amount:      MustMoney(1000),
			expectedErr: ErrInvalidBid,
		},
		{
			name: "equal_to_highest_is_conflict",
			setup: func(t *testing.T, auction *Auction) {
				_, err := auction.PlaceBid(NewUser("first"), MustMoney(1000), time.Now())
				require.NoError(t, err)
			},
			bidder:      func(*User) *User { return NewUser("second") },
			amount:      MustMoney(1000),
			expectedErr: ErrBidConflict,
		},
		{
			name: "below_minimum_increment",
			setup: func(t *testing.T, auction *Auction) {
				_, err := auction.PlaceBid(NewUser("first"), MustMoney(1000), time.Now())
				require.NoError(t, err)
			},
			bidder:      func(*User) *User { return NewUser("second") },
			amount:      MustMoney(1050),
			expectedErr: ErrInvalidBidAmount,
		},
		{
			name: "valid_raise",
			setup: func(t *testing.T, auction *Auction) {
				_, err := auction.PlaceBid(NewUser("first"), MustMoney(1000), time.Now())
				require.NoError(t, err)
			},
			bidder: func(*User) *User { return NewUser("second") },
			amount: MustMoney(1100),
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			auction, owner := activeAuction(t)
			if tc.setup != nil {
				tc.setup(t, auction)
			}
			before := len(auction.Bids)

			bid, err := auction.PlaceBid(tc.bidder(owner), tc.amount, time.Now())
			if tc.expectedErr != nil {
				require.ErrorIs(t, err, tc.expectedErr)
				require.Len(t, auction.Bids, before)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.amount, bid.Amount)
			require.Equal(t, bid, auction.HighestBid())
			require.Len(t, auction.Bids, before+1)
		})
	}
}

func TestPlaceBidOnInactiveAuction(t *testing.T) {
	t.Parallel()

	owner := NewUser("seller")
	start := time.Now().Add(time.Hour)
	auction, err := NewAuction(owner, testProduct(t, owner), AuctionParams{
		InitialPrice: MustMoney(1000),
		MinIncrement: MustMoney(100),
		StartTime:    start,
		EndTime:      start.Add(2 * time.Hour),
	}, MustMoney(100))
	require.NoError(t, err)

	_, err = auction.PlaceBid(NewUser("bidder"), MustMoney(1000), time.Now())
	require.ErrorIs(t, err, ErrInvalidBid)
	require.False(t, IsConflict(err))
}

func TestConflictClassification(t *testing.T) {
	t.Parallel()

	require.True(t, IsConflict(ErrBidConflict))
	require.True(t, IsConflict(ErrLockTimeout))
	require.True(t, IsConflict(ErrVersionConflict))
	require.False(t, IsConflict(ErrInvalidBidAmount))
	require.False(t, IsConflict(ErrStorageUnavailable))

	require.True(t, IsInfrastructure(ErrStorageUnavailable))
	require.True(t, IsInfrastructure(ErrLockStoreUnavailable))
	require.False(t, IsInfrastructure(ErrLockTimeout))
}

func TestAuctionExtend(t *testing.T) {
	t.Parallel()

	auction, _ := activeAuction(t)
	originalEnd := auction.EndTime

	require.False(t, auction.Extend(originalEnd.Add(-time.Minute)))
	require.Equal(t, originalEnd, auction.EndTime)

	require.True(t, auction.Extend(originalEnd.Add(time.Minute)))
	require.Equal(t, originalEnd.Add(time.Minute), auction.EndTime)
}

func TestAuctionClone(t *testing.T) {
	t.Parallel()

	auction, _ := activeAuction(t)
	_, err := auction.PlaceBid(NewUser("bidder"), MustMoney(1000), time.Now())
	require.NoError(t, err)

	clone := auction.Clone()
	_, err = clone.PlaceBid(NewUser("raiser"), MustMoney(1200), time.Now())
	require.NoError(t, err)
	clone.Product.Status = ProductSold

	require.Len(t, auction.Bids, 1)
	require.Len(t, clone.Bids, 2)
	require.Equal(t, ProductAvailable, auction.Product.Status)
}
