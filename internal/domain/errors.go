package domain

import (
	"errors"
	"fmt"
)

// Validation errors. Surfaced to the caller as-is, never retried.
var (
	ErrNegativeAmount          = errors.New("money amount cannot be negative")
	ErrInvalidProductName      = errors.New("product name must be 3 to 100 characters")
	ErrPriceBelowFloor         = errors.New("initial price below the configured floor")
	ErrInvalidMinIncrement     = errors.New("minimum bid increment must be positive")
	ErrInvalidAuctionWindow    = errors.New("auction end time too close to start time")
	ErrUnauthorizedOwner       = errors.New("user does not own the product")
	ErrAlreadySold             = errors.New("product is already sold")
	ErrInvalidStatusTransition = errors.New("invalid auction status transition")
	ErrUnauthorizedCancel      = errors.New("only the auction owner can cancel")
	ErrCannotCancelActive      = errors.New("auction can only be cancelled before it starts")
	ErrInvalidBid              = errors.New("invalid bid")
	ErrInvalidBidAmount        = errors.New("bid amount too low")
	ErrAuctionNotFound         = errors.New("auction not found")
	ErrUnknownStrategy         = errors.New("unknown concurrency strategy")
)

// Conflict errors. ErrBidConflict is the category sentinel: every way of
// losing a race wraps it, so callers apply one "try again" policy no matter
// which strategy produced the loss.
var (
	ErrBidConflict     = errors.New("bid conflict")
	ErrLockTimeout     = fmt.Errorf("%w: lock acquisition timed out", ErrBidConflict)
	ErrVersionConflict = fmt.Errorf("%w: auction changed since read", ErrBidConflict)
)

// Infrastructure errors. Kept distinct from conflicts so callers can tell
// "someone else won" from "the system is unhealthy".
var (
	ErrStorageUnavailable   = errors.New("storage unavailable")
	ErrLockStoreUnavailable = errors.New("lock store unreachable")
)

func IsConflict(err error) bool {
	return errors.Is(err, ErrBidConflict)
}

func IsInfrastructure(err error) bool {
	return errors.Is(err, ErrStorageUnavailable) || errors.Is(err, ErrLockStoreUnavailable)
}
