package domain

import (
	"context"
	"time"
)

// Repository interfaces.
//
// Get returns an isolated snapshot carrying the version stamp it was read
// at. SaveVersioned commits only if the stored version still matches,
// failing with ErrVersionConflict otherwise; on success it increments the
// aggregate's Version in place. SaveVersionedWithBid is the same
// conditional commit plus the admitted bid, atomically: no reader may
// ever observe the bumped version without the bid that bumped it.
// PlaceBidLocked runs the admission callback while holding an exclusive
// record lock on the auction, persisting both the auction and the new bid
// in the same transaction.
type AuctionRepository interface {
	Create(ctx context.Context, auction *Auction) error
	Get(ctx context.Context, auctionID string) (*Auction, error)
	SaveVersioned(ctx context.Context, auction *Auction) error
	SaveVersionedWithBid(ctx context.Context, auction *Auction, bid *Bid) error
	PlaceBidLocked(ctx context.Context, auctionID string, admit func(*Auction) (*Bid, error)) (*Bid, error)
}

// BidRepository is the read side of the append-only bid log. Writes ride
// the auction commit; bids are never updated or deleted.
type BidRepository interface {
	ListByAuction(ctx context.Context, auctionID string) ([]*Bid, error)
}

// AuctionExtender pushes a closing auction's end time out after a late
// admitted bid.
type AuctionExtender interface {
	ExtendIfClosing(ctx context.Context, auctionID string, window time.Duration) error
}

// LockHandle identifies one held distributed lock. FencingToken increases
// monotonically across acquisitions so a commit layer that supports it can
// reject writers whose lease expired mid-flight.
type LockHandle struct {
	Key          string
	Token        string
	FencingToken int64
	LeaseUntil   time.Time
}

// DistributedLocker is a lock shared by all process instances, with a
// lease so a crashed holder cannot block an auction forever.
type DistributedLocker interface {
	Acquire(ctx context.Context, key string, lease, wait time.Duration) (*LockHandle, error)
	Release(ctx context.Context, handle *LockHandle) error
}

// Leader election for singleton background work (the transition scheduler).
type LeaderElection interface {
	BecomeLeader(ctx context.Context, instanceID string) (bool, error)
	IsLeader(ctx context.Context, instanceID string) (bool, error)
	ReleaseLeadership(ctx context.Context, instanceID string) error
}

// Scheduler collaborator: fires start/end transitions at the right
// wall-clock instants. The engine exposes the transitions and nothing
// about scheduling mechanics.
type AuctionScheduler interface {
	ScheduleAuctionStart(ctx context.Context, auctionID string, startTime time.Time) error
	ScheduleAuctionEnd(ctx context.Context, auctionID string, endTime time.Time) error
	RescheduleAuctionEnd(ctx context.Context, auctionID string, newEndTime time.Time) error
	CancelSchedule(ctx context.Context, auctionID string) error
	Start(ctx context.Context) error
	Stop() error
}

type SchedulerRepository interface {
	CreateJob(ctx context.Context, job *ScheduledJob) error
	GetPendingJobs(ctx context.Context, before time.Time) ([]*ScheduledJob, error)
	UpdateJobStatus(ctx context.Context, jobID string, status JobStatus) error
	CancelJobsForAuction(ctx context.Context, auctionID string) error
}
