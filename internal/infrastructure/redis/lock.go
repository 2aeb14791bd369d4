package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"auction-engine/internal/domain"
	"auction-engine/pkg/utils"
)

const (
	lockKeyPrefix   = "auction_lock:"
	fenceCounterKey = "auction_lock:fence"

	// How often a waiter re-attempts SETNX while inside its wait budget.
	acquireRetryInterval = 10 * time.Millisecond
)

// releaseScript deletes the lock only if it is still ours, so a holder
// whose lease already expired cannot delete the next holder's lock.
const releaseScript = `
    if redis.call("GET", KEYS[1]) == ARGV[1] then
        return redis.call("DEL", KEYS[1])
    else
        return 0
    end
`

// LeaseLocker is the distributed-lock collaborator: SETNX with a TTL
// lease, bounded-wait acquire, and a monotonic fencing token per
// acquisition.
type LeaseLocker struct {
	client *redis.Client
}

func NewLeaseLocker(client *redis.Client) *LeaseLocker {
	return &LeaseLocker{client: client}
}

func (l *LeaseLocker) Acquire(ctx context.Context, key string, lease, wait time.Duration) (*domain.LockHandle, error) {
	token := utils.GenerateID("lock")
	lockKey := lockKeyPrefix + key

	fence, err := l.client.Incr(ctx, fenceCounterKey).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: issue fencing token: %v", domain.ErrLockStoreUnavailable, err)
	}

	deadline := time.Now().Add(wait)
	for {
		acquired, err := l.client.SetNX(ctx, lockKey, token, lease).Result()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrLockStoreUnavailable, err)
		}
		if acquired {
			return &domain.LockHandle{
				Key:          key,
				Token:        token,
				FencingToken: fence,
				LeaseUntil:   time.Now().Add(lease),
			}, nil
		}

		if time.Now().After(deadline) {
			return nil, fmt.Errorf("%w: distributed lock on %s after %s", domain.ErrLockTimeout, key, wait)
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", domain.ErrLockTimeout, ctx.Err())
		case <-time.After(acquireRetryInterval):
		}
	}
}

func (l *LeaseLocker) Release(ctx context.Context, handle *domain.LockHandle) error {
	_, err := l.client.Eval(ctx, releaseScript, []string{lockKeyPrefix + handle.Key}, handle.Token).Result()
	if err != nil {
		return fmt.Errorf("%w: release %s: %v", domain.ErrLockStoreUnavailable, handle.Key, err)
	}
	return nil
}
