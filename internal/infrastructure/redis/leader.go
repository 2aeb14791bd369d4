package redis

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"

	"auction-engine/pkg/logger"
)

const leaderKey = "auction_engine:leader"

// refreshScript extends the leadership TTL only while we still hold it.
const refreshScript = `
    if redis.call("GET", KEYS[1]) == ARGV[1] then
        return redis.call("EXPIRE", KEYS[1], ARGV[2])
    else
        return 0
    end
`

// LeaderElection elects one engine instance to run the transition
// scheduler. Leadership is a TTL'd key refreshed by a heartbeat; losing
// the refresh race simply stops the heartbeat and another instance takes
// over.
type LeaderElection struct {
	client *redis.Client
	ttl    time.Duration
	log    logger.Logger

	stop     chan struct{}
	stopOnce sync.Once
}

func NewLeaderElection(client *redis.Client, ttl time.Duration, log logger.Logger) *LeaderElection {
	return &LeaderElection{
		client: client,
		ttl:    ttl,
		log:    log,
		stop:   make(chan struct{}),
	}
}

func (l *LeaderElection) BecomeLeader(ctx context.Context, instanceID string) (bool, error) {
	acquired, err := l.client.SetNX(ctx, leaderKey, instanceID, l.ttl).Result()
	if err != nil {
		return false, err
	}
	if acquired {
		go l.maintainLeadership(instanceID)
	}
	return acquired, nil
}

func (l *LeaderElection) IsLeader(ctx context.Context, instanceID string) (bool, error) {
	current, err := l.client.Get(ctx, leaderKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	return current == instanceID, nil
}

// ReleaseLeadership stops the heartbeat and drops the key if it is still
// ours. Safe to call more than once.
func (l *LeaderElection) ReleaseLeadership(ctx context.Context, instanceID string) error {
	l.stopOnce.Do(func() { close(l.stop) })
	_, err := l.client.Eval(ctx, releaseScript, []string{leaderKey}, instanceID).Result()
	return err
}

func (l *LeaderElection) maintainLeadership(instanceID string) {
	ticker := time.NewTicker(l.ttl / 3)
	defer ticker.Stop()

	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		result, err := l.client.Eval(ctx, refreshScript, []string{leaderKey},
			instanceID, int(l.ttl.Seconds())).Result()
		cancel()

		if err != nil || result.(int64) == 0 {
			l.log.Warn("Lost scheduler leadership", "instance_id", instanceID, "error", err)
			return
		}
	}
}
