package redis

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"

	"auction-engine/pkg/logger"
)

func TestReleaseLeadershipIsIdempotent(t *testing.T) {
	t.Parallel()

	// No server behind this client; release must still be safe to repeat.
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	election := NewLeaderElection(client, time.Second, logger.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_ = election.ReleaseLeadership(ctx, "instance-a")
	require.NotPanics(t, func() {
		_ = election.ReleaseLeadership(ctx, "instance-a")
	})
}
