package concurrency

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"auction-engine/internal/domain"
)

// stubStrategy admits nothing; registry tests only care about identity.
type stubStrategy struct {
	kind Kind
}

func (s stubStrategy) Kind() Kind { return s.kind }

func (s stubStrategy) PlaceBid(ctx context.Context, auctionID string, bidder *domain.User, amount domain.Money) (*domain.Bid, error) {
	return nil, nil
}

func TestNewRegistry(t *testing.T) {
	t.Parallel()

	registry, err := NewRegistry(KindMutex, []Strategy{
		stubStrategy{kind: KindMutex},
		stubStrategy{kind: KindOptimistic},
	})
	require.NoError(t, err)
	require.Equal(t, KindMutex, registry.Current())
	require.NotNil(t, registry.Get())
	require.Equal(t, []Kind{KindMutex, KindOptimistic}, registry.Kinds())
}

func TestNewRegistryRejectsMissingDefault(t *testing.T) {
	t.Parallel()

	_, err := NewRegistry(KindDistributed, []Strategy{stubStrategy{kind: KindMutex}})
	require.ErrorIs(t, err, domain.ErrUnknownStrategy)
}

func TestNewRegistryRejectsDuplicates(t *testing.T) {
	t.Parallel()

	_, err := NewRegistry(KindMutex, []Strategy{
		stubStrategy{kind: KindMutex},
		stubStrategy{kind: KindMutex},
	})
	require.Error(t, err)
}

func TestSetCurrent(t *testing.T) {
	t.Parallel()

	registry, err := NewRegistry(KindMutex, []Strategy{
		stubStrategy{kind: KindMutex},
		stubStrategy{kind: KindOptimistic},
	})
	require.NoError(t, err)

	require.NoError(t, registry.SetCurrent(KindOptimistic))
	require.Equal(t, KindOptimistic, registry.Current())

	// An unregistered kind fails and leaves the selection untouched.
	require.ErrorIs(t, registry.SetCurrent(KindDistributed), domain.ErrUnknownStrategy)
	require.Equal(t, KindOptimistic, registry.Current())
}

func TestRegistryConcurrentSwapAndGet(t *testing.T) {
	t.Parallel()

	registry, err := NewRegistry(KindMutex, []Strategy{
		stubStrategy{kind: KindMutex},
		stubStrategy{kind: KindOptimistic},
		stubStrategy{kind: KindSemaphore},
	})
	require.NoError(t, err)

	kinds := []Kind{KindMutex, KindOptimistic, KindSemaphore}
	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(2)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				_ = registry.SetCurrent(kinds[(w+i)%len(kinds)])
			}
		}(w)
		go func() {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				strategy := registry.Get()
				require.NotNil(t, strategy)
				require.Contains(t, kinds, strategy.Kind())
			}
		}()
	}
	wg.Wait()
}

func TestKindString(t *testing.T) {
	t.Parallel()

	require.Equal(t, "mutex", KindMutex.String())
	require.Equal(t, "distributed", KindDistributed.String())
	require.Equal(t, "unknown", Kind(99).String())
}
