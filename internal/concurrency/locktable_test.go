package concurrency

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLockTableMutualExclusion(t *testing.T) {
	t.Parallel()

	table := newLockTable()
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release := table.Lock("auction-1")
			defer release()
			counter++
		}()
	}
	wg.Wait()

	require.Equal(t, 50, counter)
}

func TestLockTableTryLockTimeout(t *testing.T) {
	t.Parallel()

	table := newLockTable()

	release := table.Lock("auction-1")

	_, ok := table.TryLock("auction-1", 20*time.Millisecond)
	require.False(t, ok)

	release()

	release2, ok := table.TryLock("auction-1", 20*time.Millisecond)
	require.True(t, ok)
	release2()
}

func TestLockTableIndependentKeys(t *testing.T) {
	t.Parallel()

	table := newLockTable()

	release := table.Lock("auction-1")
	defer release()

	// A different auction is never blocked by auction-1's holder.
	release2, ok := table.TryLock("auction-2", 20*time.Millisecond)
	require.True(t, ok)
	release2()
}

func TestLockTableEntriesAgeOut(t *testing.T) {
	t.Parallel()

	table := newLockTable()
	require.Zero(t, table.size())

	release := table.Lock("auction-1")
	require.Equal(t, 1, table.size())
	release()
	require.Zero(t, table.size())

	// A failed TryLock leaves nothing behind either.
	release = table.Lock("auction-2")
	_, ok := table.TryLock("auction-2", time.Millisecond)
	require.False(t, ok)
	release()
	require.Zero(t, table.size())
}
