package concurrency

import (
	"fmt"
	"sort"
	"sync/atomic"

	"auction-engine/internal/domain"
)

// Registry holds the closed set of registered strategies and the single
// process-wide "current" selector. The selector is an atomic pointer so
// concurrent bidders never observe a half-written swap; the strategy table
// itself is immutable after construction.
//
// Swapping is visible to new PlaceBid dispatches immediately. In-flight
// calls finish under the strategy they were dispatched to.
type Registry struct {
	strategies map[Kind]Strategy
	current    atomic.Pointer[selection]
}

type selection struct {
	strategy Strategy
}

// NewRegistry installs the given strategies and selects def as the active
// one. A default must be installed: Get never returns nil.
func NewRegistry(def Kind, strategies []Strategy) (*Registry, error) {
	table := make(map[Kind]Strategy, len(strategies))
	for _, s := range strategies {
		if _, dup := table[s.Kind()]; dup {
			return nil, fmt.Errorf("strategy %s registered twice", s.Kind())
		}
		table[s.Kind()] = s
	}

	r := &Registry{strategies: table}
	if err := r.SetCurrent(def); err != nil {
		return nil, err
	}
	return r, nil
}

// Get returns the active strategy. Never nil.
func (r *Registry) Get() Strategy {
	return r.current.Load().strategy
}

// Current returns the active strategy's kind.
func (r *Registry) Current() Kind {
	return r.Get().Kind()
}

// SetCurrent atomically swaps the active strategy.
func (r *Registry) SetCurrent(kind Kind) error {
	strategy, ok := r.strategies[kind]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrUnknownStrategy, kind)
	}
	r.current.Store(&selection{strategy: strategy})
	return nil
}

// Kinds lists the registered strategies in a stable order.
func (r *Registry) Kinds() []Kind {
	kinds := make([]Kind, 0, len(r.strategies))
	for kind := range r.strategies {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}
