package domain

import "fmt"

// Money is an immutable, non-negative amount in minor currency units.
type Money struct {
	amount int64
}

func NewMoney(amount int64) (Money, error) {
	if amount < 0 {
		return Money{}, fmt.Errorf("%w: %d", ErrNegativeAmount, amount)
	}
	return Money{amount: amount}, nil
}

// MustMoney panics on a negative amount. Intended for constants and tests.
func MustMoney(amount int64) Money {
	m, err := NewMoney(amount)
	if err != nil {
		panic(err)
	}
	return m
}

func (m Money) Amount() int64 {
	return m.amount
}

func (m Money) Add(other Money) Money {
	return Money{amount: m.amount + other.amount}
}

// Sub fails instead of going negative.
func (m Money) Sub(other Money) (Money, error) {
	if other.amount > m.amount {
		return Money{}, fmt.Errorf("%w: %d - %d", ErrNegativeAmount, m.amount, other.amount)
	}
	return Money{amount: m.amount - other.amount}, nil
}

// Cmp returns -1, 0 or 1 following the total order by amount.
func (m Money) Cmp(other Money) int {
	switch {
	case m.amount < other.amount:
		return -1
	case m.amount > other.amount:
		return 1
	default:
		return 0
	}
}

func (m Money) GreaterThan(other Money) bool {
	return m.amount > other.amount
}

func (m Money) LessThan(other Money) bool {
	return m.amount < other.amount
}

func (m Money) IsZero() bool {
	return m.amount == 0
}

func (m Money) String() string {
	return fmt.Sprintf("%d", m.amount)
}
