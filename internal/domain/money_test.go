package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	tests := []struct {
		name        string
		amount      int64
		expectError bool
	}{
		{name: "negative_fails", amount: -1, expectError: true},
		{name: "zero_ok", amount: 0, expectError: false},
		{name: "positive_ok", amount: 1000, expectError: false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			m, err := NewMoney(tc.amount)
			if tc.expectError {
				require.ErrorIs(t, err, ErrNegativeAmount)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.amount, m.Amount())
		})
	}
}

func TestMoneySub(t *testing.T) {
	t.Parallel()

	_, err := MustMoney(1000).Sub(MustMoney(2000))
	require.ErrorIs(t, err, ErrNegativeAmount)

	result, err := MustMoney(2000).Sub(MustMoney(1000))
	require.NoError(t, err)
	require.Equal(t, int64(1000), result.Amount())
}

func TestMoneyAdd(t *testing.T) {
	t.Parallel()

	sum := MustMoney(1000).Add(MustMoney(500))
	require.Equal(t, int64(1500), sum.Amount())
}

func TestMoneyOrdering(t *testing.T) {
	t.Parallel()

	require.Greater(t, MustMoney(2000).Cmp(MustMoney(1000)), 0)
	require.Less(t, MustMoney(1000).Cmp(MustMoney(2000)), 0)
	require.Zero(t, MustMoney(1000).Cmp(MustMoney(1000)))

	require.True(t, MustMoney(2000).GreaterThan(MustMoney(1000)))
	require.True(t, MustMoney(1000).LessThan(MustMoney(2000)))
	require.False(t, MustMoney(1000).LessThan(MustMoney(1000)))
	require.True(t, MustMoney(0).IsZero())
}
