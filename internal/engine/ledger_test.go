package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validLedger(t *testing.T) *SaleLedger {
	t.Helper()
	l, err := NewSaleLedger(10, 1_000_000,
		Window{Start: 100, End: 200},
		Window{Start: 300, End: 400},
		"admin", "primary", "treasury")
	require.NoError(t, err)
	return l
}

func TestNewSaleLedger_WindowValidation(t *testing.T) {
	cases := map[string]struct {
		purchase, reveal Window
	}{
		"purchase start after end":     {Window{200, 100}, Window{300, 400}},
		"reveal start after end":       {Window{100, 200}, Window{400, 300}},
		"reveal opens before sale end": {Window{100, 300}, Window{200, 400}},
		"zero windows":                 {Window{}, Window{}},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewSaleLedger(10, 1, tc.purchase, tc.reveal, "a", "p", "s")
			assert.ErrorIs(t, err, ErrInvalidTimePeriods)
		})
	}

	t.Run("purchase end may touch reveal start", func(t *testing.T) {
		_, err := NewSaleLedger(10, 1, Window{100, 300}, Window{300, 400}, "a", "p", "s")
		assert.NoError(t, err)
	})

	t.Run("counters start at zero", func(t *testing.T) {
		l := validLedger(t)
		assert.Zero(t, l.TotalSold)
		assert.Zero(t, l.TotalRevealed)
		assert.Zero(t, l.TotalRaised)
	})
}

func TestSaleLedger_SetPeriods(t *testing.T) {
	t.Run("admin only", func(t *testing.T) {
		l := validLedger(t)
		err := l.SetPeriods("someone-else", Window{1, 2}, Window{3, 4})
		require.ErrorIs(t, err, ErrNotAdmin)
		assert.Equal(t, Window{100, 200}, l.PurchaseWindow, "rejected call must not touch windows")
	})

	t.Run("window invariant still applies", func(t *testing.T) {
		l := validLedger(t)
		err := l.SetPeriods("admin", Window{100, 500}, Window{300, 400})
		assert.ErrorIs(t, err, ErrInvalidTimePeriods)
	})

	t.Run("recipients and counters untouched", func(t *testing.T) {
		l := validLedger(t)
		l.TotalSold = 3
		require.NoError(t, l.SetPeriods("admin", Window{500, 600}, Window{700, 800}))
		assert.Equal(t, Window{500, 600}, l.PurchaseWindow)
		assert.Equal(t, Window{700, 800}, l.RevealWindow)
		assert.Equal(t, Identity("primary"), l.RecipientPrimary)
		assert.Equal(t, Identity("treasury"), l.RecipientSecondary)
		assert.Equal(t, uint64(3), l.TotalSold)
	})
}

func TestSaleLedger_PurchaseGate(t *testing.T) {
	l := validLedger(t)

	assert.ErrorIs(t, l.CheckPurchaseAllowed(99), ErrNotInPurchasePeriod)
	assert.ErrorIs(t, l.CheckPurchaseAllowed(201), ErrNotInPurchasePeriod)
	assert.NoError(t, l.CheckPurchaseAllowed(100), "window start is inclusive")
	assert.NoError(t, l.CheckPurchaseAllowed(200), "window end is inclusive")

	l.TotalSold = l.Cap
	assert.ErrorIs(t, l.CheckPurchaseAllowed(150), ErrNftLimitReached)
}

func TestSaleLedger_RevealGate(t *testing.T) {
	l := validLedger(t)
	assert.ErrorIs(t, l.CheckRevealAllowed(200), ErrNotInRevealPeriod)
	assert.ErrorIs(t, l.CheckRevealAllowed(401), ErrNotInRevealPeriod)
	assert.NoError(t, l.CheckRevealAllowed(300))
	assert.NoError(t, l.CheckRevealAllowed(400))
}
