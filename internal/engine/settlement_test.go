package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitShares_Exactness(t *testing.T) {
	for _, amount := range []uint64{0, 1, 2, 3, 4, 99, 100, 101, 1_000_000_000, 123_456_789} {
		primary, secondary := SplitShares(amount)
		assert.Equal(t, amount*75/100, primary, "primary share is floor(75%%) of %d", amount)
		assert.Equal(t, amount, primary+secondary, "shares of %d must sum exactly", amount)
	}
}

func TestSplitShares_NoRoundingLeak(t *testing.T) {
	// Amounts not divisible by 4 put the rounding remainder in the
	// secondary share, never nowhere.
	primary, secondary := SplitShares(101)
	assert.Equal(t, uint64(75), primary)
	assert.Equal(t, uint64(26), secondary)
}
