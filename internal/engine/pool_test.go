package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_SequentialOrder(t *testing.T) {
	p := NewPool(1, 100, 0, AllocSequential)

	for want := uint16(1); want <= 10; want++ {
		n, err := p.AllocateNext(0)
		require.NoError(t, err)
		assert.Equal(t, want, n, "sequential policy must hand out ascending numbers")
	}
	assert.Equal(t, 10, p.UsedCount())
}

func TestPool_Uniqueness(t *testing.T) {
	run := func(t *testing.T, p *Pool, seeds func(i int) int64) {
		seen := make(map[uint16]bool)
		for i := 0; i < p.Size(); i++ {
			n, err := p.AllocateNext(seeds(i))
			require.NoError(t, err)
			require.False(t, seen[n], "number %d handed out twice", n)
			require.NotZero(t, n, "0 is the unassigned sentinel and must never be allocated")
			require.GreaterOrEqual(t, n, p.Low())
			require.LessOrEqual(t, n, p.High())
			seen[n] = true
		}
		assert.Equal(t, p.Size(), p.UsedCount())
	}

	t.Run("sequential", func(t *testing.T) {
		run(t, NewPool(1, 200, 0, AllocSequential), func(i int) int64 { return 0 })
	})
	t.Run("hashed single shard", func(t *testing.T) {
		run(t, NewPool(1, 200, 0, AllocHashed), func(i int) int64 { return int64(1700000000 + i) })
	})
	t.Run("hashed sharded", func(t *testing.T) {
		run(t, NewPool(1, 200, 16, AllocHashed), func(i int) int64 { return int64(1700000000 + i) })
	})
	t.Run("hashed constant seed", func(t *testing.T) {
		// A stuck clock must still never produce a duplicate.
		run(t, NewPool(1, 64, 8, AllocHashed), func(i int) int64 { return 42 })
	})
}

func TestPool_Exhaustion(t *testing.T) {
	for name, p := range map[string]*Pool{
		"sequential": NewPool(1, 8, 0, AllocSequential),
		"hashed":     NewPool(1, 8, 4, AllocHashed),
	} {
		t.Run(name, func(t *testing.T) {
			for i := 0; i < p.Size(); i++ {
				_, err := p.AllocateNext(int64(i))
				require.NoError(t, err)
			}
			_, err := p.AllocateNext(99)
			require.ErrorIs(t, err, ErrNoAvailableNumbers)
			// A failed allocation changes nothing.
			assert.Equal(t, p.Size(), p.UsedCount())
		})
	}
}

func TestPool_HashedDeterministic(t *testing.T) {
	a := NewPool(1, 100, 10, AllocHashed)
	b := NewPool(1, 100, 10, AllocHashed)
	for i := 0; i < 50; i++ {
		na, err := a.AllocateNext(int64(i) * 7)
		require.NoError(t, err)
		nb, err := b.AllocateNext(int64(i) * 7)
		require.NoError(t, err)
		assert.Equal(t, na, nb, "same seed sequence must produce the same allocation sequence")
	}
}

func TestPool_MarkUsedRestore(t *testing.T) {
	p := NewPool(1, 50, 0, AllocSequential)
	require.True(t, p.MarkUsed(1))
	require.True(t, p.MarkUsed(2))
	require.False(t, p.MarkUsed(2), "double restore must be rejected")
	require.False(t, p.MarkUsed(51), "out-of-range restore must be rejected")

	n, err := p.AllocateNext(0)
	require.NoError(t, err)
	assert.Equal(t, uint16(3), n, "allocation must skip restored numbers")
	assert.True(t, p.IsUsed(1))
	assert.Equal(t, 3, p.UsedCount())
}

func TestPool_CursorNeverRetreats(t *testing.T) {
	p := NewPool(1, 100, 25, AllocHashed)
	before := p.ShardStates()
	for i := 0; i < 40; i++ {
		_, err := p.AllocateNext(int64(i))
		require.NoError(t, err)
	}
	after := p.ShardStates()
	require.Len(t, after, 4)
	for i := range after {
		assert.GreaterOrEqual(t, after[i].Cursor, before[i].Cursor, "shard %d cursor retreated", i)
	}

	// RestoreCursor ignores attempts to move a cursor backwards.
	p.RestoreCursor(0, 1)
	assert.Equal(t, after[0].Cursor, p.ShardStates()[0].Cursor)
}

func TestPool_ShardLayout(t *testing.T) {
	p := NewPool(1, 100, 30, AllocSequential)
	states := p.ShardStates()
	require.Len(t, states, 4)
	assert.Equal(t, uint16(1), states[0].Start)
	assert.Equal(t, uint16(30), states[0].Width)
	assert.Equal(t, uint16(91), states[3].Start)
	assert.Equal(t, uint16(10), states[3].Width, "trailing shard keeps the remainder")
}

func TestParseAllocationPolicy(t *testing.T) {
	pol, err := ParseAllocationPolicy("sequential")
	require.NoError(t, err)
	assert.Equal(t, AllocSequential, pol)
	pol, err = ParseAllocationPolicy("hashed")
	require.NoError(t, err)
	assert.Equal(t, AllocHashed, pol)
	_, err = ParseAllocationPolicy("vrf")
	assert.Error(t, err)
}
