package engine

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memFunds is an in-memory FundsBook with per-transfer failure injection.
type memFunds struct {
	balances map[Identity]uint64
	failOn   func(from, to Identity) error
}

func newMemFunds() *memFunds { return &memFunds{balances: make(map[Identity]uint64)} }

func (f *memFunds) Balance(_ context.Context, id Identity) (uint64, error) {
	return f.balances[id], nil
}

func (f *memFunds) Transfer(_ context.Context, from, to Identity, amount uint64) error {
	if f.failOn != nil {
		if err := f.failOn(from, to); err != nil {
			return err
		}
	}
	if f.balances[from] < amount {
		return errors.New("transfer: insufficient balance")
	}
	f.balances[from] -= amount
	f.balances[to] += amount
	return nil
}

// memMint issues sequential item identities and can be told to fail.
type memMint struct {
	next int
	fail error
}

func (m *memMint) Mint(_ context.Context, _ Identity) (Identity, error) {
	if m.fail != nil {
		return "", m.fail
	}
	m.next++
	return Identity(fmt.Sprintf("item-%d", m.next)), nil
}

type fixedFeed uint64

func (f fixedFeed) PriceLamports(context.Context) (uint64, error) { return uint64(f), nil }

const (
	payer    = Identity("buyer")
	primary  = Identity("primary")
	treasury = Identity("treasury")
)

func newFixture(t *testing.T, cap uint64) (*Engine, *SaleLedger, *memFunds, *memMint) {
	t.Helper()
	funds := newMemFunds()
	funds.balances[payer] = 10_000_000
	mint := &memMint{}
	e := New(Config{Allocation: AllocSequential, Settlement: SettleSplit, Price: PriceFixed}, funds, mint, nil)
	l, err := NewSaleLedger(cap, 1_000_000,
		Window{Start: 100, End: 200},
		Window{Start: 300, End: 400},
		"admin", primary, treasury)
	require.NoError(t, err)
	return e, l, funds, mint
}

func claimed() Recipients { return Recipients{Primary: primary, Secondary: treasury} }

func TestEngine_PurchaseSuccess(t *testing.T) {
	e, l, funds, _ := newFixture(t, 10)
	ctx := context.Background()

	ticket, err := e.Purchase(ctx, l, payer, claimed(), 150)
	require.NoError(t, err)
	require.NotNil(t, ticket)

	assert.Equal(t, payer, ticket.Owner)
	assert.NotEmpty(t, ticket.ItemID)
	assert.False(t, ticket.Revealed())

	assert.Equal(t, uint64(1), l.TotalSold)
	assert.Equal(t, uint64(1_000_000), l.TotalRaised)
	assert.Equal(t, uint64(9_000_000), funds.balances[payer])
	assert.Equal(t, uint64(750_000), funds.balances[primary])
	assert.Equal(t, uint64(250_000), funds.balances[treasury])
}

func TestEngine_CapInvariant(t *testing.T) {
	e, l, _, _ := newFixture(t, 2)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := e.Purchase(ctx, l, payer, claimed(), 150)
		require.NoError(t, err)
	}
	_, err := e.Purchase(ctx, l, payer, claimed(), 150)
	require.ErrorIs(t, err, ErrNftLimitReached)
	assert.Equal(t, uint64(2), l.TotalSold, "failed purchase must not move the counter")
}

func TestEngine_WindowInvariant(t *testing.T) {
	e, l, funds, mint := newFixture(t, 10)
	ctx := context.Background()

	for _, now := range []int64{99, 201} {
		_, err := e.Purchase(ctx, l, payer, claimed(), now)
		require.ErrorIs(t, err, ErrNotInPurchasePeriod)
	}
	// Zero side effects: no transfer, no mint, no counter change.
	assert.Equal(t, uint64(10_000_000), funds.balances[payer])
	assert.Zero(t, funds.balances[primary])
	assert.Zero(t, mint.next)
	assert.Zero(t, l.TotalSold)
	assert.Zero(t, l.TotalRaised)
}

func TestEngine_RecipientMismatch(t *testing.T) {
	e, l, funds, _ := newFixture(t, 10)
	ctx := context.Background()

	_, err := e.Purchase(ctx, l, payer, Recipients{Primary: "attacker", Secondary: treasury}, 150)
	require.ErrorIs(t, err, ErrInvalidAdminSolAccount)

	_, err = e.Purchase(ctx, l, payer, Recipients{Primary: primary, Secondary: "attacker"}, 150)
	require.ErrorIs(t, err, ErrInvalidTreasuryAccount)

	assert.Equal(t, uint64(10_000_000), funds.balances[payer])
	assert.Zero(t, l.TotalSold)
}

func TestEngine_InsufficientFunds(t *testing.T) {
	e, l, funds, _ := newFixture(t, 10)
	funds.balances[payer] = 999_999
	ctx := context.Background()

	_, err := e.Purchase(ctx, l, payer, claimed(), 150)
	require.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Equal(t, uint64(999_999), funds.balances[payer])
	assert.Zero(t, l.TotalSold)
}

func TestEngine_SecondLegFailureRefundsFirst(t *testing.T) {
	e, l, funds, mint := newFixture(t, 10)
	legFailure := errors.New("treasury leg rejected")
	funds.failOn = func(from, to Identity) error {
		if to == treasury {
			return legFailure
		}
		return nil
	}
	ctx := context.Background()

	_, err := e.Purchase(ctx, l, payer, claimed(), 150)
	require.ErrorIs(t, err, legFailure)

	assert.Equal(t, uint64(10_000_000), funds.balances[payer], "first leg must be refunded")
	assert.Zero(t, funds.balances[primary])
	assert.Zero(t, funds.balances[treasury])
	assert.Zero(t, mint.next)
	assert.Zero(t, l.TotalSold)
	assert.Zero(t, l.TotalRaised)
}

func TestEngine_MintFailureUnwindsSettlement(t *testing.T) {
	e, l, funds, mint := newFixture(t, 10)
	mint.fail = errors.New("mint rejected")
	ctx := context.Background()

	_, err := e.Purchase(ctx, l, payer, claimed(), 150)
	require.ErrorIs(t, err, mint.fail)

	assert.Equal(t, uint64(10_000_000), funds.balances[payer], "both legs must be refunded")
	assert.Zero(t, funds.balances[primary])
	assert.Zero(t, funds.balances[treasury])
	assert.Zero(t, l.TotalSold)
	assert.Zero(t, l.TotalRaised)
}

func TestEngine_SingleRecipientSettlement(t *testing.T) {
	funds := newMemFunds()
	funds.balances[payer] = 2_000_000
	e := New(Config{Allocation: AllocSequential, Settlement: SettleSingle, Price: PriceFixed}, funds, &memMint{}, nil)
	l, err := NewSaleLedger(5, 1_000_000, Window{100, 200}, Window{300, 400}, "admin", primary, treasury)
	require.NoError(t, err)

	// Single mode ignores the secondary recipient claim entirely.
	_, err = e.Purchase(context.Background(), l, payer, Recipients{Primary: primary}, 150)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_000_000), funds.balances[primary])
	assert.Zero(t, funds.balances[treasury])
}

func TestEngine_OraclePrice(t *testing.T) {
	funds := newMemFunds()
	funds.balances[payer] = 2_000_000
	e := New(Config{Allocation: AllocSequential, Settlement: SettleSplit, Price: PriceOracleDerived}, funds, &memMint{}, fixedFeed(400_000))
	l, err := NewSaleLedger(5, 1_000_000, Window{100, 200}, Window{300, 400}, "admin", primary, treasury)
	require.NoError(t, err)

	_, err = e.Purchase(context.Background(), l, payer, claimed(), 150)
	require.NoError(t, err)
	assert.Equal(t, uint64(400_000), l.TotalRaised, "oracle price overrides the ledger price")
	assert.Equal(t, uint64(300_000), funds.balances[primary])
	assert.Equal(t, uint64(100_000), funds.balances[treasury])
}

func TestEngine_RevealFlow(t *testing.T) {
	e, l, _, _ := newFixture(t, 10)
	pool := NewPool(1, 100, 0, AllocSequential)
	ctx := context.Background()

	ticket, err := e.Purchase(ctx, l, payer, claimed(), 150)
	require.NoError(t, err)

	t.Run("outside window", func(t *testing.T) {
		_, err := e.Reveal(l, pool, ticket, ticket.ItemID, 250)
		require.ErrorIs(t, err, ErrNotInRevealPeriod)
		assert.False(t, ticket.Revealed())
	})

	t.Run("wrong item identity", func(t *testing.T) {
		_, err := e.Reveal(l, pool, ticket, "not-the-item", 350)
		require.ErrorIs(t, err, ErrNftNotFound)
		assert.False(t, ticket.Revealed())
		assert.Zero(t, pool.UsedCount())
	})

	t.Run("success", func(t *testing.T) {
		n, err := e.Reveal(l, pool, ticket, ticket.ItemID, 350)
		require.NoError(t, err)
		assert.Equal(t, uint16(1), n)
		assert.Equal(t, n, ticket.RevealedNumber)
		assert.Equal(t, int64(1), l.TotalRevealed)
		assert.True(t, pool.IsUsed(n))
	})

	t.Run("irreversible", func(t *testing.T) {
		_, err := e.Reveal(l, pool, ticket, ticket.ItemID, 350)
		require.ErrorIs(t, err, ErrNftAlreadyRevealed)
		assert.Equal(t, uint16(1), ticket.RevealedNumber)
		assert.Equal(t, int64(1), l.TotalRevealed, "replay must not move the counter")
		assert.Equal(t, 1, pool.UsedCount(), "replay must not touch the used set")
	})
}

// TestEngine_DropScenario walks the end-to-end example: cap 2, pool [1,100],
// two purchases, a rejected third, reveal A twice, reveal B.
func TestEngine_DropScenario(t *testing.T) {
	e, l, _, _ := newFixture(t, 2)
	pool := NewPool(1, 100, 0, AllocSequential)
	ctx := context.Background()

	ticketA, err := e.Purchase(ctx, l, payer, claimed(), 150)
	require.NoError(t, err)
	ticketB, err := e.Purchase(ctx, l, payer, claimed(), 160)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), l.TotalSold)

	_, err = e.Purchase(ctx, l, payer, claimed(), 170)
	require.ErrorIs(t, err, ErrNftLimitReached)

	nA, err := e.Reveal(l, pool, ticketA, ticketA.ItemID, 350)
	require.NoError(t, err)
	assert.Equal(t, uint16(1), nA)

	_, err = e.Reveal(l, pool, ticketA, ticketA.ItemID, 351)
	require.ErrorIs(t, err, ErrNftAlreadyRevealed)

	nB, err := e.Reveal(l, pool, ticketB, ticketB.ItemID, 352)
	require.NoError(t, err)
	assert.Equal(t, uint16(2), nB)

	assert.Equal(t, int64(2), l.TotalRevealed)
	assert.Equal(t, 2, pool.UsedCount())
}
