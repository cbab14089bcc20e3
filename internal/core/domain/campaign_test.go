package domain

import (
	"math/big"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bi(v int64) *big.Int { return big.NewInt(v) }

func testAuthority(b byte) Address {
	var a Address
	a[0] = b
	a[31] = b
	return a
}

func newTestCampaign(t *testing.T, budget int64) *Campaign {
	t.Helper()
	c, err := NewCampaign(testAuthority(1), 0, CampaignMetadata{Name: "billboard launch"}, bi(budget))
	require.NoError(t, err)
	return c
}

func TestDepositReserveSettleFlow(t *testing.T) {
	c := newTestCampaign(t, 0)

	require.NoError(t, c.Deposit(bi(10_000)))
	assert.Equal(t, bi(10_000), c.AvailableBudget)

	require.NoError(t, c.Reserve(bi(4_000)))
	assert.Equal(t, bi(6_000), c.AvailableBudget)
	assert.Equal(t, bi(4_000), c.ReservedBudget)
	assert.Equal(t, bi(10_000), c.TotalBudget())

	require.NoError(t, c.Settle(bi(4_000)))
	assert.Zero(t, c.ReservedBudget.Sign())
	assert.Equal(t, bi(4_000), c.SpentBudget)
	assert.Equal(t, bi(6_000), c.TotalBudget())
}

func TestReserveReleaseRoundTrip(t *testing.T) {
	c := newTestCampaign(t, 9_999)
	require.NoError(t, c.Reserve(bi(1_234)))

	before := struct{ available, reserved *big.Int }{
		new(big.Int).Set(c.AvailableBudget),
		new(big.Int).Set(c.ReservedBudget),
	}

	require.NoError(t, c.Reserve(bi(777)))
	require.NoError(t, c.Release(bi(777)))

	assert.Equal(t, before.available, c.AvailableBudget)
	assert.Equal(t, before.reserved, c.ReservedBudget)
}

func TestInsufficientFunds(t *testing.T) {
	c := newTestCampaign(t, 100)

	var insufficient *InsufficientFundsError
	require.ErrorAs(t, c.Reserve(bi(101)), &insufficient)
	assert.Equal(t, "reserve", insufficient.Op)

	require.ErrorAs(t, c.Withdraw(bi(101)), &insufficient)
	require.ErrorAs(t, c.Release(bi(1)), &insufficient)
	require.ErrorAs(t, c.Settle(bi(1)), &insufficient)

	// rejected operations leave the ledger untouched
	assert.Equal(t, bi(100), c.AvailableBudget)
	assert.Zero(t, c.ReservedBudget.Sign())
}

func TestInvalidAmounts(t *testing.T) {
	c := newTestCampaign(t, 100)

	var verr *ValidationError
	require.ErrorAs(t, c.Deposit(nil), &verr)
	require.ErrorAs(t, c.Deposit(bi(0)), &verr)
	require.ErrorAs(t, c.Deposit(bi(-5)), &verr)
	require.ErrorAs(t, c.Reserve(bi(-5)), &verr)
	require.ErrorAs(t, c.Withdraw(bi(0)), &verr)
}

func TestCloseRequiresNoReservedFunds(t *testing.T) {
	c := newTestCampaign(t, 1_000)
	require.NoError(t, c.Reserve(bi(400)))

	var transition *InvalidStateTransitionError
	_, err := c.Close()
	require.ErrorAs(t, err, &transition)

	require.NoError(t, c.Release(bi(400)))
	refund, err := c.Close()
	require.NoError(t, err)
	assert.Equal(t, bi(1_000), refund)
	assert.Zero(t, c.AvailableBudget.Sign())
	assert.Equal(t, CampaignEnded, c.Status)

	// a retried close is rejected, not silently accepted
	_, err = c.Close()
	require.ErrorAs(t, err, &transition)
}

func TestPauseBlocksSpending(t *testing.T) {
	c := newTestCampaign(t, 1_000)
	require.NoError(t, c.Reserve(bi(300)))
	require.NoError(t, c.Pause())

	var transition *InvalidStateTransitionError
	require.ErrorAs(t, c.Deposit(bi(1)), &transition)
	require.ErrorAs(t, c.Reserve(bi(1)), &transition)
	require.ErrorAs(t, c.Withdraw(bi(1)), &transition)

	// existing bookings can still be cancelled or settled while paused
	require.NoError(t, c.Release(bi(100)))
	require.NoError(t, c.Settle(bi(200)))

	require.NoError(t, c.Resume())
	require.NoError(t, c.Deposit(bi(1)))
}

func TestUpdateMetadata(t *testing.T) {
	c := newTestCampaign(t, 0)
	require.NoError(t, c.UpdateMetadata(CampaignMetadata{Description: "spring run"}))
	assert.Equal(t, "billboard launch", c.Name)
	assert.Equal(t, "spring run", c.Description)

	var verr *ValidationError
	long := make([]byte, MaxCampaignNameLen+1)
	for i := range long {
		long[i] = 'x'
	}
	require.ErrorAs(t, c.UpdateMetadata(CampaignMetadata{Name: string(long)}), &verr)
}

// TestBudgetInvariantFuzz drives a random operation sequence and checks the
// balance invariants after every step: both buckets stay non-negative and
// available+reserved tracks deposits-withdrawals-settlements exactly.
func TestBudgetInvariantFuzz(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	c := newTestCampaign(t, 0)

	expected := big.NewInt(0) // deposits - withdrawals - settlements
	for i := 0; i < 5_000; i++ {
		amount := bi(rng.Int63n(1_000) + 1)
		switch rng.Intn(5) {
		case 0:
			if c.Deposit(amount) == nil {
				expected.Add(expected, amount)
			}
		case 1:
			_ = c.Reserve(amount)
		case 2:
			_ = c.Release(amount)
		case 3:
			if c.Settle(amount) == nil {
				expected.Sub(expected, amount)
			}
		case 4:
			if c.Withdraw(amount) == nil {
				expected.Sub(expected, amount)
			}
		}

		require.GreaterOrEqual(t, c.AvailableBudget.Sign(), 0, "step %d", i)
		require.GreaterOrEqual(t, c.ReservedBudget.Sign(), 0, "step %d", i)
		require.Zero(t, c.TotalBudget().Cmp(expected), "step %d: held %s, expected %s", i, c.TotalBudget(), expected)
	}
}

func TestAdvertiserIndexMonotone(t *testing.T) {
	a, err := NewAdvertiser(testAuthority(2))
	require.NoError(t, err)

	idx0, err := a.NextCampaignIndex()
	require.NoError(t, err)
	idx1, err := a.NextCampaignIndex()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), idx0)
	assert.Equal(t, uint64(1), idx1)
	assert.Equal(t, uint64(2), a.CampaignCount)

	require.NoError(t, a.CampaignClosed())
	assert.Equal(t, uint64(1), a.CampaignCount)
	// the index counter never rewinds, even after closes
	assert.Equal(t, uint64(2), a.LastCampaignID)
}
