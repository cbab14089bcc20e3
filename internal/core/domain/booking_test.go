package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLocation(t *testing.T, price int64) *Location {
	t.Helper()
	l, err := NewLocation(testAuthority(9), 0, "times square east", "", bi(price), testAuthority(8))
	require.NoError(t, err)
	return l
}

func campaignAddr() Address { return testAuthority(0x10) }
func locationAddr() Address { return testAuthority(0x20) }

func TestBookReservesPrice(t *testing.T) {
	c := newTestCampaign(t, 10_000)
	l := newTestLocation(t, 3_700)

	b, err := Book(c, campaignAddr(), l, locationAddr(), 100)
	require.NoError(t, err)

	assert.Equal(t, LocationBooked, l.Status)
	assert.Equal(t, campaignAddr(), l.BookedBy)
	assert.Equal(t, BookingActive, b.Status)
	assert.Equal(t, bi(3_700), b.Price)
	assert.Equal(t, bi(6_300), c.AvailableBudget)
	assert.Equal(t, bi(3_700), c.ReservedBudget)
}

func TestDoubleBookingRejected(t *testing.T) {
	c := newTestCampaign(t, 10_000)
	l := newTestLocation(t, 1_000)

	_, err := Book(c, campaignAddr(), l, locationAddr(), 100)
	require.NoError(t, err)

	var transition *InvalidStateTransitionError
	_, err = Book(c, campaignAddr(), l, locationAddr(), 101)
	require.ErrorAs(t, err, &transition)
	assert.Equal(t, "booked", transition.From)
}

func TestMaintenanceBlocksBooking(t *testing.T) {
	c := newTestCampaign(t, 10_000)
	l := newTestLocation(t, 1_000)
	require.NoError(t, l.BeginMaintenance())

	var transition *InvalidStateTransitionError
	_, err := Book(c, campaignAddr(), l, locationAddr(), 100)
	require.ErrorAs(t, err, &transition)

	// maintenance cannot start while booked
	require.NoError(t, l.EndMaintenance())
	_, err = Book(c, campaignAddr(), l, locationAddr(), 100)
	require.NoError(t, err)
	require.ErrorAs(t, l.BeginMaintenance(), &transition)
}

func TestBookInsufficientBudget(t *testing.T) {
	c := newTestCampaign(t, 500)
	l := newTestLocation(t, 1_000)

	var insufficient *InsufficientFundsError
	_, err := Book(c, campaignAddr(), l, locationAddr(), 100)
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, LocationUnbooked, l.Status)
}

func TestCancelRestoresBudget(t *testing.T) {
	c := newTestCampaign(t, 10_000)
	l := newTestLocation(t, 2_500)

	b, err := Book(c, campaignAddr(), l, locationAddr(), 100)
	require.NoError(t, err)
	require.NoError(t, b.Cancel(c, l, 200))

	assert.Equal(t, BookingCancelled, b.Status)
	assert.Equal(t, LocationUnbooked, l.Status)
	assert.True(t, l.BookedBy.IsZero())
	assert.Equal(t, bi(10_000), c.AvailableBudget)
	assert.Zero(t, c.ReservedBudget.Sign())
	assert.Equal(t, int64(200), b.UpdatedAt)

	// cancelled is terminal
	var transition *InvalidStateTransitionError
	require.ErrorAs(t, b.Cancel(c, l, 201), &transition)
}

// TestSettleFlow walks the reference scenario end to end: a 10,000,000 unit
// campaign books a 3,700 location, settles 37 views at 100 per view with a
// 250 bps fee; the provider earns 3,608 and the protocol keeps 92.
func TestSettleFlow(t *testing.T) {
	c := newTestCampaign(t, 10_000_000)
	l := newTestLocation(t, 3_700)

	b, err := Book(c, campaignAddr(), l, locationAddr(), 100)
	require.NoError(t, err)
	require.Equal(t, bi(3_700), c.ReservedBudget)

	// quote for views=37, price 100, feeBps 250, floor
	require.NoError(t, b.Settle(c, l, bi(3_700), bi(3_608), 300))

	assert.Equal(t, BookingSettled, b.Status)
	assert.Equal(t, bi(3_700), b.SettledAmount)
	assert.Equal(t, bi(92), b.FeeAmount)
	assert.Equal(t, LocationUnbooked, l.Status)
	assert.Equal(t, bi(3_608), l.Earnings)
	assert.Zero(t, c.ReservedBudget.Sign())
	assert.Equal(t, bi(9_996_300), c.AvailableBudget)
	assert.Equal(t, bi(3_700), c.SpentBudget)
}

func TestSettlePartialRefundsRemainder(t *testing.T) {
	c := newTestCampaign(t, 10_000)
	l := newTestLocation(t, 5_000)

	b, err := Book(c, campaignAddr(), l, locationAddr(), 100)
	require.NoError(t, err)

	// delivery came in under the booked price: 3,000 gross, no fee
	require.NoError(t, b.Settle(c, l, bi(3_000), bi(3_000), 200))

	assert.Zero(t, c.ReservedBudget.Sign())
	assert.Equal(t, bi(7_000), c.AvailableBudget) // 5,000 + refunded 2,000
	assert.Equal(t, bi(3_000), c.SpentBudget)
	assert.Equal(t, bi(3_000), l.Earnings)
}

func TestSettleGuards(t *testing.T) {
	c := newTestCampaign(t, 10_000)
	l := newTestLocation(t, 1_000)

	b, err := Book(c, campaignAddr(), l, locationAddr(), 100)
	require.NoError(t, err)

	var verr *ValidationError
	require.ErrorAs(t, b.Settle(c, l, bi(1_001), bi(1_001), 200), &verr) // exceeds price
	require.ErrorAs(t, b.Settle(c, l, bi(100), bi(200), 200), &verr)    // net > gross
	require.ErrorAs(t, b.Settle(c, l, bi(-1), bi(0), 200), &verr)

	require.NoError(t, b.Settle(c, l, bi(1_000), bi(990), 200))

	// settled is terminal: no second settle, no cancel
	var transition *InvalidStateTransitionError
	require.ErrorAs(t, b.Settle(c, l, bi(1), bi(1), 300), &transition)
	require.ErrorAs(t, b.Cancel(c, l, 300), &transition)
}

func TestBookingMismatchedLocation(t *testing.T) {
	c := newTestCampaign(t, 10_000)
	l := newTestLocation(t, 1_000)

	b, err := Book(c, campaignAddr(), l, locationAddr(), 100)
	require.NoError(t, err)

	// location re-booked by someone else: the pair no longer matches
	l.BookedBy = testAuthority(0x77)
	var verr *ValidationError
	require.ErrorAs(t, b.Cancel(c, l, 200), &verr)
}

func TestWithdrawEarnings(t *testing.T) {
	l := newTestLocation(t, 1_000)
	require.NoError(t, l.CreditEarnings(bi(900)))

	got, err := l.WithdrawEarnings(bi(400))
	require.NoError(t, err)
	assert.Equal(t, bi(400), got)
	assert.Equal(t, bi(500), l.Earnings)

	// nil withdraws the full remainder
	got, err = l.WithdrawEarnings(nil)
	require.NoError(t, err)
	assert.Equal(t, bi(500), got)
	assert.Zero(t, l.Earnings.Sign())

	var verr *ValidationError
	_, err = l.WithdrawEarnings(nil)
	require.ErrorAs(t, err, &verr) // nothing left

	require.NoError(t, l.CreditEarnings(bi(10)))
	var insufficient *InsufficientFundsError
	_, err = l.WithdrawEarnings(bi(11))
	require.ErrorAs(t, err, &insufficient)
}
