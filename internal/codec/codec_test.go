package codec

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adboard/internal/core/domain"
)

func addr(b byte) domain.Address {
	var a domain.Address
	for i := range a {
		a[i] = b
	}
	return a
}

func TestCampaignRoundTrip(t *testing.T) {
	budget, ok := new(big.Int).SetString("123456789012345678901234567890", 10)
	require.True(t, ok)

	in := &domain.Campaign{
		Authority:       addr(1),
		CampaignIdx:     42,
		Name:            "spring billboards",
		Description:     "city centre run",
		ImageURL:        "ipfs://bafy.../banner.png",
		Status:          domain.CampaignPaused,
		AvailableBudget: budget,
		ReservedBudget:  big.NewInt(777),
		SpentBudget:     big.NewInt(0),
	}

	data, err := EncodeCampaign(in)
	require.NoError(t, err)

	out, err := DecodeCampaign(data)
	require.NoError(t, err)

	assert.Equal(t, in.Authority, out.Authority)
	assert.Equal(t, in.CampaignIdx, out.CampaignIdx)
	assert.Equal(t, in.Name, out.Name)
	assert.Equal(t, in.Description, out.Description)
	assert.Equal(t, in.ImageURL, out.ImageURL)
	assert.Equal(t, in.Status, out.Status)
	assert.Zero(t, in.AvailableBudget.Cmp(out.AvailableBudget))
	assert.Zero(t, in.ReservedBudget.Cmp(out.ReservedBudget))
	assert.Zero(t, in.SpentBudget.Cmp(out.SpentBudget))

	reencoded, err := EncodeCampaign(out)
	require.NoError(t, err)
	assert.Equal(t, data, reencoded)
}

func TestBookingRoundTrip(t *testing.T) {
	in := &domain.Booking{
		Campaign:        addr(1),
		Location:        addr(2),
		Advertiser:      addr(3),
		Provider:        addr(4),
		OracleAuthority: addr(5),
		CampaignIdx:     7,
		LocationIdx:     9,
		Price:           big.NewInt(5_000),
		Status:          domain.BookingSettled,
		SettledAmount:   big.NewInt(3_700),
		FeeAmount:       big.NewInt(92),
		CreatedAt:       1_700_000_000,
		UpdatedAt:       1_700_000_600,
	}

	data, err := EncodeBooking(in)
	require.NoError(t, err)
	out, err := DecodeBooking(data)
	require.NoError(t, err)

	assert.Equal(t, in.Campaign, out.Campaign)
	assert.Equal(t, in.Location, out.Location)
	assert.Equal(t, in.Status, out.Status)
	assert.Equal(t, in.CreatedAt, out.CreatedAt)
	assert.Equal(t, in.UpdatedAt, out.UpdatedAt)
	assert.Zero(t, in.Price.Cmp(out.Price))
	assert.Zero(t, in.SettledAmount.Cmp(out.SettledAmount))
	assert.Zero(t, in.FeeAmount.Cmp(out.FeeAmount))

	reencoded, err := EncodeBooking(out)
	require.NoError(t, err)
	assert.Equal(t, data, reencoded)
}

func TestDiscriminatorMismatch(t *testing.T) {
	l := &domain.Location{
		Authority:   addr(1),
		Name:        "metro north",
		Price:       big.NewInt(100),
		Status:      domain.LocationUnbooked,
		Earnings:    big.NewInt(0),
		LocationIdx: 0,
	}
	data, err := EncodeLocation(l)
	require.NoError(t, err)

	_, err = DecodeCampaign(data)
	require.ErrorContains(t, err, "discriminator mismatch")

	_, err = DecodeCampaign(data[:4])
	require.ErrorContains(t, err, "too short")
}

func TestTruncatedPayload(t *testing.T) {
	a := &domain.Advertiser{Authority: addr(6), LastCampaignID: 3, CampaignCount: 2}
	data, err := EncodeAdvertiser(a)
	require.NoError(t, err)

	_, err = DecodeAdvertiser(data[:len(data)-1])
	require.ErrorContains(t, err, "truncated")

	// trailing garbage is rejected too
	_, err = DecodeAdvertiser(append(data, 0x00))
	require.ErrorContains(t, err, "trailing")
}

func TestAmountBounds(t *testing.T) {
	over := new(big.Int).Lsh(big.NewInt(1), 128)
	c := &domain.Campaign{
		Authority:       addr(1),
		Name:            "x",
		Status:          domain.CampaignActive,
		AvailableBudget: over,
		ReservedBudget:  big.NewInt(0),
		SpentBudget:     big.NewInt(0),
	}
	_, err := EncodeCampaign(c)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)

	c.AvailableBudget = big.NewInt(-1)
	_, err = EncodeCampaign(c)
	require.ErrorAs(t, err, &verr)

	// the 128-bit maximum itself still fits
	c.AvailableBudget = new(big.Int).Sub(over, big.NewInt(1))
	data, err := EncodeCampaign(c)
	require.NoError(t, err)
	out, err := DecodeCampaign(data)
	require.NoError(t, err)
	assert.Zero(t, out.AvailableBudget.Cmp(c.AvailableBudget))
}

func TestInstructionDiscriminators(t *testing.T) {
	book, err := EncodeBookLocation(1, 2)
	require.NoError(t, err)
	cancel, err := EncodeCancelBooking(1, 2)
	require.NoError(t, err)

	assert.NotEqual(t, book[:DiscriminatorLen], cancel[:DiscriminatorLen])
	assert.Equal(t, book[DiscriminatorLen:], cancel[DiscriminatorLen:])
}
