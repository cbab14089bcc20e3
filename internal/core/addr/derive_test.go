package addr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adboard/internal/core/domain"
)

func testProgram() domain.Address {
	var p domain.Address
	copy(p[:], "adboard-program-test------------")
	return p
}

func owner(b byte) domain.Address {
	var a domain.Address
	for i := range a {
		a[i] = b
	}
	return a
}

func TestDeriveDeterministic(t *testing.T) {
	d := New(testProgram())

	first, nonce1, err := d.Campaign(owner(0xAA), 3)
	require.NoError(t, err)
	second, nonce2, err := d.Campaign(owner(0xAA), 3)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, nonce1, nonce2)
	assert.False(t, first.IsZero())
	assert.NotZero(t, first[0], "derived address must avoid the reserved space")
}

func TestDeriveDistinct(t *testing.T) {
	d := New(testProgram())

	a3, _, err := d.Campaign(owner(0xAA), 3)
	require.NoError(t, err)
	a4, _, err := d.Campaign(owner(0xAA), 4)
	require.NoError(t, err)
	assert.NotEqual(t, a3, a4)

	other, _, err := d.Campaign(owner(0xBB), 3)
	require.NoError(t, err)
	assert.NotEqual(t, a3, other)

	// same owner and index, different kind
	loc, _, err := d.Location(owner(0xAA), 3)
	require.NoError(t, err)
	assert.NotEqual(t, a3, loc)
}

func TestDeriveProgramSeparation(t *testing.T) {
	a1, _, err := New(testProgram()).Advertiser(owner(1))
	require.NoError(t, err)
	a2, _, err := New(owner(0x55)).Advertiser(owner(1))
	require.NoError(t, err)
	assert.NotEqual(t, a1, a2)
}

func TestNonceProbing(t *testing.T) {
	d := New(testProgram())

	addr, nonce, err := d.Campaign(owner(0xAA), 7)
	require.NoError(t, err)

	// the returned nonce reproduces the address exactly
	probe, ok := d.WithNonce(nonce, campaignSeed, owner(0xAA).Bytes(), indexBytes(7))
	require.True(t, ok)
	assert.Equal(t, addr, probe)

	// every nonce above the selected one was rejected
	for n := 255; n > int(nonce); n-- {
		_, ok := d.WithNonce(uint8(n), campaignSeed, owner(0xAA).Bytes(), indexBytes(7))
		assert.False(t, ok, "nonce %d should have been skipped", n)
	}
}

func TestBookingPairAddress(t *testing.T) {
	d := New(testProgram())

	campaign, _, err := d.Campaign(owner(1), 0)
	require.NoError(t, err)
	location, _, err := d.Location(owner(2), 0)
	require.NoError(t, err)

	ab, _, err := d.Booking(campaign, location)
	require.NoError(t, err)
	ba, _, err := d.Booking(location, campaign)
	require.NoError(t, err)
	assert.NotEqual(t, ab, ba, "booking derivation is order-sensitive")
}

func TestForKind(t *testing.T) {
	d := New(testProgram())

	viaKind, _, err := d.ForKind(domain.KindCampaign, owner(3), 9)
	require.NoError(t, err)
	direct, _, err := d.Campaign(owner(3), 9)
	require.NoError(t, err)
	assert.Equal(t, direct, viaKind)

	_, _, err = d.ForKind(domain.KindBooking, owner(3), 0)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
}
