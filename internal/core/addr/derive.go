// Package addr computes deterministic account addresses for the marketplace
// program. An address is a pure function of (owner, kind, index) plus a
// disambiguation nonce, so any party can locate an account without a central
// registry.
package addr

import (
	"encoding/binary"

	"lukechampine.com/blake3"

	"adboard/internal/core/domain"
)

// Seed prefixes, one per account kind. They keep the address spaces of the
// kinds disjoint even for identical owner/index pairs.
var (
	advertiserSeed = []byte("advertiser")
	campaignSeed   = []byte("campaign")
	providerSeed   = []byte("provider")
	locationSeed   = []byte("location")
	bookingSeed    = []byte("campaign_location")
)

// derivedMarker domain-separates derived addresses from holder keys.
var derivedMarker = []byte("adboard:derived")

// Deriver derives addresses under one program. A zero Deriver is not usable;
// construct with New so the program address is always set.
type Deriver struct {
	program domain.Address
}

// New returns a Deriver bound to the given program address.
func New(program domain.Address) Deriver {
	return Deriver{program: program}
}

// Program returns the program address the deriver is bound to.
func (d Deriver) Program() domain.Address { return d.program }

// Advertiser derives the advertiser registry address for an authority.
func (d Deriver) Advertiser(authority domain.Address) (domain.Address, uint8, error) {
	return d.derive(advertiserSeed, authority[:])
}

// Provider derives the provider registry address for an authority.
func (d Deriver) Provider(authority domain.Address) (domain.Address, uint8, error) {
	return d.derive(providerSeed, authority[:])
}

// Campaign derives the campaign address for (authority, index). The index is
// encoded as an 8-byte little-endian u64; the historical one-byte cap on
// campaign indices is deliberately lifted here.
func (d Deriver) Campaign(authority domain.Address, idx uint64) (domain.Address, uint8, error) {
	return d.derive(campaignSeed, authority[:], indexBytes(idx))
}

// Location derives the location address for (authority, index).
func (d Deriver) Location(authority domain.Address, idx uint64) (domain.Address, uint8, error) {
	return d.derive(locationSeed, authority[:], indexBytes(idx))
}

// Booking derives the relation address for a campaign-location pair.
func (d Deriver) Booking(campaign, location domain.Address) (domain.Address, uint8, error) {
	return d.derive(bookingSeed, campaign[:], location[:])
}

// ForKind dispatches derivation by account kind. Campaign and Location take
// (owner, index); Advertiser and Provider ignore the index. Booking records
// are keyed by two derived addresses, not an owner and index, so ForKind
// rejects KindBooking.
func (d Deriver) ForKind(kind domain.AccountKind, owner domain.Address, idx uint64) (domain.Address, uint8, error) {
	switch kind {
	case domain.KindAdvertiser:
		return d.Advertiser(owner)
	case domain.KindProvider:
		return d.Provider(owner)
	case domain.KindCampaign:
		return d.Campaign(owner, idx)
	case domain.KindLocation:
		return d.Location(owner, idx)
	default:
		return domain.Address{}, 0, &domain.ValidationError{Field: "kind", Reason: "cannot derive " + kind.String() + " from owner and index"}
	}
}

// derive searches nonces from 255 downward and returns the first candidate
// outside the reserved address space, together with the nonce that produced
// it. Callers that need the next candidate (a colliding account already
// exists at the returned address) can probe further with WithNonce.
func (d Deriver) derive(seeds ...[]byte) (domain.Address, uint8, error) {
	for nonce := 255; nonce >= 0; nonce-- {
		candidate, ok := d.WithNonce(uint8(nonce), seeds...)
		if ok {
			return candidate, uint8(nonce), nil
		}
	}
	return domain.Address{}, 0, &domain.ValidationError{Field: "nonce", Reason: "no valid nonce in 0..255"}
}

// WithNonce computes the candidate address for an explicit nonce. It reports
// false when the candidate falls in the reserved address space (leading zero
// byte, reserved for system accounts) and must be skipped.
func (d Deriver) WithNonce(nonce uint8, seeds ...[]byte) (domain.Address, bool) {
	h := blake3.New(domain.AddressLen, nil)
	for _, seed := range seeds {
		h.Write(seed)
	}
	h.Write([]byte{nonce})
	h.Write(d.program[:])
	h.Write(derivedMarker)

	var a domain.Address
	copy(a[:], h.Sum(nil))
	return a, a[0] != 0
}

func indexBytes(idx uint64) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, idx)
	return buf
}
