package domain

import (
	"bytes"
	"fmt"

	"github.com/btcsuite/btcutil/base58"
)

// AddressLen is the byte length of a ledger account address.
const AddressLen = 32

// Address identifies a single account on the ledger. Addresses are opaque
// 32-byte values rendered as base58 for logs, configuration and the mirror
// database. The zero Address is never a valid account.
type Address [AddressLen]byte

// ParseAddress decodes a base58-encoded address. It returns a
// ValidationError when the input does not decode to exactly AddressLen bytes.
func ParseAddress(s string) (Address, error) {
	raw := base58.Decode(s)
	if len(raw) != AddressLen {
		return Address{}, &ValidationError{Field: "address", Reason: fmt.Sprintf("expected %d bytes, got %d", AddressLen, len(raw))}
	}
	var a Address
	copy(a[:], raw)
	return a, nil
}

// MustParseAddress is ParseAddress that panics on malformed input. Intended
// for constants and tests only.
func MustParseAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

// String renders the address as base58.
func (a Address) String() string { return base58.Encode(a[:]) }

// IsZero reports whether the address is the all-zero value.
func (a Address) IsZero() bool { return a == Address{} }

// Bytes returns a copy of the raw address bytes.
func (a Address) Bytes() []byte { return bytes.Clone(a[:]) }

// AccountKind discriminates the account types owned by the marketplace
// program. The numeric values are part of the mirror upsert key and must not
// be reordered.
type AccountKind uint8

const (
	KindAdvertiser AccountKind = iota + 1
	KindCampaign
	KindProvider
	KindLocation
	KindBooking
)

// String returns the lower-case kind name used in seeds, metrics labels and
// mirror keys.
func (k AccountKind) String() string {
	switch k {
	case KindAdvertiser:
		return "advertiser"
	case KindCampaign:
		return "campaign"
	case KindProvider:
		return "provider"
	case KindLocation:
		return "location"
	case KindBooking:
		return "campaign_location"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}
