package domain

import (
	"fmt"
	"math/big"
)

// Limits on location metadata, matching the on-chain account layout.
const (
	MaxLocationNameLen = 64
	MaxLocationDescLen = 256
)

// LocationStatus is the availability state of a display location.
type LocationStatus uint8

const (
	LocationUnbooked LocationStatus = iota + 1
	LocationBooked
	LocationUnderMaintenance
)

func (s LocationStatus) String() string {
	switch s {
	case LocationUnbooked:
		return "unbooked"
	case LocationBooked:
		return "booked"
	case LocationUnderMaintenance:
		return "under_maintenance"
	default:
		return fmt.Sprintf("status(%d)", uint8(s))
	}
}

// Location is a physical display registered by a provider. At most one
// active booking may hold the location at a time; while booked, BookedBy
// carries the campaign account address. Earnings accumulate settled payouts
// until the provider withdraws them.
type Location struct {
	Authority   Address
	LocationIdx uint64

	Name        string
	Description string

	Price           *big.Int
	OracleAuthority Address
	Status          LocationStatus
	BookedBy        Address
	Earnings        *big.Int
}

// NewLocation registers an unbooked location. The oracle authority is the
// identity permitted to attest performance metrics for settlement and is
// required up front: a location without one could never settle.
func NewLocation(authority Address, idx uint64, name, description string, price *big.Int, oracle Address) (*Location, error) {
	if authority.IsZero() {
		return nil, &ValidationError{Field: "authority", Reason: "authority is required"}
	}
	if name == "" {
		return nil, &ValidationError{Field: "name", Reason: "name is required"}
	}
	if len(name) > MaxLocationNameLen {
		return nil, &ValidationError{Field: "name", Reason: fmt.Sprintf("longer than %d bytes", MaxLocationNameLen)}
	}
	if len(description) > MaxLocationDescLen {
		return nil, &ValidationError{Field: "description", Reason: fmt.Sprintf("longer than %d bytes", MaxLocationDescLen)}
	}
	if err := validAmount("price", price, true); err != nil {
		return nil, err
	}
	if oracle.IsZero() {
		return nil, &ValidationError{Field: "oracleAuthority", Reason: "oracle authority is required"}
	}
	return &Location{
		Authority:       authority,
		LocationIdx:     idx,
		Name:            name,
		Description:     description,
		Price:           new(big.Int).Set(price),
		OracleAuthority: oracle,
		Status:          LocationUnbooked,
		Earnings:        big.NewInt(0),
	}, nil
}

// UpdateDetails replaces name and/or description; empty arguments leave the
// current value unchanged.
func (l *Location) UpdateDetails(name, description string) error {
	if len(name) > MaxLocationNameLen {
		return &ValidationError{Field: "name", Reason: fmt.Sprintf("longer than %d bytes", MaxLocationNameLen)}
	}
	if len(description) > MaxLocationDescLen {
		return &ValidationError{Field: "description", Reason: fmt.Sprintf("longer than %d bytes", MaxLocationDescLen)}
	}
	if name != "" {
		l.Name = name
	}
	if description != "" {
		l.Description = description
	}
	return nil
}

// UpdatePrice changes the asking price for future bookings. The price of an
// existing booking is frozen on the booking record, so repricing a booked
// location is allowed.
func (l *Location) UpdatePrice(price *big.Int) error {
	if err := validAmount("price", price, true); err != nil {
		return err
	}
	l.Price = new(big.Int).Set(price)
	return nil
}

// BeginMaintenance takes an unbooked location off the market, blocking new
// bookings until EndMaintenance.
func (l *Location) BeginMaintenance() error {
	if l.Status != LocationUnbooked {
		return &InvalidStateTransitionError{Entity: "location", From: l.Status.String(), Action: "begin maintenance"}
	}
	l.Status = LocationUnderMaintenance
	return nil
}

// EndMaintenance returns the location to the market.
func (l *Location) EndMaintenance() error {
	if l.Status != LocationUnderMaintenance {
		return &InvalidStateTransitionError{Entity: "location", From: l.Status.String(), Action: "end maintenance"}
	}
	l.Status = LocationUnbooked
	return nil
}

// CreditEarnings adds a settled payout to the provider's unwithdrawn
// earnings.
func (l *Location) CreditEarnings(amount *big.Int) error {
	if err := validAmount("amount", amount, false); err != nil {
		return err
	}
	l.Earnings = new(big.Int).Add(l.Earnings, amount)
	return nil
}

// WithdrawEarnings transfers accrued earnings out to the provider. A nil
// amount withdraws everything. The withdrawn amount is returned.
func (l *Location) WithdrawEarnings(amount *big.Int) (*big.Int, error) {
	if amount == nil {
		amount = l.Earnings
	}
	if err := validAmount("amount", amount, true); err != nil {
		return nil, err
	}
	if amount.Cmp(l.Earnings) > 0 {
		return nil, &InsufficientFundsError{Op: "withdraw earnings", Requested: new(big.Int).Set(amount), Available: new(big.Int).Set(l.Earnings)}
	}
	withdrawn := new(big.Int).Set(amount)
	l.Earnings = new(big.Int).Sub(l.Earnings, amount)
	return withdrawn, nil
}
