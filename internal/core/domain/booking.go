package domain

import (
	"fmt"
	"math/big"
)

// BookingStatus is the lifecycle state of a campaign-location booking.
// Settled and Cancelled are terminal.
type BookingStatus uint8

const (
	BookingActive BookingStatus = iota + 1
	BookingSettled
	BookingCancelled
)

func (s BookingStatus) String() string {
	switch s {
	case BookingActive:
		return "active"
	case BookingSettled:
		return "settled"
	case BookingCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("status(%d)", uint8(s))
	}
}

// Booking is the relation between a campaign and a location. It freezes the
// agreed price at booking time; while Active, the campaign holds exactly
// Price in reserved budget and the location reports Booked.
type Booking struct {
	Campaign Address
	Location Address

	Advertiser      Address
	Provider        Address
	OracleAuthority Address

	CampaignIdx uint64
	LocationIdx uint64

	Price         *big.Int
	Status        BookingStatus
	SettledAmount *big.Int
	FeeAmount     *big.Int

	CreatedAt int64
	UpdatedAt int64
}

// Book reserves the location for the campaign at the location's current
// price. Guards: the campaign must be active with sufficient available
// budget, the location must be unbooked (maintenance blocks booking) and
// must have an oracle authority configured. On success the campaign's funds
// move from available to reserved, the location flips to Booked and an
// Active booking record is returned.
func Book(campaign *Campaign, campaignAddr Address, location *Location, locationAddr Address, now int64) (*Booking, error) {
	if err := campaign.requireActive("book"); err != nil {
		return nil, err
	}
	switch location.Status {
	case LocationUnbooked:
	case LocationBooked:
		return nil, &InvalidStateTransitionError{Entity: "location", From: location.Status.String(), Action: "book"}
	case LocationUnderMaintenance:
		return nil, &InvalidStateTransitionError{Entity: "location", From: location.Status.String(), Action: "book"}
	default:
		return nil, &ValidationError{Field: "location", Reason: "unknown status"}
	}
	if location.OracleAuthority.IsZero() {
		return nil, &ValidationError{Field: "oracleAuthority", Reason: "location has no oracle authority configured"}
	}

	if err := campaign.Reserve(location.Price); err != nil {
		return nil, err
	}
	location.Status = LocationBooked
	location.BookedBy = campaignAddr

	return &Booking{
		Campaign:        campaignAddr,
		Location:        locationAddr,
		Advertiser:      campaign.Authority,
		Provider:        location.Authority,
		OracleAuthority: location.OracleAuthority,
		CampaignIdx:     campaign.CampaignIdx,
		LocationIdx:     location.LocationIdx,
		Price:           new(big.Int).Set(location.Price),
		Status:          BookingActive,
		SettledAmount:   big.NewInt(0),
		FeeAmount:       big.NewInt(0),
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

func (b *Booking) requireActive(action string) error {
	if b.Status != BookingActive {
		return &InvalidStateTransitionError{Entity: "booking", From: b.Status.String(), Action: action}
	}
	return nil
}

// requireHolds checks that the location is still booked by this booking's
// campaign. A mismatch means the caller combined accounts from different
// bookings.
func (b *Booking) requireHolds(location *Location) error {
	if location.Status != LocationBooked {
		return &InvalidStateTransitionError{Entity: "location", From: location.Status.String(), Action: "modify booking"}
	}
	if location.BookedBy != b.Campaign {
		return &ValidationError{Field: "location", Reason: "booked by a different campaign"}
	}
	return nil
}

// Cancel releases the reserved price back to the campaign's available
// budget and frees the location. Cancelled is terminal.
func (b *Booking) Cancel(campaign *Campaign, location *Location, now int64) error {
	if err := b.requireActive("cancel"); err != nil {
		return err
	}
	if err := b.requireHolds(location); err != nil {
		return err
	}
	if err := campaign.Release(b.Price); err != nil {
		return err
	}
	location.Status = LocationUnbooked
	location.BookedBy = Address{}
	b.Status = BookingCancelled
	b.UpdatedAt = now
	return nil
}

// Settle finalizes the booking against a settlement quote. The quote's
// gross must not exceed the reserved price. The campaign pays out gross:
// net is credited to the location's earnings, the fee is retained by the
// protocol, and the unconsumed remainder price-gross returns to the
// campaign's available budget. Settled is terminal.
//
// The caller is responsible for verifying that the metrics behind the quote
// were attested by the booking's oracle authority.
func (b *Booking) Settle(campaign *Campaign, location *Location, gross, net *big.Int, now int64) error {
	if err := b.requireActive("settle"); err != nil {
		return err
	}
	if err := b.requireHolds(location); err != nil {
		return err
	}
	if err := validAmount("gross", gross, false); err != nil {
		return err
	}
	if err := validAmount("net", net, false); err != nil {
		return err
	}
	if net.Cmp(gross) > 0 {
		return &ValidationError{Field: "net", Reason: "net exceeds gross"}
	}
	if gross.Cmp(b.Price) > 0 {
		return &ValidationError{Field: "gross", Reason: "settlement exceeds reserved price"}
	}

	refund := new(big.Int).Sub(b.Price, gross)
	if err := campaign.Settle(gross); err != nil {
		return err
	}
	if err := campaign.Release(refund); err != nil {
		// Settle and Release guard on the same reserved balance, so a
		// failure here indicates a corrupted account pair.
		return err
	}
	if err := location.CreditEarnings(net); err != nil {
		return err
	}

	location.Status = LocationUnbooked
	location.BookedBy = Address{}
	b.Status = BookingSettled
	b.SettledAmount = new(big.Int).Set(gross)
	b.FeeAmount = new(big.Int).Sub(gross, net)
	b.UpdatedAt = now
	return nil
}
