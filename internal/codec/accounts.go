package codec

import "adboard/internal/core/domain"

// EncodeAdvertiser serializes an advertiser registry account.
func EncodeAdvertiser(a *domain.Advertiser) ([]byte, error) {
	w := newWriter(AccountDiscriminator(domain.KindAdvertiser))
	w.address(a.Authority)
	w.u64(a.LastCampaignID)
	w.u64(a.CampaignCount)
	return w.finish()
}

// DecodeAdvertiser parses an advertiser registry account.
func DecodeAdvertiser(data []byte) (*domain.Advertiser, error) {
	r := newReader(data, AccountDiscriminator(domain.KindAdvertiser), "advertiser")
	a := &domain.Advertiser{
		Authority:      r.address(),
		LastCampaignID: r.u64(),
		CampaignCount:  r.u64(),
	}
	if err := r.finish(); err != nil {
		return nil, err
	}
	return a, nil
}

// EncodeProvider serializes a provider registry account.
func EncodeProvider(p *domain.Provider) ([]byte, error) {
	w := newWriter(AccountDiscriminator(domain.KindProvider))
	w.address(p.Authority)
	w.u64(p.LastLocationID)
	w.u64(p.LocationCount)
	return w.finish()
}

// DecodeProvider parses a provider registry account.
func DecodeProvider(data []byte) (*domain.Provider, error) {
	r := newReader(data, AccountDiscriminator(domain.KindProvider), "provider")
	p := &domain.Provider{
		Authority:      r.address(),
		LastLocationID: r.u64(),
		LocationCount:  r.u64(),
	}
	if err := r.finish(); err != nil {
		return nil, err
	}
	return p, nil
}

// EncodeCampaign serializes a campaign account including its budget ledger.
func EncodeCampaign(c *domain.Campaign) ([]byte, error) {
	w := newWriter(AccountDiscriminator(domain.KindCampaign))
	w.address(c.Authority)
	w.u64(c.CampaignIdx)
	w.str(c.Name)
	w.str(c.Description)
	w.str(c.ImageURL)
	w.u8(uint8(c.Status))
	w.amount("availableBudget", c.AvailableBudget)
	w.amount("reservedBudget", c.ReservedBudget)
	w.amount("spentBudget", c.SpentBudget)
	return w.finish()
}

// DecodeCampaign parses a campaign account.
func DecodeCampaign(data []byte) (*domain.Campaign, error) {
	r := newReader(data, AccountDiscriminator(domain.KindCampaign), "campaign")
	c := &domain.Campaign{
		Authority:   r.address(),
		CampaignIdx: r.u64(),
		Name:        r.str(),
		Description: r.str(),
		ImageURL:    r.str(),
	}
	c.Status = domain.CampaignStatus(r.u8())
	c.AvailableBudget = r.amount()
	c.ReservedBudget = r.amount()
	c.SpentBudget = r.amount()
	if err := r.finish(); err != nil {
		return nil, err
	}
	return c, nil
}

// EncodeLocation serializes a location account.
func EncodeLocation(l *domain.Location) ([]byte, error) {
	w := newWriter(AccountDiscriminator(domain.KindLocation))
	w.address(l.Authority)
	w.u64(l.LocationIdx)
	w.str(l.Name)
	w.str(l.Description)
	w.amount("price", l.Price)
	w.address(l.OracleAuthority)
	w.u8(uint8(l.Status))
	w.address(l.BookedBy)
	w.amount("earnings", l.Earnings)
	return w.finish()
}

// DecodeLocation parses a location account.
func DecodeLocation(data []byte) (*domain.Location, error) {
	r := newReader(data, AccountDiscriminator(domain.KindLocation), "location")
	l := &domain.Location{
		Authority:   r.address(),
		LocationIdx: r.u64(),
		Name:        r.str(),
		Description: r.str(),
	}
	l.Price = r.amount()
	l.OracleAuthority = r.address()
	l.Status = domain.LocationStatus(r.u8())
	l.BookedBy = r.address()
	l.Earnings = r.amount()
	if err := r.finish(); err != nil {
		return nil, err
	}
	return l, nil
}

// EncodeBooking serializes a campaign-location booking record.
func EncodeBooking(b *domain.Booking) ([]byte, error) {
	w := newWriter(AccountDiscriminator(domain.KindBooking))
	w.address(b.Campaign)
	w.address(b.Location)
	w.address(b.Advertiser)
	w.address(b.Provider)
	w.address(b.OracleAuthority)
	w.u64(b.CampaignIdx)
	w.u64(b.LocationIdx)
	w.amount("price", b.Price)
	w.u8(uint8(b.Status))
	w.amount("settledAmount", b.SettledAmount)
	w.amount("feeAmount", b.FeeAmount)
	w.i64(b.CreatedAt)
	w.i64(b.UpdatedAt)
	return w.finish()
}

// DecodeBooking parses a campaign-location booking record.
func DecodeBooking(data []byte) (*domain.Booking, error) {
	r := newReader(data, AccountDiscriminator(domain.KindBooking), "booking")
	b := &domain.Booking{
		Campaign:        r.address(),
		Location:        r.address(),
		Advertiser:      r.address(),
		Provider:        r.address(),
		OracleAuthority: r.address(),
		CampaignIdx:     r.u64(),
		LocationIdx:     r.u64(),
	}
	b.Price = r.amount()
	b.Status = domain.BookingStatus(r.u8())
	b.SettledAmount = r.amount()
	b.FeeAmount = r.amount()
	b.CreatedAt = r.i64()
	b.UpdatedAt = r.i64()
	if err := r.finish(); err != nil {
		return nil, err
	}
	return b, nil
}
