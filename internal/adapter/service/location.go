package service

import (
	"context"
	"math/big"

	"adboard/internal/codec"
	"adboard/internal/core/domain"
	"adboard/internal/core/fee"
	"adboard/internal/core/port"
	"adboard/internal/observability"
)

type locationService Client

var _ port.LocationService = (*locationService)(nil)

// Register allocates the provider's next location index and registers the
// location. See campaignService.Create for the index replay caveat.
func (s *locationService) Register(ctx context.Context, authority domain.Address, name, description string, price *big.Int, oracle domain.Address) (port.AccountWithAddress[*domain.Location], error) {
	var zero port.AccountWithAddress[*domain.Location]
	c := (*Client)(s)

	providerAddr, _, err := c.deriver.Provider(authority)
	if err != nil {
		return zero, err
	}
	raw, err := c.fetchRaw(ctx, providerAddr)
	if err != nil {
		return zero, err
	}
	provider, err := codec.DecodeProvider(raw)
	if err != nil {
		return zero, err
	}
	idx, err := provider.NextLocationIndex()
	if err != nil {
		return zero, err
	}

	location, err := domain.NewLocation(authority, idx, name, description, price, oracle)
	if err != nil {
		return zero, err
	}
	locationAddr, _, err := c.deriver.Location(authority, idx)
	if err != nil {
		return zero, err
	}

	data, err := codec.EncodeRegisterLocation(name, description, price, oracle)
	if err != nil {
		return zero, err
	}
	if _, err := c.submit(ctx, codec.MethodRegisterLocation, data, []port.AccountMeta{
		signer(authority),
		writable(providerAddr),
		writable(locationAddr),
	}); err != nil {
		return zero, err
	}
	return port.AccountWithAddress[*domain.Location]{Address: locationAddr, Data: location}, nil
}

func (s *locationService) UpdateDetails(ctx context.Context, authority domain.Address, idx uint64, name, description string) error {
	return s.mutate(ctx, authority, idx, codec.MethodUpdateLocationDetails,
		func(l *domain.Location) error { return l.UpdateDetails(name, description) },
		func() ([]byte, error) { return codec.EncodeUpdateLocationDetails(idx, name, description) },
	)
}

func (s *locationService) UpdatePrice(ctx context.Context, authority domain.Address, idx uint64, price *big.Int) error {
	return s.mutate(ctx, authority, idx, codec.MethodUpdateLocationPrice,
		func(l *domain.Location) error { return l.UpdatePrice(price) },
		func() ([]byte, error) { return codec.EncodeUpdateLocationPrice(idx, price) },
	)
}

func (s *locationService) SetMaintenance(ctx context.Context, authority domain.Address, idx uint64, underMaintenance bool) error {
	replay := (*domain.Location).EndMaintenance
	if underMaintenance {
		replay = (*domain.Location).BeginMaintenance
	}
	return s.mutate(ctx, authority, idx, codec.MethodSetMaintenance,
		replay,
		func() ([]byte, error) { return codec.EncodeSetMaintenance(idx, underMaintenance) },
	)
}

// WithdrawEarnings pays accumulated earnings out to the provider. A nil
// amount withdraws everything; the withdrawn amount is returned either way.
func (s *locationService) WithdrawEarnings(ctx context.Context, authority domain.Address, idx uint64, amount *big.Int) (*big.Int, error) {
	address, location, err := s.fetch(ctx, authority, idx)
	if err != nil {
		return nil, err
	}
	withdrawn, err := location.WithdrawEarnings(amount)
	if err != nil {
		return nil, err
	}

	data, err := codec.EncodeWithdrawEarnings(idx, withdrawn)
	if err != nil {
		return nil, err
	}
	if _, err := (*Client)(s).submit(ctx, codec.MethodWithdrawEarnings, data, []port.AccountMeta{
		signer(authority),
		writable(address),
	}); err != nil {
		return nil, err
	}
	return withdrawn, nil
}

// Book reserves the location for the campaign at the location's current
// price. The replay moves the price from available to reserved locally so an
// underfunded or paused campaign is rejected before submission.
func (s *locationService) Book(ctx context.Context, campaignAuthority domain.Address, campaignIdx uint64, providerAuthority domain.Address, locationIdx uint64) (port.AccountWithAddress[*domain.Booking], error) {
	var zero port.AccountWithAddress[*domain.Booking]
	c := (*Client)(s)

	pair, err := s.loadPair(ctx, campaignAuthority, campaignIdx, providerAuthority, locationIdx)
	if err != nil {
		return zero, err
	}
	booking, err := domain.Book(pair.campaign, pair.campaignAddr, pair.location, pair.locationAddr, c.now())
	if err != nil {
		return zero, err
	}
	bookingAddr, _, err := c.deriver.Booking(pair.campaignAddr, pair.locationAddr)
	if err != nil {
		return zero, err
	}

	data, err := codec.EncodeBookLocation(campaignIdx, locationIdx)
	if err != nil {
		return zero, err
	}
	if _, err := c.submit(ctx, codec.MethodBookLocation, data, []port.AccountMeta{
		signer(campaignAuthority),
		writable(pair.campaignAddr),
		writable(pair.locationAddr),
		writable(bookingAddr),
	}); err != nil {
		return zero, err
	}
	return port.AccountWithAddress[*domain.Booking]{Address: bookingAddr, Data: booking}, nil
}

// Cancel releases an active booking; the reserved price returns to the
// campaign's available budget.
func (s *locationService) Cancel(ctx context.Context, campaignAuthority domain.Address, campaignIdx uint64, providerAuthority domain.Address, locationIdx uint64) error {
	c := (*Client)(s)
	pair, booking, err := s.loadBooking(ctx, campaignAuthority, campaignIdx, providerAuthority, locationIdx)
	if err != nil {
		return err
	}
	if err := booking.Data.Cancel(pair.campaign, pair.location, c.now()); err != nil {
		return err
	}

	data, err := codec.EncodeCancelBooking(campaignIdx, locationIdx)
	if err != nil {
		return err
	}
	_, err = c.submit(ctx, codec.MethodCancelBooking, data, []port.AccountMeta{
		signer(campaignAuthority),
		writable(pair.campaignAddr),
		writable(pair.locationAddr),
		writable(booking.Address),
	})
	return err
}

// Settle finalizes an active booking from oracle-attested metrics. The quote
// is computed with the booking price as gross cap, replayed against the
// decoded accounts, and only then submitted. The returned quote is exactly
// what the instruction carries, so a caller-side preview through
// QuotePreview with the same inputs can never disagree with the applied
// amounts.
func (s *locationService) Settle(ctx context.Context, campaignAuthority domain.Address, campaignIdx uint64, providerAuthority domain.Address, locationIdx uint64, pricing fee.PricingModel, attested port.SettlementMetrics, cfg fee.Config) (fee.SettlementQuote, error) {
	var zero fee.SettlementQuote
	c := (*Client)(s)

	pair, booking, err := s.loadBooking(ctx, campaignAuthority, campaignIdx, providerAuthority, locationIdx)
	if err != nil {
		return zero, err
	}
	if attested.Oracle != booking.Data.OracleAuthority {
		return zero, &domain.ValidationError{Field: "oracle", Reason: "metrics not attested by the booking's oracle authority"}
	}

	quote, err := s.QuotePreview(pricing, attested.Metrics, fee.QuoteOptions{
		Cap:             booking.Data.Price,
		Fee:             cfg,
		PricingRounding: cfg.Rounding,
	})
	if err != nil {
		return zero, err
	}
	if err := booking.Data.Settle(pair.campaign, pair.location, quote.Gross, quote.Net, c.now()); err != nil {
		return zero, err
	}

	data, err := codec.EncodeSettleBooking(campaignIdx, locationIdx, quote.Gross, quote.Net)
	if err != nil {
		return zero, err
	}
	if _, err := c.submit(ctx, codec.MethodSettleBooking, data, []port.AccountMeta{
		signer(attested.Oracle),
		writable(pair.campaignAddr),
		writable(pair.locationAddr),
		writable(booking.Address),
	}); err != nil {
		return zero, err
	}
	observability.TrackSettlement(quote.Gross, quote.Fee, quote.Net)
	return quote, nil
}

// QuotePreview computes a settlement quote without touching any account.
func (s *locationService) QuotePreview(pricing fee.PricingModel, metrics fee.Metrics, opts fee.QuoteOptions) (fee.SettlementQuote, error) {
	return fee.Quote(pricing, metrics, opts)
}

func (s *locationService) Fetch(ctx context.Context, authority domain.Address, idx uint64) (port.AccountWithAddress[*domain.Location], error) {
	address, location, err := s.fetch(ctx, authority, idx)
	if err != nil {
		return port.AccountWithAddress[*domain.Location]{}, err
	}
	return port.AccountWithAddress[*domain.Location]{Address: address, Data: location}, nil
}

func (s *locationService) FetchBooking(ctx context.Context, campaignAuthority domain.Address, campaignIdx uint64, providerAuthority domain.Address, locationIdx uint64) (port.AccountWithAddress[*domain.Booking], error) {
	var zero port.AccountWithAddress[*domain.Booking]
	c := (*Client)(s)

	campaignAddr, _, err := c.deriver.Campaign(campaignAuthority, campaignIdx)
	if err != nil {
		return zero, err
	}
	locationAddr, _, err := c.deriver.Location(providerAuthority, locationIdx)
	if err != nil {
		return zero, err
	}
	bookingAddr, _, err := c.deriver.Booking(campaignAddr, locationAddr)
	if err != nil {
		return zero, err
	}
	raw, err := c.fetchRaw(ctx, bookingAddr)
	if err != nil {
		return zero, err
	}
	booking, err := codec.DecodeBooking(raw)
	if err != nil {
		return zero, err
	}
	return port.AccountWithAddress[*domain.Booking]{Address: bookingAddr, Data: booking}, nil
}

func (s *locationService) List(ctx context.Context) ([]port.AccountWithAddress[*domain.Location], error) {
	return listAccounts(ctx, (*Client)(s), domain.KindLocation, codec.DecodeLocation)
}

func (s *locationService) OnChange(ctx context.Context, authority domain.Address, idx uint64, handler port.ChangeHandler[*domain.Location]) (port.CancelFunc, error) {
	address, _, err := (*Client)(s).deriver.Location(authority, idx)
	if err != nil {
		return nil, err
	}
	return onChange(ctx, (*Client)(s), address, codec.DecodeLocation, handler)
}

func (s *locationService) fetch(ctx context.Context, authority domain.Address, idx uint64) (domain.Address, *domain.Location, error) {
	c := (*Client)(s)
	address, _, err := c.deriver.Location(authority, idx)
	if err != nil {
		return domain.Address{}, nil, err
	}
	raw, err := c.fetchRaw(ctx, address)
	if err != nil {
		return domain.Address{}, nil, err
	}
	location, err := codec.DecodeLocation(raw)
	if err != nil {
		return domain.Address{}, nil, err
	}
	return address, location, nil
}

func (s *locationService) mutate(ctx context.Context, authority domain.Address, idx uint64, action string, replay func(*domain.Location) error, encode func() ([]byte, error)) error {
	address, location, err := s.fetch(ctx, authority, idx)
	if err != nil {
		return err
	}
	if err := replay(location); err != nil {
		return err
	}
	data, err := encode()
	if err != nil {
		return err
	}
	_, err = (*Client)(s).submit(ctx, action, data, []port.AccountMeta{
		signer(authority),
		writable(address),
	})
	return err
}

// accountPair is the campaign and location touched by one booking action.
type accountPair struct {
	campaignAddr domain.Address
	campaign     *domain.Campaign
	locationAddr domain.Address
	location     *domain.Location
}

func (s *locationService) loadPair(ctx context.Context, campaignAuthority domain.Address, campaignIdx uint64, providerAuthority domain.Address, locationIdx uint64) (accountPair, error) {
	c := (*Client)(s)
	var pair accountPair
	var err error

	pair.campaignAddr, _, err = c.deriver.Campaign(campaignAuthority, campaignIdx)
	if err != nil {
		return accountPair{}, err
	}
	raw, err := c.fetchRaw(ctx, pair.campaignAddr)
	if err != nil {
		return accountPair{}, err
	}
	if pair.campaign, err = codec.DecodeCampaign(raw); err != nil {
		return accountPair{}, err
	}

	pair.locationAddr, _, err = c.deriver.Location(providerAuthority, locationIdx)
	if err != nil {
		return accountPair{}, err
	}
	if raw, err = c.fetchRaw(ctx, pair.locationAddr); err != nil {
		return accountPair{}, err
	}
	if pair.location, err = codec.DecodeLocation(raw); err != nil {
		return accountPair{}, err
	}
	return pair, nil
}

func (s *locationService) loadBooking(ctx context.Context, campaignAuthority domain.Address, campaignIdx uint64, providerAuthority domain.Address, locationIdx uint64) (accountPair, port.AccountWithAddress[*domain.Booking], error) {
	var zero port.AccountWithAddress[*domain.Booking]
	pair, err := s.loadPair(ctx, campaignAuthority, campaignIdx, providerAuthority, locationIdx)
	if err != nil {
		return accountPair{}, zero, err
	}
	booking, err := s.FetchBooking(ctx, campaignAuthority, campaignIdx, providerAuthority, locationIdx)
	if err != nil {
		return accountPair{}, zero, err
	}
	return pair, booking, nil
}
