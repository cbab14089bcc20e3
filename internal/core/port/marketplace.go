package port

import (
	"context"
	"math/big"

	"adboard/internal/core/domain"
	"adboard/internal/core/fee"
)

// AccountWithAddress pairs a decoded account with the derived address it
// lives at.
type AccountWithAddress[T any] struct {
	Address domain.Address
	Data    T
}

// ChangeHandler receives each update of a subscribed account. CancelFunc
// tears the subscription down; calling it more than once is safe.
type (
	ChangeHandler[T any] func(AccountWithAddress[T])
	CancelFunc           func()
)

// AdvertiserService manages advertiser registry accounts. This is the
// primary inbound port for the advertiser side of the marketplace.
type AdvertiserService interface {
	// Register creates the advertiser account for authority on first use.
	Register(ctx context.Context, authority domain.Address) (AccountWithAddress[*domain.Advertiser], error)
	Fetch(ctx context.Context, authority domain.Address) (AccountWithAddress[*domain.Advertiser], error)
}

// ProviderService manages provider registry accounts.
type ProviderService interface {
	Register(ctx context.Context, authority domain.Address) (AccountWithAddress[*domain.Provider], error)
	Fetch(ctx context.Context, authority domain.Address) (AccountWithAddress[*domain.Provider], error)
}

// CampaignService manages campaigns and their budget ledgers.
type CampaignService interface {
	Create(ctx context.Context, authority domain.Address, meta domain.CampaignMetadata, budget *big.Int) (AccountWithAddress[*domain.Campaign], error)
	Update(ctx context.Context, authority domain.Address, idx uint64, meta domain.CampaignMetadata) error
	AddBudget(ctx context.Context, authority domain.Address, idx uint64, amount *big.Int) error
	WithdrawBudget(ctx context.Context, authority domain.Address, idx uint64, amount *big.Int) error
	Pause(ctx context.Context, authority domain.Address, idx uint64) error
	Resume(ctx context.Context, authority domain.Address, idx uint64) error
	// Close ends the campaign; the remaining available budget is returned
	// to the advertiser as part of the same action.
	Close(ctx context.Context, authority domain.Address, idx uint64) error
	Fetch(ctx context.Context, authority domain.Address, idx uint64) (AccountWithAddress[*domain.Campaign], error)
	List(ctx context.Context) ([]AccountWithAddress[*domain.Campaign], error)
	OnChange(ctx context.Context, authority domain.Address, idx uint64, handler ChangeHandler[*domain.Campaign]) (CancelFunc, error)
}

// SettlementMetrics is the oracle-attested input to a settlement. The
// service verifies Oracle against the booking's configured oracle authority
// before submitting.
type SettlementMetrics struct {
	Oracle  domain.Address
	Metrics fee.Metrics
}

// LocationService manages locations, bookings and settlements.
type LocationService interface {
	Register(ctx context.Context, authority domain.Address, name, description string, price *big.Int, oracle domain.Address) (AccountWithAddress[*domain.Location], error)
	UpdateDetails(ctx context.Context, authority domain.Address, idx uint64, name, description string) error
	UpdatePrice(ctx context.Context, authority domain.Address, idx uint64, price *big.Int) error
	SetMaintenance(ctx context.Context, authority domain.Address, idx uint64, underMaintenance bool) error
	WithdrawEarnings(ctx context.Context, authority domain.Address, idx uint64, amount *big.Int) (*big.Int, error)

	// Book reserves the location for the campaign at the location's
	// current price.
	Book(ctx context.Context, campaignAuthority domain.Address, campaignIdx uint64, providerAuthority domain.Address, locationIdx uint64) (AccountWithAddress[*domain.Booking], error)
	Cancel(ctx context.Context, campaignAuthority domain.Address, campaignIdx uint64, providerAuthority domain.Address, locationIdx uint64) error
	Settle(ctx context.Context, campaignAuthority domain.Address, campaignIdx uint64, providerAuthority domain.Address, locationIdx uint64, pricing fee.PricingModel, attested SettlementMetrics, cfg fee.Config) (fee.SettlementQuote, error)

	// QuotePreview computes the settlement breakdown without mutating
	// anything; it shares its computation with Settle so the preview can
	// never drift from the applied amount.
	QuotePreview(pricing fee.PricingModel, metrics fee.Metrics, opts fee.QuoteOptions) (fee.SettlementQuote, error)

	Fetch(ctx context.Context, authority domain.Address, idx uint64) (AccountWithAddress[*domain.Location], error)
	FetchBooking(ctx context.Context, campaignAuthority domain.Address, campaignIdx uint64, providerAuthority domain.Address, locationIdx uint64) (AccountWithAddress[*domain.Booking], error)
	List(ctx context.Context) ([]AccountWithAddress[*domain.Location], error)
	OnChange(ctx context.Context, authority domain.Address, idx uint64, handler ChangeHandler[*domain.Location]) (CancelFunc, error)
}
