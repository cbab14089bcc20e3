package port

import (
	"context"

	"adboard/internal/core/domain"
)

// UpsertKey is the idempotent identity of a mirrored record. Replaying an
// upsert with the same key overwrites rather than duplicates, so a
// downstream mirror can catch up from any point.
type UpsertKey struct {
	Kind  domain.AccountKind
	Owner domain.Address
	Index uint64
}

// MirrorStore is the outbound port to the off-chain relational mirror. The
// mirror is strictly derived data: it is rebuilt from ledger state and never
// consulted for accounting decisions. Implementations must make every upsert
// idempotent on the record's natural key.
type MirrorStore interface {
	UpsertAdvertiser(ctx context.Context, address domain.Address, a *domain.Advertiser) error
	UpsertProvider(ctx context.Context, address domain.Address, p *domain.Provider) error
	UpsertCampaign(ctx context.Context, address domain.Address, c *domain.Campaign) error
	UpsertLocation(ctx context.Context, address domain.Address, l *domain.Location) error
	UpsertBooking(ctx context.Context, address domain.Address, b *domain.Booking) error
}
