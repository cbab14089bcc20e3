package postgres

import (
	"context"
	"math/big"

	"github.com/jackc/pgx/v5/pgxpool"

	"adboard/internal/core/domain"
	"adboard/internal/core/port"
)

// MirrorStore implements port.MirrorStore using pgxpool for PostgreSQL.
// Every write is an upsert on the record's natural key, so replaying a sync
// pass converges instead of duplicating. Amounts are stored as NUMERIC and
// travel as decimal strings; addresses are stored in their base58 form.
type MirrorStore struct {
	pool *pgxpool.Pool
}

// NewMirrorStore returns a new store instance.
func NewMirrorStore(pool *pgxpool.Pool) *MirrorStore {
	return &MirrorStore{pool: pool}
}

var _ port.MirrorStore = (*MirrorStore)(nil)

func numeric(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

func (s *MirrorStore) UpsertAdvertiser(ctx context.Context, address domain.Address, a *domain.Advertiser) error {
	query := `
        INSERT INTO advertisers (address, authority, last_campaign_id, campaign_count, synced_at)
        VALUES ($1, $2, $3, $4, now())
        ON CONFLICT (authority) DO UPDATE SET
            address          = EXCLUDED.address,
            last_campaign_id = EXCLUDED.last_campaign_id,
            campaign_count   = EXCLUDED.campaign_count,
            synced_at        = now()`
	_, err := s.pool.Exec(ctx, query,
		address.String(),
		a.Authority.String(),
		a.LastCampaignID,
		a.CampaignCount,
	)
	return err
}

func (s *MirrorStore) UpsertProvider(ctx context.Context, address domain.Address, p *domain.Provider) error {
	query := `
        INSERT INTO providers (address, authority, last_location_id, location_count, synced_at)
        VALUES ($1, $2, $3, $4, now())
        ON CONFLICT (authority) DO UPDATE SET
            address          = EXCLUDED.address,
            last_location_id = EXCLUDED.last_location_id,
            location_count   = EXCLUDED.location_count,
            synced_at        = now()`
	_, err := s.pool.Exec(ctx, query,
		address.String(),
		p.Authority.String(),
		p.LastLocationID,
		p.LocationCount,
	)
	return err
}

func (s *MirrorStore) UpsertCampaign(ctx context.Context, address domain.Address, c *domain.Campaign) error {
	query := `
        INSERT INTO campaigns (
            address, authority, campaign_idx, name, description, image_url,
            status, available_budget, reserved_budget, spent_budget, synced_at
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now())
        ON CONFLICT (authority, campaign_idx) DO UPDATE SET
            address          = EXCLUDED.address,
            name             = EXCLUDED.name,
            description      = EXCLUDED.description,
            image_url        = EXCLUDED.image_url,
            status           = EXCLUDED.status,
            available_budget = EXCLUDED.available_budget,
            reserved_budget  = EXCLUDED.reserved_budget,
            spent_budget     = EXCLUDED.spent_budget,
            synced_at        = now()`
	_, err := s.pool.Exec(ctx, query,
		address.String(),
		c.Authority.String(),
		c.CampaignIdx,
		c.Name,
		c.Description,
		c.ImageURL,
		c.Status.String(),
		numeric(c.AvailableBudget),
		numeric(c.ReservedBudget),
		numeric(c.SpentBudget),
	)
	return err
}

func (s *MirrorStore) UpsertLocation(ctx context.Context, address domain.Address, l *domain.Location) error {
	var bookedBy *string
	if !l.BookedBy.IsZero() {
		v := l.BookedBy.String()
		bookedBy = &v
	}
	query := `
        INSERT INTO locations (
            address, authority, location_idx, name, description, price,
            oracle_authority, status, booked_by, earnings, synced_at
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now())
        ON CONFLICT (authority, location_idx) DO UPDATE SET
            address          = EXCLUDED.address,
            name             = EXCLUDED.name,
            description      = EXCLUDED.description,
            price            = EXCLUDED.price,
            oracle_authority = EXCLUDED.oracle_authority,
            status           = EXCLUDED.status,
            booked_by        = EXCLUDED.booked_by,
            earnings         = EXCLUDED.earnings,
            synced_at        = now()`
	_, err := s.pool.Exec(ctx, query,
		address.String(),
		l.Authority.String(),
		l.LocationIdx,
		l.Name,
		l.Description,
		numeric(l.Price),
		l.OracleAuthority.String(),
		l.Status.String(),
		bookedBy,
		numeric(l.Earnings),
	)
	return err
}

func (s *MirrorStore) UpsertBooking(ctx context.Context, address domain.Address, b *domain.Booking) error {
	query := `
        INSERT INTO bookings (
            address, campaign_address, location_address, advertiser, provider,
            oracle_authority, campaign_idx, location_idx, price, status,
            settled_amount, fee_amount, created_at, updated_at, synced_at
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
                to_timestamp($13), to_timestamp($14), now())
        ON CONFLICT (campaign_address, location_address) DO UPDATE SET
            address        = EXCLUDED.address,
            status         = EXCLUDED.status,
            price          = EXCLUDED.price,
            settled_amount = EXCLUDED.settled_amount,
            fee_amount     = EXCLUDED.fee_amount,
            updated_at     = EXCLUDED.updated_at,
            synced_at      = now()`
	_, err := s.pool.Exec(ctx, query,
		address.String(),
		b.Campaign.String(),
		b.Location.String(),
		b.Advertiser.String(),
		b.Provider.String(),
		b.OracleAuthority.String(),
		b.CampaignIdx,
		b.LocationIdx,
		numeric(b.Price),
		b.Status.String(),
		numeric(b.SettledAmount),
		numeric(b.FeeAmount),
		b.CreatedAt,
		b.UpdatedAt,
	)
	return err
}
