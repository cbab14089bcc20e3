package db

import (
	"context"
	"fmt"
	"math/big"
	"math/rand"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"adboard/internal/adapter/postgres"
	"adboard/internal/core/addr"
	"adboard/internal/core/domain"
)

// Seed inserts demo marketplace data into the mirror. It goes through the
// mirror store so the rows are shaped exactly like synced ledger state. For
// local development only; the seeded accounts do not exist on any node.
func Seed(ctx context.Context, pool *pgxpool.Pool, program domain.Address) error {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	store := postgres.NewMirrorStore(pool)
	deriver := addr.New(program)

	for i := 1; i <= 3; i++ {
		var authority domain.Address
		authority[0] = 0x10
		authority[31] = byte(i)

		advertiser, err := domain.NewAdvertiser(authority)
		if err != nil {
			return err
		}
		advertiserAddr, _, err := deriver.Advertiser(authority)
		if err != nil {
			return err
		}

		for j := 0; j < 2; j++ {
			idx, err := advertiser.NextCampaignIndex()
			if err != nil {
				return err
			}
			budget := big.NewInt(r.Int63n(900_000) + 100_000)
			campaign, err := domain.NewCampaign(authority, idx, domain.CampaignMetadata{
				Name:        fmt.Sprintf("Campaign %d-%d", i, idx),
				Description: "seeded demo campaign",
			}, budget)
			if err != nil {
				return err
			}
			campaignAddr, _, err := deriver.Campaign(authority, idx)
			if err != nil {
				return err
			}
			if err := store.UpsertCampaign(ctx, campaignAddr, campaign); err != nil {
				return err
			}
		}
		if err := store.UpsertAdvertiser(ctx, advertiserAddr, advertiser); err != nil {
			return err
		}
	}

	var oracle domain.Address
	oracle[0] = 0x30
	oracle[31] = 0x30

	for i := 1; i <= 3; i++ {
		var authority domain.Address
		authority[0] = 0x20
		authority[31] = byte(i)

		provider, err := domain.NewProvider(authority)
		if err != nil {
			return err
		}
		providerAddr, _, err := deriver.Provider(authority)
		if err != nil {
			return err
		}

		for j := 0; j < 2; j++ {
			idx, err := provider.NextLocationIndex()
			if err != nil {
				return err
			}
			price := big.NewInt(r.Int63n(9_000) + 1_000)
			location, err := domain.NewLocation(authority, idx,
				fmt.Sprintf("Location %d-%d", i, idx), "seeded demo location", price, oracle)
			if err != nil {
				return err
			}
			locationAddr, _, err := deriver.Location(authority, idx)
			if err != nil {
				return err
			}
			if err := store.UpsertLocation(ctx, locationAddr, location); err != nil {
				return err
			}
		}
		if err := store.UpsertProvider(ctx, providerAddr, provider); err != nil {
			return err
		}
	}

	return nil
}
