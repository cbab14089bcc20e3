package service

import (
	"context"
	"math/big"

	"adboard/internal/codec"
	"adboard/internal/core/domain"
	"adboard/internal/core/port"
)

type campaignService Client

var _ port.CampaignService = (*campaignService)(nil)

// Create allocates the advertiser's next campaign index and creates the
// campaign, optionally funding it in the same action. The index replay is
// advisory: the node assigns the authoritative index from the advertiser
// account it holds, which matches unless a concurrent create slipped in
// between fetch and submit — in which case the derived address check on the
// node rejects this instruction and the caller retries.
func (s *campaignService) Create(ctx context.Context, authority domain.Address, meta domain.CampaignMetadata, budget *big.Int) (port.AccountWithAddress[*domain.Campaign], error) {
	var zero port.AccountWithAddress[*domain.Campaign]
	c := (*Client)(s)

	advertiserAddr, _, err := c.deriver.Advertiser(authority)
	if err != nil {
		return zero, err
	}
	raw, err := c.fetchRaw(ctx, advertiserAddr)
	if err != nil {
		return zero, err
	}
	advertiser, err := codec.DecodeAdvertiser(raw)
	if err != nil {
		return zero, err
	}
	idx, err := advertiser.NextCampaignIndex()
	if err != nil {
		return zero, err
	}

	campaign, err := domain.NewCampaign(authority, idx, meta, budget)
	if err != nil {
		return zero, err
	}
	campaignAddr, _, err := c.deriver.Campaign(authority, idx)
	if err != nil {
		return zero, err
	}

	data, err := codec.EncodeCreateCampaign(meta, budget)
	if err != nil {
		return zero, err
	}
	if _, err := c.submit(ctx, codec.MethodCreateCampaign, data, []port.AccountMeta{
		signer(authority),
		writable(advertiserAddr),
		writable(campaignAddr),
	}); err != nil {
		return zero, err
	}
	return port.AccountWithAddress[*domain.Campaign]{Address: campaignAddr, Data: campaign}, nil
}

func (s *campaignService) Update(ctx context.Context, authority domain.Address, idx uint64, meta domain.CampaignMetadata) error {
	return s.mutate(ctx, authority, idx, codec.MethodUpdateCampaign,
		func(campaign *domain.Campaign) error { return campaign.UpdateMetadata(meta) },
		func() ([]byte, error) { return codec.EncodeUpdateCampaign(idx, meta) },
	)
}

func (s *campaignService) AddBudget(ctx context.Context, authority domain.Address, idx uint64, amount *big.Int) error {
	return s.mutate(ctx, authority, idx, codec.MethodAddBudget,
		func(campaign *domain.Campaign) error { return campaign.Deposit(amount) },
		func() ([]byte, error) { return codec.EncodeAddBudget(idx, amount) },
	)
}

func (s *campaignService) WithdrawBudget(ctx context.Context, authority domain.Address, idx uint64, amount *big.Int) error {
	return s.mutate(ctx, authority, idx, codec.MethodWithdrawBudget,
		func(campaign *domain.Campaign) error { return campaign.Withdraw(amount) },
		func() ([]byte, error) { return codec.EncodeWithdrawBudget(idx, amount) },
	)
}

func (s *campaignService) Pause(ctx context.Context, authority domain.Address, idx uint64) error {
	return s.mutate(ctx, authority, idx, codec.MethodPauseCampaign,
		(*domain.Campaign).Pause,
		func() ([]byte, error) { return codec.EncodePauseCampaign(idx) },
	)
}

func (s *campaignService) Resume(ctx context.Context, authority domain.Address, idx uint64) error {
	return s.mutate(ctx, authority, idx, codec.MethodResumeCampaign,
		(*domain.Campaign).Resume,
		func() ([]byte, error) { return codec.EncodeResumeCampaign(idx) },
	)
}

// Close ends the campaign. The node returns the remaining available budget
// to the advertiser's holding account as part of the same instruction.
func (s *campaignService) Close(ctx context.Context, authority domain.Address, idx uint64) error {
	c := (*Client)(s)
	advertiserAddr, _, err := c.deriver.Advertiser(authority)
	if err != nil {
		return err
	}
	campaignAddr, campaign, err := s.fetch(ctx, authority, idx)
	if err != nil {
		return err
	}
	if _, err := campaign.Close(); err != nil {
		return err
	}

	data, err := codec.EncodeCloseCampaign(idx)
	if err != nil {
		return err
	}
	_, err = c.submit(ctx, codec.MethodCloseCampaign, data, []port.AccountMeta{
		signer(authority),
		writable(advertiserAddr),
		writable(campaignAddr),
	})
	return err
}

func (s *campaignService) Fetch(ctx context.Context, authority domain.Address, idx uint64) (port.AccountWithAddress[*domain.Campaign], error) {
	address, campaign, err := s.fetch(ctx, authority, idx)
	if err != nil {
		return port.AccountWithAddress[*domain.Campaign]{}, err
	}
	return port.AccountWithAddress[*domain.Campaign]{Address: address, Data: campaign}, nil
}

func (s *campaignService) List(ctx context.Context) ([]port.AccountWithAddress[*domain.Campaign], error) {
	return listAccounts(ctx, (*Client)(s), domain.KindCampaign, codec.DecodeCampaign)
}

func (s *campaignService) OnChange(ctx context.Context, authority domain.Address, idx uint64, handler port.ChangeHandler[*domain.Campaign]) (port.CancelFunc, error) {
	address, _, err := (*Client)(s).deriver.Campaign(authority, idx)
	if err != nil {
		return nil, err
	}
	return onChange(ctx, (*Client)(s), address, codec.DecodeCampaign, handler)
}

func (s *campaignService) fetch(ctx context.Context, authority domain.Address, idx uint64) (domain.Address, *domain.Campaign, error) {
	c := (*Client)(s)
	address, _, err := c.deriver.Campaign(authority, idx)
	if err != nil {
		return domain.Address{}, nil, err
	}
	raw, err := c.fetchRaw(ctx, address)
	if err != nil {
		return domain.Address{}, nil, err
	}
	campaign, err := codec.DecodeCampaign(raw)
	if err != nil {
		return domain.Address{}, nil, err
	}
	return address, campaign, nil
}

// mutate is the shared fetch/replay/submit path of the single-account
// campaign operations.
func (s *campaignService) mutate(ctx context.Context, authority domain.Address, idx uint64, action string, replay func(*domain.Campaign) error, encode func() ([]byte, error)) error {
	address, campaign, err := s.fetch(ctx, authority, idx)
	if err != nil {
		return err
	}
	if err := replay(campaign); err != nil {
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
