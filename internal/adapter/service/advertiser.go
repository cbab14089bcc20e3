package service

import (
	"context"

	"adboard/internal/codec"
	"adboard/internal/core/domain"
	"adboard/internal/core/port"
)

type advertiserService Client

var _ port.AdvertiserService = (*advertiserService)(nil)

// Register creates the advertiser registry account for an authority. A
// second registration for the same authority fails on the node, since the
// derived address is already occupied.
func (s *advertiserService) Register(ctx context.Context, authority domain.Address) (port.AccountWithAddress[*domain.Advertiser], error) {
	var zero port.AccountWithAddress[*domain.Advertiser]

	// local replay validates the authority before anything is submitted
	account, err := domain.NewAdvertiser(authority)
	if err != nil {
		return zero, err
	}
	address, _, err := (*Client)(s).deriver.Advertiser(authority)
	if err != nil {
		return zero, err
	}

	data, err := codec.EncodeCreateAdvertiser()
	if err != nil {
		return zero, err
	}
	if _, err := (*Client)(s).submit(ctx, codec.MethodCreateAdvertiser, data, []port.AccountMeta{
		signer(authority),
		writable(address),
	}); err != nil {
		return zero, err
	}
	return port.AccountWithAddress[*domain.Advertiser]{Address: address, Data: account}, nil
}

func (s *advertiserService) Fetch(ctx context.Context, authority domain.Address) (port.AccountWithAddress[*domain.Advertiser], error) {
	var zero port.AccountWithAddress[*domain.Advertiser]
	address, _, err := (*Client)(s).deriver.Advertiser(authority)
	if err != nil {
		return zero, err
	}
	raw, err := (*Client)(s).fetchRaw(ctx, address)
	if err != nil {
		return zero, err
	}
	account, err := codec.DecodeAdvertiser(raw)
	if err != nil {
		return zero, err
	}
	return port.AccountWithAddress[*domain.Advertiser]{Address: address, Data: account}, nil
}

type providerService Client

var _ port.ProviderService = (*providerService)(nil)

func (s *providerService) Register(ctx context.Context, authority domain.Address) (port.AccountWithAddress[*domain.Provider], error) {
	var zero port.AccountWithAddress[*domain.Provider]

	account, err := domain.NewProvider(authority)
	if err != nil {
		return zero, err
	}
	address, _, err := (*Client)(s).deriver.Provider(authority)
	if err != nil {
		return zero, err
	}

	data, err := codec.EncodeCreateProvider()
	if err != nil {
		return zero, err
	}
	if _, err := (*Client)(s).submit(ctx, codec.MethodCreateProvider, data, []port.AccountMeta{
		signer(authority),
		writable(address),
	}); err != nil {
		return zero, err
	}
	return port.AccountWithAddress[*domain.Provider]{Address: address, Data: account}, nil
}

func (s *providerService) Fetch(ctx context.Context, authority domain.Address) (port.AccountWithAddress[*domain.Provider], error) {
	var zero port.AccountWithAddress[*domain.Provider]
	address, _, err := (*Client)(s).deriver.Provider(authority)
	if err != nil {
		return zero, err
	}
	raw, err := (*Client)(s).fetchRaw(ctx, address)
	if err != nil {
		return zero, err
	}
	account, err := codec.DecodeProvider(raw)
	if err != nil {
		return zero, err
	}
	return port.AccountWithAddress[*domain.Provider]{Address: address, Data: account}, nil
}
