package domain

import "math"

// Advertiser is the per-authority registry of campaigns. LastCampaignID is
// the next free campaign index and only ever increases; CampaignCount tracks
// the campaigns currently open.
type Advertiser struct {
	Authority      Address
	LastCampaignID uint64
	CampaignCount  uint64
}

// NewAdvertiser returns the account created by the first advertiser
// registration for authority.
func NewAdvertiser(authority Address) (*Advertiser, error) {
	if authority.IsZero() {
		return nil, &ValidationError{Field: "authority", Reason: "authority is required"}
	}
	return &Advertiser{Authority: authority}, nil
}

// NextCampaignIndex assigns the index for a newly created campaign: the
// current LastCampaignID is handed out and the counter advances. The counter
// never decreases, so indices are never reused even after a campaign closes.
func (a *Advertiser) NextCampaignIndex() (uint64, error) {
	if a.LastCampaignID == math.MaxUint64 {
		return 0, &ValidationError{Field: "lastCampaignId", Reason: "campaign index space exhausted"}
	}
	idx := a.LastCampaignID
	a.LastCampaignID++
	a.CampaignCount++
	return idx, nil
}

// CampaignClosed records that one of the advertiser's campaigns ended.
func (a *Advertiser) CampaignClosed() error {
	if a.CampaignCount == 0 {
		return &ValidationError{Field: "campaignCount", Reason: "no open campaigns"}
	}
	a.CampaignCount--
	return nil
}

// Provider is the per-authority registry of display locations, symmetric to
// Advertiser.
type Provider struct {
	Authority      Address
	LastLocationID uint64
	LocationCount  uint64
}

// NewProvider returns the account created by the first provider registration
// for authority.
func NewProvider(authority Address) (*Provider, error) {
	if authority.IsZero() {
		return nil, &ValidationError{Field: "authority", Reason: "authority is required"}
	}
	return &Provider{Authority: authority}, nil
}

// NextLocationIndex assigns the index for a newly registered location.
func (p *Provider) NextLocationIndex() (uint64, error) {
	if p.LastLocationID == math.MaxUint64 {
		return 0, &ValidationError{Field: "lastLocationId", Reason: "location index space exhausted"}
	}
	idx := p.LastLocationID
	p.LastLocationID++
	p.LocationCount++
	return idx, nil
}
