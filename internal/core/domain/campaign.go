package domain

import (
	"fmt"
	"math/big"
)

// Limits on campaign metadata, matching the on-chain account layout.
const (
	MaxCampaignNameLen     = 64
	MaxCampaignDescLen     = 256
	MaxCampaignImageURLLen = 256
)

// CampaignStatus is the lifecycle state of a campaign.
type CampaignStatus uint8

const (
	CampaignActive CampaignStatus = iota + 1
	CampaignPaused
	CampaignEnded
	CampaignCancelled
)

func (s CampaignStatus) String() string {
	switch s {
	case CampaignActive:
		return "active"
	case CampaignPaused:
		return "paused"
	case CampaignEnded:
		return "ended"
	case CampaignCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("status(%d)", uint8(s))
	}
}

// Campaign is the budget ledger for one advertiser campaign. Funds are held
// in the ledger's smallest indivisible unit and split between two buckets:
// AvailableBudget may be spent on new bookings or withdrawn; ReservedBudget
// is earmarked for active bookings. SpentBudget accumulates everything that
// has permanently left the campaign's custody through settlements.
//
// Invariant: AvailableBudget >= 0 and ReservedBudget >= 0 after every
// operation, and AvailableBudget + ReservedBudget equals deposits minus
// withdrawals minus finalized settlements. Every mutating method validates
// fully before touching either bucket, so a rejected call leaves the
// campaign untouched.
type Campaign struct {
	Authority   Address
	CampaignIdx uint64

	Name        string
	Description string
	ImageURL    string

	Status          CampaignStatus
	AvailableBudget *big.Int
	ReservedBudget  *big.Int
	SpentBudget     *big.Int
}

// CampaignMetadata carries the mutable descriptive fields of a campaign.
type CampaignMetadata struct {
	Name        string
	Description string
	ImageURL    string
}

func (m CampaignMetadata) validate() error {
	if m.Name == "" {
		return &ValidationError{Field: "name", Reason: "name is required"}
	}
	if len(m.Name) > MaxCampaignNameLen {
		return &ValidationError{Field: "name", Reason: fmt.Sprintf("longer than %d bytes", MaxCampaignNameLen)}
	}
	if len(m.Description) > MaxCampaignDescLen {
		return &ValidationError{Field: "description", Reason: fmt.Sprintf("longer than %d bytes", MaxCampaignDescLen)}
	}
	if len(m.ImageURL) > MaxCampaignImageURLLen {
		return &ValidationError{Field: "imageUrl", Reason: fmt.Sprintf("longer than %d bytes", MaxCampaignImageURLLen)}
	}
	return nil
}

// NewCampaign creates an Active campaign with an optional initial budget.
// A nil budget is treated as zero.
func NewCampaign(authority Address, idx uint64, meta CampaignMetadata, budget *big.Int) (*Campaign, error) {
	if authority.IsZero() {
		return nil, &ValidationError{Field: "authority", Reason: "authority is required"}
	}
	if err := meta.validate(); err != nil {
		return nil, err
	}
	if budget == nil {
		budget = big.NewInt(0)
	}
	if err := validAmount("budget", budget, false); err != nil {
		return nil, err
	}
	return &Campaign{
		Authority:       authority,
		CampaignIdx:     idx,
		Name:            meta.Name,
		Description:     meta.Description,
		ImageURL:        meta.ImageURL,
		Status:          CampaignActive,
		AvailableBudget: new(big.Int).Set(budget),
		ReservedBudget:  big.NewInt(0),
		SpentBudget:     big.NewInt(0),
	}, nil
}

// TotalBudget returns AvailableBudget + ReservedBudget.
func (c *Campaign) TotalBudget() *big.Int {
	return new(big.Int).Add(c.AvailableBudget, c.ReservedBudget)
}

func (c *Campaign) requireActive(action string) error {
	if c.Status != CampaignActive {
		return &InvalidStateTransitionError{Entity: "campaign", From: c.Status.String(), Action: action}
	}
	return nil
}

func (c *Campaign) requireOpen(action string) error {
	if c.Status != CampaignActive && c.Status != CampaignPaused {
		return &InvalidStateTransitionError{Entity: "campaign", From: c.Status.String(), Action: action}
	}
	return nil
}

// Deposit adds funds to the available budget.
func (c *Campaign) Deposit(amount *big.Int) error {
	if err := validAmount("amount", amount, true); err != nil {
		return err
	}
	if err := c.requireActive("deposit"); err != nil {
		return err
	}
	c.AvailableBudget = new(big.Int).Add(c.AvailableBudget, amount)
	return nil
}

// Reserve earmarks funds for a booking, moving them from available to
// reserved. It is the only path that reduces available funds without an
// explicit withdrawal.
func (c *Campaign) Reserve(amount *big.Int) error {
	if err := validAmount("amount", amount, true); err != nil {
		return err
	}
	if err := c.requireActive("reserve"); err != nil {
		return err
	}
	if amount.Cmp(c.AvailableBudget) > 0 {
		return &InsufficientFundsError{Op: "reserve", Requested: new(big.Int).Set(amount), Available: new(big.Int).Set(c.AvailableBudget)}
	}
	c.AvailableBudget = new(big.Int).Sub(c.AvailableBudget, amount)
	c.ReservedBudget = new(big.Int).Add(c.ReservedBudget, amount)
	return nil
}

// Release returns reserved funds to the available budget. Used when a
// booking is cancelled, and for the unconsumed remainder of a settlement.
// Releasing a zero amount is a no-op rather than an error so that an exact
// settlement needs no special case.
func (c *Campaign) Release(amount *big.Int) error {
	if err := validAmount("amount", amount, false); err != nil {
		return err
	}
	if err := c.requireOpen("release"); err != nil {
		return err
	}
	if amount.Cmp(c.ReservedBudget) > 0 {
		return &InsufficientFundsError{Op: "release", Requested: new(big.Int).Set(amount), Available: new(big.Int).Set(c.ReservedBudget)}
	}
	c.ReservedBudget = new(big.Int).Sub(c.ReservedBudget, amount)
	c.AvailableBudget = new(big.Int).Add(c.AvailableBudget, amount)
	return nil
}

// Settle removes reserved funds from the campaign's custody permanently and
// adds them to the lifetime spent counter.
func (c *Campaign) Settle(amount *big.Int) error {
	if err := validAmount("amount", amount, false); err != nil {
		return err
	}
	if err := c.requireOpen("settle"); err != nil {
		return err
	}
	if amount.Cmp(c.ReservedBudget) > 0 {
		return &InsufficientFundsError{Op: "settle", Requested: new(big.Int).Set(amount), Available: new(big.Int).Set(c.ReservedBudget)}
	}
	c.ReservedBudget = new(big.Int).Sub(c.ReservedBudget, amount)
	c.SpentBudget = new(big.Int).Add(c.SpentBudget, amount)
	return nil
}

// Withdraw removes funds from the available budget and returns them to the
// advertiser.
func (c *Campaign) Withdraw(amount *big.Int) error {
	if err := validAmount("amount", amount, true); err != nil {
		return err
	}
	if err := c.requireActive("withdraw"); err != nil {
		return err
	}
	if amount.Cmp(c.AvailableBudget) > 0 {
		return &InsufficientFundsError{Op: "withdraw", Requested: new(big.Int).Set(amount), Available: new(big.Int).Set(c.AvailableBudget)}
	}
	c.AvailableBudget = new(big.Int).Sub(c.AvailableBudget, amount)
	return nil
}

// Pause suspends an active campaign. Existing bookings keep their reserved
// funds; new bookings, deposits and withdrawals are blocked until Resume.
func (c *Campaign) Pause() error {
	if err := c.requireActive("pause"); err != nil {
		return err
	}
	c.Status = CampaignPaused
	return nil
}

// Resume reactivates a paused campaign.
func (c *Campaign) Resume() error {
	if c.Status != CampaignPaused {
		return &InvalidStateTransitionError{Entity: "campaign", From: c.Status.String(), Action: "resume"}
	}
	c.Status = CampaignActive
	return nil
}

// UpdateMetadata replaces the descriptive fields that are non-empty in meta.
// Empty fields are left unchanged.
func (c *Campaign) UpdateMetadata(meta CampaignMetadata) error {
	if err := c.requireOpen("update"); err != nil {
		return err
	}
	updated := CampaignMetadata{Name: c.Name, Description: c.Description, ImageURL: c.ImageURL}
	if meta.Name != "" {
		updated.Name = meta.Name
	}
	if meta.Description != "" {
		updated.Description = meta.Description
	}
	if meta.ImageURL != "" {
		updated.ImageURL = meta.ImageURL
	}
	if err := updated.validate(); err != nil {
		return err
	}
	c.Name, c.Description, c.ImageURL = updated.Name, updated.Description, updated.ImageURL
	return nil
}

// Close ends the campaign and auto-returns the remaining available budget to
// the advertiser, which it reports as the refund. Closing is rejected while
// any booking still holds reserved funds, and retrying a close on an ended
// campaign is rejected rather than silently accepted.
func (c *Campaign) Close() (*big.Int, error) {
	if err := c.requireOpen("close"); err != nil {
		return nil, err
	}
	if c.ReservedBudget.Sign() != 0 {
		return nil, &InvalidStateTransitionError{Entity: "campaign", From: "holding reserved funds", Action: "close"}
	}
	refund := c.AvailableBudget
	c.AvailableBudget = big.NewInt(0)
	c.Status = CampaignEnded
	return refund, nil
}
