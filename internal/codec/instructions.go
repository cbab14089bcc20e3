package codec

import (
	"math/big"

	"adboard/internal/core/domain"
)

// Instruction method names. These feed InstructionDiscriminator and must
// stay in sync with the on-chain program's method table.
const (
	MethodCreateAdvertiser      = "create_advertiser"
	MethodCreateProvider        = "create_provider"
	MethodCreateCampaign        = "create_campaign"
	MethodUpdateCampaign        = "update_campaign"
	MethodPauseCampaign         = "pause_campaign"
	MethodResumeCampaign        = "resume_campaign"
	MethodAddBudget             = "add_budget"
	MethodWithdrawBudget        = "withdraw_budget"
	MethodCloseCampaign         = "close_campaign"
	MethodRegisterLocation      = "register_location"
	MethodUpdateLocationDetails = "update_location_details"
	MethodUpdateLocationPrice   = "update_location_price"
	MethodSetMaintenance        = "set_location_maintenance"
	MethodBookLocation          = "book_location"
	MethodCancelBooking         = "cancel_booking"
	MethodSettleBooking         = "settle_booking"
	MethodWithdrawEarnings      = "withdraw_earnings"
)

// optStr encodes an optional string as a presence byte followed by the
// value. An empty string means "leave unchanged".
func (w *writer) optStr(v string) {
	if v == "" {
		w.u8(0)
		return
	}
	w.u8(1)
	w.str(v)
}

func newInstruction(method string) *writer {
	return newWriter(InstructionDiscriminator(method))
}

// EncodeCreateAdvertiser builds the args for registering an advertiser.
func EncodeCreateAdvertiser() ([]byte, error) {
	return newInstruction(MethodCreateAdvertiser).finish()
}

// EncodeCreateProvider builds the args for registering a provider.
func EncodeCreateProvider() ([]byte, error) {
	return newInstruction(MethodCreateProvider).finish()
}

// EncodeCreateCampaign builds the args for creating a campaign with an
// optional initial budget.
func EncodeCreateCampaign(meta domain.CampaignMetadata, budget *big.Int) ([]byte, error) {
	w := newInstruction(MethodCreateCampaign)
	w.str(meta.Name)
	w.str(meta.Description)
	w.str(meta.ImageURL)
	w.amount("budget", budget)
	return w.finish()
}

// EncodeUpdateCampaign builds the args for a metadata update. Empty fields
// are encoded as absent and left unchanged by the program.
func EncodeUpdateCampaign(idx uint64, meta domain.CampaignMetadata) ([]byte, error) {
	w := newInstruction(MethodUpdateCampaign)
	w.u64(idx)
	w.optStr(meta.Name)
	w.optStr(meta.Description)
	w.optStr(meta.ImageURL)
	return w.finish()
}

// EncodePauseCampaign builds the args for pausing a campaign.
func EncodePauseCampaign(idx uint64) ([]byte, error) {
	w := newInstruction(MethodPauseCampaign)
	w.u64(idx)
	return w.finish()
}

// EncodeResumeCampaign builds the args for resuming a paused campaign.
func EncodeResumeCampaign(idx uint64) ([]byte, error) {
	w := newInstruction(MethodResumeCampaign)
	w.u64(idx)
	return w.finish()
}

// EncodeAddBudget builds the args for a deposit.
func EncodeAddBudget(idx uint64, amount *big.Int) ([]byte, error) {
	w := newInstruction(MethodAddBudget)
	w.u64(idx)
	w.amount("amount", amount)
	return w.finish()
}

// EncodeWithdrawBudget builds the args for a withdrawal.
func EncodeWithdrawBudget(idx uint64, amount *big.Int) ([]byte, error) {
	w := newInstruction(MethodWithdrawBudget)
	w.u64(idx)
	w.amount("amount", amount)
	return w.finish()
}

// EncodeCloseCampaign builds the args for closing a campaign.
func EncodeCloseCampaign(idx uint64) ([]byte, error) {
	w := newInstruction(MethodCloseCampaign)
	w.u64(idx)
	return w.finish()
}

// EncodeRegisterLocation builds the args for registering a location.
func EncodeRegisterLocation(name, description string, price *big.Int, oracle domain.Address) ([]byte, error) {
	w := newInstruction(MethodRegisterLocation)
	w.str(name)
	w.str(description)
	w.amount("price", price)
	w.address(oracle)
	return w.finish()
}

// EncodeUpdateLocationDetails builds the args for a location detail update.
func EncodeUpdateLocationDetails(idx uint64, name, description string) ([]byte, error) {
	w := newInstruction(MethodUpdateLocationDetails)
	w.u64(idx)
	w.optStr(name)
	w.optStr(description)
	return w.finish()
}

// EncodeUpdateLocationPrice builds the args for a location price change.
func EncodeUpdateLocationPrice(idx uint64, price *big.Int) ([]byte, error) {
	w := newInstruction(MethodUpdateLocationPrice)
	w.u64(idx)
	w.amount("price", price)
	return w.finish()
}

// EncodeSetMaintenance builds the args for entering or leaving maintenance.
func EncodeSetMaintenance(idx uint64, underMaintenance bool) ([]byte, error) {
	w := newInstruction(MethodSetMaintenance)
	w.u64(idx)
	if underMaintenance {
		w.u8(1)
	} else {
		w.u8(0)
	}
	return w.finish()
}

// EncodeBookLocation builds the args for booking a location against a
// campaign.
func EncodeBookLocation(campaignIdx, locationIdx uint64) ([]byte, error) {
	w := newInstruction(MethodBookLocation)
	w.u64(campaignIdx)
	w.u64(locationIdx)
	return w.finish()
}

// EncodeCancelBooking builds the args for cancelling an active booking.
func EncodeCancelBooking(campaignIdx, locationIdx uint64) ([]byte, error) {
	w := newInstruction(MethodCancelBooking)
	w.u64(campaignIdx)
	w.u64(locationIdx)
	return w.finish()
}

// EncodeSettleBooking builds the args for settling an active booking. Gross
// is the amount leaving the campaign's custody; net is the provider payout
// after the protocol fee.
func EncodeSettleBooking(campaignIdx, locationIdx uint64, gross, net *big.Int) ([]byte, error) {
	w := newInstruction(MethodSettleBooking)
	w.u64(campaignIdx)
	w.u64(locationIdx)
	w.amount("gross", gross)
	w.amount("net", net)
	return w.finish()
}

// EncodeWithdrawEarnings builds the args for a provider earnings
// withdrawal.
func EncodeWithdrawEarnings(idx uint64, amount *big.Int) ([]byte, error) {
	w := newInstruction(MethodWithdrawEarnings)
	w.u64(idx)
	w.amount("amount", amount)
	return w.finish()
}
