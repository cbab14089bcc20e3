package fee

import (
	"math/big"

	"adboard/internal/core/domain"
)

// MaxBps is 100% expressed in basis points.
const MaxBps = 10_000

var bpsDenominator = big.NewInt(MaxBps)

// Config describes the protocol fee applied to a gross settlement amount.
// Every field is optional; the zero Config charges nothing. Computation
// order: basis-point fee on gross under Rounding, plus Flat, clamped to
// [Min, Max] when set, and finally clamped so the fee never exceeds gross.
type Config struct {
	// FeeBps is the proportional fee in basis points, 0..10000 inclusive.
	FeeBps uint32
	// Flat is an additive flat fee. Nil means zero.
	Flat *big.Int
	// Min and Max bound the combined fee when non-nil.
	Min *big.Int
	Max *big.Int
	// Rounding resolves the basis-point division. The zero value is floor.
	Rounding Rounding
}

func (c Config) validate() error {
	if c.FeeBps > MaxBps {
		return &domain.ValidationError{Field: "feeBps", Reason: "must be at most 10000"}
	}
	for _, f := range []struct {
		name  string
		value *big.Int
	}{{"flatFee", c.Flat}, {"minFee", c.Min}, {"maxFee", c.Max}} {
		if f.value != nil && f.value.Sign() < 0 {
			return &domain.ValidationError{Field: f.name, Reason: "must be non-negative"}
		}
	}
	return nil
}

// Breakdown reports how a gross amount splits between the protocol fee and
// the provider's net payout. Net + Fee == Gross and Net >= 0 always.
type Breakdown struct {
	Gross *big.Int
	Fee   *big.Int
	Net   *big.Int
}

// FeeBreakdown computes the fee on a gross amount.
func FeeBreakdown(gross *big.Int, cfg Config) (Breakdown, error) {
	if gross == nil || gross.Sign() < 0 {
		return Breakdown{}, &domain.ValidationError{Field: "gross", Reason: "must be non-negative"}
	}
	if err := cfg.validate(); err != nil {
		return Breakdown{}, err
	}

	feeTotal := big.NewInt(0)
	if cfg.FeeBps > 0 {
		numerator := new(big.Int).Mul(gross, big.NewInt(int64(cfg.FeeBps)))
		feeTotal = cfg.Rounding.divide(numerator, bpsDenominator)
	}
	if cfg.Flat != nil {
		feeTotal = new(big.Int).Add(feeTotal, cfg.Flat)
	}
	if cfg.Min != nil && feeTotal.Cmp(cfg.Min) < 0 {
		feeTotal = new(big.Int).Set(cfg.Min)
	}
	if cfg.Max != nil && feeTotal.Cmp(cfg.Max) > 0 {
		feeTotal = new(big.Int).Set(cfg.Max)
	}
	if feeTotal.Cmp(gross) > 0 {
		feeTotal = new(big.Int).Set(gross)
	}

	g := new(big.Int).Set(gross)
	return Breakdown{
		Gross: g,
		Fee:   feeTotal,
		Net:   new(big.Int).Sub(g, feeTotal),
	}, nil
}

// Totals extends a Breakdown with the payer-side total of gross plus fee,
// for flows where the fee is charged on top instead of deducted.
type Totals struct {
	Breakdown
	Total *big.Int
}

// FeeTotals computes a Breakdown plus the payer-side total.
func FeeTotals(gross *big.Int, cfg Config) (Totals, error) {
	breakdown, err := FeeBreakdown(gross, cfg)
	if err != nil {
		return Totals{}, err
	}
	return Totals{
		Breakdown: breakdown,
		Total:     new(big.Int).Add(breakdown.Gross, breakdown.Fee),
	}, nil
}

// QuoteOptions parameterizes a settlement quote.
type QuoteOptions struct {
	// Cap bounds the gross amount used for fee computation. Nil means no cap.
	Cap *big.Int
	// Fee is the protocol fee configuration.
	Fee Config
	// PricingRounding resolves inexact pricing divisions (CPM). The zero
	// value is floor.
	PricingRounding Rounding
}

// SettlementQuote is the full preview of a settlement: the fee breakdown of
// the (possibly capped) gross, whether the cap was applied, and the cap
// itself so callers can show both to the user before committing.
type SettlementQuote struct {
	Breakdown
	Capped bool
	Cap    *big.Int
}

// Quote computes the settlement quote for a pricing model and observed
// metrics. The same function backs the non-mutating preview shown to users
// and the amount actually applied at settlement, so the two cannot drift.
func Quote(pricing PricingModel, metrics Metrics, opts QuoteOptions) (SettlementQuote, error) {
	gross, err := GrossAmount(pricing, metrics, opts.PricingRounding)
	if err != nil {
		return SettlementQuote{}, err
	}

	var (
		capped   bool
		grossCap *big.Int
	)
	if opts.Cap != nil {
		if opts.Cap.Sign() < 0 {
			return SettlementQuote{}, &domain.ValidationError{Field: "cap", Reason: "must be non-negative"}
		}
		grossCap = new(big.Int).Set(opts.Cap)
		if gross.Cmp(grossCap) > 0 {
			gross = new(big.Int).Set(grossCap)
			capped = true
		}
	}

	breakdown, err := FeeBreakdown(gross, opts.Fee)
	if err != nil {
		return SettlementQuote{}, err
	}
	return SettlementQuote{Breakdown: breakdown, Capped: capped, Cap: grossCap}, nil
}
