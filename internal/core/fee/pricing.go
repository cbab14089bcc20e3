// Package fee converts observed performance metrics into settlement amounts.
// All arithmetic runs on math/big integers in the ledger's smallest unit;
// nothing here may silently wrap or touch floating point.
package fee

import (
	"math/big"

	"adboard/internal/core/domain"
)

var thousand = big.NewInt(1000)

// Rounding selects how inexact divisions are resolved. It applies to the
// basis-point fee and to the CPM per-thousand division, never to flat
// additions.
type Rounding uint8

const (
	RoundFloor Rounding = iota
	RoundCeil
	RoundHalfUp
)

func (r Rounding) String() string {
	switch r {
	case RoundCeil:
		return "ceil"
	case RoundHalfUp:
		return "half-up"
	default:
		return "floor"
	}
}

// divide computes num/den under the rounding policy. den must be positive
// and num non-negative; both hold for every internal caller.
func (r Rounding) divide(num, den *big.Int) *big.Int {
	adjusted := new(big.Int).Set(num)
	switch r {
	case RoundCeil:
		adjusted.Add(adjusted, new(big.Int).Sub(den, big.NewInt(1)))
	case RoundHalfUp:
		adjusted.Add(adjusted, new(big.Int).Rsh(den, 1))
	}
	return adjusted.Quo(adjusted, den)
}

// PricingModel is the sealed union of supported pricing schemes. The
// concrete types are Flat, PerView, PerImpression and CPM; GrossAmount
// switches over them exhaustively so an unhandled model is an error, not a
// silent zero.
type PricingModel interface {
	pricingModel()
}

// Flat pays a fixed amount regardless of metrics.
type Flat struct {
	Amount *big.Int
}

// PerView pays Price for every counted view.
type PerView struct {
	Price *big.Int
}

// PerImpression pays Price for every counted impression.
type PerImpression struct {
	Price *big.Int
}

// CPM pays Price per thousand impressions; the division by 1000 follows the
// selected rounding policy.
type CPM struct {
	Price *big.Int
}

func (Flat) pricingModel()          {}
func (PerView) pricingModel()       {}
func (PerImpression) pricingModel() {}
func (CPM) pricingModel()           {}

// Metrics carries the observed counters a pricing model may consume. A nil
// field means the metric was not reported; a model that requires it rejects
// the input instead of defaulting to zero.
type Metrics struct {
	Views       *big.Int
	Impressions *big.Int
}

func requireMetric(field string, value *big.Int) (*big.Int, error) {
	if value == nil {
		return nil, &domain.ValidationError{Field: field, Reason: "required for this pricing model"}
	}
	if value.Sign() < 0 {
		return nil, &domain.ValidationError{Field: field, Reason: "must be non-negative"}
	}
	return value, nil
}

func requirePrice(field string, value *big.Int) (*big.Int, error) {
	if value == nil {
		return nil, &domain.ValidationError{Field: field, Reason: "price is required"}
	}
	if value.Sign() < 0 {
		return nil, &domain.ValidationError{Field: field, Reason: "must be non-negative"}
	}
	return value, nil
}

// GrossAmount computes the gross settlement amount for the model and
// metrics under the given rounding policy.
func GrossAmount(pricing PricingModel, metrics Metrics, rounding Rounding) (*big.Int, error) {
	switch p := pricing.(type) {
	case Flat:
		amount, err := requirePrice("amount", p.Amount)
		if err != nil {
			return nil, err
		}
		return new(big.Int).Set(amount), nil
	case PerView:
		price, err := requirePrice("pricePerView", p.Price)
		if err != nil {
			return nil, err
		}
		views, err := requireMetric("views", metrics.Views)
		if err != nil {
			return nil, err
		}
		return new(big.Int).Mul(price, views), nil
	case PerImpression:
		price, err := requirePrice("pricePerImpression", p.Price)
		if err != nil {
			return nil, err
		}
		impressions, err := requireMetric("impressions", metrics.Impressions)
		if err != nil {
			return nil, err
		}
		return new(big.Int).Mul(price, impressions), nil
	case CPM:
		price, err := requirePrice("pricePerThousandImpressions", p.Price)
		if err != nil {
			return nil, err
		}
		impressions, err := requireMetric("impressions", metrics.Impressions)
		if err != nil {
			return nil, err
		}
		return rounding.divide(new(big.Int).Mul(price, impressions), thousand), nil
	default:
		return nil, &domain.ValidationError{Field: "pricingModel", Reason: "unknown pricing model"}
	}
}
