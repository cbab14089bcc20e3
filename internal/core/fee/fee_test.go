package fee

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adboard/internal/core/domain"
)

func bi(v int64) *big.Int { return big.NewInt(v) }

// TestPerViewSettlement reproduces the reference scenario: 37 views at 100
// per view with a 2.5% fee under floor rounding.
func TestPerViewSettlement(t *testing.T) {
	quote, err := Quote(
		PerView{Price: bi(100)},
		Metrics{Views: bi(37)},
		QuoteOptions{Fee: Config{FeeBps: 250}},
	)
	require.NoError(t, err)

	assert.Equal(t, bi(3700), quote.Gross)
	assert.Equal(t, bi(92), quote.Fee)
	assert.Equal(t, bi(3608), quote.Net)
	assert.False(t, quote.Capped)
}

func TestCPMRounding(t *testing.T) {
	// 5001 * 1234 / 1000 = 6171.234
	tests := []struct {
		rounding Rounding
		want     int64
	}{
		{RoundFloor, 6171},
		{RoundCeil, 6172},
		{RoundHalfUp, 6171},
	}
	for _, tt := range tests {
		t.Run(tt.rounding.String(), func(t *testing.T) {
			gross, err := GrossAmount(CPM{Price: bi(5001)}, Metrics{Impressions: bi(1234)}, tt.rounding)
			require.NoError(t, err)
			assert.Equal(t, bi(tt.want), gross)
		})
	}

	// exact division is unaffected by the policy
	for _, r := range []Rounding{RoundFloor, RoundCeil, RoundHalfUp} {
		gross, err := GrossAmount(CPM{Price: bi(5000)}, Metrics{Impressions: bi(1250)}, r)
		require.NoError(t, err)
		assert.Equal(t, bi(6250), gross, r.String())
	}
}

func TestGrossAmountModels(t *testing.T) {
	gross, err := GrossAmount(Flat{Amount: bi(4200)}, Metrics{}, RoundFloor)
	require.NoError(t, err)
	assert.Equal(t, bi(4200), gross)

	gross, err = GrossAmount(PerImpression{Price: bi(7)}, Metrics{Impressions: bi(11)}, RoundFloor)
	require.NoError(t, err)
	assert.Equal(t, bi(77), gross)
}

func TestMissingMetricIsRejected(t *testing.T) {
	var verr *domain.ValidationError

	_, err := GrossAmount(PerView{Price: bi(100)}, Metrics{}, RoundFloor)
	require.ErrorAs(t, err, &verr)

	_, err = GrossAmount(CPM{Price: bi(100)}, Metrics{Views: bi(10)}, RoundFloor)
	require.ErrorAs(t, err, &verr)
}

func TestNegativeInputsRejected(t *testing.T) {
	var verr *domain.ValidationError

	_, err := GrossAmount(PerView{Price: bi(-1)}, Metrics{Views: bi(1)}, RoundFloor)
	require.ErrorAs(t, err, &verr)

	_, err = GrossAmount(PerView{Price: bi(1)}, Metrics{Views: bi(-1)}, RoundFloor)
	require.ErrorAs(t, err, &verr)

	_, err = FeeBreakdown(bi(-5), Config{})
	require.ErrorAs(t, err, &verr)

	_, err = FeeBreakdown(bi(100), Config{Flat: bi(-1)})
	require.ErrorAs(t, err, &verr)
}

func TestFeeBpsBounds(t *testing.T) {
	var verr *domain.ValidationError
	_, err := FeeBreakdown(bi(100), Config{FeeBps: 10_001})
	require.ErrorAs(t, err, &verr)

	// 100% fee consumes the whole gross
	breakdown, err := FeeBreakdown(bi(100), Config{FeeBps: 10_000})
	require.NoError(t, err)
	assert.Equal(t, bi(100), breakdown.Fee)
	assert.Zero(t, breakdown.Net.Sign())
}

func TestZeroBpsChargesFlatOnly(t *testing.T) {
	breakdown, err := FeeBreakdown(bi(500), Config{Flat: bi(25)})
	require.NoError(t, err)
	assert.Equal(t, bi(25), breakdown.Fee)
	assert.Equal(t, bi(475), breakdown.Net)

	// flat fee is clamped to gross
	breakdown, err = FeeBreakdown(bi(10), Config{Flat: bi(25)})
	require.NoError(t, err)
	assert.Equal(t, bi(10), breakdown.Fee)
	assert.Zero(t, breakdown.Net.Sign())
}

func TestZeroMetricsYieldZeroFee(t *testing.T) {
	quote, err := Quote(
		PerImpression{Price: bi(9999)},
		Metrics{Impressions: bi(0)},
		QuoteOptions{Fee: Config{FeeBps: 5000}},
	)
	require.NoError(t, err)
	assert.Zero(t, quote.Gross.Sign())
	assert.Zero(t, quote.Fee.Sign())
	assert.Zero(t, quote.Net.Sign())
}

func TestMinMaxClamp(t *testing.T) {
	// bps fee 10 is lifted to min 50
	breakdown, err := FeeBreakdown(bi(1000), Config{FeeBps: 100, Min: bi(50)})
	require.NoError(t, err)
	assert.Equal(t, bi(50), breakdown.Fee)

	// bps fee 100 is capped to max 30
	breakdown, err = FeeBreakdown(bi(1000), Config{FeeBps: 1000, Max: bi(30)})
	require.NoError(t, err)
	assert.Equal(t, bi(30), breakdown.Fee)
}

func TestQuoteCap(t *testing.T) {
	quote, err := Quote(
		PerView{Price: bi(100)},
		Metrics{Views: bi(1000)},
		QuoteOptions{Cap: bi(60_000), Fee: Config{FeeBps: 100}},
	)
	require.NoError(t, err)
	assert.True(t, quote.Capped)
	assert.Equal(t, bi(60_000), quote.Cap)
	assert.Equal(t, bi(60_000), quote.Gross)
	assert.Equal(t, bi(600), quote.Fee)

	// under the cap: flag stays false, cap still reported
	quote, err = Quote(
		PerView{Price: bi(100)},
		Metrics{Views: bi(10)},
		QuoteOptions{Cap: bi(60_000)},
	)
	require.NoError(t, err)
	assert.False(t, quote.Capped)
	assert.Equal(t, bi(60_000), quote.Cap)
	assert.Equal(t, bi(1000), quote.Gross)
}

// TestNetPlusFeeEqualsGross sweeps pricing models, rounding policies and fee
// configurations and checks the conservation identity on each quote.
func TestNetPlusFeeEqualsGross(t *testing.T) {
	models := []struct {
		name    string
		pricing PricingModel
		metrics Metrics
	}{
		{"flat", Flat{Amount: bi(12345)}, Metrics{}},
		{"perView", PerView{Price: bi(73)}, Metrics{Views: bi(991)}},
		{"perImpression", PerImpression{Price: bi(13)}, Metrics{Impressions: bi(1717)}},
		{"cpm", CPM{Price: bi(5001)}, Metrics{Impressions: bi(1234)}},
		{"zero", PerView{Price: bi(100)}, Metrics{Views: bi(0)}},
	}
	configs := []Config{
		{},
		{FeeBps: 250},
		{FeeBps: 10_000},
		{Flat: bi(17)},
		{FeeBps: 333, Flat: bi(5), Min: bi(10), Max: bi(400)},
	}
	caps := []*big.Int{nil, bi(0), bi(999), bi(1_000_000)}

	for _, m := range models {
		for _, cfg := range configs {
			for _, r := range []Rounding{RoundFloor, RoundCeil, RoundHalfUp} {
				for _, c := range caps {
					cfg := cfg
					cfg.Rounding = r
					quote, err := Quote(m.pricing, m.metrics, QuoteOptions{Cap: c, Fee: cfg, PricingRounding: r})
					require.NoError(t, err, m.name)

					sum := new(big.Int).Add(quote.Net, quote.Fee)
					assert.Zero(t, sum.Cmp(quote.Gross), "net+fee != gross for %s %+v", m.name, cfg)
					assert.GreaterOrEqual(t, quote.Net.Sign(), 0, m.name)
				}
			}
		}
	}
}

func TestFeeTotals(t *testing.T) {
	totals, err := FeeTotals(bi(1000), Config{FeeBps: 250})
	require.NoError(t, err)
	assert.Equal(t, bi(25), totals.Fee)
	assert.Equal(t, bi(1025), totals.Total)
}

// TestRoundingOnlyAffectsDivisions pins the rule that the flat portion is
// never rounded: half-up and ceil agree with floor when bps is zero.
func TestRoundingOnlyAffectsDivisions(t *testing.T) {
	for _, r := range []Rounding{RoundFloor, RoundCeil, RoundHalfUp} {
		breakdown, err := FeeBreakdown(bi(999), Config{Flat: bi(3), Rounding: r})
		require.NoError(t, err)
		assert.Equal(t, bi(3), breakdown.Fee, r.String())
	}
}

func TestLargeAmountsDoNotOverflow(t *testing.T) {
	huge, ok := new(big.Int).SetString("340282366920938463463374607431768211455", 10) // 2^128-1
	require.True(t, ok)

	breakdown, err := FeeBreakdown(huge, Config{FeeBps: 250})
	require.NoError(t, err)
	sum := new(big.Int).Add(breakdown.Net, breakdown.Fee)
	assert.Zero(t, sum.Cmp(huge))
}
