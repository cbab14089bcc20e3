// Package observability holds the process-wide Prometheus instruments.
package observability

import (
	"math/big"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	instructions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adboard_instructions_total",
			Help: "Instructions submitted to the ledger runtime",
		},
		[]string{"action", "status"},
	)

	settlementUnits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adboard_settlement_units_total",
			Help: "Settled value by bucket (gross, fee, net)",
		},
		[]string{"bucket"},
	)

	activeSubscriptions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "adboard_account_subscriptions_active",
			Help: "Open account change subscriptions",
		},
	)

	mirrorSyncDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "adboard_mirror_sync_duration_seconds",
			Help:    "Duration of one mirror sync pass per account kind",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 10),
		},
		[]string{"kind"},
	)

	mirrorSyncErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adboard_mirror_sync_errors_total",
			Help: "Failed mirror sync passes per account kind",
		},
		[]string{"kind"},
	)
)

// TrackInstruction records one submit attempt. Status is "ok" or "error".
func TrackInstruction(action, status string) {
	instructions.WithLabelValues(action, status).Inc()
}

// TrackSettlement records the value split of one applied settlement. The
// counters lose precision past float64 range, which is acceptable for
// monitoring.
func TrackSettlement(gross, fee, net *big.Int) {
	g, _ := new(big.Float).SetInt(gross).Float64()
	f, _ := new(big.Float).SetInt(fee).Float64()
	n, _ := new(big.Float).SetInt(net).Float64()
	settlementUnits.WithLabelValues("gross").Add(g)
	settlementUnits.WithLabelValues("fee").Add(f)
	settlementUnits.WithLabelValues("net").Add(n)
}

// SubscriptionOpened and SubscriptionClosed track the live stream gauge.
func SubscriptionOpened() { activeSubscriptions.Inc() }
func SubscriptionClosed() { activeSubscriptions.Dec() }

// TrackMirrorSync records one sync pass for an account kind.
func TrackMirrorSync(kind string, d time.Duration, err error) {
	mirrorSyncDuration.WithLabelValues(kind).Observe(d.Seconds())
	if err != nil {
		mirrorSyncErrors.WithLabelValues(kind).Inc()
	}
}
