package mint

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestEstimator() *Estimator {
	frozen := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	return NewEstimator(&EstimatorConfig{
		FeePerTicket:    0.00125,
		FeePerTicketUSD: 0.35,
		Network:         "devnet",
		Congestion:      "low",
		Now:             func() time.Time { return frozen },
	})
}

func TestEstimator_Linearity(t *testing.T) {
	e := newTestEstimator()
	unit := e.Estimate(1)

	for _, n := range []int{2, 3, 10, 100, 5000} {
		got := e.Estimate(n)
		assert.InDelta(t, float64(n)*unit.EstimatedFee, got.EstimatedFee, 1e-9)
		assert.InDelta(t, float64(n)*unit.FeeInUSD, got.FeeInUSD, 1e-9)
	}
}

func TestEstimator_ZeroCount(t *testing.T) {
	e := newTestEstimator()

	got := e.Estimate(0)
	assert.Zero(t, got.EstimatedFee)
	assert.Zero(t, got.FeeInUSD)
}

func TestEstimator_FixedDescriptors(t *testing.T) {
	e := newTestEstimator()

	got := e.Estimate(4)
	assert.Equal(t, "devnet", got.Network)
	assert.Equal(t, "low", got.Congestion)
	assert.Equal(t, time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC), got.Timestamp)
}
