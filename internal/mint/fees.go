package mint

import "time"

// FeeEstimate is the fee read model returned to API clients.
type FeeEstimate struct {
	EstimatedFee float64   `json:"estimatedFee"`
	FeeInUSD     float64   `json:"feeInUSD"`
	Network      string    `json:"network"`
	Congestion   string    `json:"congestion"`
	Timestamp    time.Time `json:"timestamp"`
}

// EstimatorConfig holds the per-ticket fee schedule.
type EstimatorConfig struct {
	FeePerTicket    float64
	FeePerTicketUSD float64
	Network         string
	Congestion      string
	Now             func() time.Time
}

// Estimator computes mint cost estimates. Fees scale linearly with the
// ticket count; the network and congestion descriptors are fixed.
type Estimator struct {
	feePerTicket    float64
	feePerTicketUSD float64
	network         string
	congestion      string
	now             func() time.Time
}

// NewEstimator creates a fee estimator.
func NewEstimator(cfg *EstimatorConfig) *Estimator {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Estimator{
		feePerTicket:    cfg.FeePerTicket,
		feePerTicketUSD: cfg.FeePerTicketUSD,
		network:         cfg.Network,
		congestion:      cfg.Congestion,
		now:             now,
	}
}

// Estimate returns the cost of minting count tickets. Total for any
// non-negative count; no error conditions.
func (e *Estimator) Estimate(count int) FeeEstimate {
	return FeeEstimate{
		EstimatedFee: float64(count) * e.feePerTicket,
		FeeInUSD:     float64(count) * e.feePerTicketUSD,
		Network:      e.network,
		Congestion:   e.congestion,
		Timestamp:    e.now(),
	}
}
