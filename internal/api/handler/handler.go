package handler

import (
	"context"
	"log/slog"

	"github.com/tickettoken/mint-gateway/internal/metrics"
	"github.com/tickettoken/mint-gateway/internal/mint"
	"github.com/tickettoken/mint-gateway/shared/postgresql"
)

// Publisher is the broker surface handlers depend on. Satisfied by
// *rabbitmq.Client; tests substitute a fake.
type Publisher interface {
	Publish(ctx context.Context, queueName string, payload any) error
}

// Dependencies holds all dependencies needed by handlers
type Dependencies struct {
	Logger    *slog.Logger
	DBClient  *postgresql.Client
	Publisher Publisher
	Tracker   *mint.Tracker
	Estimator *mint.Estimator
	Metrics   *metrics.Metrics
	MintQueue string
}

// MintHandler handles ticket minting HTTP requests
type MintHandler struct {
	logger    *slog.Logger
	publisher Publisher
	tracker   *mint.Tracker
	estimator *mint.Estimator
	metrics   *metrics.Metrics
	mintQueue string
}

// NewMintHandler creates a new MintHandler instance
func NewMintHandler(deps *Dependencies) *MintHandler {
	return &MintHandler{
		logger:    deps.Logger,
		publisher: deps.Publisher,
		tracker:   deps.Tracker,
		estimator: deps.Estimator,
		metrics:   deps.Metrics,
		mintQueue: deps.MintQueue,
	}
}
