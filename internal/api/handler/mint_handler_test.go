package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tickettoken/mint-gateway/internal/api/dto"
	"github.com/tickettoken/mint-gateway/internal/api/handler"
	"github.com/tickettoken/mint-gateway/internal/api/router"
	"github.com/tickettoken/mint-gateway/internal/metrics"
	"github.com/tickettoken/mint-gateway/internal/mint"
)

type fakePublisher struct {
	mu        sync.Mutex
	published []publishedMessage
	err       error
}

type publishedMessage struct {
	queue   string
	payload any
}

func (p *fakePublisher) Publish(_ context.Context, queueName string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, publishedMessage{queue: queueName, payload: payload})
	return nil
}

type manualSource struct {
	mu        sync.Mutex
	scheduled []func()
}

func (s *manualSource) Schedule(_ string, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scheduled = append(s.scheduled, fn)
}

func (s *manualSource) fireAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, fn := range s.scheduled {
		fn()
	}
	s.scheduled = nil
}

type testGateway struct {
	engine    *gin.Engine
	publisher *fakePublisher
	source    *manualSource
}

func newTestGateway(t *testing.T) *testGateway {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := slog.New(slog.DiscardHandler)
	publisher := &fakePublisher{}
	source := &manualSource{}

	tracker := mint.NewTracker(&mint.TrackerConfig{
		Logger:     logger,
		Completion: source,
	})

	estimator := mint.NewEstimator(&mint.EstimatorConfig{
		FeePerTicket:    0.00125,
		FeePerTicketUSD: 0.35,
		Network:         "devnet",
		Congestion:      "low",
	})

	deps := &handler.Dependencies{
		Logger:    logger,
		Publisher: publisher,
		Tracker:   tracker,
		Estimator: estimator,
		Metrics:   metrics.New(),
		MintQueue: "ticket-minting",
	}

	return &testGateway{
		engine:    router.SetupRouter(deps, nil),
		publisher: publisher,
		source:    source,
	}
}

func (g *testGateway) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	g.engine.ServeHTTP(w, req)
	return w
}

func TestSubmitMint(t *testing.T) {
	g := newTestGateway(t)

	w := g.do(t, http.MethodPost, "/api/v1/tickets/mint", dto.MintRequest{
		EventID:         "evt_9",
		WalletAddresses: []string{"wallet-a", "wallet-b"},
	})

	require.Equal(t, http.StatusAccepted, w.Code)

	var resp dto.MintJobResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.JobID)
	assert.Equal(t, "queued", resp.Status)
	assert.Equal(t, "evt_9", resp.EventID)
	assert.Len(t, resp.WalletAddresses, 2)
	assert.NotEmpty(t, resp.CreatedAt)
	assert.Empty(t, resp.TransactionSignature)

	// The mint message went to the worker queue with the same job id.
	require.Len(t, g.publisher.published, 1)
	assert.Equal(t, "ticket-minting", g.publisher.published[0].queue)
	msg, ok := g.publisher.published[0].payload.(dto.MintJobMessage)
	require.True(t, ok)
	assert.Equal(t, resp.JobID, msg.JobID)
	assert.Equal(t, []string{"wallet-a", "wallet-b"}, msg.WalletAddresses)
}

func TestSubmitMint_InvalidBody(t *testing.T) {
	tests := []struct {
		name string
		body any
	}{
		{name: "missing event id", body: map[string]any{"walletAddresses": []string{"w"}}},
		{name: "missing wallets", body: map[string]any{"eventId": "evt_1"}},
		{name: "empty wallets", body: map[string]any{"eventId": "evt_1", "walletAddresses": []string{}}},
		{name: "blank wallet entry", body: map[string]any{"eventId": "evt_1", "walletAddresses": []string{""}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGateway(t)
			w := g.do(t, http.MethodPost, "/api/v1/tickets/mint", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Empty(t, g.publisher.published)
		})
	}
}

func TestSubmitMint_PublishFailure(t *testing.T) {
	g := newTestGateway(t)
	g.publisher.err = errors.New("broker unreachable")

	w := g.do(t, http.MethodPost, "/api/v1/tickets/mint", dto.MintRequest{
		EventID:         "evt_down",
		WalletAddresses: []string{"w"},
	})

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestGetMintStatus_Lifecycle(t *testing.T) {
	g := newTestGateway(t)

	w := g.do(t, http.MethodPost, "/api/v1/tickets/mint", dto.MintRequest{
		EventID:         "evt_lc",
		WalletAddresses: []string{"wallet-a", "wallet-b"},
	})
	require.Equal(t, http.StatusAccepted, w.Code)

	var created dto.MintJobResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	// Immediately after submit the job is still queued.
	w = g.do(t, http.MethodGet, "/api/v1/tickets/mint/"+created.JobID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var pending dto.MintJobResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pending))
	assert.Equal(t, "queued", pending.Status)

	// Once the completion window elapses the job is completed.
	g.source.fireAll()

	w = g.do(t, http.MethodGet, "/api/v1/tickets/mint/"+created.JobID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var done dto.MintJobResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &done))
	assert.Equal(t, "completed", done.Status)
	assert.NotEmpty(t, done.TransactionSignature)
	assert.NotEmpty(t, done.CompletedAt)

	createdAt, err := time.Parse(time.RFC3339, done.CreatedAt)
	require.NoError(t, err)
	completedAt, err := time.Parse(time.RFC3339, done.CompletedAt)
	require.NoError(t, err)
	assert.False(t, completedAt.Before(createdAt))
}

func TestGetMintStatus_UnknownID(t *testing.T) {
	g := newTestGateway(t)

	w := g.do(t, http.MethodGet, "/api/v1/tickets/mint/nonexistent-id", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.MintJobResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "not_found", resp.Status)
	assert.Equal(t, "nonexistent-id", resp.JobID)
}

func TestEstimateFees(t *testing.T) {
	g := newTestGateway(t)

	w := g.do(t, http.MethodGet, "/api/v1/tickets/fees/estimate?count=4", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp mint.FeeEstimate
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.InDelta(t, 4*0.00125, resp.EstimatedFee, 1e-9)
	assert.InDelta(t, 4*0.35, resp.FeeInUSD, 1e-9)
	assert.Equal(t, "devnet", resp.Network)
	assert.Equal(t, "low", resp.Congestion)
	assert.False(t, resp.Timestamp.IsZero())
}

func TestEstimateFees_DefaultsToOne(t *testing.T) {
	g := newTestGateway(t)

	w := g.do(t, http.MethodGet, "/api/v1/tickets/fees/estimate", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp mint.FeeEstimate
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.InDelta(t, 0.00125, resp.EstimatedFee, 1e-9)
}

func TestEstimateFees_InvalidCount(t *testing.T) {
	for _, count := range []string{"abc", "-1", "1.5"} {
		t.Run(count, func(t *testing.T) {
			g := newTestGateway(t)
			w := g.do(t, http.MethodGet, "/api/v1/tickets/fees/estimate?count="+count, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestHealth(t *testing.T) {
	g := newTestGateway(t)

	w := g.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "mint-gateway")
}

func TestRequestIDHeader(t *testing.T) {
	g := newTestGateway(t)

	w := g.do(t, http.MethodGet, "/health", nil)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
