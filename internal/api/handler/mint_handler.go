package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tickettoken/mint-gateway/internal/api/dto"
	"github.com/tickettoken/mint-gateway/internal/mint"
)

// SubmitMint handles POST /api/v1/tickets/mint
// Records a mint job, hands it to the worker queue, and returns 202
// with the queued job. Callers poll GetMintStatus for the outcome.
func (h *MintHandler) SubmitMint(c *gin.Context) {
	var req dto.MintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid mint request body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	job := h.tracker.Submit(mint.JobInput{
		EventID:         req.EventID,
		WalletAddresses: req.WalletAddresses,
	})
	h.metrics.JobsSubmitted.Inc()

	msg := dto.MintJobMessage{
		JobID:           job.ID,
		EventID:         job.EventID,
		WalletAddresses: job.WalletAddresses,
		RequestedAt:     job.CreatedAt.Format(time.RFC3339),
	}

	if err := h.publisher.Publish(c.Request.Context(), h.mintQueue, msg); err != nil {
		h.metrics.PublishFailures.WithLabelValues(h.mintQueue).Inc()
		h.logger.Error("Failed to publish mint job",
			slog.String("job_id", job.ID),
			slog.String("error", err.Error()),
		)
		// The broker is down; the tracked job will still complete via
		// its deferred callback, but the caller should retry the submit.
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Failed to enqueue mint job",
		})
		return
	}
	h.metrics.MessagesPublished.WithLabelValues(h.mintQueue).Inc()

	c.JSON(http.StatusAccepted, jobResponse(job))
}

// GetMintStatus handles GET /api/v1/tickets/mint/:job_id
// Unknown ids are not errors: the response carries the not_found
// sentinel status so clients can distinguish "pending" from "never
// existed" without special-casing failures.
func (h *MintHandler) GetMintStatus(c *gin.Context) {
	jobID := c.Param("job_id")
	if jobID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "job_id is required",
		})
		return
	}

	job := h.tracker.Status(jobID)
	c.JSON(http.StatusOK, jobResponse(job))
}

// EstimateFees handles GET /api/v1/tickets/fees/estimate?count=N
func (h *MintHandler) EstimateFees(c *gin.Context) {
	countParam := c.DefaultQuery("count", "1")
	count, err := strconv.Atoi(countParam)
	if err != nil || count < 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "count must be a non-negative integer",
		})
		return
	}

	c.JSON(http.StatusOK, h.estimator.Estimate(count))
}

func jobResponse(job mint.Job) dto.MintJobResponse {
	resp := dto.MintJobResponse{
		JobID:                job.ID,
		Status:               string(job.Status),
		EventID:              job.EventID,
		WalletAddresses:      job.WalletAddresses,
		TransactionSignature: job.TransactionSignature,
		Error:                job.Error,
	}

	if !job.CreatedAt.IsZero() {
		resp.CreatedAt = job.CreatedAt.Format(time.RFC3339)
	}
	if !job.CompletedAt.IsZero() {
		resp.CompletedAt = job.CompletedAt.Format(time.RFC3339)
	}

	return resp
}
