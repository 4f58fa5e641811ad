package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tickettoken/mint-gateway/internal/api/handler"
)

// Options configures router middleware beyond the handler dependencies.
type Options struct {
	RateLimiter *RateLimiter
}

// SetupRouter configures and returns the Gin router with all routes
func SetupRouter(deps *handler.Dependencies, opts *Options) *gin.Engine {
	r := gin.New()

	// Middleware
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(deps.Logger))
	r.Use(CORSMiddleware())

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		resp := gin.H{
			"status":  "healthy",
			"service": "mint-gateway",
		}

		if deps.DBClient != nil {
			if err := deps.DBClient.HealthCheck(c.Request.Context()); err != nil {
				resp["status"] = "degraded"
				resp["database"] = "down"
				c.JSON(http.StatusServiceUnavailable, resp)
				return
			}
			resp["database"] = "up"
		}

		c.JSON(http.StatusOK, resp)
	})

	if deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(
			deps.Metrics.Registry,
			promhttp.HandlerOpts{},
		)))
	}

	// Initialize mint handler
	mintHandler := handler.NewMintHandler(deps)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		tickets := v1.Group("/tickets")
		{
			// POST /api/v1/tickets/mint - Submit a mint job
			mint := tickets.Group("/mint")
			if opts != nil && opts.RateLimiter != nil {
				mint.POST("", RateLimitMiddleware(opts.RateLimiter), mintHandler.SubmitMint)
			} else {
				mint.POST("", mintHandler.SubmitMint)
			}

			// GET /api/v1/tickets/mint/:job_id - Poll mint job status
			mint.GET("/:job_id", mintHandler.GetMintStatus)

			// GET /api/v1/tickets/fees/estimate - Estimate mint cost
			tickets.GET("/fees/estimate", mintHandler.EstimateFees)
		}
	}

	return r
}
