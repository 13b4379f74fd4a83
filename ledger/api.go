package ledger

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pthm-cable/poopdodge/reward"
)

// ErrorResponse is the JSON body of every error reply.
type ErrorResponse struct {
	Errors string `json:"errors"`
}

// TicketResponse is the reply to POST /api/runs.
type TicketResponse struct {
	Ticket string `json:"ticket"`
}

// Handlers serves the claim API.
type Handlers struct {
	Claims ClaimService
	Logger Logger
}

// NewRouter builds the gin engine with logging and rate limiting.
func NewRouter(h *Handlers, limiter *IPLimiter) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), GinLogger(h.Logger))

	r.GET("/healthz", h.Health)

	api := r.Group("/api")
	if limiter != nil {
		api.Use(limiter.Middleware())
	}
	api.POST("/runs", h.PostRun)
	api.POST("/claims", h.PostClaim)
	api.GET("/claims/:nonce", h.GetClaim)
	return r
}

func (h *Handlers) Health(c *gin.Context) {
	if err := h.Claims.Healthy(c.Request.Context()); err != nil {
		h.Logger.Error("health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Errors: "database unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handlers) PostRun(c *gin.Context) {
	ticket, err := h.Claims.StartRun(c.Request.Context())
	if err != nil {
		h.Logger.Error("failed to issue ticket", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Errors: "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, TicketResponse{Ticket: ticket})
}

func (h *Handlers) PostClaim(c *gin.Context) {
	var req ClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Errors: "Invalid request body"})
		return
	}
	if req.Ticket == "" || req.Wallet == "" || req.Coins < 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Errors: "ticket, wallet and coins are required"})
		return
	}

	rc, err := h.Claims.Claim(c.Request.Context(), req)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, rc)
	case errors.Is(err, ErrInvalidTicket):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Errors: "Invalid ticket"})
	case errors.Is(err, reward.ErrNoReward):
		c.JSON(http.StatusBadRequest, ErrorResponse{Errors: "No reward for this coin count"})
	case errors.Is(err, ErrImplausibleClaim):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Errors: "Coin count not plausible for this run"})
	case errors.Is(err, ErrClaimUnconfirmed):
		// sent but not settled; a later claim resolves it
		c.JSON(http.StatusAccepted, rc)
	case rc.Nonce != "":
		// transfer attempted and failed; the receipt says so
		c.JSON(http.StatusBadGateway, rc)
	default:
		h.Logger.Error("failed to claim", zap.String("wallet", req.Wallet), zap.Int("coins", req.Coins), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Errors: "Internal server error"})
	}
}

func (h *Handlers) GetClaim(c *gin.Context) {
	rc, err := h.Claims.Receipt(c.Request.Context(), c.Param("nonce"))
	if err != nil {
		if errors.Is(err, ErrReceiptNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Errors: "Receipt not found"})
			return
		}
		h.Logger.Error("failed to get receipt", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Errors: "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, rc)
}
