package handler

import (
	"errors"
	"net/http"

	"github.com/yourorg/signal-service/internal/model"
	"github.com/yourorg/signal-service/internal/service"
	"github.com/yourorg/signal-service/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TradeHandler handles trade monitoring HTTP requests
type TradeHandler struct {
	monitorService *service.MonitorService
	logger         *zap.Logger
}

// NewTradeHandler creates a new trade handler
func NewTradeHandler(monitorService *service.MonitorService, logger *zap.Logger) *TradeHandler {
	return &TradeHandler{
		monitorService: monitorService,
		logger:         logger,
	}
}

// Follow handles registering a signal's trade plan for monitoring
// POST /api/v1/trades
func (h *TradeHandler) Follow(c *gin.Context) {
	subscriberID, exists := c.Get("subscriberID")
	if !exists {
		utils.SendErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var request model.FollowRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.SendErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	tradeID, err := h.monitorService.Follow(c.Request.Context(), request.Signal, subscriberID.(string))
	if err != nil {
		if errors.Is(err, model.ErrNoTradePlan) {
			utils.SendErrorResponse(c, http.StatusBadRequest, "Signal has no trade plan to follow")
			return
		}
		h.logger.Error("Failed to follow trade", zap.Error(err))
		utils.SendErrorResponse(c, http.StatusInternalServerError, "Failed to follow trade")
		return
	}

	utils.SendDataResponse(c, http.StatusCreated, gin.H{"trade_id": tradeID})
}

// List handles listing the subscriber's monitored trades
// GET /api/v1/trades
func (h *TradeHandler) List(c *gin.Context) {
	subscriberID, exists := c.Get("subscriberID")
	if !exists {
		utils.SendErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	trades, err := h.monitorService.ListTrades(c.Request.Context(), subscriberID.(string))
	if err != nil {
		h.logger.Error("Failed to list trades", zap.Error(err))
		utils.SendErrorResponse(c, http.StatusInternalServerError, "Failed to list trades")
		return
	}

	utils.SendDataResponse(c, http.StatusOK, trades)
}

// Unfollow handles cancelling monitoring for a trade
// DELETE /api/v1/trades/:id
func (h *TradeHandler) Unfollow(c *gin.Context) {
	tradeID := c.Param("id")

	if err := h.monitorService.Unfollow(c.Request.Context(), tradeID); err != nil {
		if errors.Is(err, model.ErrUnknownTrade) {
			utils.SendErrorResponse(c, http.StatusNotFound, "Trade not found")
			return
		}
		h.logger.Error("Failed to unfollow trade", zap.Error(err), zap.String("tradeID", tradeID))
		utils.SendErrorResponse(c, http.StatusInternalServerError, "Failed to unfollow trade")
		return
	}

	utils.SendDataResponse(c, http.StatusOK, gin.H{"trade_id": tradeID, "state": "unfollowed"})
}

// Tick handles a live price update pushed by the market data feed
// POST /api/v1/ticks
func (h *TradeHandler) Tick(c *gin.Context) {
	var request model.TickRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.SendErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	alerts, err := h.monitorService.OnTick(c.Request.Context(), request.Symbol, request.Price, request.Timestamp)
	if err != nil {
		h.logger.Error("Failed to process tick",
			zap.Error(err),
			zap.String("symbol", request.Symbol))
		utils.SendErrorResponse(c, http.StatusInternalServerError, "Failed to process tick")
		return
	}

	if alerts == nil {
		alerts = []model.Alert{}
	}
	utils.SendDataResponse(c, http.StatusOK, gin.H{"alerts": alerts})
}
