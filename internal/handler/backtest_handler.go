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

// BacktestHandler handles backtest-related HTTP requests
type BacktestHandler struct {
	backtestService *service.BacktestService
	logger          *zap.Logger
}

// NewBacktestHandler creates a new backtest handler
func NewBacktestHandler(backtestService *service.BacktestService, logger *zap.Logger) *BacktestHandler {
	return &BacktestHandler{
		backtestService: backtestService,
		logger:          logger,
	}
}

// Run handles replaying the analysis pipeline over stored candles
// POST /api/v1/backtests
func (h *BacktestHandler) Run(c *gin.Context) {
	var req model.BacktestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	timeframe, err := model.ParseTimeframe(req.Timeframe)
	if err != nil {
		utils.SendErrorResponse(c, http.StatusBadRequest, "Invalid timeframe")
		return
	}

	result, err := h.backtestService.Run(c.Request.Context(), req.Symbol, timeframe, req.StartDate, req.EndDate)
	if err != nil {
		if errors.Is(err, model.ErrEmptySeries) {
			utils.SendErrorResponse(c, http.StatusNotFound, "No stored candles for the requested range")
			return
		}
		h.logger.Error("Failed to run backtest",
			zap.Error(err),
			zap.String("symbol", req.Symbol),
			zap.String("timeframe", req.Timeframe))
		utils.SendErrorResponse(c, http.StatusInternalServerError, "Failed to run backtest")
		return
	}

	utils.SendDataResponse(c, http.StatusOK, result)
}
