package handler

import (
	"net/http"
	"strings"

	"github.com/yourorg/signal-service/internal/model"
	"github.com/yourorg/signal-service/internal/report"
	"github.com/yourorg/signal-service/internal/service"
	"github.com/yourorg/signal-service/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SignalHandler handles analysis-related HTTP requests
type SignalHandler struct {
	analysisService *service.AnalysisService
	reportBuilder   *report.Builder
	logger          *zap.Logger
}

// NewSignalHandler creates a new signal handler
func NewSignalHandler(analysisService *service.AnalysisService, reportBuilder *report.Builder, logger *zap.Logger) *SignalHandler {
	return &SignalHandler{
		analysisService: analysisService,
		reportBuilder:   reportBuilder,
		logger:          logger,
	}
}

// Analyze handles producing a signal for one symbol and timeframe
// POST /api/v1/signals
func (h *SignalHandler) Analyze(c *gin.Context) {
	var request model.AnalyzeRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.SendErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	timeframe, err := model.ParseTimeframe(request.Timeframe)
	if err != nil {
		utils.SendErrorResponse(c, http.StatusBadRequest, "Invalid timeframe")
		return
	}

	sig, err := h.analysisService.Analyze(c.Request.Context(), request.Symbol, timeframe)
	if err != nil {
		h.logger.Error("Failed to analyze symbol",
			zap.Error(err),
			zap.String("symbol", request.Symbol),
			zap.String("timeframe", timeframe.String()))
		utils.SendErrorResponse(c, http.StatusInternalServerError, "Failed to analyze symbol")
		return
	}

	utils.SendDataResponse(c, http.StatusOK, sig)
}

// Scan handles analyzing the configured watchlist
// GET /api/v1/signals/scan
func (h *SignalHandler) Scan(c *gin.Context) {
	signals, err := h.analysisService.ScanWatchlist(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to scan watchlist", zap.Error(err))
		utils.SendErrorResponse(c, http.StatusInternalServerError, "Failed to scan watchlist")
		return
	}

	utils.SendDataResponse(c, http.StatusOK, signals)
}

// Report handles rendering a text analysis report for a symbol.
// Pairs are passed in dash form in the path, BTC-USDT for BTC/USDT.
// GET /api/v1/signals/:symbol/report?timeframe=1h
func (h *SignalHandler) Report(c *gin.Context) {
	symbol := strings.ReplaceAll(c.Param("symbol"), "-", "/")
	if symbol == "" {
		utils.SendErrorResponse(c, http.StatusBadRequest, "Symbol is required")
		return
	}

	timeframe, err := model.ParseTimeframe(c.DefaultQuery("timeframe", "1h"))
	if err != nil {
		utils.SendErrorResponse(c, http.StatusBadRequest, "Invalid timeframe")
		return
	}

	sig, err := h.analysisService.Analyze(c.Request.Context(), symbol, timeframe)
	if err != nil {
		h.logger.Error("Failed to build report",
			zap.Error(err),
			zap.String("symbol", symbol),
			zap.String("timeframe", timeframe.String()))
		utils.SendErrorResponse(c, http.StatusInternalServerError, "Failed to build report")
		return
	}

	c.String(http.StatusOK, h.reportBuilder.Build(sig))
}
