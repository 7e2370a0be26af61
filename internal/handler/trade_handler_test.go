package handler

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/yourorg/signal-service/internal/model"
	"github.com/yourorg/signal-service/internal/monitor"
	"github.com/yourorg/signal-service/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func tradeRouter(subscriberID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()
	svc := service.NewMonitorService(monitor.NewTradeMonitor(logger), nil, nil, logger)
	h := NewTradeHandler(svc, logger)

	r := gin.New()
	group := r.Group("/api/v1")
	if subscriberID != "" {
		group.Use(func(c *gin.Context) {
			c.Set("subscriberID", subscriberID)
		})
	}
	group.POST("/trades", h.Follow)
	group.GET("/trades", h.List)
	group.DELETE("/trades/:id", h.Unfollow)
	group.POST("/ticks", h.Tick)
	return r
}

func buySignal(symbol string) *model.Signal {
	return &model.Signal{
		Symbol:      symbol,
		Timeframe:   model.Timeframe1h,
		Direction:   model.DirectionBuy,
		Confidence:  55,
		Score:       5,
		Price:       89.5,
		GeneratedAt: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
		Plan: &model.TradePlan{
			Entry:      90,
			StopLoss:   85,
			Targets:    []float64{100, 105, 110},
			RiskReward: 2,
		},
	}
}

func followTrade(t *testing.T, router *gin.Engine, sig *model.Signal) string {
	t.Helper()
	w := performJSON(t, router, http.MethodPost, "/api/v1/trades", model.FollowRequest{Signal: sig})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Data struct {
			TradeID string `json:"trade_id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Data.TradeID)
	return resp.Data.TradeID
}

func TestFollowEndpointCreatesTrade(t *testing.T) {
	router := tradeRouter("chat-42")

	id := followTrade(t, router, buySignal("BTC/USDT"))

	w := performJSON(t, router, http.MethodGet, "/api/v1/trades", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data []*model.MonitoredTrade `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, id, resp.Data[0].ID)
	assert.Equal(t, "chat-42", resp.Data[0].SubscriberID)
	assert.Equal(t, model.TradePending, resp.Data[0].State)
}

func TestFollowEndpointRequiresSubscriber(t *testing.T) {
	router := tradeRouter("")

	w := performJSON(t, router, http.MethodPost, "/api/v1/trades", model.FollowRequest{Signal: buySignal("BTC/USDT")})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Unauthorized")
}

func TestFollowEndpointValidatesBody(t *testing.T) {
	router := tradeRouter("chat-42")

	w := performJSON(t, router, http.MethodPost, "/api/v1/trades", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFollowEndpointRejectsPlanlessSignal(t *testing.T) {
	router := tradeRouter("chat-42")
	sig := buySignal("BTC/USDT")
	sig.Plan = nil

	w := performJSON(t, router, http.MethodPost, "/api/v1/trades", model.FollowRequest{Signal: sig})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Signal has no trade plan to follow")
}

func TestTickEndpointReturnsAlerts(t *testing.T) {
	router := tradeRouter("chat-42")
	followTrade(t, router, buySignal("BTC/USDT"))
	ts := time.Date(2024, 6, 1, 13, 0, 0, 0, time.UTC)

	w := performJSON(t, router, http.MethodPost, "/api/v1/ticks", model.TickRequest{
		Symbol:    "BTC/USDT",
		Price:     101,
		Timestamp: ts,
	})

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data struct {
			Alerts []model.Alert `json:"alerts"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data.Alerts, 2)
	assert.Equal(t, model.AlertEntry, resp.Data.Alerts[0].Kind)
	assert.Equal(t, model.AlertTargetHit, resp.Data.Alerts[1].Kind)
	assert.Equal(t, 1, resp.Data.Alerts[1].TargetIndex)

	// Replaying the same tick must not alert again, and the alerts field
	// stays an array rather than null.
	w = performJSON(t, router, http.MethodPost, "/api/v1/ticks", model.TickRequest{
		Symbol:    "BTC/USDT",
		Price:     101,
		Timestamp: ts,
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"alerts":[]`)
}

func TestTickEndpointValidatesBody(t *testing.T) {
	router := tradeRouter("chat-42")

	w := performJSON(t, router, http.MethodPost, "/api/v1/ticks", gin.H{"symbol": "BTC/USDT"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUnfollowEndpoint(t *testing.T) {
	router := tradeRouter("chat-42")
	id := followTrade(t, router, buySignal("BTC/USDT"))

	w := performJSON(t, router, http.MethodDelete, "/api/v1/trades/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"state":"unfollowed"`)

	w = performJSON(t, router, http.MethodDelete, "/api/v1/trades/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Trade not found")
}
