package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/yourorg/signal-service/internal/backtest"
	"github.com/yourorg/signal-service/internal/client"
	"github.com/yourorg/signal-service/internal/config"
	"github.com/yourorg/signal-service/internal/decision"
	"github.com/yourorg/signal-service/internal/event"
	"github.com/yourorg/signal-service/internal/handler"
	"github.com/yourorg/signal-service/internal/indicator"
	"github.com/yourorg/signal-service/internal/middleware"
	"github.com/yourorg/signal-service/internal/model"
	"github.com/yourorg/signal-service/internal/monitor"
	"github.com/yourorg/signal-service/internal/report"
	"github.com/yourorg/signal-service/internal/repository"
	"github.com/yourorg/signal-service/internal/service"
	"github.com/yourorg/signal-service/internal/structure"
	"github.com/yourorg/signal-service/internal/structure/pattern"
	"github.com/yourorg/signal-service/internal/trend"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v4/stdlib"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Set up logger
	logger, err := createLogger(cfg.Logging.Level)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	// Connect to database
	db, err := connectToDB(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Initialize repositories
	candleRepo := repository.NewCandleRepository(db, logger)
	tradeRepo := repository.NewTradeRepository(db, logger)

	// Initialize clients
	exchangeClient := client.NewExchangeClient(
		cfg.Exchange.BaseURL,
		cfg.Exchange.Timeout,
		cfg.Exchange.RetryInterval,
		cfg.Exchange.RetryMaxElapsed,
		logger,
	)
	producer := event.NewProducer(cfg.Kafka.BrokerList(), cfg.Kafka.ClientID, logger)

	// Initialize the analysis pipeline
	indicatorEngine := indicator.NewEngine(cfg.Analysis.Indicator, logger)
	patternRegistry := pattern.NewRegistry(cfg.Analysis.Pattern)
	structureDetector := structure.NewDetector(cfg.Analysis.Structure, patternRegistry, logger)
	trendClassifier := trend.NewClassifier(cfg.Analysis.Trend, logger)
	decisionEngine := decision.NewEngine(cfg.Analysis.Decision, logger)

	scanTimeframe, err := model.ParseTimeframe(cfg.Analysis.ScanTimeframe)
	if err != nil {
		logger.Fatal("Invalid scan timeframe", zap.Error(err), zap.String("timeframe", cfg.Analysis.ScanTimeframe))
	}

	// Initialize services
	analysisService := service.NewAnalysisService(
		exchangeClient,
		candleRepo,
		indicatorEngine,
		structureDetector,
		trendClassifier,
		decisionEngine,
		producer,
		service.AnalysisOptions{
			Watchlist:     cfg.Analysis.Watchlist,
			ScanTimeframe: scanTimeframe,
			FetchLimits:   cfg.Exchange.FetchLimits,
		},
		logger,
	)

	tradeMonitor := monitor.NewTradeMonitor(logger)
	monitorService := service.NewMonitorService(tradeMonitor, tradeRepo, producer, logger)
	if cfg.Monitor.RestoreOnStart {
		if err := monitorService.Restore(context.Background()); err != nil {
			logger.Warn("Failed to restore monitored trades", zap.Error(err))
		}
	}

	backtestRunner := backtest.NewRunner(
		cfg.Backtest,
		indicatorEngine,
		structureDetector,
		trendClassifier,
		decisionEngine,
		logger,
	)
	backtestService := service.NewBacktestService(backtestRunner, candleRepo, logger)

	// Initialize handlers
	signalHandler := handler.NewSignalHandler(analysisService, report.NewBuilder(), logger)
	tradeHandler := handler.NewTradeHandler(monitorService, logger)
	backtestHandler := handler.NewBacktestHandler(backtestService, logger)

	// Set up HTTP server with Gin
	router := setupRouter(
		signalHandler,
		tradeHandler,
		backtestHandler,
		logger,
		cfg,
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start the server in a goroutine
	go func() {
		logger.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Create a deadline for server shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	if err := producer.Close(); err != nil {
		logger.Warn("Failed to close Kafka producer", zap.Error(err))
	}

	logger.Info("Server exited properly")
}

func createLogger(level string) (*zap.Logger, error) {
	// Parse log level
	var zapLevel zap.AtomicLevel
	switch level {
	case "debug":
		zapLevel = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapLevel = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapLevel = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapLevel = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		zapLevel = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	// Create logger config
	config := zap.Config{
		Level:            zapLevel,
		Development:      false,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	return config.Build()
}

func connectToDB(dbConfig config.DatabaseConfig) (*sqlx.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		dbConfig.Host,
		dbConfig.Port,
		dbConfig.User,
		dbConfig.Password,
		dbConfig.DBName,
		dbConfig.SSLMode,
	)

	db, err := sqlx.Connect("pgx", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(dbConfig.MaxOpenConns)
	db.SetMaxIdleConns(dbConfig.MaxIdleConns)
	db.SetConnMaxLifetime(dbConfig.ConnMaxLifetime)

	return db, nil
}

func setupRouter(
	signalHandler *handler.SignalHandler,
	tradeHandler *handler.TradeHandler,
	backtestHandler *handler.BacktestHandler,
	logger *zap.Logger,
	cfg *config.Config,
) *gin.Engine {
	router := gin.New()

	// Use middlewares
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	// API routes
	v1 := router.Group("/api/v1")
	{
		// Signal routes
		signals := v1.Group("/signals")
		{
			signals.Use(middleware.AuthMiddleware(cfg.Auth.JWTSecret, logger))
			signals.POST("", signalHandler.Analyze)
			signals.GET("/scan", signalHandler.Scan)
			signals.GET("/:symbol/report", signalHandler.Report)
		}

		// Monitored trade routes
		trades := v1.Group("/trades")
		{
			trades.Use(middleware.AuthMiddleware(cfg.Auth.JWTSecret, logger))
			trades.POST("", tradeHandler.Follow)
			trades.GET("", tradeHandler.List)
			trades.DELETE("/:id", tradeHandler.Unfollow)
		}

		// Backtest routes
		backtests := v1.Group("/backtests")
		{
			backtests.Use(middleware.AuthMiddleware(cfg.Auth.JWTSecret, logger))
			backtests.POST("", backtestHandler.Run)
		}

		// Service-to-service routes (requires service key)
		ticks := v1.Group("/ticks")
		ticks.Use(middleware.ServiceAuthMiddleware(cfg.Auth.ServiceKey, logger))
		{
			ticks.POST("", tradeHandler.Tick)
		}
	}

	return router
}
