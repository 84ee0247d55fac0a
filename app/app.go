// Package app wires the bot together: config, logging, storage, cache, feed,
// the per-symbol pipelines and the read-only API server.
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"fvgbot/api"
	"fvgbot/cache"
	"fvgbot/config"
	"fvgbot/database"
	"fvgbot/database/gaps"
	"fvgbot/database/retests"
	"fvgbot/database/trades"
	"fvgbot/feed"
	"fvgbot/logger"
	"fvgbot/market"
	"fvgbot/notifications"
	"fvgbot/realtime"
	"fvgbot/strategy"
)

// App represents the main application
type App struct {
	config   *config.Config
	log      *logger.Logger
	db       *database.Database
	redis    *cache.RedisClient
	broker   *realtime.Broker
	pipeline *strategy.Pipeline
	stream   *feed.Stream
}

// New creates a new application instance
func New(cfg *config.Config) *App {
	return &App{
		config: cfg,
		log: logger.New(logger.Config{
			Level:      cfg.LogLevel,
			Format:     cfg.LogFormat,
			Output:     cfg.LogOutput,
			MaxSize:    50,
			MaxBackups: 5,
			MaxAge:     14,
		}),
	}
}

// Start starts the application and blocks until shutdown.
func (a *App) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if len(a.config.Symbols) == 0 {
		return fmt.Errorf("no symbols configured")
	}

	// 1. Database connection and schema
	dbPort, err := strconv.Atoi(a.config.DatabasePort)
	if err != nil {
		return fmt.Errorf("invalid database port: %w", err)
	}

	db, err := database.Connect(
		a.config.DatabaseHost,
		dbPort,
		a.config.DatabaseName,
		a.config.DatabaseUser,
		a.config.DatabasePassword,
	)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	a.db = db
	defer a.db.Close()

	if err := a.db.InitSchema(); err != nil {
		return fmt.Errorf("schema initialization failed: %w", err)
	}
	a.log.WithComponent("app").Info("database ready")

	// 2. Redis (optional, fail-soft)
	a.redis = cache.NewRedisClient(a.config.RedisHost, a.config.RedisPort, a.config.RedisPassword)
	if a.redis == nil {
		a.log.WithComponent("app").Warn("redis unavailable, caching disabled")
	}

	// 3. Repositories
	gapsRepo := gaps.NewRepository(a.db.DB())
	retestsRepo := retests.NewRepository(a.db.DB())
	tradesRepo := trades.NewRepository(a.db.DB())

	// 4. Realtime broker
	a.broker = realtime.NewBroker()
	go a.broker.Run()

	// 5. Feed client and pipeline
	feedClient := feed.NewClient(
		a.config.Feed.BaseURL,
		time.Duration(a.config.Feed.RequestTimeout)*time.Second,
		time.Duration(a.config.Feed.RateLimitMs)*time.Millisecond,
		a.log,
	)

	notifier := notifications.NewNotifier(a.config.WebhookURL, a.log)

	pipeline, err := strategy.NewPipeline(strategy.PipelineConfig{
		Feed:          feedClient,
		Gaps:          gapsRepo,
		Retests:       retestsRepo,
		Trades:        tradesRepo,
		Cache:         a.redis,
		Broker:        a.broker,
		Notifier:      notifier,
		Log:           a.log,
		GapTimeframe:  a.config.GapTimeframe,
		FineTimeframe: a.config.FineTimeframe,
		LookbackDays:  a.config.Feed.LookbackDays,
		LotSize:       a.config.Trading.LotSize,
		TickInterval:  time.Duration(a.config.Trading.PollIntervalMinutes) * time.Minute,
	})
	if err != nil {
		return fmt.Errorf("pipeline setup failed: %w", err)
	}
	a.pipeline = pipeline

	var wg sync.WaitGroup
	for _, symbol := range a.config.Symbols {
		wg.Add(1)
		go func(sym string) {
			defer wg.Done()
			a.pipeline.Start(ctx, sym)
		}(symbol)
	}

	// 6. Optional live candle stream keeps the cache and SSE clients fresh
	// between polls.
	if a.config.Feed.LiveStream {
		a.stream = feed.NewStream(
			a.config.Feed.WSURL,
			a.config.Symbols,
			a.config.FineTimeframe,
			a.onLiveCandle,
			a.log,
		)
		if err := a.stream.Start(); err != nil {
			a.log.WithComponent("app").WithError(err).Warn("live stream unavailable, relying on polling")
			a.stream = nil
		}
	}

	// 7. API server
	apiServer := api.NewServer(gapsRepo, retestsRepo, tradesRepo, a.redis, a.broker, a.config.FineTimeframe, a.log)
	go func() {
		if err := apiServer.Start(a.config.APIPort); err != nil {
			a.log.WithComponent("app").WithError(err).Error("API server stopped")
		}
	}()

	// 8. Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	a.log.WithComponent("app").Info("shutting down")
	if a.stream != nil {
		a.stream.Stop()
	}
	a.pipeline.Stop()
	cancel()
	wg.Wait()

	return nil
}

// onLiveCandle caches each streamed candle and broadcasts it to SSE clients.
func (a *App) onLiveCandle(symbol string, candle market.Candle) {
	if a.redis != nil {
		ctx, cancelFn := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancelFn()
		_ = a.redis.Set(ctx, cache.KeyLatestCandle(symbol, a.config.FineTimeframe), candle, 10*time.Minute)
	}
	a.broker.Publish(realtime.Event{Type: "candle", Symbol: symbol, Payload: candle})
}
