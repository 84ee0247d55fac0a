// Package api exposes the read-only HTTP surface: the four persisted tables,
// cached candle snapshots, pipeline events over SSE, health and Prometheus
// metrics. The API never writes to the store.
package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fvgbot/cache"
	"fvgbot/database/gaps"
	"fvgbot/database/retests"
	"fvgbot/database/trades"
	"fvgbot/logger"
	"fvgbot/realtime"
)

// Server handles HTTP API requests
type Server struct {
	gaps    *gaps.Repository
	retests *retests.Repository
	trades  *trades.Repository
	cache   *cache.RedisClient
	broker  *realtime.Broker
	log     *logger.Logger

	fineTimeframe string
}

// NewServer creates a new API server instance
func NewServer(gapsRepo *gaps.Repository, retestsRepo *retests.Repository, tradesRepo *trades.Repository,
	redis *cache.RedisClient, broker *realtime.Broker, fineTimeframe string, log *logger.Logger) *Server {
	return &Server{
		gaps:          gapsRepo,
		retests:       retestsRepo,
		trades:        tradesRepo,
		cache:         redis,
		broker:        broker,
		fineTimeframe: fineTimeframe,
		log:           log,
	}
}

// Start starts the HTTP server on the specified port
func (s *Server) Start(port int) error {
	mux := http.NewServeMux()

	mux.Handle("GET /api/events", s.broker) // SSE endpoint
	mux.HandleFunc("GET /api/gaps", s.handleGetGaps)
	mux.HandleFunc("GET /api/retests", s.handleGetRetests)
	mux.HandleFunc("GET /api/trades", s.handleGetTrades)
	mux.HandleFunc("GET /api/positions", s.handleGetPositions)
	mux.HandleFunc("GET /api/candles/latest", s.handleGetLatestCandle)

	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /health", s.handleHealth)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // SSE connections stay open
	}

	s.log.WithComponent("api").Info(fmt.Sprintf("API server listening on :%d", port))
	return server.ListenAndServe()
}
