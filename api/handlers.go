package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"fvgbot/cache"
	"fvgbot/market"
)

const defaultLimit = 50

// getLimit retrieves the limit query parameter, capped at 500.
func getLimit(r *http.Request) int {
	valStr := r.URL.Query().Get("limit")
	if valStr == "" {
		return defaultLimit
	}
	val, err := strconv.Atoi(valStr)
	if err != nil || val <= 0 {
		return defaultLimit
	}
	if val > 500 {
		return 500
	}
	return val
}

func getBool(r *http.Request, key string) bool {
	return r.URL.Query().Get(key) == "true"
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func (s *Server) handleGetGaps(w http.ResponseWriter, r *http.Request) {
	symbol := r.URL.Query().Get("symbol")

	list, err := s.gaps.List(symbol, getBool(r, "active"), getLimit(r))
	if err != nil {
		s.log.WithComponent("api").WithError(err).Error("gap list failed")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"data":  list,
		"count": len(list),
	})
}

func (s *Server) handleGetRetests(w http.ResponseWriter, r *http.Request) {
	symbol := r.URL.Query().Get("symbol")

	list, err := s.retests.List(symbol, getBool(r, "active"), getLimit(r))
	if err != nil {
		s.log.WithComponent("api").WithError(err).Error("retest list failed")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"data":  list,
		"count": len(list),
	})
}

func (s *Server) handleGetTrades(w http.ResponseWriter, r *http.Request) {
	symbol := r.URL.Query().Get("symbol")

	list, err := s.trades.ListTrades(symbol, getBool(r, "active"), getLimit(r))
	if err != nil {
		s.log.WithComponent("api").WithError(err).Error("trade list failed")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"data":  list,
		"count": len(list),
	})
}

func (s *Server) handleGetPositions(w http.ResponseWriter, r *http.Request) {
	symbol := r.URL.Query().Get("symbol")

	list, err := s.trades.ListStatuses(symbol, getBool(r, "open"), getLimit(r))
	if err != nil {
		s.log.WithComponent("api").WithError(err).Error("position list failed")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"data":  list,
		"count": len(list),
	})
}

// handleGetLatestCandle serves the pipeline's cached newest fine candle.
func (s *Server) handleGetLatestCandle(w http.ResponseWriter, r *http.Request) {
	symbol := r.URL.Query().Get("symbol")
	if symbol == "" {
		http.Error(w, "symbol parameter required", http.StatusBadRequest)
		return
	}
	if s.cache == nil {
		http.Error(w, "candle cache unavailable", http.StatusServiceUnavailable)
		return
	}

	var candle market.Candle
	if err := s.cache.Get(r.Context(), cache.KeyLatestCandle(symbol, s.fineTimeframe), &candle); err != nil {
		http.Error(w, "no cached candle for symbol", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"symbol":    symbol,
		"timeframe": s.fineTimeframe,
		"candle":    candle,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"time":   time.Now().UTC(),
	})
}
