package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fvgbot/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: "error"})
}

func TestCandlesSinglePage(t *testing.T) {
	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC).Unix()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("symbol"); got != "BTCUSD" {
			t.Errorf("symbol param = %q, want BTCUSD", got)
		}
		if got := r.URL.Query().Get("resolution"); got != "5m" {
			t.Errorf("resolution param = %q, want 5m", got)
		}
		fmt.Fprintf(w, `{"success":true,"result":[
			{"time":%d,"open":100,"high":102,"low":99,"close":101,"volume":10},
			{"time":%d,"open":101,"high":103,"low":100,"close":102,"volume":20}
		]}`, base+300, base)
	}))
	defer server.Close()

	c := NewClient(server.URL, 5*time.Second, time.Millisecond, testLogger())

	series, err := c.Candles(context.Background(), "BTCUSD", "5m",
		time.Unix(base, 0), time.Unix(base+600, 0))
	if err != nil {
		t.Fatalf("Candles error: %v", err)
	}

	if series.Len() != 2 {
		t.Fatalf("expected 2 candles, got %d", series.Len())
	}
	if !series.At(0).OpenTime.Before(series.At(1).OpenTime) {
		t.Error("candles should be sorted ascending by open time")
	}
	if series.At(0).VWAP == 0 {
		t.Error("VWAP should be annotated")
	}
}

func TestCandlesPaginatesBackward(t *testing.T) {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC).Unix()
	calls := 0

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		var out []map[string]interface{}
		if calls == 1 {
			// Full page: client must paginate to fetch the older window.
			for i := 0; i < pageSize; i++ {
				out = append(out, map[string]interface{}{
					"time": base + int64(pageSize+i)*60, "open": 1, "high": 1, "low": 1, "close": 1, "volume": 1,
				})
			}
		} else {
			out = append(out, map[string]interface{}{
				"time": base, "open": 1, "high": 1, "low": 1, "close": 1, "volume": 1,
			})
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "result": out})
	}))
	defer server.Close()

	c := NewClient(server.URL, 5*time.Second, time.Millisecond, testLogger())

	series, err := c.Candles(context.Background(), "BTCUSD", "1m",
		time.Unix(base, 0), time.Unix(base+int64(2*pageSize)*60, 0))
	if err != nil {
		t.Fatalf("Candles error: %v", err)
	}

	if calls != 2 {
		t.Errorf("expected 2 requests, got %d", calls)
	}
	if series.Len() != pageSize+1 {
		t.Errorf("expected %d candles, got %d", pageSize+1, series.Len())
	}
}

func TestCandlesRetriesOnServerError(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			http.Error(w, "upstream hiccup", http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, `{"success":true,"result":[]}`)
	}))
	defer server.Close()

	c := NewClient(server.URL, 5*time.Second, time.Millisecond, testLogger())
	c.retryBackoff = time.Millisecond

	series, err := c.Candles(context.Background(), "BTCUSD", "1m",
		time.Now().Add(-time.Hour), time.Now())
	if err != nil {
		t.Fatalf("Candles should succeed after retry, got: %v", err)
	}
	if calls != 2 {
		t.Errorf("expected 2 requests, got %d", calls)
	}
	if series.Len() != 0 {
		t.Errorf("expected empty series, got %d", series.Len())
	}
}

func TestCandlesSurfacesClientError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad symbol", http.StatusBadRequest)
	}))
	defer server.Close()

	c := NewClient(server.URL, 5*time.Second, time.Millisecond, testLogger())

	if _, err := c.Candles(context.Background(), "NOPE", "1m",
		time.Now().Add(-time.Hour), time.Now()); err == nil {
		t.Fatal("expected error on HTTP 400")
	}
}
