// Package feed supplies candle data to the pipeline: a REST history client
// with backward pagination and retry, and an optional websocket stream for
// live candle updates between polls.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"fvgbot/logger"
	"fvgbot/market"
)

// pageSize is the maximum candle count the exchange returns per request; a
// shorter page means the history is exhausted.
const pageSize = 2000

const maxAttempts = 3

// Client fetches candle history from the Delta Exchange REST API.
type Client struct {
	baseURL      string
	http         *http.Client
	rateLimit    time.Duration
	retryBackoff time.Duration
	log          *logger.Logger
}

// NewClient creates a feed client. rateLimit spaces successive pagination
// requests to stay under the exchange rate limits.
func NewClient(baseURL string, timeout, rateLimit time.Duration, log *logger.Logger) *Client {
	return &Client{
		baseURL:      baseURL,
		http:         &http.Client{Timeout: timeout},
		rateLimit:    rateLimit,
		retryBackoff: time.Second,
		log:          log,
	}
}

type candlePayload struct {
	Time   int64   `json:"time"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}

type historyResponse struct {
	Success bool            `json:"success"`
	Result  []candlePayload `json:"result"`
}

// Candles fetches the [start, end] candle history for one symbol and
// timeframe, paginating backward from end until the window is covered or the
// exchange runs out of data. The result is a sorted, deduplicated series with
// cumulative VWAP annotated.
func (c *Client) Candles(ctx context.Context, symbol, timeframe string, start, end time.Time) (*market.Series, error) {
	var all []market.Candle
	endTs := end.Unix()
	startTs := start.Unix()

	for {
		batch, err := c.fetchPage(ctx, symbol, timeframe, startTs, endTs)
		if err != nil {
			return nil, fmt.Errorf("fetch candles %s %s: %w", symbol, timeframe, err)
		}
		if len(batch) == 0 {
			break
		}

		oldest := batch[0].Time
		for _, p := range batch {
			if p.Time < oldest {
				oldest = p.Time
			}
			all = append(all, market.Candle{
				OpenTime: time.Unix(p.Time, 0).UTC(),
				Open:     p.Open,
				High:     p.High,
				Low:      p.Low,
				Close:    p.Close,
				Volume:   p.Volume,
			})
		}

		if len(batch) < pageSize || oldest <= startTs {
			break
		}
		endTs = oldest - 1

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.rateLimit):
		}
	}

	return market.NewSeries(symbol, timeframe, all), nil
}

// fetchPage performs one history request with retry on transport and 5xx
// failures.
func (c *Client) fetchPage(ctx context.Context, symbol, timeframe string, start, end int64) ([]candlePayload, error) {
	endpoint := fmt.Sprintf("%s/v2/history/candles", c.baseURL)

	params := url.Values{}
	params.Set("resolution", timeframe)
	params.Set("symbol", symbol)
	params.Set("start", strconv.FormatInt(start, 10))
	params.Set("end", strconv.FormatInt(end, 10))

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * c.retryBackoff):
			}
		}

		batch, retryable, err := c.doRequest(ctx, endpoint+"?"+params.Encode())
		if err == nil {
			return batch, nil
		}
		lastErr = err
		if !retryable {
			break
		}
		c.log.WithComponent("feed").WithError(err).Warn(fmt.Sprintf("candle request attempt %d failed", attempt))
	}
	return nil, lastErr
}

func (c *Client) doRequest(ctx context.Context, fullURL string) (batch []candlePayload, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, true, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests,
			fmt.Errorf("HTTP %d: %s", resp.StatusCode, body)
	}

	var parsed historyResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, false, fmt.Errorf("decode response: %w", err)
	}
	if !parsed.Success {
		return nil, false, fmt.Errorf("exchange reported failure")
	}
	return parsed.Result, false, nil
}
