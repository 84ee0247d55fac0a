// Package market holds the in-memory candle representation the strategy
// components operate on. A Series is an ordered, positionally indexable
// sequence of OHLCV candles for one symbol and timeframe, annotated with a
// cumulative VWAP.
package market

import (
	"fmt"
	"sort"
	"time"
)

// Candle is a single OHLCV bar. Candles are immutable once produced; VWAP is
// derived cumulatively from the start of the series the candle belongs to.
type Candle struct {
	OpenTime time.Time
	Open     float64
	High     float64
	Low      float64
	Close    float64
	Volume   float64
	VWAP     float64
}

// TypicalPrice returns (high + low + close) / 3.
func (c Candle) TypicalPrice() float64 {
	return (c.High + c.Low + c.Close) / 3
}

// Series is a time-ordered candle sequence with no duplicate open times.
type Series struct {
	Symbol    string
	Timeframe string
	Candles   []Candle
}

// NewSeries sorts candles by open time, drops duplicate open times (keeping
// the first occurrence) and annotates the cumulative VWAP.
func NewSeries(symbol, timeframe string, candles []Candle) *Series {
	sort.Slice(candles, func(i, j int) bool {
		return candles[i].OpenTime.Before(candles[j].OpenTime)
	})

	deduped := candles[:0]
	var last time.Time
	for i, c := range candles {
		if i > 0 && c.OpenTime.Equal(last) {
			continue
		}
		deduped = append(deduped, c)
		last = c.OpenTime
	}

	s := &Series{Symbol: symbol, Timeframe: timeframe, Candles: deduped}
	s.annotateVWAP()
	return s
}

// annotateVWAP computes the running volume-weighted average price:
// cumulative Σ(typical·volume) / Σ(volume) from the series start.
func (s *Series) annotateVWAP() {
	var cumVol, cumVP float64
	for i := range s.Candles {
		c := &s.Candles[i]
		cumVol += c.Volume
		cumVP += c.TypicalPrice() * c.Volume
		if cumVol > 0 {
			c.VWAP = cumVP / cumVol
		}
	}
}

// Len returns the number of candles.
func (s *Series) Len() int {
	return len(s.Candles)
}

// At returns the candle at position i.
func (s *Series) At(i int) Candle {
	return s.Candles[i]
}

// Latest returns the newest candle, or false when the series is empty.
func (s *Series) Latest() (Candle, bool) {
	if len(s.Candles) == 0 {
		return Candle{}, false
	}
	return s.Candles[len(s.Candles)-1], true
}

// Triple returns the (two-back, one-back, current) candles ending at index i.
// It errors when i has fewer than two predecessors.
func (s *Series) Triple(i int) (prev2, prev1, curr Candle, err error) {
	if i < 2 || i >= len(s.Candles) {
		return Candle{}, Candle{}, Candle{}, fmt.Errorf("triple at index %d out of range (len %d)", i, len(s.Candles))
	}
	return s.Candles[i-2], s.Candles[i-1], s.Candles[i], nil
}
