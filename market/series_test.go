package market

import (
	"math"
	"testing"
	"time"
)

func candleAt(t time.Time, o, h, l, c, v float64) Candle {
	return Candle{OpenTime: t, Open: o, High: h, Low: l, Close: c, Volume: v}
}

func TestNewSeriesSortsAndDedupes(t *testing.T) {
	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	candles := []Candle{
		candleAt(base.Add(2*time.Minute), 3, 3, 3, 3, 1),
		candleAt(base, 1, 1, 1, 1, 1),
		candleAt(base.Add(time.Minute), 2, 2, 2, 2, 1),
		candleAt(base.Add(time.Minute), 99, 99, 99, 99, 1), // duplicate open time
	}

	s := NewSeries("BTCUSD", "1m", candles)

	if s.Len() != 3 {
		t.Fatalf("expected 3 candles after dedup, got %d", s.Len())
	}
	for i := 1; i < s.Len(); i++ {
		if !s.At(i - 1).OpenTime.Before(s.At(i).OpenTime) {
			t.Errorf("candles not strictly ordered at index %d", i)
		}
	}
	if s.At(1).Open != 2 {
		t.Errorf("dedup should keep the first occurrence, got open %v", s.At(1).Open)
	}
}

func TestCumulativeVWAP(t *testing.T) {
	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	candles := []Candle{
		candleAt(base, 10, 12, 8, 10, 100),                 // typical 10
		candleAt(base.Add(time.Minute), 20, 24, 16, 20, 50), // typical 20
	}

	s := NewSeries("BTCUSD", "1m", candles)

	if got := s.At(0).VWAP; math.Abs(got-10) > 1e-9 {
		t.Errorf("first candle VWAP = %v, want 10", got)
	}
	// (10*100 + 20*50) / 150 = 2000/150
	want := 2000.0 / 150.0
	if got := s.At(1).VWAP; math.Abs(got-want) > 1e-9 {
		t.Errorf("second candle VWAP = %v, want %v", got, want)
	}
}

func TestTriple(t *testing.T) {
	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	var candles []Candle
	for i := 0; i < 4; i++ {
		candles = append(candles, candleAt(base.Add(time.Duration(i)*time.Minute), float64(i), float64(i), float64(i), float64(i), 1))
	}

	s := NewSeries("BTCUSD", "1m", candles)

	prev2, prev1, curr, err := s.Triple(2)
	if err != nil {
		t.Fatalf("Triple(2) error: %v", err)
	}
	if prev2.Open != 0 || prev1.Open != 1 || curr.Open != 2 {
		t.Errorf("Triple(2) = %v %v %v, want opens 0 1 2", prev2.Open, prev1.Open, curr.Open)
	}

	if _, _, _, err := s.Triple(1); err == nil {
		t.Error("Triple(1) should error, index has fewer than two predecessors")
	}
	if _, _, _, err := s.Triple(4); err == nil {
		t.Error("Triple(4) should error, out of range")
	}
}

func TestLatestEmpty(t *testing.T) {
	s := NewSeries("BTCUSD", "1m", nil)
	if _, ok := s.Latest(); ok {
		t.Error("Latest on empty series should return false")
	}
}
