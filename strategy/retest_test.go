package strategy

import (
	"testing"
	"time"

	models "fvgbot/database/models_pkg"
	"fvgbot/market"
)

func TestIsRetest(t *testing.T) {
	activeTime := time.Date(2025, 6, 1, 9, 15, 0, 0, time.UTC)

	bullish := &models.FairValueGap{
		ID: 1, Symbol: "BTCUSD", Timeframe: "5m",
		Direction: models.DirectionBullish,
		GapStart:  100, GapEnd: 106, ActiveTime: activeTime,
	}
	bearish := &models.FairValueGap{
		ID: 2, Symbol: "BTCUSD", Timeframe: "5m",
		Direction: models.DirectionBearish,
		GapStart:  94, GapEnd: 100, ActiveTime: activeTime,
	}

	tests := []struct {
		name   string
		gap    *models.FairValueGap
		candle market.Candle
		want   bool
	}{
		{
			name:   "bullish low dips to gap end",
			gap:    bullish,
			candle: market.Candle{OpenTime: activeTime.Add(time.Minute), Low: 105, High: 109},
			want:   true,
		},
		{
			name:   "bullish low above tolerance band",
			gap:    bullish,
			candle: market.Candle{OpenTime: activeTime.Add(time.Minute), Low: 106.1, High: 109},
			want:   false,
		},
		{
			name: "bullish low within tolerance just above gap end",
			gap:  bullish,
			// 106 * (1 + 0.00003) = 106.00318
			candle: market.Candle{OpenTime: activeTime.Add(time.Minute), Low: 106.003, High: 109},
			want:   true,
		},
		{
			name:   "candle at active time is not a retest",
			gap:    bullish,
			candle: market.Candle{OpenTime: activeTime, Low: 105, High: 109},
			want:   false,
		},
		{
			name:   "candle before active time is not a retest",
			gap:    bullish,
			candle: market.Candle{OpenTime: activeTime.Add(-time.Minute), Low: 105, High: 109},
			want:   false,
		},
		{
			name:   "bearish high rises to gap start",
			gap:    bearish,
			candle: market.Candle{OpenTime: activeTime.Add(time.Minute), Low: 90, High: 95},
			want:   true,
		},
		{
			name:   "bearish high below tolerance band",
			gap:    bearish,
			candle: market.Candle{OpenTime: activeTime.Add(time.Minute), Low: 90, High: 93.9},
			want:   false,
		},
		{
			name: "bearish high within tolerance just below gap start",
			gap:  bearish,
			// 94 * (1 - 0.00003) = 93.99718
			candle: market.Candle{OpenTime: activeTime.Add(time.Minute), Low: 90, High: 93.998},
			want:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetest(tt.gap, tt.candle); got != tt.want {
				t.Errorf("IsRetest = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewRetestEvent(t *testing.T) {
	activeTime := time.Date(2025, 6, 1, 9, 15, 0, 0, time.UTC)
	gap := &models.FairValueGap{
		ID: 7, Symbol: "BTCUSD", Timeframe: "5m",
		Direction: models.DirectionBullish,
		GapStart:  100, GapEnd: 106, ActiveTime: activeTime,
	}
	candle := market.Candle{
		OpenTime: activeTime.Add(time.Minute),
		Open:     107, High: 108, Low: 105, Close: 106.5, Volume: 42,
	}

	event := NewRetestEvent(gap, candle, "1m")

	if event.FairValueGapID != 7 {
		t.Errorf("FairValueGapID = %d, want 7", event.FairValueGapID)
	}
	if event.Direction != models.DirectionBullish {
		t.Errorf("direction = %s, want Bullish", event.Direction)
	}
	if event.Timeframe != "1m" {
		t.Errorf("timeframe = %s, want 1m", event.Timeframe)
	}
	if event.High != 108 || event.Low != 105 || event.Close != 106.5 || event.Volume != 42 {
		t.Errorf("OHLCV snapshot not carried: %+v", event)
	}
	if !event.IsActive || event.IsTraded {
		t.Error("new retest event should be active and untraded")
	}
}
