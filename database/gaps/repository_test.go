package gaps

import (
	"testing"
	"time"

	models "fvgbot/database/models_pkg"
)

func TestQuantizedDuration(t *testing.T) {
	active := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		now       time.Time
		tfMinutes int
		want      int
	}{
		{"zero elapsed", active, 5, 0},
		{"under one unit", active.Add(4 * time.Minute), 5, 0},
		{"exactly one unit", active.Add(5 * time.Minute), 5, 5},
		{"partial second unit truncates", active.Add(9 * time.Minute), 5, 5},
		{"several units", active.Add(27 * time.Minute), 5, 25},
		{"one minute timeframe", active.Add(3 * time.Minute), 1, 3},
		{"now before active time", active.Add(-10 * time.Minute), 5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := QuantizedDuration(active, tt.now, tt.tfMinutes); got != tt.want {
				t.Errorf("QuantizedDuration = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestShouldDeactivate(t *testing.T) {
	tests := []struct {
		name  string
		gap   models.FairValueGap
		close float64
		want  bool
	}{
		{
			name:  "bullish close below gap start deactivates",
			gap:   models.FairValueGap{Direction: models.DirectionBullish, GapStart: 100, GapEnd: 106},
			close: 99,
			want:  true,
		},
		{
			name:  "bullish close inside band stays active",
			gap:   models.FairValueGap{Direction: models.DirectionBullish, GapStart: 100, GapEnd: 106},
			close: 103,
			want:  false,
		},
		{
			name:  "bullish close at boundary stays active",
			gap:   models.FairValueGap{Direction: models.DirectionBullish, GapStart: 100, GapEnd: 106},
			close: 100,
			want:  false,
		},
		{
			name:  "bearish close above gap end deactivates",
			gap:   models.FairValueGap{Direction: models.DirectionBearish, GapStart: 94, GapEnd: 100},
			close: 101,
			want:  true,
		},
		{
			name:  "bearish close below gap end stays active",
			gap:   models.FairValueGap{Direction: models.DirectionBearish, GapStart: 94, GapEnd: 100},
			close: 97,
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShouldDeactivate(&tt.gap, tt.close); got != tt.want {
				t.Errorf("ShouldDeactivate = %v, want %v", got, tt.want)
			}
		})
	}
}
