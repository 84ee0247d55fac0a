package helpers

import (
	"testing"
	"time"
)

func TestRound2(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{6.004999, 6.0},
		{6.0051, 6.01},
		{-1.2349, -1.23},
		{0, 0},
	}

	for _, tt := range tests {
		if got := Round2(tt.in); got != tt.want {
			t.Errorf("Round2(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestPctOf(t *testing.T) {
	if got := PctOf(6, 100); got != 6.0 {
		t.Errorf("PctOf(6, 100) = %v, want 6.0", got)
	}
	if got := PctOf(1, 0); got != 0 {
		t.Errorf("PctOf with zero whole = %v, want 0", got)
	}
}

func TestTimeframeDuration(t *testing.T) {
	tests := []struct {
		tf      string
		want    time.Duration
		wantErr bool
	}{
		{"1m", time.Minute, false},
		{"5m", 5 * time.Minute, false},
		{"1h", time.Hour, false},
		{"1d", 24 * time.Hour, false},
		{"", 0, true},
		{"5x", 0, true},
		{"-5m", 0, true},
	}

	for _, tt := range tests {
		got, err := TimeframeDuration(tt.tf)
		if (err != nil) != tt.wantErr {
			t.Errorf("TimeframeDuration(%q) error = %v, wantErr %v", tt.tf, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("TimeframeDuration(%q) = %v, want %v", tt.tf, got, tt.want)
		}
	}
}
