package strategy

import (
	"math"
	"testing"
	"time"

	models "fvgbot/database/models_pkg"
	"fvgbot/market"
)

func approx(got, want float64) bool {
	return math.Abs(got-want) < 1e-9
}

func TestIsBreakout(t *testing.T) {
	bullish := &models.RetestGap{Direction: models.DirectionBullish, High: 108, Low: 105}
	bearish := &models.RetestGap{Direction: models.DirectionBearish, High: 96, Low: 94}

	tests := []struct {
		name   string
		retest *models.RetestGap
		close  float64
		want   bool
	}{
		{"bullish close above retest high", bullish, 110, true},
		{"bullish close at retest high", bullish, 108, false},
		{"bullish close below retest high", bullish, 107, false},
		{"bearish close below retest low", bearish, 93, true},
		{"bearish close at retest low", bearish, 94, false},
		{"bearish close above retest low", bearish, 95, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsBreakout(tt.retest, tt.close); got != tt.want {
				t.Errorf("IsBreakout = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestComputeLevelsBullish(t *testing.T) {
	// Entry close 110, gap start 100: SL = 99.995, stop distance 10.005,
	// targets 130.01 and 140.015.
	l := ComputeLevels(models.DirectionBullish, 110, 100, 106)

	if !approx(l.InitialStopLoss, 99.995) {
		t.Errorf("initialStopLoss = %v, want 99.995", l.InitialStopLoss)
	}
	if !approx(l.StopDistance, 10.005) {
		t.Errorf("stopDistance = %v, want 10.005", l.StopDistance)
	}
	if !approx(l.InitialTarget, 130.01) {
		t.Errorf("initialTarget = %v, want 130.01", l.InitialTarget)
	}
	if !approx(l.ModifiedTarget, 140.015) {
		t.Errorf("modifiedTarget = %v, want 140.015", l.ModifiedTarget)
	}
}

func TestComputeLevelsBearish(t *testing.T) {
	// Entry close 90, gap end 100: SL = 100.005, stop distance 10.005,
	// targets mirror downward.
	l := ComputeLevels(models.DirectionBearish, 90, 94, 100)

	if !approx(l.InitialStopLoss, 100.005) {
		t.Errorf("initialStopLoss = %v, want 100.005", l.InitialStopLoss)
	}
	if !approx(l.StopDistance, 10.005) {
		t.Errorf("stopDistance = %v, want 10.005", l.StopDistance)
	}
	if !approx(l.InitialTarget, 90-2*10.005) {
		t.Errorf("initialTarget = %v, want %v", l.InitialTarget, 90-2*10.005)
	}
	if !approx(l.ModifiedTarget, 90-3*10.005) {
		t.Errorf("modifiedTarget = %v, want %v", l.ModifiedTarget, 90-3*10.005)
	}
}

func TestNewTrade(t *testing.T) {
	entryTime := time.Date(2025, 6, 1, 9, 20, 0, 0, time.UTC)
	retest := &models.RetestGap{
		ID: 3, Symbol: "BTCUSD",
		Direction: models.DirectionBullish,
		High:      108, Low: 105,
	}
	gap := &models.FairValueGap{ID: 7, GapStart: 100, GapEnd: 106}
	entry := market.Candle{OpenTime: entryTime, Open: 109, High: 111, Low: 108, Close: 110, Volume: 5}

	trade, status := NewTrade(retest, gap, entry, 10)

	if trade.RetestGapID != 3 {
		t.Errorf("retestGapID = %d, want 3", trade.RetestGapID)
	}
	if trade.Lot != 10 || trade.RemainingLot != 10 {
		t.Errorf("lot/remaining = %d/%d, want 10/10", trade.Lot, trade.RemainingLot)
	}
	if !approx(trade.InitialStopLoss, 99.995) {
		t.Errorf("initialStopLoss = %v, want 99.995", trade.InitialStopLoss)
	}
	if trade.ModifiedStopLoss != trade.InitialStopLoss {
		t.Error("modified stop should start at the initial stop")
	}
	if !trade.IsActive {
		t.Error("new trade should be active")
	}

	if status.Status != models.StatusRunning {
		t.Errorf("status = %s, want Running", status.Status)
	}
	if status.EntryPrice != 110 {
		t.Errorf("entryPrice = %v, want 110", status.EntryPrice)
	}
	if status.Quantity != 10 || !status.IsOpen {
		t.Errorf("quantity/isOpen = %d/%v, want 10/true", status.Quantity, status.IsOpen)
	}
}
