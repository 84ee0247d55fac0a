package strategy

import (
	models "fvgbot/database/models_pkg"
	"fvgbot/market"
)

// IsBreakout reports whether the latest fine-grained close confirms the
// retest: bullish when close > retest.High, bearish when close < retest.Low.
func IsBreakout(retest *models.RetestGap, close float64) bool {
	switch retest.Direction {
	case models.DirectionBullish:
		return close > retest.High
	case models.DirectionBearish:
		return close < retest.Low
	}
	return false
}

// Levels are the price levels computed at trade entry.
type Levels struct {
	InitialStopLoss float64
	StopDistance    float64
	InitialTarget   float64
	ModifiedTarget  float64
}

// ComputeLevels derives stop and target levels from the owning gap's
// boundaries and the entry close. The stop sits past the gap boundary by the
// slippage buffer; targets are 2x and 3x the stop distance from entry.
func ComputeLevels(direction string, entryClose, gapStart, gapEnd float64) Levels {
	var l Levels
	switch direction {
	case models.DirectionBullish:
		l.InitialStopLoss = gapStart * (1 - SlippageBuffer)
		l.StopDistance = entryClose - l.InitialStopLoss
		l.InitialTarget = entryClose + InitialTargetMultiple*l.StopDistance
		l.ModifiedTarget = entryClose + ModifiedTargetMultiple*l.StopDistance
	case models.DirectionBearish:
		l.InitialStopLoss = gapEnd * (1 + SlippageBuffer)
		l.StopDistance = l.InitialStopLoss - entryClose
		l.InitialTarget = entryClose - InitialTargetMultiple*l.StopDistance
		l.ModifiedTarget = entryClose - ModifiedTargetMultiple*l.StopDistance
	}
	return l
}

// NewTrade builds the trade row and its companion status row for a confirmed
// breakout. The modified stop starts at the initial stop and is moved to the
// entry price when the position partial-books.
func NewTrade(retest *models.RetestGap, gap *models.FairValueGap, entry market.Candle, lot int) (*models.Trade, *models.TradeStatus) {
	levels := ComputeLevels(retest.Direction, entry.Close, gap.GapStart, gap.GapEnd)

	trade := &models.Trade{
		Symbol:           retest.Symbol,
		EntryTime:        entry.OpenTime,
		RetestGapID:      retest.ID,
		Direction:        retest.Direction,
		Open:             entry.Open,
		High:             entry.High,
		Low:              entry.Low,
		Close:            entry.Close,
		Volume:           entry.Volume,
		Lot:              lot,
		RemainingLot:     lot,
		InitialStopLoss:  levels.InitialStopLoss,
		InitialTarget:    levels.InitialTarget,
		ModifiedStopLoss: levels.InitialStopLoss,
		ModifiedTarget:   levels.ModifiedTarget,
		IsActive:         true,
	}

	status := &models.TradeStatus{
		Symbol:     retest.Symbol,
		EntryTime:  entry.OpenTime,
		EntryPrice: entry.Close,
		Status:     models.StatusRunning,
		Quantity:   lot,
		IsOpen:     true,
	}

	return trade, status
}
