package strategy

import (
	models "fvgbot/database/models_pkg"
	"fvgbot/market"
)

// IsRetest reports whether the fine-grained candle constitutes a retest of
// the candidate gap. The candle must be strictly newer than the gap's active
// time; the band boundary is widened by RetestTolerance:
//
//	Bullish: candle.Low ≤ gapEnd·(1+tol)
//	Bearish: candle.High ≥ gapStart·(1−tol)
func IsRetest(gap *models.FairValueGap, candle market.Candle) bool {
	if !candle.OpenTime.After(gap.ActiveTime) {
		return false
	}

	switch gap.Direction {
	case models.DirectionBullish:
		return candle.Low <= gap.GapEnd*(1+RetestTolerance)
	case models.DirectionBearish:
		return candle.High >= gap.GapStart*(1-RetestTolerance)
	}
	return false
}

// NewRetestEvent builds the retest row for a triggering candle, carrying the
// candle's OHLCV snapshot and the owning gap's direction.
func NewRetestEvent(gap *models.FairValueGap, candle market.Candle, timeframe string) *models.RetestGap {
	return &models.RetestGap{
		Symbol:         gap.Symbol,
		OpenTime:       candle.OpenTime,
		FairValueGapID: gap.ID,
		Timeframe:      timeframe,
		Direction:      gap.Direction,
		Open:           candle.Open,
		High:           candle.High,
		Low:            candle.Low,
		Close:          candle.Close,
		Volume:         candle.Volume,
		IsActive:       true,
	}
}
