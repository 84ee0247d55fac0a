// Package strategy implements the fair-value-gap rule set: gap detection
// over a candle series, retest detection, trade triggering and the
// multi-stage position state machine, plus the per-symbol pipeline that
// sequences them each cycle.
package strategy

import (
	"time"

	models "fvgbot/database/models_pkg"
	"fvgbot/helpers"
	"fvgbot/market"
)

// Rule-set constants. These are the authoritative (latest-revision) values;
// earlier revisions of the rule set used different tolerances and multipliers.
const (
	// MinGapSizePct rejects gaps whose relative size is below 0.02% of the
	// reference price (gap start for bullish, current high for bearish).
	MinGapSizePct = 0.02

	// RetestTolerance widens the retest boundary by 0.003% to absorb price
	// noise around the band edge.
	RetestTolerance = 0.00003

	// SlippageBuffer shifts the initial stop past the gap boundary by 0.005%.
	SlippageBuffer = 0.00005

	// Reward multiples of the stop distance for the initial and modified
	// targets.
	InitialTargetMultiple  = 2.0
	ModifiedTargetMultiple = 3.0
)

// EvaluateTriple applies the three-candle FVG rule to (two-back, current).
// Bullish gap when prev2.High < curr.Low, bearish when prev2.Low > curr.High.
// Gaps below MinGapSizePct are rejected. The one-back candle takes no part in
// the rule; it only separates the two extremes.
func EvaluateTriple(prev2, curr market.Candle, symbol, timeframe string, tfDuration time.Duration) (*models.FairValueGap, bool) {
	var direction string
	var gapStart, gapEnd, reference, nearBoundary float64

	switch {
	case prev2.High < curr.Low:
		direction = models.DirectionBullish
		gapStart = prev2.High
		gapEnd = curr.Low
		reference = gapStart
		nearBoundary = gapEnd
	case prev2.Low > curr.High:
		direction = models.DirectionBearish
		gapStart = curr.High
		gapEnd = prev2.Low
		reference = curr.High
		nearBoundary = gapStart
	default:
		return nil, false
	}

	gapSizePct := helpers.PctOf(gapEnd-gapStart, reference)
	if gapSizePct < MinGapSizePct {
		return nil, false
	}

	return &models.FairValueGap{
		Symbol:              symbol,
		Timeframe:           timeframe,
		Direction:           direction,
		GapStart:            gapStart,
		GapEnd:              gapEnd,
		ActiveTime:          curr.OpenTime.Add(tfDuration),
		GapSizePct:          gapSizePct,
		DistanceFromVWAPPct: distanceFromVWAPPct(nearBoundary, curr.VWAP),
		IsActive:            true,
	}, true
}

// distanceFromVWAPPct measures how far the gap's near boundary sits from the
// current candle's VWAP, as an absolute percentage rounded to 2 decimals.
func distanceFromVWAPPct(nearBoundary, vwap float64) float64 {
	if vwap == 0 {
		return 0
	}
	d := helpers.PctOf(nearBoundary-vwap, vwap)
	if d < 0 {
		return -d
	}
	return d
}

// ScanSeries runs the FVG rule at every index with two predecessors and
// returns the candidate gaps in time order. Overlapping gaps are not merged;
// each is tracked independently.
func ScanSeries(series *market.Series, tfDuration time.Duration) []models.FairValueGap {
	var found []models.FairValueGap
	for i := 2; i < series.Len(); i++ {
		prev2 := series.At(i - 2)
		curr := series.At(i)
		if gap, ok := EvaluateTriple(prev2, curr, series.Symbol, series.Timeframe, tfDuration); ok {
			found = append(found, *gap)
		}
	}
	return found
}
