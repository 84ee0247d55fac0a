package helpers

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Round2 rounds a price or percentage to 2 decimal places.
// All percentage columns in the database are stored at this precision.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// PctOf returns part as a percentage of whole, rounded to 2 decimal places.
// Returns 0 when whole is 0 to avoid NaN propagation into the database.
func PctOf(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return Round2(part / whole * 100)
}

// TimeframeDuration parses a timeframe label ("1m", "5m", "15m", "1h", "1d")
// into its candle duration.
func TimeframeDuration(tf string) (time.Duration, error) {
	tf = strings.ToLower(strings.TrimSpace(tf))
	if tf == "" {
		return 0, fmt.Errorf("empty timeframe")
	}

	unit := tf[len(tf)-1]
	n, err := strconv.Atoi(tf[:len(tf)-1])
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid timeframe %q", tf)
	}

	switch unit {
	case 'm':
		return time.Duration(n) * time.Minute, nil
	case 'h':
		return time.Duration(n) * time.Hour, nil
	case 'd':
		return time.Duration(n) * 24 * time.Hour, nil
	default:
		return 0, fmt.Errorf("invalid timeframe %q", tf)
	}
}

// TimeframeMinutes returns the whole-minute length of a timeframe label.
func TimeframeMinutes(tf string) (int, error) {
	d, err := TimeframeDuration(tf)
	if err != nil {
		return 0, err
	}
	return int(d / time.Minute), nil
}
