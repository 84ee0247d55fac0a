package models

import "time"

// Gap direction constants. Direction is stored as text, matching the
// Bullish/Bearish vocabulary used across all four tables.
const (
	DirectionBullish = "Bullish"
	DirectionBearish = "Bearish"
)

// Position status constants for TradeStatus.Status.
const (
	StatusRunning       = "Running"
	StatusPartialBooked = "PartialBooked"
	StatusCostToCost    = "CostToCost"
	StatusFullBooked    = "FullBooked"
	StatusSL            = "SL"
)

// IsTerminalStatus reports whether a position status closes the position.
func IsTerminalStatus(status string) bool {
	return status == StatusCostToCost || status == StatusFullBooked || status == StatusSL
}

// FairValueGap is a detected three-candle price imbalance on the coarse
// timeframe. At most one row exists per
// (symbol, timeframe, direction, gap_start, gap_end); insertion is
// dedup-on-conflict against the idx_fvg_identity unique index.
//
// Lifecycle:
//   - created active and unretested by the gap detector
//   - DurationMinutes grows in whole timeframe units while active
//   - IsRetested flips to true exactly once when price returns into the band
//   - IsActive flips to false permanently when a later close crosses the far
//     boundary (Bearish: close > GapEnd, Bullish: close < GapStart)
type FairValueGap struct {
	ID                  int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Symbol              string    `gorm:"size:20;not null;index;uniqueIndex:idx_fvg_identity" json:"symbol"`
	Timeframe           string    `gorm:"size:5;not null;uniqueIndex:idx_fvg_identity" json:"timeframe"`
	Direction           string    `gorm:"size:10;not null;uniqueIndex:idx_fvg_identity" json:"direction"`
	GapStart            float64   `gorm:"type:decimal(18,8);not null;uniqueIndex:idx_fvg_identity" json:"gap_start"`
	GapEnd              float64   `gorm:"type:decimal(18,8);not null;uniqueIndex:idx_fvg_identity" json:"gap_end"`
	ActiveTime          time.Time `gorm:"index;not null" json:"active_time"`
	DurationMinutes     int       `json:"duration_minutes"`
	GapSizePct          float64   `gorm:"type:decimal(10,2)" json:"gap_size_pct"`
	DistanceFromVWAPPct float64   `gorm:"type:decimal(10,2)" json:"distance_from_vwap_pct"`
	IsActive            bool      `gorm:"default:true;index" json:"is_active"`
	IsRetested          bool      `gorm:"default:false" json:"is_retested"`
	LastModified        time.Time `gorm:"autoUpdateTime" json:"last_modified"`
}

// TableName specifies the table name for FairValueGap
func (FairValueGap) TableName() string {
	return "fair_value_gaps"
}

// RetestGap records price returning into an active gap's band on the fine
// timeframe. It carries the OHLCV snapshot of the triggering candle and is
// deactivated when its owning gap deactivates.
type RetestGap struct {
	ID             int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Symbol         string    `gorm:"size:20;not null;index" json:"symbol"`
	OpenTime       time.Time `gorm:"index;not null" json:"open_time"`
	FairValueGapID int64     `gorm:"index;not null" json:"fair_value_gap_id"`
	Timeframe      string    `gorm:"size:5;not null" json:"timeframe"`
	Direction      string    `gorm:"size:10;not null" json:"direction"`
	Open           float64   `gorm:"type:decimal(18,8)" json:"open"`
	High           float64   `gorm:"type:decimal(18,8)" json:"high"`
	Low            float64   `gorm:"type:decimal(18,8)" json:"low"`
	Close          float64   `gorm:"type:decimal(18,8)" json:"close"`
	Volume         float64   `gorm:"type:decimal(20,8)" json:"volume"`
	IsActive       bool      `gorm:"default:true;index" json:"is_active"`
	IsTraded       bool      `gorm:"default:false" json:"is_traded"`
	LastModified   time.Time `gorm:"autoUpdateTime" json:"last_modified"`
}

// TableName specifies the table name for RetestGap
func (RetestGap) TableName() string {
	return "retest_gaps"
}

// Trade is one position opened from a breakout after a retest. Lot is the
// initial size; RemainingLot only ever decreases. ModifiedStopLoss starts at
// the initial stop and moves to the entry price on partial booking.
type Trade struct {
	ID               int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Symbol           string    `gorm:"size:20;not null;index" json:"symbol"`
	EntryTime        time.Time `gorm:"index;not null" json:"entry_time"`
	RetestGapID      int64     `gorm:"index;not null" json:"retest_gap_id"`
	Direction        string    `gorm:"size:10;not null" json:"direction"`
	Open             float64   `gorm:"type:decimal(18,8)" json:"open"`
	High             float64   `gorm:"type:decimal(18,8)" json:"high"`
	Low              float64   `gorm:"type:decimal(18,8)" json:"low"`
	Close            float64   `gorm:"type:decimal(18,8)" json:"close"`
	Volume           float64   `gorm:"type:decimal(20,8)" json:"volume"`
	Lot              int       `gorm:"not null" json:"lot"`
	RemainingLot     int       `gorm:"not null" json:"remaining_lot"`
	InitialStopLoss  float64   `gorm:"type:decimal(18,8)" json:"initial_stop_loss"`
	InitialTarget    float64   `gorm:"type:decimal(18,8)" json:"initial_target"`
	ModifiedStopLoss float64   `gorm:"type:decimal(18,8)" json:"modified_stop_loss"`
	ModifiedTarget   float64   `gorm:"type:decimal(18,8)" json:"modified_target"`
	IsActive         bool      `gorm:"default:true;index" json:"is_active"`
	LastModified     time.Time `gorm:"autoUpdateTime" json:"last_modified"`
}

// TableName specifies the table name for Trade
func (Trade) TableName() string {
	return "trades"
}

// TradeStatus is the current-state companion of a Trade, mutated in place as
// the position advances. IsOpen transitions true to false exactly once, on a
// terminal status.
type TradeStatus struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	TradeID      int64     `gorm:"index;not null" json:"trade_id"`
	Symbol       string    `gorm:"size:20;not null;index" json:"symbol"`
	EntryTime    time.Time `gorm:"not null" json:"entry_time"`
	EntryPrice   float64   `gorm:"type:decimal(18,8);not null" json:"entry_price"`
	ExitPrice    float64   `gorm:"type:decimal(18,8)" json:"exit_price"`
	Pnl          float64   `gorm:"type:decimal(20,8)" json:"pnl"`
	Status       string    `gorm:"size:20;not null" json:"status"`
	Quantity     int       `json:"quantity"`
	IsOpen       bool      `gorm:"default:true;index" json:"is_open"`
	LastModified time.Time `gorm:"autoUpdateTime" json:"last_modified"`
}

// TableName specifies the table name for TradeStatus
func (TradeStatus) TableName() string {
	return "trade_status"
}
