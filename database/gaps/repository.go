// Package gaps owns persistence and lifecycle bookkeeping for fair value
// gaps: dedup insertion, duration aging and terminal deactivation with its
// cascade onto dependent retest rows.
package gaps

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	models "fvgbot/database/models_pkg"
)

// Repository handles database operations for fair value gaps
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new gaps repository
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// InsertIfAbsent inserts a gap unless a row with the same
// (symbol, timeframe, direction, gap_start, gap_end) identity already exists.
// The conflict target is the idx_fvg_identity unique index, so the dedup is a
// single atomic statement rather than a check-then-act. Returns true when a
// new row was inserted.
func (r *Repository) InsertIfAbsent(gap *models.FairValueGap) (bool, error) {
	gap.IsActive = true
	gap.IsRetested = false
	gap.DurationMinutes = 0

	result := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "symbol"}, {Name: "timeframe"}, {Name: "direction"},
			{Name: "gap_start"}, {Name: "gap_end"},
		},
		DoNothing: true,
	}).Create(gap)
	if result.Error != nil {
		return false, fmt.Errorf("InsertIfAbsent: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// QuantizedDuration returns the age of a gap in whole timeframe units,
// expressed in minutes: floor((now − activeTime) / tfMinutes) × tfMinutes.
// Never negative.
func QuantizedDuration(activeTime, now time.Time, tfMinutes int) int {
	if tfMinutes <= 0 || !now.After(activeTime) {
		return 0
	}
	elapsed := int(now.Sub(activeTime) / time.Minute)
	return (elapsed / tfMinutes) * tfMinutes
}

// ShouldDeactivate reports whether the latest close has moved through the
// gap's far boundary: Bearish when close > gapEnd, Bullish when
// close < gapStart.
func ShouldDeactivate(gap *models.FairValueGap, latestClose float64) bool {
	switch gap.Direction {
	case models.DirectionBearish:
		return latestClose > gap.GapEnd
	case models.DirectionBullish:
		return latestClose < gap.GapStart
	}
	return false
}

// AgeAndDeactivate recomputes the quantized duration of every active gap for
// the symbol/timeframe and permanently deactivates those whose far boundary
// the latest close has crossed. The gap updates and the cascade onto
// dependent retest rows run in one transaction, so a crash cannot leave a
// deactivated gap with live retests. Returns the IDs of deactivated gaps.
func (r *Repository) AgeAndDeactivate(symbol, timeframe string, latestClose float64, now time.Time, tfMinutes int) ([]int64, error) {
	var deactivated []int64

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var active []models.FairValueGap
		if err := tx.Where("symbol = ? AND timeframe = ? AND is_active = ?", symbol, timeframe, true).
			Find(&active).Error; err != nil {
			return err
		}

		for i := range active {
			gap := &active[i]
			updates := map[string]interface{}{
				"duration_minutes": QuantizedDuration(gap.ActiveTime, now, tfMinutes),
			}
			if ShouldDeactivate(gap, latestClose) {
				updates["is_active"] = false
				deactivated = append(deactivated, gap.ID)
			}
			if err := tx.Model(&models.FairValueGap{}).Where("id = ?", gap.ID).
				Updates(updates).Error; err != nil {
				return err
			}
		}

		if len(deactivated) > 0 {
			if err := tx.Model(&models.RetestGap{}).
				Where("fair_value_gap_id IN ? AND is_active = ?", deactivated, true).
				Update("is_active", false).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("AgeAndDeactivate: %w", err)
	}
	return deactivated, nil
}

// LatestUnretested returns the active, not-yet-retested gap with the maximum
// active time for the symbol/timeframe, or nil when none exists.
func (r *Repository) LatestUnretested(symbol, timeframe string) (*models.FairValueGap, error) {
	var gap models.FairValueGap
	err := r.db.Where("symbol = ? AND timeframe = ? AND is_active = ? AND is_retested = ?",
		symbol, timeframe, true, false).
		Order("active_time DESC").
		First(&gap).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("LatestUnretested: %w", err)
	}
	return &gap, nil
}

// GetByID fetches a gap by primary key, or nil when it does not exist.
func (r *Repository) GetByID(id int64) (*models.FairValueGap, error) {
	var gap models.FairValueGap
	err := r.db.First(&gap, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return &gap, nil
}

// List returns gaps for a symbol, newest first, optionally only active ones.
func (r *Repository) List(symbol string, activeOnly bool, limit int) ([]models.FairValueGap, error) {
	query := r.db.Order("active_time DESC")
	if symbol != "" {
		query = query.Where("symbol = ?", symbol)
	}
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var gaps []models.FairValueGap
	if err := query.Find(&gaps).Error; err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	return gaps, nil
}
