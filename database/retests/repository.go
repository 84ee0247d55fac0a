// Package retests owns persistence for retest events, including the
// transactional flip of the owning gap's is_retested flag.
package retests

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	models "fvgbot/database/models_pkg"
)

// ErrAlreadyRetested is returned when the owning gap was retested between
// detection and recording. Callers treat it as a no-op.
var ErrAlreadyRetested = errors.New("gap already retested")

// Repository handles database operations for retest events
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new retests repository
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Record marks the owning gap retested and inserts the retest event in one
// transaction. The guarded update (is_retested = false AND is_active = true)
// makes the operation idempotent: a second attempt for the same gap returns
// ErrAlreadyRetested without inserting anything.
func (r *Repository) Record(retest *models.RetestGap) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.FairValueGap{}).
			Where("id = ? AND is_retested = ? AND is_active = ?", retest.FairValueGapID, false, true).
			Update("is_retested", true)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrAlreadyRetested
		}

		retest.IsActive = true
		retest.IsTraded = false
		return tx.Create(retest).Error
	})
	if err != nil {
		if errors.Is(err, ErrAlreadyRetested) {
			return ErrAlreadyRetested
		}
		return fmt.Errorf("Record: %w", err)
	}
	return nil
}

// LatestUntraded returns the most recent active, not-yet-traded retest event
// for the symbol, or nil when none exists.
func (r *Repository) LatestUntraded(symbol string) (*models.RetestGap, error) {
	var retest models.RetestGap
	err := r.db.Where("symbol = ? AND is_active = ? AND is_traded = ?", symbol, true, false).
		Order("open_time DESC").
		First(&retest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("LatestUntraded: %w", err)
	}
	return &retest, nil
}

// List returns retest events for a symbol, newest first.
func (r *Repository) List(symbol string, activeOnly bool, limit int) ([]models.RetestGap, error) {
	query := r.db.Order("open_time DESC")
	if symbol != "" {
		query = query.Where("symbol = ?", symbol)
	}
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var retests []models.RetestGap
	if err := query.Find(&retests).Error; err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	return retests, nil
}
