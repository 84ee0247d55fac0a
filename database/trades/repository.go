// Package trades owns persistence for trades and their companion trade
// status rows, including the transactional open and per-transition updates.
package trades

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	models "fvgbot/database/models_pkg"
)

// ErrAlreadyTraded is returned when the retest event was traded between
// evaluation and opening. Callers treat it as a no-op.
var ErrAlreadyTraded = errors.New("retest already traded")

// Repository handles database operations for trades and trade status
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new trades repository
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Open creates the trade and its companion status row and marks the retest
// event traded, all in one transaction. The guarded update on the retest row
// keeps the operation idempotent: at most one trade per retest event.
func (r *Repository) Open(trade *models.Trade, status *models.TradeStatus) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.RetestGap{}).
			Where("id = ? AND is_traded = ? AND is_active = ?", trade.RetestGapID, false, true).
			Update("is_traded", true)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrAlreadyTraded
		}

		trade.IsActive = true
		if err := tx.Create(trade).Error; err != nil {
			return err
		}

		status.TradeID = trade.ID
		status.Status = models.StatusRunning
		status.IsOpen = true
		return tx.Create(status).Error
	})
	if err != nil {
		if errors.Is(err, ErrAlreadyTraded) {
			return ErrAlreadyTraded
		}
		return fmt.Errorf("Open: %w", err)
	}
	return nil
}

// OpenStatuses returns all open trade status rows for a symbol, oldest first
// so long-running positions are advanced before fresh ones.
func (r *Repository) OpenStatuses(symbol string) ([]models.TradeStatus, error) {
	var statuses []models.TradeStatus
	err := r.db.Where("symbol = ? AND is_open = ?", symbol, true).
		Order("entry_time ASC").
		Find(&statuses).Error
	if err != nil {
		return nil, fmt.Errorf("OpenStatuses: %w", err)
	}
	return statuses, nil
}

// GetTrade fetches a trade by primary key, or nil when it does not exist.
func (r *Repository) GetTrade(id int64) (*models.Trade, error) {
	var trade models.Trade
	err := r.db.First(&trade, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetTrade: %w", err)
	}
	return &trade, nil
}

// ApplyTransition persists one position transition: the mutated status row
// and its owning trade's remaining lot, modified levels and activity flag are
// written together in one transaction.
func (r *Repository) ApplyTransition(status *models.TradeStatus, trade *models.Trade) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.TradeStatus{}).Where("id = ?", status.ID).
			Updates(map[string]interface{}{
				"status":     status.Status,
				"exit_price": status.ExitPrice,
				"pnl":        status.Pnl,
				"quantity":   status.Quantity,
				"is_open":    status.IsOpen,
			}).Error; err != nil {
			return err
		}

		return tx.Model(&models.Trade{}).Where("id = ?", trade.ID).
			Updates(map[string]interface{}{
				"remaining_lot":      trade.RemainingLot,
				"modified_stop_loss": trade.ModifiedStopLoss,
				"modified_target":    trade.ModifiedTarget,
				"is_active":          trade.IsActive,
			}).Error
	})
	if err != nil {
		return fmt.Errorf("ApplyTransition: %w", err)
	}
	return nil
}

// ListTrades returns trades for a symbol, newest first.
func (r *Repository) ListTrades(symbol string, activeOnly bool, limit int) ([]models.Trade, error) {
	query := r.db.Order("entry_time DESC")
	if symbol != "" {
		query = query.Where("symbol = ?", symbol)
	}
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var list []models.Trade
	if err := query.Find(&list).Error; err != nil {
		return nil, fmt.Errorf("ListTrades: %w", err)
	}
	return list, nil
}

// ListStatuses returns trade status rows for a symbol, newest first.
func (r *Repository) ListStatuses(symbol string, openOnly bool, limit int) ([]models.TradeStatus, error) {
	query := r.db.Order("entry_time DESC")
	if symbol != "" {
		query = query.Where("symbol = ?", symbol)
	}
	if openOnly {
		query = query.Where("is_open = ?", true)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var list []models.TradeStatus
	if err := query.Find(&list).Error; err != nil {
		return nil, fmt.Errorf("ListStatuses: %w", err)
	}
	return list, nil
}
