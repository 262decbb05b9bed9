package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/prepstack/prepstack-api/internal/models"
)

// MaxHistoryLimit caps how many ledger records a single read may return.
const MaxHistoryLimit = 50

// PriceHistoryRepository is the read surface of the price-history ledger.
// Writes happen exclusively inside TestSeriesRepository.UpdatePrice so the
// catalog mutation and the ledger append share one transaction.
type PriceHistoryRepository struct {
	db *sqlx.DB
}

// NewPriceHistoryRepository creates a new PriceHistoryRepository.
func NewPriceHistoryRepository(db *sqlx.DB) *PriceHistoryRepository {
	return &PriceHistoryRepository{db: db}
}

// ListByCode returns ledger records for a product, newest first, capped at
// limit. Non-positive or oversized limits fall back to MaxHistoryLimit.
func (r *PriceHistoryRepository) ListByCode(ctx context.Context, code string, limit int) ([]models.PriceHistory, error) {
	if limit <= 0 || limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}

	const q = `
        SELECT id, product_code, old_price, new_price, changed_by, changed_at, source_ip, reason
        FROM price_history
        WHERE product_code = $1
        ORDER BY changed_at DESC
        LIMIT $2`

	records := []models.PriceHistory{}
	if err := r.db.SelectContext(ctx, &records, q, code, limit); err != nil {
		return nil, err
	}
	return records, nil
}
