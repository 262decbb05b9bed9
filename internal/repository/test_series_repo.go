package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/prepstack/prepstack-api/internal/models"
	"github.com/prepstack/prepstack-api/internal/utils"
)

// TestSeriesRepository handles data access for the test-series catalog.
type TestSeriesRepository struct {
	db *sqlx.DB
}

// NewTestSeriesRepository creates a new TestSeriesRepository.
func NewTestSeriesRepository(db *sqlx.DB) *TestSeriesRepository {
	return &TestSeriesRepository{db: db}
}

// ListActive returns all active catalog entries ordered by name. Every call
// is a fresh read; callers that want caching layer it on top.
func (r *TestSeriesRepository) ListActive(ctx context.Context) ([]models.TestSeries, error) {
	const q = `
        SELECT id, code, name, description, price, is_active, created_at, updated_at
        FROM test_series
        WHERE is_active = true
        ORDER BY name ASC`

	series := []models.TestSeries{}
	if err := r.db.SelectContext(ctx, &series, q); err != nil {
		return nil, err
	}
	return series, nil
}

// GetByCode returns a single active catalog entry by its public code.
// Inactive or missing entries report ErrTestSeriesNotFound.
func (r *TestSeriesRepository) GetByCode(ctx context.Context, code string) (*models.TestSeries, error) {
	const q = `
        SELECT id, code, name, description, price, is_active, created_at, updated_at
        FROM test_series
        WHERE code = $1 AND is_active = true
        LIMIT 1`

	var ts models.TestSeries
	if err := r.db.GetContext(ctx, &ts, q, code); err != nil {
		if err == sql.ErrNoRows {
			return nil, utils.ErrTestSeriesNotFound
		}
		return nil, err
	}
	return &ts, nil
}

// Create inserts a new catalog entry. Used by the seed/admin tooling.
func (r *TestSeriesRepository) Create(ctx context.Context, ts *models.TestSeries) error {
	const q = `
        INSERT INTO test_series (code, name, description, price, is_active)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at, updated_at`

	return r.db.QueryRowxContext(ctx, q,
		ts.Code, ts.Name, ts.Description, ts.Price, ts.IsActive,
	).Scan(&ts.ID, &ts.CreatedAt, &ts.UpdatedAt)
}

// UpdateStatus sets the active flag of a catalog entry.
func (r *TestSeriesRepository) UpdateStatus(ctx context.Context, code string, isActive bool) error {
	const q = `UPDATE test_series SET is_active = $2, updated_at = NOW() WHERE code = $1`
	res, err := r.db.ExecContext(ctx, q, code, isActive)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return utils.ErrTestSeriesNotFound
	}
	return nil
}

// UpdatePrice performs the price mutation and the ledger append inside one
// transaction. The UPDATE is conditioned on the price the caller read
// (compare-and-swap), so a concurrent update to the same entry surfaces as
// ErrPriceConflict instead of producing a ledger record whose old_price does
// not match the previous record's new_price.
func (r *TestSeriesRepository) UpdatePrice(ctx context.Context, code string, expectedOld, newPrice int, rec *models.PriceHistory) (*models.TestSeries, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin price update: %w", err)
	}
	defer tx.Rollback()

	const updateQ = `
        UPDATE test_series
        SET price = $3, updated_at = NOW()
        WHERE code = $1 AND is_active = true AND price = $2
        RETURNING id, code, name, description, price, is_active, created_at, updated_at`

	var ts models.TestSeries
	if err := tx.GetContext(ctx, &ts, updateQ, code, expectedOld, newPrice); err != nil {
		if err == sql.ErrNoRows {
			return nil, r.classifyPriceMiss(ctx, tx, code)
		}
		return nil, err
	}

	const historyQ = `
        INSERT INTO price_history (product_code, old_price, new_price, changed_by, changed_at, source_ip, reason)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id`

	if err := tx.QueryRowxContext(ctx, historyQ,
		rec.ProductCode, rec.OldPrice, rec.NewPrice, rec.ChangedBy, rec.ChangedAt, rec.SourceIP, rec.Reason,
	).Scan(&rec.ID); err != nil {
		return nil, fmt.Errorf("failed to append price history: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit price update: %w", err)
	}
	return &ts, nil
}

// classifyPriceMiss distinguishes "entry gone or inactive" from "price moved
// under us" after a zero-row conditional update.
func (r *TestSeriesRepository) classifyPriceMiss(ctx context.Context, tx *sqlx.Tx, code string) error {
	var exists bool
	err := tx.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM test_series WHERE code = $1 AND is_active = true)`, code)
	if err != nil {
		return err
	}
	if !exists {
		return utils.ErrTestSeriesNotFound
	}
	return utils.ErrPriceConflict
}
