package repository

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/prepstack/prepstack-api/internal/models"
	"github.com/prepstack/prepstack-api/internal/utils"
)

// ScheduledTestRepository handles data access for scheduled test windows.
type ScheduledTestRepository struct {
	db *sqlx.DB
}

// NewScheduledTestRepository creates a new ScheduledTestRepository.
func NewScheduledTestRepository(db *sqlx.DB) *ScheduledTestRepository {
	return &ScheduledTestRepository{db: db}
}

// ListByCode returns all windows for a series, soonest first. When
// publishedOnly is set, unpublished windows are excluded.
func (r *ScheduledTestRepository) ListByCode(ctx context.Context, code string, publishedOnly bool) ([]models.ScheduledTest, error) {
	const q = `
        SELECT id, product_code, name, starts_at, duration_mins, question_count, is_published, created_at, updated_at
        FROM scheduled_tests
        WHERE product_code = $1 AND ($2 = false OR is_published = true)
        ORDER BY starts_at ASC`

	tests := []models.ScheduledTest{}
	if err := r.db.SelectContext(ctx, &tests, q, code, publishedOnly); err != nil {
		return nil, err
	}
	return tests, nil
}

// GetByID returns a single scheduled test window.
func (r *ScheduledTestRepository) GetByID(ctx context.Context, id int) (*models.ScheduledTest, error) {
	const q = `
        SELECT id, product_code, name, starts_at, duration_mins, question_count, is_published, created_at, updated_at
        FROM scheduled_tests WHERE id = $1 LIMIT 1`

	var st models.ScheduledTest
	if err := r.db.GetContext(ctx, &st, q, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, utils.ErrScheduledTestNotFound
		}
		return nil, err
	}
	return &st, nil
}

// Create inserts a new scheduled test window.
func (r *ScheduledTestRepository) Create(ctx context.Context, st *models.ScheduledTest) error {
	const q = `
        INSERT INTO scheduled_tests (product_code, name, starts_at, duration_mins, question_count, is_published)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at, updated_at`

	return r.db.QueryRowxContext(ctx, q,
		st.ProductCode, st.Name, st.StartsAt, st.DurationMins, st.QuestionCount, st.IsPublished,
	).Scan(&st.ID, &st.CreatedAt, &st.UpdatedAt)
}

// Update updates an existing scheduled test window.
func (r *ScheduledTestRepository) Update(ctx context.Context, st *models.ScheduledTest) error {
	const q = `
        UPDATE scheduled_tests
        SET name = $2, starts_at = $3, duration_mins = $4, question_count = $5, is_published = $6, updated_at = NOW()
        WHERE id = $1
        RETURNING updated_at`

	err := r.db.QueryRowxContext(ctx, q,
		st.ID, st.Name, st.StartsAt, st.DurationMins, st.QuestionCount, st.IsPublished,
	).Scan(&st.UpdatedAt)
	if err == sql.ErrNoRows {
		return utils.ErrScheduledTestNotFound
	}
	return err
}

// Delete removes a scheduled test window.
func (r *ScheduledTestRepository) Delete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM scheduled_tests WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return utils.ErrScheduledTestNotFound
	}
	return nil
}
