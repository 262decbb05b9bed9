package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/prepstack/prepstack-api/internal/models"
	"github.com/prepstack/prepstack-api/internal/utils"
)

// StudentRepository handles data access for student accounts.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository creates a new StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// StudentFilter holds filters for admin student queries.
type StudentFilter struct {
	Search   string
	IsActive *bool
	Page     int
	Limit    int
}

// StudentResult contains paginated student results.
type StudentResult struct {
	Students   []models.Student
	TotalItems int
	TotalPages int
	Page       int
	Limit      int
}

// List returns students for the admin dashboard with filters and pagination.
func (r *StudentRepository) List(ctx context.Context, filter *StudentFilter) (*StudentResult, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}
	offset := (filter.Page - 1) * filter.Limit

	baseWhere := `WHERE 1=1`
	args := []interface{}{}
	argIdx := 1

	if filter.Search != "" {
		baseWhere += fmt.Sprintf(" AND (name ILIKE $%d OR email ILIKE $%d)", argIdx, argIdx)
		args = append(args, "%"+filter.Search+"%")
		argIdx++
	}
	if filter.IsActive != nil {
		baseWhere += fmt.Sprintf(" AND is_active = $%d", argIdx)
		args = append(args, *filter.IsActive)
		argIdx++
	}

	countQuery := `SELECT COUNT(1) FROM students ` + baseWhere
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, err
	}
	totalPages := (total + filter.Limit - 1) / filter.Limit

	listQuery := fmt.Sprintf(`
        SELECT id, name, email, phone, is_active, created_at, updated_at
        FROM students %s
        ORDER BY created_at DESC
        LIMIT $%d OFFSET $%d`, baseWhere, argIdx, argIdx+1)
	args = append(args, filter.Limit, offset)

	students := []models.Student{}
	if err := r.db.SelectContext(ctx, &students, listQuery, args...); err != nil {
		return nil, err
	}

	return &StudentResult{
		Students:   students,
		TotalItems: total,
		TotalPages: totalPages,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}, nil
}

// GetByID returns a single student by id.
func (r *StudentRepository) GetByID(ctx context.Context, id int) (*models.Student, error) {
	const q = `
        SELECT id, name, email, phone, is_active, created_at, updated_at
        FROM students WHERE id = $1 LIMIT 1`

	var s models.Student
	if err := r.db.GetContext(ctx, &s, q, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, utils.ErrStudentNotFound
		}
		return nil, err
	}
	return &s, nil
}

// UpdateStatus sets the active flag of a student account.
func (r *StudentRepository) UpdateStatus(ctx context.Context, id int, isActive bool) error {
	const q = `UPDATE students SET is_active = $2, updated_at = NOW() WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id, isActive)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return utils.ErrStudentNotFound
	}
	return nil
}

// EnrolledCodes returns the series codes a student has paid for.
func (r *StudentRepository) EnrolledCodes(ctx context.Context, id int) ([]string, error) {
	const q = `
        SELECT DISTINCT product_code FROM transactions
        WHERE student_id = $1 AND status = 'Paid'
        ORDER BY product_code`

	codes := []string{}
	if err := r.db.SelectContext(ctx, &codes, q, id); err != nil {
		return nil, err
	}
	return codes, nil
}
