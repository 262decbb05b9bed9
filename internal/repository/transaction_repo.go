package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/prepstack/prepstack-api/internal/models"
	"github.com/prepstack/prepstack-api/internal/utils"
)

// TransactionRepository handles data access for purchase transactions.
type TransactionRepository struct {
	db *sqlx.DB
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(db *sqlx.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Create inserts a new pending transaction.
func (r *TransactionRepository) Create(ctx context.Context, trx *models.Transaction) error {
	const q = `
        INSERT INTO transactions (receipt, order_id, student_id, product_code, amount, status)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at, updated_at`

	return r.db.QueryRowxContext(ctx, q,
		trx.Receipt, trx.OrderID, trx.StudentID, trx.ProductCode, trx.Amount, trx.Status,
	).Scan(&trx.ID, &trx.CreatedAt, &trx.UpdatedAt)
}

// GetByOrderID returns a transaction by its gateway order id.
func (r *TransactionRepository) GetByOrderID(ctx context.Context, orderID string) (*models.Transaction, error) {
	const q = `SELECT * FROM transactions WHERE order_id = $1 LIMIT 1`

	var trx models.Transaction
	if err := r.db.GetContext(ctx, &trx, q, orderID); err != nil {
		if err == sql.ErrNoRows {
			return nil, utils.ErrTransactionNotFound
		}
		return nil, err
	}
	return &trx, nil
}

// GetByID returns a transaction by internal id.
func (r *TransactionRepository) GetByID(ctx context.Context, id int) (*models.Transaction, error) {
	const q = `SELECT * FROM transactions WHERE id = $1 LIMIT 1`

	var trx models.Transaction
	if err := r.db.GetContext(ctx, &trx, q, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, utils.ErrTransactionNotFound
		}
		return nil, err
	}
	return &trx, nil
}

// MarkPaid records a successful capture. The transition is idempotent: a
// transaction already out of Pending is left untouched and reported via the
// returned bool so webhook replays do not double-apply.
func (r *TransactionRepository) MarkPaid(ctx context.Context, orderID, paymentID string) (bool, error) {
	const q = `
        UPDATE transactions
        SET status = 'Paid', payment_id = $2, paid_at = NOW(), updated_at = NOW()
        WHERE order_id = $1 AND status = 'Pending'`

	res, err := r.db.ExecContext(ctx, q, orderID, paymentID)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// MarkFailed records a failed or expired payment with a reason.
func (r *TransactionRepository) MarkFailed(ctx context.Context, orderID string, status models.TransactionStatus, reason string) error {
	const q = `
        UPDATE transactions
        SET status = $2, failed_reason = $3, updated_at = NOW()
        WHERE order_id = $1 AND status = 'Pending'`

	_, err := r.db.ExecContext(ctx, q, orderID, status, reason)
	return err
}

// GetStalePending returns pending transactions older than the given age,
// for gateway reconciliation by the payment status worker.
func (r *TransactionRepository) GetStalePending(ctx context.Context, olderThan time.Duration) ([]models.Transaction, error) {
	const q = `
        SELECT * FROM transactions
        WHERE status = 'Pending' AND created_at < NOW() - $1::interval
        ORDER BY created_at ASC
        LIMIT 100`

	interval := fmt.Sprintf("%d seconds", int(olderThan.Seconds()))
	trxs := []models.Transaction{}
	if err := r.db.SelectContext(ctx, &trxs, q, interval); err != nil {
		return nil, err
	}
	return trxs, nil
}

// TransactionFilter holds filters for admin transaction queries.
type TransactionFilter struct {
	Status      string
	ProductCode string
	StudentID   *int
	Page        int
	Limit       int
}

// TransactionResult contains paginated transaction results.
type TransactionResult struct {
	Transactions []models.Transaction
	TotalItems   int
	TotalPages   int
	Page         int
	Limit        int
}

// List returns transactions for the admin dashboard with filters and pagination.
func (r *TransactionRepository) List(ctx context.Context, filter *TransactionFilter) (*TransactionResult, error) {
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

	if filter.Status != "" {
		baseWhere += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, filter.Status)
		argIdx++
	}
	if filter.ProductCode != "" {
		baseWhere += fmt.Sprintf(" AND product_code = $%d", argIdx)
		args = append(args, filter.ProductCode)
		argIdx++
	}
	if filter.StudentID != nil {
		baseWhere += fmt.Sprintf(" AND student_id = $%d", argIdx)
		args = append(args, *filter.StudentID)
		argIdx++
	}

	countQuery := `SELECT COUNT(1) FROM transactions ` + baseWhere
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, err
	}
	totalPages := (total + filter.Limit - 1) / filter.Limit

	listQuery := fmt.Sprintf(`
        SELECT * FROM transactions %s
        ORDER BY created_at DESC
        LIMIT $%d OFFSET $%d`, baseWhere, argIdx, argIdx+1)
	args = append(args, filter.Limit, offset)

	trxs := []models.Transaction{}
	if err := r.db.SelectContext(ctx, &trxs, listQuery, args...); err != nil {
		return nil, err
	}

	return &TransactionResult{
		Transactions: trxs,
		TotalItems:   total,
		TotalPages:   totalPages,
		Page:         filter.Page,
		Limit:        filter.Limit,
	}, nil
}

// Stats aggregates transaction counts and revenue by status.
type Stats struct {
	TotalCount   int `db:"total_count" json:"totalCount"`
	PaidCount    int `db:"paid_count" json:"paidCount"`
	PendingCount int `db:"pending_count" json:"pendingCount"`
	FailedCount  int `db:"failed_count" json:"failedCount"`
	Revenue      int `db:"revenue" json:"revenue"`
}

// GetStats returns aggregate transaction statistics for the dashboard.
func (r *TransactionRepository) GetStats(ctx context.Context) (*Stats, error) {
	const q = `
        SELECT
            COUNT(1) AS total_count,
            COUNT(1) FILTER (WHERE status = 'Paid') AS paid_count,
            COUNT(1) FILTER (WHERE status = 'Pending') AS pending_count,
            COUNT(1) FILTER (WHERE status IN ('Failed', 'Expired')) AS failed_count,
            COALESCE(SUM(amount) FILTER (WHERE status = 'Paid'), 0) AS revenue
        FROM transactions`

	var st Stats
	if err := r.db.GetContext(ctx, &st, q); err != nil {
		return nil, err
	}
	return &st, nil
}
