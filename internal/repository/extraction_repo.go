package repository

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/prepstack/prepstack-api/internal/models"
	"github.com/prepstack/prepstack-api/internal/utils"
)

// ExtractionRepository handles data access for extraction jobs and the
// question bank they populate.
type ExtractionRepository struct {
	db *sqlx.DB
}

// NewExtractionRepository creates a new ExtractionRepository.
func NewExtractionRepository(db *sqlx.DB) *ExtractionRepository {
	return &ExtractionRepository{db: db}
}

// CreateJob inserts a new extraction job.
func (r *ExtractionRepository) CreateJob(ctx context.Context, job *models.ExtractionJob) error {
	const q = `
        INSERT INTO extraction_jobs (product_code, object_key, remote_job_id, status, submitted_by)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at, updated_at`

	return r.db.QueryRowxContext(ctx, q,
		job.ProductCode, job.ObjectKey, job.RemoteJobID, job.Status, job.SubmittedBy,
	).Scan(&job.ID, &job.CreatedAt, &job.UpdatedAt)
}

// GetJob returns an extraction job by id.
func (r *ExtractionRepository) GetJob(ctx context.Context, id int) (*models.ExtractionJob, error) {
	const q = `SELECT * FROM extraction_jobs WHERE id = $1 LIMIT 1`

	var job models.ExtractionJob
	if err := r.db.GetContext(ctx, &job, q, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, utils.ErrExtractionNotFound
		}
		return nil, err
	}
	return &job, nil
}

// GetRunningJobs returns jobs awaiting a result from the extraction service.
func (r *ExtractionRepository) GetRunningJobs(ctx context.Context) ([]models.ExtractionJob, error) {
	const q = `
        SELECT * FROM extraction_jobs
        WHERE status IN ('Queued', 'Running')
        ORDER BY created_at ASC
        LIMIT 50`

	jobs := []models.ExtractionJob{}
	if err := r.db.SelectContext(ctx, &jobs, q); err != nil {
		return nil, err
	}
	return jobs, nil
}

// UpdateJobStatus moves a job through its lifecycle. completed stamps
// completed_at; reason is only stored for failures.
func (r *ExtractionRepository) UpdateJobStatus(ctx context.Context, id int, status models.ExtractionStatus, reason *string) error {
	const q = `
        UPDATE extraction_jobs
        SET status = $2,
            failed_reason = $3,
            completed_at = CASE WHEN $2 IN ('Completed', 'Failed') THEN NOW() ELSE completed_at END,
            updated_at = NOW()
        WHERE id = $1`

	res, err := r.db.ExecContext(ctx, q, id, status, reason)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return utils.ErrExtractionNotFound
	}
	return nil
}

// SetRemoteJobID stores the id handed back by the extraction service.
func (r *ExtractionRepository) SetRemoteJobID(ctx context.Context, id int, remoteID string) error {
	const q = `UPDATE extraction_jobs SET remote_job_id = $2, status = 'Running', updated_at = NOW() WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id, remoteID)
	return err
}

// InsertQuestions stores extracted questions for a job in one batch.
func (r *ExtractionRepository) InsertQuestions(ctx context.Context, questions []models.Question) error {
	if len(questions) == 0 {
		return nil
	}
	const q = `
        INSERT INTO questions (product_code, job_id, text, options, answer)
        VALUES (:product_code, :job_id, :text, :options, :answer)`

	_, err := r.db.NamedExecContext(ctx, q, questions)
	return err
}

// CountQuestions returns the question-bank size for a series.
func (r *ExtractionRepository) CountQuestions(ctx context.Context, code string) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(1) FROM questions WHERE product_code = $1`, code)
	return n, err
}
