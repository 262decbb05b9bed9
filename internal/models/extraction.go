package models

import (
	"encoding/json"
	"time"
)

type ExtractionStatus string

const (
	ExtractionQueued    ExtractionStatus = "Queued"
	ExtractionRunning   ExtractionStatus = "Running"
	ExtractionCompleted ExtractionStatus = "Completed"
	ExtractionFailed    ExtractionStatus = "Failed"
)

// ExtractionJob tracks a PDF handed to the external extraction service.
// The PDF itself lives in object storage; ObjectKey points at it.
type ExtractionJob struct {
	ID           int              `db:"id" json:"id"`
	ProductCode  string           `db:"product_code" json:"productId"`
	ObjectKey    string           `db:"object_key" json:"objectKey"`
	RemoteJobID  *string          `db:"remote_job_id" json:"-"`
	Status       ExtractionStatus `db:"status" json:"status"`
	FailedReason *string          `db:"failed_reason" json:"failedReason,omitempty"`
	SubmittedBy  string           `db:"submitted_by" json:"submittedBy"`
	CreatedAt    time.Time        `db:"created_at" json:"createdAt"`
	CompletedAt  *time.Time       `db:"completed_at" json:"completedAt,omitempty"`
	UpdatedAt    time.Time        `db:"updated_at" json:"-"`
}

// Question is one extracted question stored in the question bank.
// Options is a JSON array of answer choices as returned by the extractor.
type Question struct {
	ID          int             `db:"id" json:"id"`
	ProductCode string          `db:"product_code" json:"productId"`
	JobID       *int            `db:"job_id" json:"-"`
	Text        string          `db:"text" json:"text"`
	Options     json.RawMessage `db:"options" json:"options"`
	Answer      string          `db:"answer" json:"answer"`
	CreatedAt   time.Time       `db:"created_at" json:"createdAt"`
}
