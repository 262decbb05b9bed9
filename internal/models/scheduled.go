package models

import "time"

// ScheduledTest is a timed test window inside a test series.
// Unpublished windows are visible to admins only.
type ScheduledTest struct {
	ID            int       `db:"id" json:"id"`
	ProductCode   string    `db:"product_code" json:"productId"`
	Name          string    `db:"name" json:"name"`
	StartsAt      time.Time `db:"starts_at" json:"startsAt"`
	DurationMins  int       `db:"duration_mins" json:"durationMins"`
	QuestionCount int       `db:"question_count" json:"questionCount"`
	IsPublished   bool      `db:"is_published" json:"isPublished"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time `db:"updated_at" json:"updatedAt"`
}
