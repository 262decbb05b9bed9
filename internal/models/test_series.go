package models

import "time"

// Price bounds for a sellable test series, in whole rupees.
const (
	MinPrice = 1
	MaxPrice = 99999
)

// TestSeries represents a sellable test-series product in the catalog.
// Code is the opaque public identifier (e.g. "iat") and is immutable
// once the entry is created. Entries are soft-deactivated, never deleted.
type TestSeries struct {
	ID          int       `db:"id" json:"-"`
	Code        string    `db:"code" json:"productId"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description,omitempty"`
	Price       int       `db:"price" json:"price"`
	IsActive    bool      `db:"is_active" json:"isActive"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}
