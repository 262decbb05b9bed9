package models

import (
	"fmt"
	"time"
)

// UnknownActor is recorded when the acting admin or source address
// cannot be determined. Audit metadata never blocks a price update.
const UnknownActor = "unknown"

// PriceHistory is one append-only audit record of a price change.
// Records are never mutated or deleted by the price workflow.
type PriceHistory struct {
	ID          int       `db:"id" json:"-"`
	ProductCode string    `db:"product_code" json:"productId"`
	OldPrice    int       `db:"old_price" json:"oldPrice"`
	NewPrice    int       `db:"new_price" json:"newPrice"`
	ChangedBy   string    `db:"changed_by" json:"changedBy"`
	ChangedAt   time.Time `db:"changed_at" json:"changedAt"`
	SourceIP    string    `db:"source_ip" json:"sourceIp"`
	Reason      string    `db:"reason" json:"reason"`
}

// PriceChangeReason builds the auto-generated reason string for a change.
func PriceChangeReason(oldPrice, newPrice int) string {
	return fmt.Sprintf("Price updated from %d to %d", oldPrice, newPrice)
}
