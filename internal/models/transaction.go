package models

import "time"

type TransactionStatus string

const (
	TrxPending  TransactionStatus = "Pending"
	TrxPaid     TransactionStatus = "Paid"
	TrxFailed   TransactionStatus = "Failed"
	TrxExpired  TransactionStatus = "Expired"
	TrxRefunded TransactionStatus = "Refunded"
)

// Transaction captures a student's purchase of a test series through the
// payment gateway. Amount is captured from the catalog at order time so a
// later price change never alters an existing order.
type Transaction struct {
	ID           int               `db:"id" json:"-"`
	Receipt      string            `db:"receipt" json:"receipt"`
	OrderID      string            `db:"order_id" json:"orderId"`
	PaymentID    *string           `db:"payment_id" json:"paymentId,omitempty"`
	StudentID    int               `db:"student_id" json:"studentId"`
	ProductCode  string            `db:"product_code" json:"productId"`
	Amount       int               `db:"amount" json:"amount"`
	Status       TransactionStatus `db:"status" json:"status"`
	FailedReason *string           `db:"failed_reason" json:"failedReason,omitempty"`
	CreatedAt    time.Time         `db:"created_at" json:"createdAt"`
	PaidAt       *time.Time        `db:"paid_at" json:"paidAt,omitempty"`
	UpdatedAt    time.Time         `db:"updated_at" json:"-"`
}
