package utils

import "errors"

// Common application errors used across services. Handlers map these to
// HTTP status codes with errors.Is; anything unrecognized is treated as a
// storage failure and reported as a 500.
var (
	// Price update validation, in evaluation order.
	ErrPriceRequired   = errors.New("price required")
	ErrPriceNotNumber  = errors.New("not a number")
	ErrPriceOutOfRange = errors.New("out of range")
	ErrPriceNotWhole   = errors.New("must be whole number")
	ErrPriceUnchanged  = errors.New("price unchanged")

	// ErrPriceConflict is returned when the stored price changed between
	// the read and the conditional write of a price update.
	ErrPriceConflict = errors.New("price changed concurrently")

	ErrTestSeriesNotFound    = errors.New("test series not found")
	ErrStudentNotFound       = errors.New("student not found")
	ErrTransactionNotFound   = errors.New("transaction not found")
	ErrScheduledTestNotFound = errors.New("scheduled test not found")
	ErrExtractionNotFound    = errors.New("extraction job not found")

	ErrInvalidSignature   = errors.New("invalid signature")
	ErrInvalidToken       = errors.New("invalid token")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountInactive    = errors.New("account is inactive")
)

// IsInvalidArgument reports whether err belongs to the price validation
// family that callers receive as a 400.
func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrPriceRequired) ||
		errors.Is(err, ErrPriceNotNumber) ||
		errors.Is(err, ErrPriceOutOfRange) ||
		errors.Is(err, ErrPriceNotWhole) ||
		errors.Is(err, ErrPriceUnchanged)
}
