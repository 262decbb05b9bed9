package utils

import (
	"fmt"

	"github.com/google/uuid"
)

// GenerateReceipt generates an order receipt identifier.
// Format: ps_rcpt_<uuid-without-dashes>, short enough for gateway limits.
func GenerateReceipt() string {
	id := uuid.New().String()
	return fmt.Sprintf("ps_rcpt_%.12s", id[:8]+id[9:13])
}
