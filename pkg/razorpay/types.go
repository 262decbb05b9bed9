package razorpay

// CreateOrderRequest is the payload for POST /orders.
// Amount is in the smallest currency unit (paise).
type CreateOrderRequest struct {
	Amount   int               `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes,omitempty"`
}

// Order is the gateway's order representation.
type Order struct {
	ID         string `json:"id"`
	Amount     int    `json:"amount"`
	AmountPaid int    `json:"amount_paid"`
	AmountDue  int    `json:"amount_due"`
	Currency   string `json:"currency"`
	Receipt    string `json:"receipt"`
	Status     string `json:"status"` // created | attempted | paid
	CreatedAt  int64  `json:"created_at"`
}

// Payment is the gateway's payment representation.
type Payment struct {
	ID               string `json:"id"`
	OrderID          string `json:"order_id"`
	Amount           int    `json:"amount"`
	Currency         string `json:"currency"`
	Status           string `json:"status"` // created | authorized | captured | refunded | failed
	Method           string `json:"method"`
	Email            string `json:"email"`
	Contact          string `json:"contact"`
	ErrorCode        string `json:"error_code,omitempty"`
	ErrorDescription string `json:"error_description,omitempty"`
	CreatedAt        int64  `json:"created_at"`
}

// paymentCollection wraps the list endpoint response.
type paymentCollection struct {
	Count int       `json:"count"`
	Items []Payment `json:"items"`
}

// apiError is the gateway's error envelope.
type apiError struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}
