package razorpay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	// DefaultBaseURL is the Razorpay API base URL.
	DefaultBaseURL = "https://api.razorpay.com/v1"
)

// Client is a minimal HTTP client for the Razorpay orders/payments API.
// Authentication is HTTP basic with the key id and secret.
type Client struct {
	httpClient *http.Client
	baseURL    string
	keyID      string
	keySecret  string
	debug      bool
}

// NewClient constructs a new Razorpay client with sane defaults.
func NewClient(keyID, keySecret string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    DefaultBaseURL,
		keyID:      keyID,
		keySecret:  keySecret,
		debug:      os.Getenv("ENV") == "development",
	}
}

// SetBaseURL overrides the API base URL. Used by tests.
func (c *Client) SetBaseURL(u string) { c.baseURL = u }

// CreateOrder creates a gateway order for the given amount in paise.
func (c *Client) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*Order, error) {
	var order Order
	if err := c.doRequest(ctx, http.MethodPost, "/orders", req, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrder fetches an order by id.
func (c *Client) GetOrder(ctx context.Context, orderID string) (*Order, error) {
	var order Order
	if err := c.doRequest(ctx, http.MethodGet, "/orders/"+orderID, nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrderPayments lists payment attempts against an order.
func (c *Client) GetOrderPayments(ctx context.Context, orderID string) ([]Payment, error) {
	var coll paymentCollection
	if err := c.doRequest(ctx, http.MethodGet, "/orders/"+orderID+"/payments", nil, &coll); err != nil {
		return nil, err
	}
	return coll.Items, nil
}

// doRequest performs the HTTP call with basic auth and JSON payloads and
// decodes the JSON response into result.
func (c *Client) doRequest(ctx context.Context, method, endpoint string, body, result any) error {
	var payload []byte
	var reader io.Reader
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	// Debug logging for development
	if c.debug && payload != nil {
		log.Debug().
			Str("endpoint", c.baseURL+endpoint).
			RawJSON("request", payload).
			Msg("[RAZORPAY] Outgoing request")
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(c.keyID, c.keySecret)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if c.debug {
		log.Debug().
			Str("endpoint", endpoint).
			Int("status_code", resp.StatusCode).
			RawJSON("response", respBody).
			Msg("[RAZORPAY] Incoming response")
	}

	if resp.StatusCode >= 400 {
		var apiErr apiError
		if err := json.Unmarshal(respBody, &apiErr); err == nil && apiErr.Error.Description != "" {
			return fmt.Errorf("razorpay %s: %s", apiErr.Error.Code, apiErr.Error.Description)
		}
		return fmt.Errorf("razorpay returned status %d", resp.StatusCode)
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
