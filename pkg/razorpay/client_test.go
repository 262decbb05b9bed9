package razorpay

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/orders", r.URL.Path)

		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "key_test", user)
		assert.Equal(t, "secret_test", pass)

		var req CreateOrderRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 19900, req.Amount)
		assert.Equal(t, "INR", req.Currency)

		json.NewEncoder(w).Encode(Order{
			ID:       "order_123",
			Amount:   req.Amount,
			Currency: req.Currency,
			Receipt:  req.Receipt,
			Status:   "created",
		})
	}))
	defer srv.Close()

	c := NewClient("key_test", "secret_test")
	c.SetBaseURL(srv.URL)

	order, err := c.CreateOrder(context.Background(), &CreateOrderRequest{
		Amount:   19900,
		Currency: "INR",
		Receipt:  "ps_rcpt_abc",
	})
	require.NoError(t, err)
	assert.Equal(t, "order_123", order.ID)
	assert.Equal(t, "created", order.Status)
}

func TestGetOrderPayments(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/orders/order_123/payments", r.URL.Path)
		json.NewEncoder(w).Encode(paymentCollection{
			Count: 1,
			Items: []Payment{{ID: "pay_9", OrderID: "order_123", Status: "captured"}},
		})
	}))
	defer srv.Close()

	c := NewClient("key_test", "secret_test")
	c.SetBaseURL(srv.URL)

	payments, err := c.GetOrderPayments(context.Background(), "order_123")
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, "captured", payments[0].Status)
}

func TestDoRequest_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"code":"BAD_REQUEST_ERROR","description":"amount too small"}}`))
	}))
	defer srv.Close()

	c := NewClient("key_test", "secret_test")
	c.SetBaseURL(srv.URL)

	_, err := c.CreateOrder(context.Background(), &CreateOrderRequest{Amount: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "amount too small")
}
