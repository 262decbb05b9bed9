package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prepstack/prepstack-api/internal/utils"
)

func TestVerifyPayment_RejectsBadSignature(t *testing.T) {
	svc := NewPaymentService(nil, nil, nil, nil, "key-secret")

	_, err := svc.VerifyPayment(context.Background(), "order_123", "pay_456", "deadbeef")
	assert.ErrorIs(t, err, utils.ErrInvalidSignature)
}

func TestHandleWebhook_RejectsBadSignature(t *testing.T) {
	svc := NewPaymentService(nil, nil, nil, nil, "key-secret")

	body := []byte(`{"event":"payment.captured"}`)
	err := svc.HandleWebhook(context.Background(), body, "bogus", "webhook-secret")
	assert.ErrorIs(t, err, utils.ErrInvalidSignature)
}

func TestHandleWebhook_IgnoresUnknownEvents(t *testing.T) {
	svc := NewPaymentService(nil, nil, nil, nil, "key-secret")

	body, err := json.Marshal(map[string]any{"event": "order.paid"})
	require.NoError(t, err)
	sig := utils.GenerateSignature(body, "webhook-secret")

	// Unknown events are acknowledged without touching any transaction.
	assert.NoError(t, svc.HandleWebhook(context.Background(), body, sig, "webhook-secret"))
}

func TestHandleWebhook_RejectsMalformedBody(t *testing.T) {
	svc := NewPaymentService(nil, nil, nil, nil, "key-secret")

	body := []byte(`{not json`)
	sig := utils.GenerateSignature(body, "webhook-secret")

	assert.Error(t, svc.HandleWebhook(context.Background(), body, sig, "webhook-secret"))
}
