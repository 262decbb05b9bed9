package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/prepstack/prepstack-api/internal/models"
	"github.com/prepstack/prepstack-api/internal/repository"
	"github.com/prepstack/prepstack-api/internal/utils"
	"github.com/prepstack/prepstack-api/pkg/razorpay"
)

// GatewayClient is the slice of the Razorpay client the payment service
// uses. *razorpay.Client implements it.
type GatewayClient interface {
	CreateOrder(ctx context.Context, req *razorpay.CreateOrderRequest) (*razorpay.Order, error)
	GetOrderPayments(ctx context.Context, orderID string) ([]razorpay.Payment, error)
}

// TransactionNotifier pushes transaction events to the admin event stream.
type TransactionNotifier interface {
	NotifyTransactionCreated(trx *models.Transaction)
	NotifyTransactionStatusChanged(trx *models.Transaction)
}

// PaymentService creates gateway orders for test-series purchases and
// settles them from checkout verification, webhooks, and reconciliation.
type PaymentService struct {
	trxRepo     *repository.TransactionRepository
	studentRepo *repository.StudentRepository
	catalog     *CatalogService
	gateway     GatewayClient
	keySecret   string
	notifier    TransactionNotifier
}

// NewPaymentService constructs a PaymentService.
func NewPaymentService(
	trxRepo *repository.TransactionRepository,
	studentRepo *repository.StudentRepository,
	catalog *CatalogService,
	gateway GatewayClient,
	keySecret string,
) *PaymentService {
	return &PaymentService{
		trxRepo:     trxRepo,
		studentRepo: studentRepo,
		catalog:     catalog,
		gateway:     gateway,
		keySecret:   keySecret,
	}
}

// SetNotifier wires the admin event stream.
func (s *PaymentService) SetNotifier(n TransactionNotifier) { s.notifier = n }

// CreateOrderResult is returned to the checkout page.
type CreateOrderResult struct {
	OrderID  string `json:"orderId"`
	Amount   int    `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Name     string `json:"name"`
}

// CreateOrder opens a gateway order for an active series at its current
// catalog price. The amount is captured here so later price changes never
// alter the order. Gateway amounts are in paise.
func (s *PaymentService) CreateOrder(ctx context.Context, studentID int, code string) (*CreateOrderResult, error) {
	student, err := s.studentRepo.GetByID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if !student.IsActive {
		return nil, errors.New("student account is inactive")
	}

	ts, err := s.catalog.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	receipt := utils.GenerateReceipt()
	order, err := s.gateway.CreateOrder(ctx, &razorpay.CreateOrderRequest{
		Amount:   ts.Price * 100,
		Currency: "INR",
		Receipt:  receipt,
		Notes: map[string]string{
			"productId": ts.Code,
			"studentId": fmt.Sprintf("%d", studentID),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("gateway order failed: %w", err)
	}

	trx := &models.Transaction{
		Receipt:     receipt,
		OrderID:     order.ID,
		StudentID:   studentID,
		ProductCode: ts.Code,
		Amount:      ts.Price,
		Status:      models.TrxPending,
	}
	if err := s.trxRepo.Create(ctx, trx); err != nil {
		return nil, err
	}

	log.Info().
		Str("order_id", order.ID).
		Str("code", ts.Code).
		Int("student_id", studentID).
		Int("amount", ts.Price).
		Msg("Order created")

	if s.notifier != nil {
		s.notifier.NotifyTransactionCreated(trx)
	}

	return &CreateOrderResult{
		OrderID:  order.ID,
		Amount:   order.Amount,
		Currency: order.Currency,
		Receipt:  receipt,
		Name:     ts.Name,
	}, nil
}

// VerifyPayment checks the checkout callback signature
// (HMAC-SHA256 of "orderId|paymentId" with the key secret) and marks the
// transaction paid. Replays of an already settled order are accepted
// without a second state change.
func (s *PaymentService) VerifyPayment(ctx context.Context, orderID, paymentID, signature string) (*models.Transaction, error) {
	payload := []byte(orderID + "|" + paymentID)
	if !utils.VerifySignature(payload, signature, s.keySecret) {
		return nil, utils.ErrInvalidSignature
	}
	return s.settle(ctx, orderID, paymentID)
}

// webhookEvent is the subset of the gateway webhook payload we consume.
type webhookEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity razorpay.Payment `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

// HandleWebhook processes a signature-verified gateway webhook body.
// Unknown events are ignored; settlement is idempotent.
func (s *PaymentService) HandleWebhook(ctx context.Context, body []byte, signature, webhookSecret string) error {
	if !utils.VerifySignature(body, signature, webhookSecret) {
		return utils.ErrInvalidSignature
	}

	var evt webhookEvent
	if err := json.Unmarshal(body, &evt); err != nil {
		return fmt.Errorf("failed to decode webhook: %w", err)
	}

	payment := evt.Payload.Payment.Entity
	switch evt.Event {
	case "payment.captured":
		_, err := s.settle(ctx, payment.OrderID, payment.ID)
		return err
	case "payment.failed":
		reason := payment.ErrorDescription
		if reason == "" {
			reason = "payment failed"
		}
		if err := s.trxRepo.MarkFailed(ctx, payment.OrderID, models.TrxFailed, reason); err != nil {
			return err
		}
		s.notifyStatus(ctx, payment.OrderID)
		return nil
	default:
		log.Debug().Str("event", evt.Event).Msg("Ignoring webhook event")
		return nil
	}
}

// settle marks the order paid exactly once and returns the transaction.
func (s *PaymentService) settle(ctx context.Context, orderID, paymentID string) (*models.Transaction, error) {
	applied, err := s.trxRepo.MarkPaid(ctx, orderID, paymentID)
	if err != nil {
		return nil, err
	}

	trx, err := s.trxRepo.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if applied {
		log.Info().
			Str("order_id", orderID).
			Str("payment_id", paymentID).
			Str("code", trx.ProductCode).
			Msg("Payment captured")
		if s.notifier != nil {
			s.notifier.NotifyTransactionStatusChanged(trx)
		}
	}
	return trx, nil
}

// Reconcile queries the gateway for a stale pending transaction and settles
// or expires it. Called by the payment status worker.
func (s *PaymentService) Reconcile(ctx context.Context, trx *models.Transaction, expired bool) error {
	payments, err := s.gateway.GetOrderPayments(ctx, trx.OrderID)
	if err != nil {
		return fmt.Errorf("gateway lookup failed: %w", err)
	}

	for i := range payments {
		if payments[i].Status == "captured" {
			_, err := s.settle(ctx, trx.OrderID, payments[i].ID)
			return err
		}
	}

	if expired {
		if err := s.trxRepo.MarkFailed(ctx, trx.OrderID, models.TrxExpired, "order expired without capture"); err != nil {
			return err
		}
		log.Info().Str("order_id", trx.OrderID).Msg("Order expired")
		s.notifyStatus(ctx, trx.OrderID)
	}
	return nil
}

func (s *PaymentService) notifyStatus(ctx context.Context, orderID string) {
	if s.notifier == nil {
		return
	}
	if trx, err := s.trxRepo.GetByOrderID(ctx, orderID); err == nil {
		s.notifier.NotifyTransactionStatusChanged(trx)
	}
}
