package handler

import (
	"errors"
	"io"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/prepstack/prepstack-api/internal/repository"
	"github.com/prepstack/prepstack-api/internal/service"
	"github.com/prepstack/prepstack-api/internal/utils"
)

// TransactionHandler handles checkout, payment verification, the gateway
// webhook, and the admin transaction views.
type TransactionHandler struct {
	paymentService *service.PaymentService
	trxRepo        *repository.TransactionRepository
	webhookSecret  string
}

// NewTransactionHandler constructs a TransactionHandler.
func NewTransactionHandler(paymentService *service.PaymentService, trxRepo *repository.TransactionRepository, webhookSecret string) *TransactionHandler {
	return &TransactionHandler{paymentService: paymentService, trxRepo: trxRepo, webhookSecret: webhookSecret}
}

// CreateOrder handles POST /v1/orders
func (h *TransactionHandler) CreateOrder(c *gin.Context) {
	var req struct {
		StudentID int    `json:"studentId" binding:"required"`
		ProductID string `json:"productId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "studentId and productId are required")
		return
	}

	order, err := h.paymentService.CreateOrder(c.Request.Context(), req.StudentID, req.ProductID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, 201, gin.H{"order": order})
}

// VerifyPayment handles POST /v1/payments/verify
// The checkout page posts the gateway callback fields here after payment.
func (h *TransactionHandler) VerifyPayment(c *gin.Context) {
	var req struct {
		OrderID   string `json:"orderId" binding:"required"`
		PaymentID string `json:"paymentId" binding:"required"`
		Signature string `json:"signature" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "orderId, paymentId and signature are required")
		return
	}

	trx, err := h.paymentService.VerifyPayment(c.Request.Context(), req.OrderID, req.PaymentID, req.Signature)
	if err != nil {
		if errors.Is(err, utils.ErrInvalidSignature) {
			utils.Error(c, 400, "signature verification failed")
			return
		}
		respondError(c, err)
		return
	}
	utils.Success(c, 200, gin.H{
		"message":     "Payment verified",
		"transaction": trx,
	})
}

// HandleWebhook handles POST /webhook/razorpay
// The gateway is the source of truth; processing is idempotent so replayed
// deliveries are safe.
func (h *TransactionHandler) HandleWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(400, gin.H{"error": "Invalid body"})
		return
	}

	signature := c.GetHeader("X-Razorpay-Signature")
	if err := h.paymentService.HandleWebhook(c.Request.Context(), body, signature, h.webhookSecret); err != nil {
		if errors.Is(err, utils.ErrInvalidSignature) {
			c.JSON(401, gin.H{"error": "Invalid signature"})
			return
		}
		log.Error().Err(err).Msg("Failed to process gateway webhook")
		c.JSON(500, gin.H{"error": "Processing failed"})
		return
	}
	c.JSON(200, gin.H{"received": true})
}

// List handles GET /v1/admin/transactions
func (h *TransactionHandler) List(c *gin.Context) {
	filter := &repository.TransactionFilter{
		Status:      c.Query("status"),
		ProductCode: c.Query("productId"),
		Page:        1,
		Limit:       50,
	}
	if v := c.Query("studentId"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.StudentID = &n
		}
	}
	if v := c.Query("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			filter.Page = n
		}
	}
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			filter.Limit = n
		}
	}

	result, err := h.trxRepo.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.Success(c, 200, gin.H{
		"count":        result.TotalItems,
		"page":         result.Page,
		"pages":        result.TotalPages,
		"transactions": result.Transactions,
	})
}

// Get handles GET /v1/admin/transactions/:id
func (h *TransactionHandler) Get(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.Error(c, 400, "invalid transaction id")
		return
	}

	trx, err := h.trxRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, 200, gin.H{"transaction": trx})
}

// Stats handles GET /v1/admin/transactions/stats
func (h *TransactionHandler) Stats(c *gin.Context) {
	stats, err := h.trxRepo.GetStats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, 200, gin.H{"stats": stats})
}
