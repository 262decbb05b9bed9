package sse

import (
	"github.com/prepstack/prepstack-api/internal/models"
	"github.com/prepstack/prepstack-api/internal/service"
)

// HubNotifier pushes catalog, transaction, and extraction events to the
// admin SSE hub. It satisfies the services' notifier interfaces.
type HubNotifier struct {
	hub *Hub
}

// NewHubNotifier creates a notifier backed by the given Hub.
func NewHubNotifier(hub *Hub) *HubNotifier {
	return &HubNotifier{hub: hub}
}

func (n *HubNotifier) NotifyPriceUpdated(result *service.PriceUpdateResult) {
	if n.hub.ClientCount() == 0 {
		return
	}
	n.hub.Broadcast(&Event{
		Event: EventPriceUpdated,
		Data: map[string]any{
			"productId": result.ProductCode,
			"name":      result.Name,
			"oldPrice":  result.OldPrice,
			"newPrice":  result.NewPrice,
			"updatedAt": result.UpdatedAt,
		},
	})
}

func (n *HubNotifier) NotifyTransactionCreated(trx *models.Transaction) {
	n.broadcastTransaction(EventTransactionCreated, trx)
}

func (n *HubNotifier) NotifyTransactionStatusChanged(trx *models.Transaction) {
	n.broadcastTransaction(EventTransactionStatusChanged, trx)
}

func (n *HubNotifier) broadcastTransaction(eventType EventType, trx *models.Transaction) {
	if n.hub.ClientCount() == 0 {
		return
	}
	data := map[string]any{
		"orderId":   trx.OrderID,
		"studentId": trx.StudentID,
		"productId": trx.ProductCode,
		"amount":    trx.Amount,
		"status":    string(trx.Status),
	}
	if trx.FailedReason != nil {
		data["failedReason"] = *trx.FailedReason
	}
	n.hub.Broadcast(&Event{Event: eventType, Data: data})
}

func (n *HubNotifier) NotifyExtractionCompleted(job *models.ExtractionJob, questionCount int) {
	if n.hub.ClientCount() == 0 {
		return
	}
	n.hub.Broadcast(&Event{
		Event: EventExtractionCompleted,
		Data: map[string]any{
			"jobId":     job.ID,
			"productId": job.ProductCode,
			"questions": questionCount,
		},
	})
}
