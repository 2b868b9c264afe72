package services

import (
	"encoding/json"
	"time"

	"bookstore/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Routing keys of order events.
const (
	EventOrderCreated       = "order.created"
	EventOrderStatusUpdated = "order.status_updated"
	EventOrderCancelled     = "order.cancelled"
)

// EventPublisher sends an event body under a routing key. *rabbitmq.Client implements it.
type EventPublisher interface {
	Publish(routingKey string, body []byte) error
}

// OrderEvent is the message published after an order changes.
type OrderEvent struct {
	EventID    string          `json:"event_id"`
	Type       string          `json:"type"`
	OrderID    uint            `json:"order_id"`
	UserID     uint            `json:"user_id"`
	Status     string          `json:"status"`
	Total      decimal.Decimal `json:"total"`
	OccurredAt time.Time       `json:"occurred_at"`
}

func newOrderEvent(eventType string, o *models.Order) OrderEvent {
	return OrderEvent{
		EventID:    uuid.NewString(),
		Type:       eventType,
		OrderID:    o.ID,
		UserID:     o.UserID,
		Status:     o.Status,
		Total:      o.TotalPrice,
		OccurredAt: time.Now().UTC(),
	}
}

// publishOrderEvent publishes after the transaction has committed. Delivery is
// best-effort: failures are logged and never fail the request.
func publishOrderEvent(p EventPublisher, log *zap.Logger, eventType string, o *models.Order) {
	if p == nil {
		return
	}
	body, err := json.Marshal(newOrderEvent(eventType, o))
	if err != nil {
		log.Error("failed to marshal order event", zap.String("type", eventType), zap.Uint("order_id", o.ID), zap.Error(err))
		return
	}
	if err := p.Publish(eventType, body); err != nil {
		log.Warn("failed to publish order event", zap.String("type", eventType), zap.Uint("order_id", o.ID), zap.Error(err))
		return
	}
	log.Debug("published order event", zap.String("type", eventType), zap.Uint("order_id", o.ID))
}
