package kafka

import "time"

// EventType определяет тип события складского движения.
type EventType string

const (
	// События заказов
	EventTypeOrderRegistered EventType = "order.registered"
	EventTypeOrderUpdated    EventType = "order.updated"
	EventTypeOrderDeleted    EventType = "order.deleted"
	EventTypeOrderReturned   EventType = "order.returned"

	// События заявок
	EventTypeRequestCreated EventType = "request.created"
	EventTypeRequestSettled EventType = "request.settled"
	EventTypeRequestClosed  EventType = "request.closed"
)

// Topics для Kafka
const (
	TopicOrderEvents   = "ims.order.events"
	TopicRequestEvents = "ims.request.events"
)

// OrderEvent — событие жизненного цикла заказа.
type OrderEvent struct {
	EventType  EventType `json:"event_type"`
	OrderID    string    `json:"order_id"`
	Direction  string    `json:"direction,omitempty"`
	TotalMinor int64     `json:"total_minor,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// RequestEvent — событие жизненного цикла заявки.
type RequestEvent struct {
	EventType EventType `json:"event_type"`
	RequestID string    `json:"request_id"`
	// LinesLeft — количество позиций, оставшихся после операции.
	LinesLeft int       `json:"lines_left"`
	Timestamp time.Time `json:"timestamp"`
}

// NewOrderEvent создаёт событие заказа с текущим временем.
func NewOrderEvent(eventType EventType, orderID string, direction string, totalMinor int64) *OrderEvent {
	return &OrderEvent{
		EventType:  eventType,
		OrderID:    orderID,
		Direction:  direction,
		TotalMinor: totalMinor,
		Timestamp:  time.Now(),
	}
}

// NewRequestEvent создаёт событие заявки с текущим временем.
func NewRequestEvent(eventType EventType, requestID string, linesLeft int) *RequestEvent {
	return &RequestEvent{
		EventType: eventType,
		RequestID: requestID,
		LinesLeft: linesLeft,
		Timestamp: time.Now(),
	}
}
