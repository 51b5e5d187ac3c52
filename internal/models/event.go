package models

// OrderEvent is published when an order is created or changes status.
type OrderEvent struct {
	Type         string      `json:"type"`
	OrderID      int64       `json:"orderId"`
	RestaurantID int64       `json:"restaurantId"`
	ClientID     *int64      `json:"clientId,omitempty"`
	Status       OrderStatus `json:"status"`
	Total        float64     `json:"total,omitempty"`
	PosterID     string      `json:"posterIncomingId,omitempty"`
	Timestamp    string      `json:"timestamp"`
}

const (
	EventOrderCreated = "order.created"
	EventOrderStatus  = "order.status"
)
