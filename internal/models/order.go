package models

import (
	"github.com/uptrace/bun"
)

type OrderStatus string

const (
	OrderPending        OrderStatus = "pending"
	OrderPendingPayment OrderStatus = "pending_payment"
	OrderSent           OrderStatus = "sent"
	OrderFailed         OrderStatus = "failed"
)

// OrderStep is the persisted cursor of the order creation saga.
type OrderStep string

const (
	StepRecorded         OrderStep = "recorded"
	StepPaymentRequested OrderStep = "payment_requested"
	StepAwaitingOTP      OrderStep = "awaiting_otp"
	StepSubmitting       OrderStep = "submitting"
	StepDone             OrderStep = "done"
)

type Order struct {
	bun.BaseModel `bun:"table:orders,alias:o"`

	ID                        int64       `bun:"id,pk,autoincrement"`
	RestaurantID              int64       `bun:"restaurant_id,notnull"`
	ClientID                  *int64      `bun:"client_id"`
	ClientName                string      `bun:"client_name,nullzero"`
	ClientPhone               string      `bun:"client_phone,nullzero"`
	ItemsJSON                 string      `bun:"items_json,notnull"`
	Comment                   string      `bun:"comment,nullzero"`
	DeliveryPrice             *float64    `bun:"delivery_price"`
	ServiceMode               *int        `bun:"service_mode"`
	FeesJSON                  string      `bun:"fees_json,nullzero"`
	DeliveryAddress           string      `bun:"delivery_address,nullzero"`
	PaymentMethod             string      `bun:"payment_method,nullzero"`
	PaymentPayloadJSON        string      `bun:"payment_payload_json,nullzero"`
	PaymentConfirmPayloadJSON string      `bun:"payment_confirm_payload_json,nullzero"`
	PosterIncomingID          string      `bun:"poster_incoming_id,nullzero"`
	PosterStatus              *int64      `bun:"poster_status"`
	PosterUpdatedAt           string      `bun:"poster_updated_at,nullzero"`
	Status                    OrderStatus `bun:"status,notnull"`
	PosterPayloadJSON         string      `bun:"poster_payload_json,nullzero"`
	PosterErrorJSON           string      `bun:"poster_error_json,nullzero"`
	Step                      OrderStep   `bun:"step,nullzero"`
	BonusUsed                 float64     `bun:"bonus_used,notnull"`
	CreatedAt                 string      `bun:"created_at,notnull"`
	UpdatedAt                 string      `bun:"updated_at,notnull"`
}

// OrderItem is one stored line of items_json.
type OrderItem struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Qty   float64 `json:"qty"`
	Price float64 `json:"price"`
}

// Fee is an extra charge attached to an order.
type Fee struct {
	Title string  `json:"title"`
	Price float64 `json:"price"`
}

// OrderWithRestaurant is a list row joined with the restaurant name.
type OrderWithRestaurant struct {
	Order          `bun:",extend"`
	RestaurantName string `bun:"restaurant_name"`
}

// PosterClient maps an internal client to a POS client per restaurant.
type PosterClient struct {
	bun.BaseModel `bun:"table:poster_clients,alias:pc"`

	ClientID       int64  `bun:"client_id,pk"`
	RestaurantID   int64  `bun:"restaurant_id,pk"`
	PosterClientID string `bun:"poster_client_id,notnull"`
	CreatedAt      string `bun:"created_at,notnull"`
	UpdatedAt      string `bun:"updated_at,notnull"`
}
