// Package order runs the order lifecycle: creation, card payment, POS submission and retry.
package order

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"ms-restaurant/internal/cache"
	"ms-restaurant/internal/db"
	"ms-restaurant/internal/logger"
	"ms-restaurant/internal/models"
	"ms-restaurant/internal/payment/services"
	"ms-restaurant/internal/payment/storage"
	"ms-restaurant/internal/poster"
	"ms-restaurant/internal/telegram"
	"ms-restaurant/internal/utils"
)

// Store is the persistence the order service needs. *db.DB implements it.
type Store interface {
	GetRestaurant(ctx context.Context, id int64) (*models.Restaurant, error)
	GetRestaurantByPosterToken(ctx context.Context, token string) (*models.Restaurant, error)
	ListFees(ctx context.Context, restaurantID int64) ([]models.RestaurantFee, error)
	GetClient(ctx context.Context, id int64) (*models.Client, error)
	RecordClientOrder(ctx context.Context, id int64, at string) error
	GetMenuItemsByIDs(ctx context.Context, ids []int64) (map[int64]models.MenuItem, error)

	CreateOrder(ctx context.Context, order *models.Order) error
	GetOrder(ctx context.Context, id int64) (*models.Order, error)
	GetClientOrder(ctx context.Context, id, clientID int64) (*models.Order, error)
	UpdateOrderStatus(ctx context.Context, id int64, status models.OrderStatus, payload, errPayload *string) error
	UpdateOrderPosterMeta(ctx context.Context, id int64, meta db.PosterMeta) error
	UpdateOrderPosterSync(ctx context.Context, id int64, status *int64, updatedAt string) error
	UpdateOrderStep(ctx context.Context, id int64, step models.OrderStep) error
	UpdateOrderPaymentPayload(ctx context.Context, id int64, payload string) error
	UpdateOrderConfirmPayload(ctx context.Context, id int64, payload string) error
	UpdateOrderComment(ctx context.Context, id int64, comment string) error
	ListClientOrders(ctx context.Context, clientID int64, limit int) ([]models.OrderWithRestaurant, error)
	ListAdminOrders(ctx context.Context, f db.OrderFilter) ([]models.OrderWithRestaurant, int, error)
	LatestVisibleOrderID(ctx context.Context) (int64, error)
	CountOrdersSince(ctx context.Context, sinceID int64) (int, error)
	ListStalledOrders(ctx context.Context, olderThan string) ([]models.Order, error)

	GetPosterClientID(ctx context.Context, clientID, restaurantID int64) (string, error)
	InsertPosterClient(ctx context.Context, clientID, restaurantID int64, posterClientID string) (string, error)

	storage.Store
}

// POS is the point-of-sale API. *poster.Client implements it.
type POS interface {
	FindClientByPhone(ctx context.Context, token, phone string) (string, error)
	CreateClient(ctx context.Context, token, phone, name string) (string, *poster.Response, error)
	UpdateClient(ctx context.Context, token, clientID, phone, name string) (*poster.Response, error)
	ChangeClientBonus(ctx context.Context, token, clientID string, delta int64) (*poster.Response, error)
	GetClient(ctx context.Context, token, clientID string) (*poster.Response, error)
	CreateIncomingOrder(ctx context.Context, token string, order poster.IncomingOrder) (*poster.Response, error)
	GetIncomingOrder(ctx context.Context, token, incomingID string) (*poster.Response, error)
}

// Gateway is the card payment API. *services.PlumService implements it.
type Gateway interface {
	Charge(ctx context.Context, settings storage.Settings, orderID int64, charge services.ChargeRequest) (*services.Result, error)
	Confirm(ctx context.Context, settings storage.Settings, orderID, session int64, otp string) (*services.Result, error)
}

type Notifier interface {
	NotifyOrder(ctx context.Context, notice telegram.OrderNotice)
}

type EventPublisher interface {
	PublishOrderCreated(ctx context.Context, event models.OrderEvent) error
	PublishOrderStatus(ctx context.Context, event models.OrderEvent) error
}

type Service struct {
	Store    Store
	POS      POS
	Payments Gateway
	Notifier Notifier
	Events   EventPublisher
	Clients  *Reconciler
	Logger   *logger.Logger
	// PaymentBaseURL is used when no gateway URL is stored in settings.
	PaymentBaseURL string
	Now            func() time.Time
}

func NewService(store Store, pos POS, payments Gateway, notifier Notifier, events EventPublisher, locker cache.Locker, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Discard()
	}
	if locker == nil {
		locker = cache.NewMemoryLocker()
	}
	return &Service{
		Store:    store,
		POS:      pos,
		Payments: payments,
		Notifier: notifier,
		Events:   events,
		Clients:  &Reconciler{Store: store, POS: pos, Locker: locker, Logger: log},
		Logger:   log,
		Now:      time.Now,
	}
}

// ---------------- HELPERS ----------------

func marshalPayload(v any) *string {
	raw, err := json.Marshal(v)
	if err != nil {
		raw = []byte("null")
	}
	s := string(raw)
	return &s
}

func messagePayload(message string) *string {
	return marshalPayload(map[string]any{"message": message})
}

// posterTarget is the POS destination of a restaurant.
type posterTarget struct {
	Token  string
	SpotID string
}

// target returns the POS token and spot of a poster restaurant; ok is false when unusable.
func target(r *models.Restaurant) (posterTarget, bool) {
	if r == nil || r.Integration() != models.IntegrationPoster {
		return posterTarget{}, false
	}
	t := posterTarget{Token: strings.TrimSpace(r.TokenPoster), SpotID: strings.TrimSpace(r.SpotID)}
	if t.Token == "" || !numeric(t.SpotID) {
		return t, false
	}
	return t, true
}

func numeric(s string) bool {
	_, ok := looseNumber(s)
	return ok
}

func parseItems(raw string) []models.OrderItem {
	var items []models.OrderItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return []models.OrderItem{}
	}
	if items == nil {
		items = []models.OrderItem{}
	}
	return items
}

func parseFees(raw string) []models.Fee {
	var fees []models.Fee
	if raw == "" || json.Unmarshal([]byte(raw), &fees) != nil || fees == nil {
		return []models.Fee{}
	}
	return fees
}

// products resolves stored items to POS products; ok is false when an item lost its source id.
func (s *Service) products(ctx context.Context, items []models.OrderItem) ([]poster.Product, bool, error) {
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	catalog, err := s.Store.GetMenuItemsByIDs(ctx, ids)
	if err != nil {
		return nil, false, fmt.Errorf("load menu items: %w", err)
	}
	products := make([]poster.Product, 0, len(items))
	for _, item := range items {
		row, found := catalog[item.ID]
		if !found || strings.TrimSpace(row.SourceID) == "" {
			return nil, false, nil
		}
		products = append(products, poster.Product{ProductID: strings.TrimSpace(row.SourceID), Count: item.Qty, Price: item.Price})
	}
	return products, true, nil
}

func (s *Service) setStep(ctx context.Context, orderID int64, step models.OrderStep) {
	if err := s.Store.UpdateOrderStep(ctx, orderID, step); err != nil {
		s.Logger.LogOrder("STEP_FAILED", orderID, fmt.Sprintf("Could not record step %s: %v", step, err))
	}
}

func (s *Service) event(order *models.Order, status models.OrderStatus) models.OrderEvent {
	return models.OrderEvent{
		OrderID:      order.ID,
		RestaurantID: order.RestaurantID,
		ClientID:     order.ClientID,
		Status:       status,
		Total:        OrderTotal(parseItems(order.ItemsJSON), parseFees(order.FeesJSON), order.DeliveryPrice),
		PosterID:     order.PosterIncomingID,
		Timestamp:    utils.FormatTime(s.Now()),
	}
}

func (s *Service) publishStatus(ctx context.Context, order *models.Order, status models.OrderStatus) {
	if s.Events == nil {
		return
	}
	if err := s.Events.PublishOrderStatus(ctx, s.event(order, status)); err != nil {
		s.Logger.LogOrder("EVENT_FAILED", order.ID, fmt.Sprintf("Kafka publish error (order status): %v", err))
	}
}

// markFailed records a failure payload, ends the attempt's saga and publishes the status change.
func (s *Service) markFailed(ctx context.Context, order *models.Order, errPayload *string) {
	if err := s.Store.UpdateOrderStatus(ctx, order.ID, models.OrderFailed, nil, errPayload); err != nil {
		s.Logger.LogOrder("STATUS_FAILED", order.ID, fmt.Sprintf("Could not mark order failed: %v", err))
		return
	}
	s.setStep(ctx, order.ID, models.StepDone)
	s.publishStatus(ctx, order, models.OrderFailed)
}

// ReportStalled logs orders whose creation stopped between steps, older than age.
func (s *Service) ReportStalled(ctx context.Context, age time.Duration) (int, error) {
	orders, err := s.Store.ListStalledOrders(ctx, utils.FormatTime(s.Now().Add(-age)))
	if err != nil {
		return 0, fmt.Errorf("list stalled orders: %w", err)
	}
	for _, o := range orders {
		s.Logger.LogOrder("STALLED", o.ID, fmt.Sprintf("Stopped at step %s with status %s since %s", o.Step, o.Status, o.UpdatedAt))
	}
	return len(orders), nil
}
