package order

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ms-restaurant/internal/apperr"
	"ms-restaurant/internal/db"
	"ms-restaurant/internal/models"
	"ms-restaurant/internal/poster"
	"ms-restaurant/internal/utils"
)

const (
	DefaultPageSize = 10
	MaxClientLimit  = 50
	MaxAdminLimit   = 200
)

// OrderDTO is the client-facing order row.
type OrderDTO struct {
	ID               int64              `json:"id"`
	RestaurantID     int64              `json:"restaurantId"`
	RestaurantName   string             `json:"restaurantName"`
	ClientName       string             `json:"clientName,omitempty"`
	ClientPhone      string             `json:"clientPhone,omitempty"`
	Items            []models.OrderItem `json:"items"`
	Comment          string             `json:"comment"`
	DeliveryPrice    float64            `json:"deliveryPrice"`
	ServiceMode      int                `json:"serviceMode"`
	Fees             []models.Fee       `json:"fees"`
	Status           models.OrderStatus `json:"status"`
	CreatedAt        string             `json:"createdAt"`
	PosterStatus     *int64             `json:"posterStatus"`
	PosterUpdatedAt  *string            `json:"posterUpdatedAt"`
	PosterIncomingID *string            `json:"posterIncomingId"`
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func toDTO(row models.OrderWithRestaurant) OrderDTO {
	dto := OrderDTO{
		ID:               row.ID,
		RestaurantID:     row.RestaurantID,
		RestaurantName:   row.RestaurantName,
		Items:            parseItems(row.ItemsJSON),
		Comment:          row.Comment,
		Fees:             parseFees(row.FeesJSON),
		Status:           row.Status,
		CreatedAt:        row.CreatedAt,
		PosterStatus:     row.PosterStatus,
		PosterUpdatedAt:  optional(row.PosterUpdatedAt),
		PosterIncomingID: optional(row.PosterIncomingID),
	}
	if row.DeliveryPrice != nil {
		dto.DeliveryPrice = *row.DeliveryPrice
	}
	if row.ServiceMode != nil {
		dto.ServiceMode = *row.ServiceMode
	}
	return dto
}

func clampLimit(limit, max int) int {
	switch {
	case limit < 1:
		return 1
	case limit > max:
		return max
	}
	return limit
}

// ListForClient returns the newest orders of a client. With sync the POS status of
// submitted orders is refreshed first; sync failures leave the stored values.
func (s *Service) ListForClient(ctx context.Context, clientID int64, limit int, sync bool) ([]OrderDTO, error) {
	rows, err := s.Store.ListClientOrders(ctx, clientID, clampLimit(limit, MaxClientLimit))
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("list client orders: %w", err))
	}
	if sync {
		tokens := map[int64]string{}
		for i := range rows {
			s.syncRow(ctx, &rows[i], tokens)
		}
	}
	orders := make([]OrderDTO, 0, len(rows))
	for _, row := range rows {
		orders = append(orders, toDTO(row))
	}
	return orders, nil
}

func (s *Service) syncRow(ctx context.Context, row *models.OrderWithRestaurant, tokens map[int64]string) {
	if row.PosterIncomingID == "" {
		return
	}
	token, cached := tokens[row.RestaurantID]
	if !cached {
		if r, err := s.Store.GetRestaurant(ctx, row.RestaurantID); err == nil && r.Integration() == models.IntegrationPoster {
			token = strings.TrimSpace(r.TokenPoster)
		}
		tokens[row.RestaurantID] = token
	}
	if token == "" {
		return
	}

	resp, err := s.POS.GetIncomingOrder(ctx, token, row.PosterIncomingID)
	if err != nil {
		s.Logger.LogOrder("SYNC_FAILED", row.ID, err.Error())
		return
	}
	if resp.Failed() {
		return
	}
	meta := poster.ParseIncomingMeta(resp.Data)
	if meta.Status == nil && meta.UpdatedAt == "" {
		return
	}
	if err := s.Store.UpdateOrderPosterSync(ctx, row.ID, meta.Status, meta.UpdatedAt); err != nil {
		s.Logger.LogOrder("SYNC_FAILED", row.ID, fmt.Sprintf("Could not store POS status: %v", err))
		return
	}
	if meta.Status != nil {
		row.PosterStatus = meta.Status
	}
	if meta.UpdatedAt != "" {
		row.PosterUpdatedAt = meta.UpdatedAt
	}
}

// AdminQuery is the admin order list request.
type AdminQuery struct {
	Limit        int
	Page         int
	Status       string
	RestaurantID *int64
	Query        string
	From         string
	To           string
	// Since is the last order id the dashboard has seen; nil skips the unseen count.
	Since *int64
}

var listableStatuses = map[string]bool{
	string(models.OrderPending):        true,
	string(models.OrderSent):           true,
	string(models.OrderFailed):         true,
	string(models.OrderPendingPayment): true,
}

var dateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04", "2006-01-02"}

// boundary parses a date filter; a date-only "to" covers the whole day.
func boundary(value string, endOfDay bool) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, value)
		if err != nil {
			continue
		}
		if endOfDay {
			t = time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(999*time.Millisecond), time.UTC)
		}
		return utils.FormatTime(t)
	}
	return ""
}

// AdminList returns one page of orders for the dashboard. pending_payment orders are
// hidden unless asked for by status.
func (s *Service) AdminList(ctx context.Context, q AdminQuery) (map[string]any, error) {
	limit := DefaultPageSize
	if q.Limit != 0 {
		limit = clampLimit(q.Limit, MaxAdminLimit)
	}
	page := q.Page
	if page < 1 {
		page = 1
	}
	filter := db.OrderFilter{
		Query:  q.Query,
		From:   boundary(q.From, false),
		To:     boundary(q.To, true),
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
	if listableStatuses[q.Status] {
		filter.Status = q.Status
	}
	if q.RestaurantID != nil {
		filter.RestaurantID = *q.RestaurantID
	}

	rows, total, err := s.Store.ListAdminOrders(ctx, filter)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("list orders: %w", err))
	}
	orders := make([]OrderDTO, 0, len(rows))
	for _, row := range rows {
		dto := toDTO(row)
		dto.ClientName = row.ClientName
		dto.ClientPhone = row.ClientPhone
		orders = append(orders, dto)
	}

	latestID, err := s.Store.LatestVisibleOrderID(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	var unseen any
	if q.Since != nil {
		count, err := s.Store.CountOrdersSince(ctx, *q.Since)
		if err != nil {
			return nil, apperr.Internal(err)
		}
		unseen = count
	}
	return map[string]any{"orders": orders, "latestId": latestID, "unseenCount": unseen, "total": total}, nil
}
