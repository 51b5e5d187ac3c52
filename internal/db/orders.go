package db

import (
	"context"
	"strings"

	"ms-restaurant/internal/models"
	"ms-restaurant/internal/utils"

	"github.com/uptrace/bun"
)

// ---------------- ORDERS ----------------

// CreateOrder inserts the order and sets its ID.
func (d *DB) CreateOrder(ctx context.Context, order *models.Order) error {
	_, err := d.Bun.NewInsert().Model(order).Exec(ctx)
	return err
}

func (d *DB) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	err := d.Bun.NewSelect().Model(&order).Where("id = ?", id).Limit(1).Scan(ctx)
	if err != nil {
		return nil, notFound(err)
	}
	return &order, nil
}

// GetClientOrder only matches orders owned by clientID.
func (d *DB) GetClientOrder(ctx context.Context, id, clientID int64) (*models.Order, error) {
	var order models.Order
	err := d.Bun.NewSelect().Model(&order).
		Where("id = ?", id).
		Where("client_id = ?", clientID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, notFound(err)
	}
	return &order, nil
}

// UpdateOrderStatus overwrites status with both POS payload columns. A nil payload stores NULL.
func (d *DB) UpdateOrderStatus(ctx context.Context, id int64, status models.OrderStatus, payload, errPayload *string) error {
	_, err := d.Bun.NewUpdate().Table("orders").
		Set("status = ?", status).
		Set("poster_payload_json = ?", payload).
		Set("poster_error_json = ?", errPayload).
		Set("updated_at = ?", utils.Now()).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

// PosterMeta carries the identifiers POS returns for an incoming order.
type PosterMeta struct {
	IncomingID string
	Status     *int64
	UpdatedAt  string
}

func (m PosterMeta) Empty() bool {
	return m.IncomingID == "" && m.Status == nil && m.UpdatedAt == ""
}

// UpdateOrderPosterMeta writes the POS columns the response supplied and keeps the rest.
func (d *DB) UpdateOrderPosterMeta(ctx context.Context, id int64, meta PosterMeta) error {
	if meta.Empty() {
		return nil
	}
	q := d.Bun.NewUpdate().Table("orders").Where("id = ?", id)
	if meta.IncomingID != "" {
		q = q.Set("poster_incoming_id = ?", meta.IncomingID)
	}
	if meta.Status != nil {
		q = q.Set("poster_status = ?", *meta.Status)
	}
	if meta.UpdatedAt != "" {
		q = q.Set("poster_updated_at = ?", meta.UpdatedAt)
	}
	_, err := q.Exec(ctx)
	return err
}

// UpdateOrderPosterSync only touches the columns the POS read returned.
func (d *DB) UpdateOrderPosterSync(ctx context.Context, id int64, status *int64, updatedAt string) error {
	if status == nil && updatedAt == "" {
		return nil
	}
	q := d.Bun.NewUpdate().Table("orders").Where("id = ?", id)
	if status != nil {
		q = q.Set("poster_status = ?", *status)
	}
	if updatedAt != "" {
		q = q.Set("poster_updated_at = ?", updatedAt)
	}
	_, err := q.Exec(ctx)
	return err
}

func (d *DB) UpdateOrderStep(ctx context.Context, id int64, step models.OrderStep) error {
	_, err := d.Bun.NewUpdate().Table("orders").
		Set("step = ?", step).
		Set("updated_at = ?", utils.Now()).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

func (d *DB) UpdateOrderPaymentPayload(ctx context.Context, id int64, payload string) error {
	_, err := d.Bun.NewUpdate().Table("orders").
		Set("payment_payload_json = ?", payload).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

func (d *DB) UpdateOrderConfirmPayload(ctx context.Context, id int64, payload string) error {
	_, err := d.Bun.NewUpdate().Table("orders").
		Set("payment_confirm_payload_json = ?", payload).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

func (d *DB) UpdateOrderComment(ctx context.Context, id int64, comment string) error {
	_, err := d.Bun.NewUpdate().Table("orders").
		Set("comment = ?", comment).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

// ListClientOrders returns the newest orders of a client with restaurant names.
func (d *DB) ListClientOrders(ctx context.Context, clientID int64, limit int) ([]models.OrderWithRestaurant, error) {
	var rows []models.OrderWithRestaurant
	err := d.Bun.NewSelect().
		Model(&rows).
		ColumnExpr("o.*").
		ColumnExpr("r.name AS restaurant_name").
		Join("LEFT JOIN restaurants AS r ON r.id = o.restaurant_id").
		Where("o.client_id = ?", clientID).
		OrderExpr("o.id DESC").
		Limit(limit).
		Scan(ctx)
	return rows, err
}

// OrderFilter narrows the admin order list.
type OrderFilter struct {
	Status       string
	RestaurantID int64
	From         string
	To           string
	Query        string
	Limit        int
	Offset       int
}

func (f OrderFilter) apply(q *bun.SelectQuery) *bun.SelectQuery {
	if f.Status != "" {
		q = q.Where("o.status = ?", f.Status)
	} else {
		q = q.Where("o.status != ?", models.OrderPendingPayment)
	}
	if f.RestaurantID > 0 {
		q = q.Where("o.restaurant_id = ?", f.RestaurantID)
	}
	if f.From != "" {
		q = q.Where("o.created_at >= ?", f.From)
	}
	if f.To != "" {
		q = q.Where("o.created_at <= ?", f.To)
	}
	if query := strings.TrimSpace(f.Query); query != "" {
		like := "%" + query + "%"
		q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("o.client_name LIKE ?", like).
				WhereOr("o.client_phone LIKE ?", like).
				WhereOr("r.name LIKE ?", like)
		})
	}
	return q
}

// ListAdminOrders returns one page and the total matching rows.
func (d *DB) ListAdminOrders(ctx context.Context, f OrderFilter) ([]models.OrderWithRestaurant, int, error) {
	var rows []models.OrderWithRestaurant
	q := d.Bun.NewSelect().
		Model(&rows).
		ColumnExpr("o.*").
		ColumnExpr("r.name AS restaurant_name").
		Join("LEFT JOIN restaurants AS r ON r.id = o.restaurant_id")
	q = f.apply(q).OrderExpr("o.id DESC").Limit(f.Limit).Offset(f.Offset)
	total, err := q.ScanAndCount(ctx)
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// LatestVisibleOrderID ignores orders still waiting for card payment.
func (d *DB) LatestVisibleOrderID(ctx context.Context) (int64, error) {
	var id int64
	err := d.Bun.NewSelect().Table("orders").
		ColumnExpr("COALESCE(MAX(id), 0)").
		Where("status != ?", models.OrderPendingPayment).
		Scan(ctx, &id)
	return id, err
}

func (d *DB) CountOrdersSince(ctx context.Context, sinceID int64) (int, error) {
	return d.Bun.NewSelect().Table("orders").
		Where("id > ?", sinceID).
		Where("status != ?", models.OrderPendingPayment).
		Count(ctx)
}

// ListStalledOrders returns orders whose saga stopped before a resting step.
func (d *DB) ListStalledOrders(ctx context.Context, olderThan string) ([]models.Order, error) {
	var orders []models.Order
	err := d.Bun.NewSelect().Model(&orders).
		Where("step IS NOT NULL").
		Where("step NOT IN (?)", bun.In([]models.OrderStep{models.StepDone, models.StepAwaitingOTP})).
		Where("updated_at < ?", olderThan).
		OrderExpr("id ASC").
		Scan(ctx)
	return orders, err
}

// ---------------- POSTER CLIENTS ----------------

// GetPosterClientID returns "" when no mapping exists.
func (d *DB) GetPosterClientID(ctx context.Context, clientID, restaurantID int64) (string, error) {
	var mapping models.PosterClient
	err := d.Bun.NewSelect().Model(&mapping).
		Where("client_id = ?", clientID).
		Where("restaurant_id = ?", restaurantID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if notFound(err) == ErrNotFound {
			return "", nil
		}
		return "", err
	}
	return mapping.PosterClientID, nil
}

// InsertPosterClient keeps an existing mapping and returns the stored POS id.
func (d *DB) InsertPosterClient(ctx context.Context, clientID, restaurantID int64, posterClientID string) (string, error) {
	now := utils.Now()
	mapping := &models.PosterClient{
		ClientID:       clientID,
		RestaurantID:   restaurantID,
		PosterClientID: posterClientID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if _, err := d.Bun.NewInsert().Model(mapping).On("CONFLICT (client_id, restaurant_id) DO NOTHING").Exec(ctx); err != nil {
		return "", err
	}
	return d.GetPosterClientID(ctx, clientID, restaurantID)
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
