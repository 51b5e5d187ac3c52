package order

import (
	"context"
	"errors"
	"fmt"

	"ms-restaurant/internal/apperr"
	"ms-restaurant/internal/db"
	"ms-restaurant/internal/models"
	"ms-restaurant/internal/payment/services"
)

// Retry resubmits a pending or failed order to the POS with the current restaurant
// credentials and menu source ids. Card orders need an accepted payment confirmation.
func (s *Service) Retry(ctx context.Context, orderID int64) (map[string]any, error) {
	order, err := s.Store.GetOrder(ctx, orderID)
	if errors.Is(err, db.ErrNotFound) {
		return nil, apperr.NotFound("")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	switch order.Status {
	case models.OrderSent:
		return nil, apperr.Conflict("Order was already sent.")
	case models.OrderPendingPayment:
		return nil, apperr.Conflict("Order is awaiting payment.")
	}
	if order.PaymentMethod == PaymentCard && !services.ConfirmAccepted(order.PaymentConfirmPayloadJSON) {
		return nil, apperr.Conflict("Order payment was not confirmed.")
	}

	restaurant, err := s.Store.GetRestaurant(ctx, order.RestaurantID)
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		return nil, apperr.Internal(err)
	}
	dest, ok := target(restaurant)
	if !ok {
		return nil, apperr.BadRequest("")
	}
	items := parseItems(order.ItemsJSON)
	if len(items) == 0 {
		return nil, apperr.BadRequest("")
	}
	products, ok, err := s.products(ctx, items)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if !ok {
		return nil, apperr.BadRequest("")
	}

	posterClientID := ""
	if order.ClientID != nil && order.ClientPhone != "" {
		ref := ClientRef{ID: *order.ClientID, Phone: order.ClientPhone, Name: order.ClientName}
		posterClientID, err = s.Clients.Resolve(ctx, dest.Token, order.RestaurantID, ref, false)
		if err != nil {
			s.Logger.LogOrder("POSTER_CLIENT", order.ID, fmt.Sprintf("Resolve failed: %v", err))
		}
	}

	s.Logger.LogOrder("RETRY", order.ID, fmt.Sprintf("Resubmitting from status %s", order.Status))
	result := s.submit(ctx, order, submission{
		Target:         dest,
		PosterClientID: posterClientID,
		Products:       products,
		Comment:        BuildFeesComment(order.Comment, parseFees(order.FeesJSON)),
		Address:        order.DeliveryAddress,
	})
	switch {
	case result.Err != nil:
		return map[string]any{"ok": false, "error": map[string]any{"message": "Poster request failed."}}, nil
	case !result.Sent:
		return map[string]any{"ok": false, "error": result.errorBody()}, nil
	}
	return map[string]any{"ok": true, "poster": result.Data}, nil
}
