package order

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ms-restaurant/internal/apperr"
	"ms-restaurant/internal/db"
	"ms-restaurant/internal/models"
	"ms-restaurant/internal/payment/handler"
	"ms-restaurant/internal/payment/services"
	"ms-restaurant/internal/payment/storage"
)

var _ handler.OrderConfirmer = (*Service)(nil)

// ConfirmPayment completes the card payment of a pending_payment order with the OTP and
// submits it to the POS. A rejected OTP keeps the order waiting; once the gateway accepts,
// the order always ends sent or failed.
func (s *Service) ConfirmPayment(ctx context.Context, req handler.ConfirmRequest) (map[string]any, error) {
	order, err := s.Store.GetClientOrder(ctx, req.OrderID, req.ClientID)
	if errors.Is(err, db.ErrNotFound) {
		return nil, apperr.NotFound("")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if order.PaymentMethod != PaymentCard {
		return nil, apperr.BadRequest("")
	}
	if order.Status != models.OrderPendingPayment {
		return nil, apperr.Conflict("Order is not awaiting payment.")
	}

	session := req.Session
	if session == 0 {
		session = services.SessionFromPayload(order.PaymentPayloadJSON)
	}
	if session == 0 {
		return nil, apperr.BadRequest("")
	}

	settings, err := storage.Resolve(ctx, s.Store, s.PaymentBaseURL)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if settings.BaseURL == "" {
		return nil, apperr.Internal(services.ErrNotConfigured)
	}

	// Step 1: gateway confirmation
	result, err := s.Payments.Confirm(ctx, settings, order.ID, session, req.OTP)
	if err != nil {
		return nil, apperr.UpstreamMessage("Payment request failed.").Wrap(err)
	}
	payload := result.Payload()
	if err := s.Store.UpdateOrderConfirmPayload(ctx, order.ID, payload); err != nil {
		s.Logger.LogPayment("PAYLOAD_FAILED", order.ID, fmt.Sprintf("Could not store confirm payload: %v", err))
	}
	if result.Failed() {
		s.Logger.LogPayment("CONFIRM_REJECTED", order.ID, payload)
		return nil, apperr.PaymentRequired(result.Data)
	}
	s.Logger.LogPayment("CONFIRMED", order.ID, fmt.Sprintf("Session %d", session))

	// Step 2: POS preconditions, re-read from the current restaurant and menu
	restaurant, err := s.Store.GetRestaurant(ctx, order.RestaurantID)
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		return nil, apperr.Internal(err)
	}
	dest, ok := target(restaurant)
	if !ok {
		message := "Poster is not configured."
		s.markFailed(ctx, order, messagePayload(message))
		return map[string]any{"ok": false, "payment": result.Data, "error": map[string]any{"message": message}}, nil
	}
	items := parseItems(order.ItemsJSON)
	products, ok, err := s.products(ctx, items)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if len(items) == 0 || !ok {
		s.markFailed(ctx, order, messagePayload("Order items are no longer available."))
		return nil, apperr.BadRequest("")
	}

	// Step 3: submit
	posterClientID := ""
	if order.ClientID != nil {
		client, err := s.Store.GetClient(ctx, *order.ClientID)
		if err == nil && client.Phone != "" {
			name := client.Name
			if name == "" {
				name = order.ClientName
			}
			posterClientID, err = s.Clients.Resolve(ctx, dest.Token, order.RestaurantID, ClientRef{ID: client.ID, Phone: client.Phone, Name: name}, false)
			if err != nil {
				s.Logger.LogOrder("POSTER_CLIENT", order.ID, fmt.Sprintf("Resolve failed: %v", err))
			}
		}
	}

	sent := s.submit(ctx, order, submission{
		Target:         dest,
		PosterClientID: posterClientID,
		Products:       products,
		Comment:        strings.TrimSpace(order.Comment),
		Address:        order.DeliveryAddress,
	})
	switch {
	case sent.Err != nil:
		return map[string]any{"ok": false, "payment": result.Data, "error": map[string]any{"message": "Poster request failed."}}, nil
	case !sent.Sent:
		return map[string]any{"ok": false, "payment": result.Data, "error": sent.Data}, nil
	}
	return map[string]any{"ok": true, "payment": result.Data, "poster": sent.Data}, nil
}
