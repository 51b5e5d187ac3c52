package order

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"ms-restaurant/internal/apperr"
	"ms-restaurant/internal/db"
	"ms-restaurant/internal/models"
	"ms-restaurant/internal/payment/services"
	"ms-restaurant/internal/payment/storage"
	"ms-restaurant/internal/poster"
	"ms-restaurant/internal/telegram"
	"ms-restaurant/internal/utils"
)

const PaymentCard = "card"

// resolveRestaurant finds the restaurant by id, then by POS token.
func (s *Service) resolveRestaurant(ctx context.Context, in CreateInput) (*models.Restaurant, error) {
	if in.RestaurantID == nil && in.PosterToken == "" {
		return nil, apperr.BadRequest("")
	}
	var restaurant *models.Restaurant
	if in.RestaurantID != nil {
		r, err := s.Store.GetRestaurant(ctx, *in.RestaurantID)
		if err != nil && !errors.Is(err, db.ErrNotFound) {
			return nil, apperr.Internal(err)
		}
		restaurant = r
	}
	if restaurant == nil && in.PosterToken != "" {
		r, err := s.Store.GetRestaurantByPosterToken(ctx, in.PosterToken)
		if err != nil && !errors.Is(err, db.ErrNotFound) {
			return nil, apperr.Internal(err)
		}
		restaurant = r
	}
	if restaurant == nil {
		return nil, apperr.NotFound("")
	}
	return restaurant, nil
}

// orderFees applies the fee rules: restaurant fees when none are given, delivery fees
// folded into the delivery price, delivery service mode for a positive delivery price.
func (s *Service) orderFees(ctx context.Context, restaurantID int64, in CreateInput) ([]models.Fee, *float64, *int, error) {
	delivery := in.DeliveryPrice
	var mode *int
	if in.ServiceMode != nil && *in.ServiceMode >= 1 && *in.ServiceMode <= 3 {
		m := *in.ServiceMode
		mode = &m
	}

	fees := in.Fees
	if len(fees) == 0 {
		rows, err := s.Store.ListFees(ctx, restaurantID)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("load restaurant fees: %w", err)
		}
		for _, row := range rows {
			if strings.TrimSpace(row.Title) != "" {
				fees = append(fees, models.Fee{Title: row.Title, Price: row.Price})
			}
		}
	}
	fees, deliveryFee := SplitDeliveryFee(fees)
	if delivery == nil && deliveryFee != nil {
		delivery = deliveryFee
	}

	if delivery != nil && *delivery > 0 {
		m := ServiceModeDelivery
		mode = &m
	}
	return fees, delivery, mode, nil
}

// lineItems resolves every requested line against the catalog. Any unusable line fails
// the whole request.
func (s *Service) lineItems(ctx context.Context, inputs []ItemInput) ([]models.OrderItem, []poster.Product, error) {
	ids := make([]int64, 0, len(inputs))
	for _, item := range inputs {
		if !item.ValidID {
			return nil, nil, apperr.BadRequest("")
		}
		ids = append(ids, item.ProductID)
	}
	catalog, err := s.Store.GetMenuItemsByIDs(ctx, ids)
	if err != nil {
		return nil, nil, apperr.Internal(fmt.Errorf("load menu items: %w", err))
	}

	items := make([]models.OrderItem, 0, len(inputs))
	products := make([]poster.Product, 0, len(inputs))
	for _, input := range inputs {
		row, found := catalog[input.ProductID]
		if !found || strings.TrimSpace(row.SourceID) == "" {
			return nil, nil, apperr.BadRequest("")
		}
		if input.Qty <= 0 || math.IsNaN(input.Qty) || math.IsInf(input.Qty, 0) {
			return nil, nil, apperr.BadRequest("")
		}
		price := input.Price
		if price <= 0 {
			price = row.Price
		}
		if price <= 0 || math.IsNaN(price) || math.IsInf(price, 0) {
			return nil, nil, apperr.BadRequest("")
		}
		name := strings.TrimSpace(row.NameRu)
		if name == "" {
			name = "Item #" + strconv.FormatInt(input.ProductID, 10)
		}
		items = append(items, models.OrderItem{ID: input.ProductID, Name: name, Qty: input.Qty, Price: price})
		products = append(products, poster.Product{ProductID: strings.TrimSpace(row.SourceID), Count: input.Qty, Price: price})
	}
	return items, products, nil
}

// cardSettings checks the card fields before anything is charged or recorded.
func (s *Service) cardSettings(ctx context.Context, in CreateInput) (storage.Settings, error) {
	settings, err := storage.Resolve(ctx, s.Store, s.PaymentBaseURL)
	if err != nil {
		return storage.Settings{}, apperr.Internal(err)
	}
	if settings.BaseURL == "" || in.CardNumber == "" || in.ExpireDate == "" {
		return storage.Settings{}, apperr.BadRequest("Card payment data is required.")
	}
	if !services.ValidCardNumber(in.CardNumber) || !services.ValidExpireDate(in.ExpireDate, s.Now()) {
		return storage.Settings{}, apperr.BadRequest("Invalid card data.")
	}
	return settings, nil
}

// consumeBonus deducts the used bonus from the POS balance before the order exists.
func (s *Service) consumeBonus(ctx context.Context, token, posterClientID string, bonus float64) error {
	if bonus <= 0 {
		return nil
	}
	if posterClientID == "" {
		return apperr.UpstreamMessage("Poster client is missing.")
	}
	delta := BonusDelta(bonus)
	if delta == 0 {
		return nil
	}
	resp, err := s.POS.ChangeClientBonus(ctx, token, posterClientID, delta)
	if err != nil {
		return apperr.UpstreamMessage("Poster request failed.").Wrap(err)
	}
	if !resp.OK() {
		return apperr.Upstream(resp.Data)
	}
	return nil
}

// Create records an order for clientID and either starts the card payment or submits
// it to the POS. Validation, POS client resolution and bonus happen before the row exists.
func (s *Service) Create(ctx context.Context, clientID int64, in CreateInput) (map[string]any, error) {
	// Step 1: restaurant and POS target
	restaurant, err := s.resolveRestaurant(ctx, in)
	if err != nil {
		return nil, err
	}
	if restaurant.Integration() != models.IntegrationPoster {
		return nil, apperr.BadRequest("")
	}
	dest, ok := target(restaurant)
	if !ok {
		return nil, apperr.BadRequest("")
	}
	if in.SpotID != nil && strconv.FormatInt(*in.SpotID, 10) != dest.SpotID {
		return nil, apperr.BadRequest("")
	}
	if len(in.Items) == 0 {
		return nil, apperr.BadRequest("")
	}

	// Step 2: pricing and comment
	fees, delivery, mode, err := s.orderFees(ctx, restaurant.ID, in)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	comment := BuildFeesComment(in.Comment, fees)
	if in.BonusUsed > 0 {
		comment = appendPart(comment, bonusSuffix(in.Lang, in.BonusUsed))
	}

	client, err := s.Store.GetClient(ctx, clientID)
	if errors.Is(err, db.ErrNotFound) {
		return nil, apperr.Unauthorized()
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}

	items, products, err := s.lineItems(ctx, in.Items)
	if err != nil {
		return nil, err
	}
	card := in.PaymentMethod == PaymentCard
	var settings storage.Settings
	if card {
		if settings, err = s.cardSettings(ctx, in); err != nil {
			return nil, err
		}
	}

	// Step 3: POS client and bonus
	posterClientID := s.Clients.ForOrder(ctx, dest.Token, restaurant.ID, ClientRef{ID: client.ID, Phone: client.Phone, Name: client.Name})
	if err := s.consumeBonus(ctx, dest.Token, posterClientID, in.BonusUsed); err != nil {
		return nil, err
	}

	// Step 4: record
	now := utils.FormatTime(s.Now())
	status := models.OrderPending
	if card {
		status = models.OrderPendingPayment
	}
	order := &models.Order{
		RestaurantID:    restaurant.ID,
		ClientID:        &client.ID,
		ClientName:      client.Name,
		ClientPhone:     client.Phone,
		ItemsJSON:       *marshalPayload(items),
		Comment:         comment,
		DeliveryPrice:   delivery,
		ServiceMode:     mode,
		DeliveryAddress: in.DeliveryAddress,
		PaymentMethod:   in.PaymentMethod,
		Status:          status,
		Step:            models.StepRecorded,
		BonusUsed:       in.BonusUsed,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if len(fees) > 0 {
		order.FeesJSON = *marshalPayload(fees)
	}
	if err := s.Store.CreateOrder(ctx, order); err != nil {
		if in.BonusUsed > 0 {
			s.Logger.Error("ORDER", fmt.Sprintf("Insert failed after %s bonus was deducted for client %d restaurant %d: %v",
				formatAmount(in.BonusUsed), client.ID, restaurant.ID, err))
		}
		return nil, apperr.Internal(fmt.Errorf("create order: %w", err))
	}
	s.Logger.LogOrder("CREATED", order.ID, fmt.Sprintf("Restaurant %d client %d status %s", restaurant.ID, client.ID, status))

	if err := s.Store.RecordClientOrder(ctx, client.ID, now); err != nil {
		s.Logger.LogOrder("CLIENT_STATS", order.ID, fmt.Sprintf("Could not record client order: %v", err))
	}
	if s.Events != nil {
		if err := s.Events.PublishOrderCreated(ctx, s.event(order, status)); err != nil {
			s.Logger.LogOrder("EVENT_FAILED", order.ID, fmt.Sprintf("Kafka publish error (order created): %v", err))
		}
	}

	total := OrderTotal(items, fees, delivery)
	if s.Notifier != nil {
		s.Notifier.NotifyOrder(ctx, s.notice(order, restaurant, items, fees, &total))
	}

	// Step 5: card payment or POS submission
	if card {
		return s.charge(ctx, order, settings, in, total)
	}

	result := s.submit(ctx, order, submission{
		Target:         dest,
		PosterClientID: posterClientID,
		Products:       products,
		Comment:        comment,
		Address:        in.DeliveryAddress,
	})
	return createdResponse(order.ID, result), nil
}

func createdResponse(orderID int64, result outcome) map[string]any {
	switch {
	case result.Err != nil:
		return map[string]any{
			"ok":       true,
			"orderId":  orderID,
			"posterOk": false,
			"error":    map[string]any{"message": "Poster request failed."},
			"payment":  nil,
		}
	case !result.Sent:
		return map[string]any{"ok": true, "orderId": orderID, "posterOk": false, "error": result.errorBody()}
	}
	return map[string]any{"ok": true, "orderId": orderID, "poster": result.Data, "payment": nil}
}

// charge starts the card payment of a recorded order; the POS submission waits for the OTP.
func (s *Service) charge(ctx context.Context, order *models.Order, settings storage.Settings, in CreateInput, total float64) (map[string]any, error) {
	s.setStep(ctx, order.ID, models.StepPaymentRequested)
	result, err := s.Payments.Charge(ctx, settings, order.ID, services.ChargeRequest{
		Amount:          int64(math.Round(total)),
		CardNumber:      in.CardNumber,
		ExpireDate:      in.ExpireDate,
		ExtraID:         services.ExtraID(order.ID),
		TransactionData: in.TransactionData,
	})
	if err != nil {
		s.markFailed(ctx, order, messagePayload(err.Error()))
		return nil, apperr.UpstreamMessage("Payment request failed.").Wrap(err)
	}

	payload := result.Payload()
	if err := s.Store.UpdateOrderPaymentPayload(ctx, order.ID, payload); err != nil {
		s.Logger.LogPayment("PAYLOAD_FAILED", order.ID, fmt.Sprintf("Could not store payment payload: %v", err))
	}
	if result.Failed() {
		s.markFailed(ctx, order, &payload)
		return nil, apperr.PaymentRequired(result.Data)
	}

	comment := appendPart(order.Comment, paidSuffix(in.Lang))
	if err := s.Store.UpdateOrderComment(ctx, order.ID, comment); err != nil {
		s.Logger.LogOrder("COMMENT_FAILED", order.ID, fmt.Sprintf("Could not store comment: %v", err))
	}
	s.setStep(ctx, order.ID, models.StepAwaitingOTP)
	return map[string]any{"ok": true, "orderId": order.ID, "payment": result.Data, "requiresOtp": true}, nil
}

func (s *Service) notice(order *models.Order, restaurant *models.Restaurant, items []models.OrderItem, fees []models.Fee, total *float64) telegram.OrderNotice {
	notice := telegram.OrderNotice{
		OrderID:         order.ID,
		RestaurantID:    restaurant.ID,
		RestaurantName:  strings.TrimSpace(restaurant.Name),
		Status:          order.Status,
		ClientPhone:     order.ClientPhone,
		DeliveryAddress: order.DeliveryAddress,
		Comment:         order.Comment,
		Items:           items,
		Fees:            fees,
		Total:           total,
	}
	if order.DeliveryPrice != nil {
		notice.DeliveryPrice = *order.DeliveryPrice
	}
	return notice
}
