package order

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strings"

	"ms-restaurant/internal/apperr"
	"ms-restaurant/internal/db"
	"ms-restaurant/internal/models"
	"ms-restaurant/internal/poster"
)

// bonusTarget resolves the POS token of a restaurant and the POS client of clientID,
// adopting a POS client with the same phone before creating one.
func (s *Service) bonusTarget(ctx context.Context, clientID, restaurantID int64) (string, string, error) {
	restaurant, err := s.Store.GetRestaurant(ctx, restaurantID)
	if errors.Is(err, db.ErrNotFound) {
		return "", "", apperr.BadRequest("")
	}
	if err != nil {
		return "", "", apperr.Internal(err)
	}
	token := strings.TrimSpace(restaurant.TokenPoster)
	if restaurant.Integration() != models.IntegrationPoster || token == "" {
		return "", "", apperr.BadRequest("")
	}

	client, err := s.Store.GetClient(ctx, clientID)
	if errors.Is(err, db.ErrNotFound) {
		return "", "", apperr.NotFound("")
	}
	if err != nil {
		return "", "", apperr.Internal(err)
	}

	posterClientID, err := s.Clients.Resolve(ctx, token, restaurantID, ClientRef{ID: client.ID, Phone: client.Phone, Name: client.Name}, true)
	if err != nil {
		s.Logger.Error("BONUS", err.Error())
		return "", "", apperr.NotFound("")
	}
	if posterClientID == "" {
		return "", "", apperr.NotFound("")
	}
	return token, posterClientID, nil
}

func upstreamFailure(resp *poster.Response, err error) error {
	if err != nil {
		return apperr.New(http.StatusBadGateway, "").Wrap(err)
	}
	if resp.Failed() {
		return apperr.New(http.StatusBadGateway, "")
	}
	return nil
}

// ClientBonus returns the POS bonus balance of a client at a restaurant, in major units.
func (s *Service) ClientBonus(ctx context.Context, clientID, restaurantID int64) (float64, error) {
	token, posterClientID, err := s.bonusTarget(ctx, clientID, restaurantID)
	if err != nil {
		return 0, err
	}
	resp, err := s.POS.GetClient(ctx, token, posterClientID)
	if err := upstreamFailure(resp, err); err != nil {
		return 0, err
	}
	return poster.ClientBonus(resp.Data), nil
}

// ChangeBonus applies a signed delta and returns the balance the POS reports.
func (s *Service) ChangeBonus(ctx context.Context, clientID, restaurantID int64, count float64) (float64, error) {
	delta := int64(math.Round(count))
	if count == 0 || math.IsNaN(count) || math.IsInf(count, 0) {
		return 0, apperr.BadRequest("")
	}
	token, posterClientID, err := s.bonusTarget(ctx, clientID, restaurantID)
	if err != nil {
		return 0, err
	}
	resp, err := s.POS.ChangeClientBonus(ctx, token, posterClientID, delta)
	if err := upstreamFailure(resp, err); err != nil {
		return 0, err
	}
	s.Logger.Info("BONUS", "Changed bonus of client "+posterClientID+" by "+formatAmount(float64(delta)))
	return poster.BonusBalance(resp.Data), nil
}
