package order

import (
	"context"
	"fmt"
	"strings"

	"ms-restaurant/internal/models"
)

// SyncClientProfile pushes the client's phone and name to the POS client mapped at
// restaurantID, creating the mapping when missing. It reports whether the POS
// accepted the update; every failure is logged and reported as false.
func (s *Service) SyncClientProfile(ctx context.Context, clientID, restaurantID int64) bool {
	restaurant, err := s.Store.GetRestaurant(ctx, restaurantID)
	if err != nil {
		return false
	}
	token := strings.TrimSpace(restaurant.TokenPoster)
	if restaurant.Integration() != models.IntegrationPoster || token == "" {
		return false
	}
	client, err := s.Store.GetClient(ctx, clientID)
	if err != nil || client.Phone == "" {
		return false
	}

	ref := ClientRef{ID: client.ID, Phone: client.Phone, Name: client.Name}
	posterClientID, err := s.Clients.Resolve(ctx, token, restaurantID, ref, false)
	if err != nil {
		s.Logger.Error("POSTER_CLIENT", fmt.Sprintf("Profile sync of client %d failed: %v", clientID, err))
		return false
	}
	if posterClientID == "" {
		return false
	}
	resp, err := s.POS.UpdateClient(ctx, token, posterClientID, client.Phone, client.Name)
	if err != nil {
		s.Logger.Warn("POSTER_CLIENT", fmt.Sprintf("Update of POS client %s failed: %v", posterClientID, err))
		return false
	}
	return !resp.Failed()
}
