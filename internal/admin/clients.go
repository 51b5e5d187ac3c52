package admin

import (
	"context"
	"errors"
	"fmt"

	"ms-restaurant/internal/apperr"
	"ms-restaurant/internal/auth"
	"ms-restaurant/internal/db"
	"ms-restaurant/internal/models"
)

type ClientDTO struct {
	ID          int64  `json:"id"`
	Phone       string `json:"phone"`
	Name        string `json:"name"`
	CreatedAt   string `json:"createdAt"`
	OrdersCount int64  `json:"ordersCount"`
	LastOrderAt string `json:"lastOrderAt"`
}

func clientDTO(c *models.Client) ClientDTO {
	return ClientDTO{
		ID:          c.ID,
		Phone:       c.Phone,
		Name:        c.Name,
		CreatedAt:   c.CreatedAt,
		OrdersCount: c.OrdersCount,
		LastOrderAt: c.LastOrderAt,
	}
}

type AddressInput struct {
	Title   *string `json:"title"`
	Address *string `json:"address"`
}

func (s *Service) ListClients(ctx context.Context) ([]ClientDTO, error) {
	rows, err := s.Store.ListClients(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	out := make([]ClientDTO, 0, len(rows))
	for i := range rows {
		out = append(out, clientDTO(&rows[i]))
	}
	return out, nil
}

func (s *Service) client(ctx context.Context, id int64) (*models.Client, error) {
	client, err := s.Store.GetClient(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return nil, apperr.NotFound("")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return client, nil
}

// ResetClientPassword sets a new password chosen by an admin.
func (s *Service) ResetClientPassword(ctx context.Context, clientID int64, password *string) error {
	value := trimmed(password)
	if value == "" {
		return apperr.BadRequest("")
	}
	salt, hash, err := auth.HashPassword(value)
	if err != nil {
		return apperr.Internal(err)
	}
	found, err := s.Store.UpdateClientPassword(ctx, clientID, salt, hash)
	if err != nil {
		return apperr.Internal(err)
	}
	if !found {
		return apperr.NotFound("")
	}
	s.Logger.LogSecurity("CLIENT_PASSWORD_RESET", fmt.Sprintf("Password of client %d reset by admin", clientID))
	return nil
}

func (s *Service) ListAddresses(ctx context.Context, clientID int64) ([]models.ClientAddress, error) {
	rows, err := s.Store.ListClientAddresses(ctx, clientID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return rows, nil
}

// AddAddress stores an address for an existing client; the address text is required.
func (s *Service) AddAddress(ctx context.Context, clientID int64, in AddressInput) (*models.ClientAddress, error) {
	address := trimmed(in.Address)
	if address == "" {
		return nil, apperr.BadRequest("")
	}
	if _, err := s.client(ctx, clientID); err != nil {
		return nil, err
	}
	row, err := s.Store.CreateClientAddress(ctx, clientID, trimmed(in.Title), address)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return row, nil
}

// DeleteAddress only removes an address owned by clientID.
func (s *Service) DeleteAddress(ctx context.Context, clientID, addressID int64) error {
	found, err := s.Store.DeleteClientAddress(ctx, addressID, clientID)
	if err != nil {
		return apperr.Internal(err)
	}
	if !found {
		return apperr.NotFound("")
	}
	return nil
}
