package admin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"ms-restaurant/internal/apperr"
	"ms-restaurant/internal/auth"
	"ms-restaurant/internal/db"
	"ms-restaurant/internal/models"
)

type Credentials struct {
	Phone    *string `json:"phone"`
	Password *string `json:"password"`
	Name     *string `json:"name"`
}

// Session is what register and login return to the client app.
type Session struct {
	AccessToken string         `json:"accessToken"`
	Client      SessionProfile `json:"client"`
}

type SessionProfile struct {
	ID    int64  `json:"id"`
	Phone string `json:"phone"`
	Name  string `json:"name"`
}

func (s *Service) session(client *models.Client) (Session, error) {
	token, err := s.Accounts.IssueClientToken(client)
	if err != nil {
		return Session{}, err
	}
	return Session{
		AccessToken: token,
		Client:      SessionProfile{ID: client.ID, Phone: client.Phone, Name: client.Name},
	}, nil
}

// Register creates a client account. A phone already registered is 409.
func (s *Service) Register(ctx context.Context, in Credentials) (Session, error) {
	phone := auth.NormalizePhone(trimmed(in.Phone))
	password, name := trimmed(in.Password), trimmed(in.Name)
	if phone == "" || password == "" || name == "" {
		return Session{}, apperr.BadRequest("")
	}

	_, err := s.Store.GetClientByPhone(ctx, phone)
	if err == nil {
		return Session{}, apperr.Conflict("")
	}
	if !errors.Is(err, db.ErrNotFound) {
		return Session{}, apperr.Internal(err)
	}

	salt, hash, err := auth.HashPassword(password)
	if err != nil {
		return Session{}, apperr.Internal(err)
	}
	client := &models.Client{
		Phone:        phone,
		Name:         name,
		PasswordHash: hash,
		PasswordSalt: salt,
		CreatedAt:    s.timestamp(),
	}
	if err := s.Store.CreateClient(ctx, client); err != nil {
		if db.IsUniqueViolation(err) {
			return Session{}, apperr.Conflict("")
		}
		return Session{}, apperr.Internal(err)
	}
	s.Logger.Info("CLIENT", fmt.Sprintf("Client %d registered", client.ID))
	return s.session(client)
}

// Login checks a client's phone and password. Unknown phones and clients without
// a stored password are 401 like a wrong password.
func (s *Service) Login(ctx context.Context, in Credentials) (Session, error) {
	phone := auth.NormalizePhone(trimmed(in.Phone))
	password := trimmed(in.Password)
	if phone == "" || password == "" {
		return Session{}, apperr.BadRequest("")
	}
	client, err := s.Store.GetClientByPhone(ctx, phone)
	if errors.Is(err, db.ErrNotFound) {
		return Session{}, apperr.Unauthorized()
	}
	if err != nil {
		return Session{}, apperr.Internal(err)
	}
	if client.PasswordSalt == "" || client.PasswordHash == "" || !auth.VerifyPassword(password, client.PasswordSalt, client.PasswordHash) {
		s.Logger.LogSecurity("CLIENT_LOGIN_FAILED", fmt.Sprintf("Rejected login of client %d", client.ID))
		return Session{}, apperr.Unauthorized()
	}
	return s.session(client)
}

func (s *Service) Profile(ctx context.Context, clientID int64) (ClientDTO, error) {
	client, err := s.client(ctx, clientID)
	if err != nil {
		return ClientDTO{}, err
	}
	return clientDTO(client), nil
}

type ProfileInput struct {
	Name         *string      `json:"name"`
	RestaurantID *json.Number `json:"restaurantId"`
}

// UpdateProfile renames the client and, when a restaurant is given, pushes the new
// name to that restaurant's POS. posterOK reports the POS outcome.
func (s *Service) UpdateProfile(ctx context.Context, clientID int64, in ProfileInput) (name string, posterOK bool, err error) {
	name = trimmed(in.Name)
	if name == "" {
		return "", false, apperr.BadRequest("")
	}
	if err := s.Store.UpdateClientName(ctx, clientID, name); err != nil {
		return "", false, apperr.Internal(err)
	}
	if in.RestaurantID == nil || s.Profiles == nil {
		return name, false, nil
	}
	if restaurantID, err := in.RestaurantID.Int64(); err == nil {
		posterOK = s.Profiles.SyncClientProfile(ctx, clientID, restaurantID)
	}
	return name, posterOK, nil
}

type PasswordChange struct {
	OldPassword *string `json:"oldPassword"`
	NewPassword *string `json:"newPassword"`
}

// ChangePassword requires the current password; a mismatch is 401.
func (s *Service) ChangePassword(ctx context.Context, clientID int64, in PasswordChange) error {
	oldPassword, newPassword := trimmed(in.OldPassword), trimmed(in.NewPassword)
	if oldPassword == "" || newPassword == "" {
		return apperr.BadRequest("")
	}
	client, err := s.Store.GetClient(ctx, clientID)
	if errors.Is(err, db.ErrNotFound) {
		return apperr.BadRequest("")
	}
	if err != nil {
		return apperr.Internal(err)
	}
	if client.PasswordSalt == "" || client.PasswordHash == "" {
		return apperr.BadRequest("")
	}
	if !auth.VerifyPassword(oldPassword, client.PasswordSalt, client.PasswordHash) {
		return apperr.Unauthorized()
	}
	salt, hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return apperr.Internal(err)
	}
	if _, err := s.Store.UpdateClientPassword(ctx, clientID, salt, hash); err != nil {
		return apperr.Internal(err)
	}
	return nil
}
