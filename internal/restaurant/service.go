// Package restaurant manages restaurants, their working schedule and fees.
package restaurant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ms-restaurant/internal/apperr"
	"ms-restaurant/internal/auth"
	"ms-restaurant/internal/db"
	"ms-restaurant/internal/logger"
	"ms-restaurant/internal/models"
)

type Store interface {
	ListRestaurants(ctx context.Context) ([]models.Restaurant, error)
	GetRestaurant(ctx context.Context, id int64) (*models.Restaurant, error)
	CreateRestaurant(ctx context.Context, restaurant *models.Restaurant, fees []models.RestaurantFee) error
	UpdateRestaurant(ctx context.Context, id int64, fields db.Fields) (bool, error)
	SetRestaurantOpen(ctx context.Context, id int64, open bool, status string) error
	DeleteRestaurant(ctx context.Context, id int64) (bool, error)

	ListFees(ctx context.Context, restaurantID int64) ([]models.RestaurantFee, error)
	GetFee(ctx context.Context, id int64) (*models.RestaurantFee, error)
	CreateFee(ctx context.Context, fee *models.RestaurantFee) error
	UpdateFee(ctx context.Context, id int64, fields db.Fields) (bool, error)
	DeleteFee(ctx context.Context, id int64) error
}

// Authorizer resolves admin capabilities. *auth.Service implements it.
type Authorizer interface {
	HasPermission(ctx context.Context, login string, perm auth.Permission) (bool, error)
}

type Service struct {
	Store    Store
	Auth     Authorizer
	Location *time.Location
	Logger   *logger.Logger
	Now      func() time.Time
}

// NewService evaluates schedules in loc; nil means UTC.
func NewService(store Store, authz Authorizer, loc *time.Location, log *logger.Logger) *Service {
	if loc == nil {
		loc = time.UTC
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Service{Store: store, Auth: authz, Location: loc, Logger: log, Now: time.Now}
}

func (s *Service) now() time.Time {
	return s.Now().In(s.Location)
}

// DefaultFees are seeded for every new restaurant and cannot be deleted.
func DefaultFees() []models.RestaurantFee {
	return []models.RestaurantFee{
		{Title: "Доставка", Description: "Стандартная стоимость доставки по городу.", Price: 15000, IsDefault: true},
		{Title: "Пакет", Description: "Стоимость упаковки и расходных материалов.", Price: 2000, IsDefault: true},
	}
}

type PublicDTO struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Address      string `json:"address"`
	Description  string `json:"description"`
	Status       string `json:"status"`
	Image        string `json:"image"`
	Logo         string `json:"logo"`
	Color        string `json:"color"`
	Open         bool   `json:"open"`
	AddedAt      string `json:"addedAt"`
	WorkStart    string `json:"workStart"`
	WorkEnd      string `json:"workEnd"`
	AutoSchedule bool   `json:"autoSchedule"`
}

// AdminDTO adds the integration credentials.
type AdminDTO struct {
	PublicDTO
	TokenPoster     string `json:"tokenPoster"`
	SpotID          string `json:"spotId"`
	IntegrationType string `json:"integrationType"`
	OnecBaseURL     string `json:"onecBaseUrl"`
	OnecAuthMethod  string `json:"onecAuthMethod"`
	OnecLogin       string `json:"onecLogin"`
	OnecPassword    string `json:"onecPassword"`
	OnecToken       string `json:"onecToken"`
}

func publicDTO(r models.Restaurant) PublicDTO {
	return PublicDTO{
		ID: r.ID, Name: r.Name, Address: r.Address, Description: r.Description,
		Status: r.Status, Image: r.Image, Logo: r.Logo, Color: r.Color, Open: r.Open,
		AddedAt: r.AddedAt, WorkStart: r.WorkStart, WorkEnd: r.WorkEnd, AutoSchedule: r.AutoSchedule,
	}
}

func adminDTO(r models.Restaurant) AdminDTO {
	return AdminDTO{
		PublicDTO:       publicDTO(r),
		TokenPoster:     r.TokenPoster,
		SpotID:          r.SpotID,
		IntegrationType: r.Integration(),
		OnecBaseURL:     r.OnecBaseURL,
		OnecAuthMethod:  r.OnecAuthMethod,
		OnecLogin:       r.OnecLogin,
		OnecPassword:    r.OnecPassword,
		OnecToken:       r.OnecToken,
	}
}

// List returns restaurants newest first after applying auto schedules.
// Admins get AdminDTO rows, everyone else PublicDTO rows.
func (s *Service) List(ctx context.Context, admin bool) (any, error) {
	rows, err := s.Store.ListRestaurants(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	now := s.now()
	for i := range rows {
		row := &rows[i]
		if !row.AutoSchedule {
			continue
		}
		open, ok := ScheduledOpen(row.WorkStart, row.WorkEnd, now)
		if !ok || open == row.Open {
			continue
		}
		row.Open, row.Status = open, statusFor(open)
		if err := s.Store.SetRestaurantOpen(ctx, row.ID, row.Open, row.Status); err != nil {
			return nil, apperr.Internal(err)
		}
		s.Logger.Info("SCHEDULE", fmt.Sprintf("Restaurant %d switched to %q", row.ID, row.Status))
	}

	if admin {
		out := make([]AdminDTO, 0, len(rows))
		for _, row := range rows {
			out = append(out, adminDTO(row))
		}
		return out, nil
	}
	out := make([]PublicDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, publicDTO(row))
	}
	return out, nil
}

// CreateInput carries the create body. Nil fields take their defaults.
type CreateInput struct {
	Name            string  `json:"name"`
	Address         string  `json:"address"`
	Description     string  `json:"description"`
	Status          *string `json:"status"`
	Image           *string `json:"image"`
	Logo            string  `json:"logo"`
	Color           *string `json:"color"`
	AddedAt         *string `json:"addedAt"`
	TokenPoster     string  `json:"tokenPoster"`
	SpotID          string  `json:"spotId"`
	IntegrationType *string `json:"integrationType"`
	WorkStart       string  `json:"workStart"`
	WorkEnd         string  `json:"workEnd"`
	AutoSchedule    bool    `json:"autoSchedule"`
	OnecBaseURL     string  `json:"onecBaseUrl"`
	OnecAuthMethod  string  `json:"onecAuthMethod"`
	OnecLogin       string  `json:"onecLogin"`
	OnecPassword    string  `json:"onecPassword"`
	OnecToken       string  `json:"onecToken"`
}

func orDefault(value *string, fallback string) string {
	if value == nil {
		return fallback
	}
	return strings.TrimSpace(*value)
}

func (s *Service) require(ctx context.Context, login string, perms ...auth.Permission) error {
	for _, perm := range perms {
		ok, err := s.Auth.HasPermission(ctx, login, perm)
		if err != nil {
			return apperr.Internal(err)
		}
		if ok {
			return nil
		}
	}
	return apperr.Forbidden()
}

// Create inserts a restaurant with the default fees and returns its id.
func (s *Service) Create(ctx context.Context, login string, in CreateInput) (int64, error) {
	if err := s.require(ctx, login, auth.PermAddRestaurants); err != nil {
		return 0, err
	}
	r := &models.Restaurant{
		Name:            strings.TrimSpace(in.Name),
		Address:         strings.TrimSpace(in.Address),
		Description:     strings.TrimSpace(in.Description),
		Status:          orDefault(in.Status, StatusOpen),
		Image:           orDefault(in.Image, "/logo_green.png"),
		Logo:            strings.TrimSpace(in.Logo),
		Color:           orDefault(in.Color, "#1a6b3a"),
		AddedAt:         orDefault(in.AddedAt, s.now().Format("2006-01-02")),
		TokenPoster:     strings.TrimSpace(in.TokenPoster),
		SpotID:          strings.TrimSpace(in.SpotID),
		IntegrationType: orDefault(in.IntegrationType, models.IntegrationPoster),
		WorkStart:       strings.TrimSpace(in.WorkStart),
		WorkEnd:         strings.TrimSpace(in.WorkEnd),
		AutoSchedule:    in.AutoSchedule,
		OnecBaseURL:     strings.TrimSpace(in.OnecBaseURL),
		OnecAuthMethod:  strings.TrimSpace(in.OnecAuthMethod),
		OnecLogin:       strings.TrimSpace(in.OnecLogin),
		OnecPassword:    strings.TrimSpace(in.OnecPassword),
		OnecToken:       strings.TrimSpace(in.OnecToken),
	}
	if r.Name == "" || r.Address == "" || r.Description == "" {
		return 0, apperr.BadRequest("")
	}
	r.Open = r.Status == StatusOpen
	if r.AutoSchedule {
		if open, ok := ScheduledOpen(r.WorkStart, r.WorkEnd, s.now()); ok {
			r.Open, r.Status = open, statusFor(open)
		}
	}

	if err := s.Store.CreateRestaurant(ctx, r, DefaultFees()); err != nil {
		return 0, apperr.Internal(fmt.Errorf("create restaurant: %w", err))
	}
	s.Logger.LogSecurity("RESTAURANT_CREATED", fmt.Sprintf("%q created restaurant %d %q", login, r.ID, r.Name))
	return r.ID, nil
}

// Patch carries the editable fields; nil fields are left untouched.
type Patch struct {
	Name            *string `json:"name"`
	Address         *string `json:"address"`
	Description     *string `json:"description"`
	Status          *string `json:"status"`
	WorkStart       *string `json:"workStart"`
	WorkEnd         *string `json:"workEnd"`
	AutoSchedule    *bool   `json:"autoSchedule"`
	Image           *string `json:"image"`
	Logo            *string `json:"logo"`
	Color           *string `json:"color"`
	AddedAt         *string `json:"addedAt"`
	TokenPoster     *string `json:"tokenPoster"`
	SpotID          *string `json:"spotId"`
	IntegrationType *string `json:"integrationType"`
	OnecBaseURL     *string `json:"onecBaseUrl"`
	OnecAuthMethod  *string `json:"onecAuthMethod"`
	OnecLogin       *string `json:"onecLogin"`
	OnecPassword    *string `json:"onecPassword"`
	OnecToken       *string `json:"onecToken"`
}

// editFields are the fields behind edit_restaurants; status alone needs change_restaurant_status.
func (p Patch) editFields() db.Fields {
	fields := db.Fields{}
	for column, value := range map[string]*string{
		"name": p.Name, "address": p.Address, "description": p.Description,
		"work_start": p.WorkStart, "work_end": p.WorkEnd, "image": p.Image,
		"logo": p.Logo, "color": p.Color, "added_at": p.AddedAt,
		"token_poster": p.TokenPoster, "spot_id": p.SpotID, "integration_type": p.IntegrationType,
		"onec_base_url": p.OnecBaseURL, "onec_auth_method": p.OnecAuthMethod,
		"onec_login": p.OnecLogin, "onec_password": p.OnecPassword, "onec_token": p.OnecToken,
	} {
		if value != nil {
			fields[column] = strings.TrimSpace(*value)
		}
	}
	if p.AutoSchedule != nil {
		fields["auto_schedule"] = *p.AutoSchedule
	}
	return fields
}

func (p Patch) touchesSchedule() bool {
	return p.WorkStart != nil || p.WorkEnd != nil || p.AutoSchedule != nil
}

// Update applies patch. Schedule edits with auto schedule on recompute the open state.
func (s *Service) Update(ctx context.Context, login string, id int64, patch Patch) error {
	fields := patch.editFields()
	if len(fields) > 0 {
		if err := s.require(ctx, login, auth.PermEditRestaurants); err != nil {
			return err
		}
	}
	if patch.Status != nil {
		if err := s.require(ctx, login, auth.PermChangeRestaurantStatus, auth.PermEditRestaurants); err != nil {
			return err
		}
		status := strings.TrimSpace(*patch.Status)
		fields["status"] = status
		fields["open"] = status == StatusOpen
	}
	if len(fields) == 0 {
		return apperr.BadRequest("")
	}

	if patch.touchesSchedule() {
		current, err := s.Store.GetRestaurant(ctx, id)
		if errors.Is(err, db.ErrNotFound) {
			return apperr.NotFound("")
		}
		if err != nil {
			return apperr.Internal(err)
		}
		start, end, autoSchedule := current.WorkStart, current.WorkEnd, current.AutoSchedule
		if patch.WorkStart != nil {
			start = strings.TrimSpace(*patch.WorkStart)
		}
		if patch.WorkEnd != nil {
			end = strings.TrimSpace(*patch.WorkEnd)
		}
		if patch.AutoSchedule != nil {
			autoSchedule = *patch.AutoSchedule
		}
		if autoSchedule {
			if open, ok := ScheduledOpen(start, end, s.now()); ok {
				fields["open"] = open
				fields["status"] = statusFor(open)
			}
		}
	}

	found, err := s.Store.UpdateRestaurant(ctx, id, fields)
	if err != nil {
		return apperr.Internal(fmt.Errorf("update restaurant %d: %w", id, err))
	}
	if !found {
		return apperr.NotFound("")
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, login string, id int64) error {
	if err := s.require(ctx, login, auth.PermEditRestaurants); err != nil {
		return err
	}
	found, err := s.Store.DeleteRestaurant(ctx, id)
	if err != nil {
		return apperr.Internal(err)
	}
	if !found {
		return apperr.NotFound("")
	}
	s.Logger.LogSecurity("RESTAURANT_DELETED", fmt.Sprintf("%q deleted restaurant %d", login, id))
	return nil
}
