package restaurant

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"

	"ms-restaurant/internal/apperr"
	"ms-restaurant/internal/db"
	"ms-restaurant/internal/models"
)

func (s *Service) ListFees(ctx context.Context, restaurantID int64) ([]models.RestaurantFee, error) {
	fees, err := s.Store.ListFees(ctx, restaurantID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return fees, nil
}

type FeeInput struct {
	Title       *string      `json:"title"`
	Description *string      `json:"description"`
	Price       *json.Number `json:"price"`
}

func (in FeeInput) price() (float64, bool) {
	if in.Price == nil {
		return 0, false
	}
	f, err := in.Price.Float64()
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func trimmed(value *string) string {
	if value == nil {
		return ""
	}
	return strings.TrimSpace(*value)
}

// CreateFee adds a deletable fee. A missing price is 0.
func (s *Service) CreateFee(ctx context.Context, restaurantID int64, in FeeInput) (int64, error) {
	title := trimmed(in.Title)
	price, ok := in.price()
	if in.Price != nil && !ok {
		return 0, apperr.BadRequest("")
	}
	if title == "" {
		return 0, apperr.BadRequest("")
	}
	fee := &models.RestaurantFee{
		RestaurantID: restaurantID,
		Title:        title,
		Description:  trimmed(in.Description),
		Price:        price,
	}
	if err := s.Store.CreateFee(ctx, fee); err != nil {
		return 0, apperr.Internal(err)
	}
	return fee.ID, nil
}

func (s *Service) UpdateFee(ctx context.Context, id int64, in FeeInput) error {
	fields := db.Fields{}
	if in.Title != nil {
		fields["title"] = trimmed(in.Title)
	}
	if in.Description != nil {
		fields["description"] = trimmed(in.Description)
	}
	if price, ok := in.price(); ok {
		fields["price"] = price
	}
	if len(fields) == 0 {
		return apperr.BadRequest("")
	}
	found, err := s.Store.UpdateFee(ctx, id, fields)
	if err != nil {
		return apperr.Internal(err)
	}
	if !found {
		return apperr.NotFound("")
	}
	return nil
}

// DeleteFee refuses default fees with 400.
func (s *Service) DeleteFee(ctx context.Context, id int64) error {
	fee, err := s.Store.GetFee(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return apperr.NotFound("")
	}
	if err != nil {
		return apperr.Internal(err)
	}
	if fee.IsDefault {
		return apperr.BadRequest("")
	}
	if err := s.Store.DeleteFee(ctx, id); err != nil {
		return apperr.Internal(err)
	}
	return nil
}
