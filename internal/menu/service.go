// Package menu serves the restaurant catalog and pulls it from the POS.
package menu

import (
	"context"
	"errors"
	"strings"

	"ms-restaurant/internal/apperr"
	"ms-restaurant/internal/db"
	"ms-restaurant/internal/logger"
	"ms-restaurant/internal/models"
	"ms-restaurant/internal/poster"
)

// Store is the persistence the menu needs. *db.DB implements it.
type Store interface {
	GetRestaurant(ctx context.Context, id int64) (*models.Restaurant, error)
	ListCategories(ctx context.Context, restaurantID int64, includeHidden bool) ([]models.MenuCategory, error)
	ListItemsByCategories(ctx context.Context, categoryIDs []int64, includeHidden bool) ([]models.MenuItem, error)
	UpdateCategory(ctx context.Context, id int64, fields db.Fields) (bool, error)
	UpdateMenuItem(ctx context.Context, id int64, fields db.Fields) (bool, error)
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx *db.DB) error) error
}

// Catalog is the POS menu API. *poster.Client implements it.
type Catalog interface {
	GetCategories(ctx context.Context, token, spotID string) (*poster.Response, error)
	GetProducts(ctx context.Context, token, spotID string) (*poster.Response, error)
}

type Service struct {
	Store  Store
	POS    Catalog
	Logger *logger.Logger
}

func NewService(store Store, pos Catalog, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Discard()
	}
	return &Service{Store: store, POS: pos, Logger: log}
}

// CategoryPatch carries the editable category fields; nil fields are left untouched.
type CategoryPatch struct {
	Hidden *bool   `json:"hidden"`
	NameRu *string `json:"nameRu"`
	NameUz *string `json:"nameUz"`
}

func (p CategoryPatch) fields() db.Fields {
	fields := db.Fields{}
	if p.Hidden != nil {
		fields["hidden"] = *p.Hidden
	}
	setTrimmed(fields, "name_ru", p.NameRu)
	setTrimmed(fields, "name_uz", p.NameUz)
	return fields
}

// ItemPatch adds the descriptions to the category fields.
type ItemPatch struct {
	CategoryPatch
	DescriptionRu *string `json:"descriptionRu"`
	DescriptionUz *string `json:"descriptionUz"`
}

func (p ItemPatch) fields() db.Fields {
	fields := p.CategoryPatch.fields()
	setTrimmed(fields, "description_ru", p.DescriptionRu)
	setTrimmed(fields, "description_uz", p.DescriptionUz)
	return fields
}

func setTrimmed(fields db.Fields, column string, value *string) {
	if value != nil {
		fields[column] = strings.TrimSpace(*value)
	}
}

func (s *Service) PatchCategory(ctx context.Context, id int64, patch CategoryPatch) error {
	return applyPatch(ctx, id, patch.fields(), s.Store.UpdateCategory)
}

func (s *Service) PatchItem(ctx context.Context, id int64, patch ItemPatch) error {
	return applyPatch(ctx, id, patch.fields(), s.Store.UpdateMenuItem)
}

func applyPatch(ctx context.Context, id int64, fields db.Fields, update func(context.Context, int64, db.Fields) (bool, error)) error {
	if len(fields) == 0 {
		return apperr.BadRequest("")
	}
	found, err := update(ctx, id, fields)
	if err != nil {
		return apperr.Internal(err)
	}
	if !found {
		return apperr.NotFound("")
	}
	return nil
}

// posterRestaurant returns the restaurant with its trimmed POS token and spot.
func (s *Service) posterRestaurant(ctx context.Context, id int64) (token, spotID string, err error) {
	restaurant, err := s.Store.GetRestaurant(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return "", "", apperr.NotFound("")
	}
	if err != nil {
		return "", "", apperr.Internal(err)
	}
	token = strings.TrimSpace(restaurant.TokenPoster)
	if restaurant.Integration() != models.IntegrationPoster || token == "" {
		return "", "", apperr.BadRequest("")
	}
	return token, strings.TrimSpace(restaurant.SpotID), nil
}
