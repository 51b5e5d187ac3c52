package menu

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"ms-restaurant/internal/apperr"
	"ms-restaurant/internal/db"
	"ms-restaurant/internal/models"
	"ms-restaurant/internal/poster"
)

const (
	ScopeAll        = "all"
	ScopeCategories = "categories"
	ScopeItems      = "items"
)

type SyncOptions struct {
	Scope          string `json:"scope"`
	OverwriteNames bool   `json:"overwriteNames"`
}

type SyncResult struct {
	CategoryCount int `json:"categoryCount"`
	ProductCount  int `json:"productCount"`
}

func syncError(message string) error {
	return &apperr.Error{Status: http.StatusBadRequest, Payload: message}
}

// load fetches one catalog list. The second value is the provider error, "" on success.
func load(ctx context.Context, fetch func(ctx context.Context, token, spotID string) (*poster.Response, error), token, spotID string) (any, string) {
	resp, err := fetch(ctx, token, spotID)
	if err != nil || resp.Data == nil {
		return nil, "Poster request failed."
	}
	return resp.Data, resp.APIError()
}

// Sync pulls the POS catalog into the local menu in one transaction. Local names win
// over POS names unless OverwriteNames is set; hidden flags are never touched.
func (s *Service) Sync(ctx context.Context, restaurantID int64, opts SyncOptions) (SyncResult, error) {
	scope := strings.TrimSpace(opts.Scope)
	if scope == "" {
		scope = ScopeAll
	}
	if scope != ScopeAll && scope != ScopeCategories && scope != ScopeItems {
		return SyncResult{}, apperr.BadRequest("")
	}

	token, spotID, err := s.posterRestaurant(ctx, restaurantID)
	if err != nil {
		return SyncResult{}, err
	}

	var categories []poster.CatalogCategory
	var products []poster.CatalogProduct
	if scope != ScopeItems {
		data, apiErr := load(ctx, s.POS.GetCategories, token, spotID)
		if apiErr != "" {
			return SyncResult{}, syncError("Poster categories error: " + apiErr)
		}
		categories = poster.ParseCategories(data)
		if len(poster.ExtractArray(data, "categories")) == 0 {
			return SyncResult{}, syncError("Poster returned no categories.")
		}
	}
	if scope != ScopeCategories {
		data, apiErr := load(ctx, s.POS.GetProducts, token, spotID)
		if apiErr != "" {
			return SyncResult{}, syncError("Poster products error: " + apiErr)
		}
		products = poster.ParseProducts(data, spotID)
		if len(poster.ExtractArray(data, "products")) == 0 {
			return SyncResult{}, syncError("Poster returned no products.")
		}
	}

	var result SyncResult
	err = s.Store.RunInTx(ctx, func(ctx context.Context, tx *db.DB) error {
		result = SyncResult{}
		w := &syncWriter{tx: tx, restaurantID: restaurantID, overwrite: opts.OverwriteNames,
			bySource: map[string]int64{}, byName: map[string]int64{}}
		for _, category := range categories {
			if err := w.category(ctx, category); err != nil {
				return err
			}
			result.CategoryCount++
		}
		if len(categories) == 0 {
			if err := w.loadExisting(ctx); err != nil {
				return err
			}
		}
		for _, product := range products {
			ok, err := w.product(ctx, product)
			if err != nil {
				return err
			}
			if ok {
				result.ProductCount++
			}
		}
		return nil
	})
	if err != nil {
		return SyncResult{}, apperr.Internal(fmt.Errorf("menu sync for restaurant %d: %w", restaurantID, err))
	}

	s.Logger.Info("MENU", fmt.Sprintf("Synced restaurant %d (%s): %d categories, %d products",
		restaurantID, scope, result.CategoryCount, result.ProductCount))
	return result, nil
}

type syncWriter struct {
	tx           *db.DB
	restaurantID int64
	overwrite    bool
	bySource     map[string]int64
	byName       map[string]int64
}

// keepName returns the stored name unless it is blank or names are overwritten.
func (w *syncWriter) keepName(stored, incoming string) string {
	if w.overwrite || strings.TrimSpace(stored) == "" {
		return incoming
	}
	return stored
}

func (w *syncWriter) category(ctx context.Context, c poster.CatalogCategory) error {
	existing, err := w.tx.FindSourceCategory(ctx, w.restaurantID, models.SourcePoster, c.SourceID)
	switch {
	case errors.Is(err, db.ErrNotFound):
		row := &models.MenuCategory{
			RestaurantID: w.restaurantID,
			NameRu:       c.Name,
			NameUz:       c.Name,
			Image:        c.Image,
			SortOrder:    c.SortOrder,
			Source:       models.SourcePoster,
			SourceID:     c.SourceID,
		}
		if err := w.tx.InsertCategory(ctx, row); err != nil {
			return fmt.Errorf("insert category %s: %w", c.SourceID, err)
		}
		existing = row
	case err != nil:
		return err
	default:
		fields := db.Fields{
			"name_ru":    w.keepName(existing.NameRu, c.Name),
			"name_uz":    w.keepName(existing.NameUz, c.Name),
			"sort_order": c.SortOrder,
		}
		if c.Image != "" {
			fields["image"] = c.Image
		}
		if _, err := w.tx.UpdateCategory(ctx, existing.ID, fields); err != nil {
			return fmt.Errorf("update category %d: %w", existing.ID, err)
		}
	}
	w.bySource[c.SourceID] = existing.ID
	w.byName[strings.ToLower(c.Name)] = existing.ID
	return nil
}

// loadExisting maps the already synced categories when the reply carried none.
func (w *syncWriter) loadExisting(ctx context.Context) error {
	rows, err := w.tx.ListSourceCategories(ctx, w.restaurantID, models.SourcePoster)
	if err != nil {
		return err
	}
	for _, row := range rows {
		w.bySource[row.SourceID] = row.ID
	}
	return nil
}

// product upserts one product. It reports false when no local category matches.
func (w *syncWriter) product(ctx context.Context, p poster.CatalogProduct) (bool, error) {
	categoryID := w.bySource[p.CategorySourceID]
	if categoryID == 0 && p.CategoryName != "" {
		categoryID = w.byName[strings.ToLower(p.CategoryName)]
	}
	if categoryID == 0 {
		return false, nil
	}

	existing, err := w.tx.FindSourceItem(ctx, categoryID, models.SourcePoster, p.SourceID)
	switch {
	case errors.Is(err, db.ErrNotFound):
		row := &models.MenuItem{
			CategoryID: categoryID,
			NameRu:     p.Name,
			NameUz:     p.Name,
			Price:      p.Price,
			Image:      p.Image,
			SortOrder:  p.SortOrder,
			Source:     models.SourcePoster,
			SourceID:   p.SourceID,
		}
		if err := w.tx.InsertMenuItem(ctx, row); err != nil {
			return false, fmt.Errorf("insert product %s: %w", p.SourceID, err)
		}
	case err != nil:
		return false, err
	default:
		fields := db.Fields{
			"name_ru":    w.keepName(existing.NameRu, p.Name),
			"name_uz":    w.keepName(existing.NameUz, p.Name),
			"price":      p.Price,
			"sort_order": p.SortOrder,
		}
		if p.Image != "" {
			fields["image"] = p.Image
		}
		if _, err := w.tx.UpdateMenuItem(ctx, existing.ID, fields); err != nil {
			return false, fmt.Errorf("update product %d: %w", existing.ID, err)
		}
	}
	return true, nil
}
