package menu

import (
	"context"

	"ms-restaurant/internal/apperr"
	"ms-restaurant/internal/models"
	"ms-restaurant/internal/poster"
)

type ItemDTO struct {
	ID            int64   `json:"id"`
	NameRu        string  `json:"nameRu"`
	NameUz        string  `json:"nameUz"`
	Name          string  `json:"name"`
	DescriptionRu string  `json:"descriptionRu"`
	DescriptionUz string  `json:"descriptionUz"`
	Description   string  `json:"description"`
	Price         float64 `json:"price"`
	Image         string  `json:"image"`
	Hidden        bool    `json:"hidden"`
}

type CategoryDTO struct {
	ID     int64     `json:"id"`
	NameRu string    `json:"nameRu"`
	NameUz string    `json:"nameUz"`
	Name   string    `json:"name"`
	Hidden bool      `json:"hidden"`
	Image  string    `json:"image"`
	Items  []ItemDTO `json:"items"`
}

// LocalizedItem is the item shape of a menu read with an explicit language.
type LocalizedItem struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Image       string  `json:"image"`
	Hidden      bool    `json:"hidden"`
}

type LocalizedCategory struct {
	ID     int64           `json:"id"`
	Name   string          `json:"name"`
	Hidden bool            `json:"hidden"`
	Image  string          `json:"image"`
	Items  []LocalizedItem `json:"items"`
}

func pick(lang, ru, uz string) string {
	if lang == "uz" {
		return uz
	}
	return ru
}

// Read returns the menu of a restaurant ordered by sort order. With lang "ru" or "uz"
// the result carries only the localized fields. A category without an image borrows
// the first item image.
func (s *Service) Read(ctx context.Context, restaurantID int64, lang string, includeHidden bool) (any, error) {
	categories, err := s.Store.ListCategories(ctx, restaurantID, includeHidden)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	ids := make([]int64, 0, len(categories))
	for _, c := range categories {
		ids = append(ids, c.ID)
	}
	items, err := s.Store.ListItemsByCategories(ctx, ids, includeHidden)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	byCategory := map[int64][]models.MenuItem{}
	for _, item := range items {
		byCategory[item.CategoryID] = append(byCategory[item.CategoryID], item)
	}

	full := make([]CategoryDTO, 0, len(categories))
	for _, c := range categories {
		dto := CategoryDTO{
			ID:     c.ID,
			NameRu: c.NameRu,
			NameUz: c.NameUz,
			Name:   pick(lang, c.NameRu, c.NameUz),
			Hidden: c.Hidden,
			Image:  poster.NormalizeImageURL(c.Image),
			Items:  []ItemDTO{},
		}
		for _, item := range byCategory[c.ID] {
			dto.Items = append(dto.Items, ItemDTO{
				ID:            item.ID,
				NameRu:        item.NameRu,
				NameUz:        item.NameUz,
				Name:          pick(lang, item.NameRu, item.NameUz),
				DescriptionRu: item.DescriptionRu,
				DescriptionUz: item.DescriptionUz,
				Description:   pick(lang, item.DescriptionRu, item.DescriptionUz),
				Price:         item.Price,
				Image:         poster.NormalizeImageURL(item.Image),
				Hidden:        item.Hidden,
			})
		}
		if dto.Image == "" {
			for _, item := range dto.Items {
				if item.Image != "" {
					dto.Image = item.Image
					break
				}
			}
		}
		full = append(full, dto)
	}

	if lang != "ru" && lang != "uz" {
		return full, nil
	}
	localized := make([]LocalizedCategory, 0, len(full))
	for _, c := range full {
		lc := LocalizedCategory{ID: c.ID, Name: c.Name, Hidden: c.Hidden, Image: c.Image, Items: []LocalizedItem{}}
		for _, item := range c.Items {
			lc.Items = append(lc.Items, LocalizedItem{
				ID: item.ID, Name: item.Name, Description: item.Description,
				Price: item.Price, Image: item.Image, Hidden: item.Hidden,
			})
		}
		localized = append(localized, lc)
	}
	return localized, nil
}
