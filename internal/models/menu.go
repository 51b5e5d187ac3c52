package models

import (
	"github.com/uptrace/bun"
)

const SourcePoster = "poster"

type MenuCategory struct {
	bun.BaseModel `bun:"table:menu_categories,alias:mc"`

	ID           int64  `bun:"id,pk,autoincrement"`
	RestaurantID int64  `bun:"restaurant_id,notnull"`
	NameRu       string `bun:"name_ru,notnull"`
	NameUz       string `bun:"name_uz,notnull"`
	Image        string `bun:"image,nullzero"`
	Hidden       bool   `bun:"hidden,notnull"`
	SortOrder    int    `bun:"sort_order,notnull"`
	Source       string `bun:"source,nullzero"`
	SourceID     string `bun:"source_id,nullzero"`
}

type MenuItem struct {
	bun.BaseModel `bun:"table:menu_items,alias:mi"`

	ID            int64   `bun:"id,pk,autoincrement"`
	CategoryID    int64   `bun:"category_id,notnull"`
	NameRu        string  `bun:"name_ru,notnull"`
	NameUz        string  `bun:"name_uz,notnull"`
	DescriptionRu string  `bun:"description_ru,nullzero"`
	DescriptionUz string  `bun:"description_uz,nullzero"`
	Price         float64 `bun:"price,notnull"`
	Image         string  `bun:"image,nullzero"`
	Hidden        bool    `bun:"hidden,notnull"`
	SortOrder     int     `bun:"sort_order,notnull"`
	Source        string  `bun:"source,nullzero"`
	SourceID      string  `bun:"source_id,nullzero"`
}
