package db

import (
	"context"

	"ms-restaurant/internal/models"

	"github.com/uptrace/bun"
)

// ---------------- MENU ----------------

// ListCategories orders by sort_order then id. Hidden rows are skipped unless includeHidden.
func (d *DB) ListCategories(ctx context.Context, restaurantID int64, includeHidden bool) ([]models.MenuCategory, error) {
	categories := []models.MenuCategory{}
	q := d.Bun.NewSelect().Model(&categories).Where("restaurant_id = ?", restaurantID)
	if !includeHidden {
		q = q.Where("hidden = 0")
	}
	err := q.OrderExpr("sort_order, id").Scan(ctx)
	return categories, err
}

func (d *DB) ListItemsByCategories(ctx context.Context, categoryIDs []int64, includeHidden bool) ([]models.MenuItem, error) {
	items := []models.MenuItem{}
	if len(categoryIDs) == 0 {
		return items, nil
	}
	q := d.Bun.NewSelect().Model(&items).Where("category_id IN (?)", bun.In(categoryIDs))
	if !includeHidden {
		q = q.Where("hidden = 0")
	}
	err := q.OrderExpr("sort_order, id").Scan(ctx)
	return items, err
}

// GetMenuItemsByIDs returns the catalog rows keyed by id.
func (d *DB) GetMenuItemsByIDs(ctx context.Context, ids []int64) (map[int64]models.MenuItem, error) {
	out := map[int64]models.MenuItem{}
	if len(ids) == 0 {
		return out, nil
	}
	var items []models.MenuItem
	err := d.Bun.NewSelect().Model(&items).Where("id IN (?)", bun.In(ids)).Scan(ctx)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		out[item.ID] = item
	}
	return out, nil
}

func (d *DB) UpdateCategory(ctx context.Context, id int64, fields Fields) (bool, error) {
	n, err := d.updateFields(ctx, "menu_categories", id, fields)
	return n > 0, err
}

func (d *DB) UpdateMenuItem(ctx context.Context, id int64, fields Fields) (bool, error) {
	n, err := d.updateFields(ctx, "menu_items", id, fields)
	return n > 0, err
}

// FindSourceCategory looks up a synced category by POS id.
func (d *DB) FindSourceCategory(ctx context.Context, restaurantID int64, source, sourceID string) (*models.MenuCategory, error) {
	var category models.MenuCategory
	err := d.Bun.NewSelect().Model(&category).
		Where("restaurant_id = ?", restaurantID).
		Where("source = ?", source).
		Where("source_id = ?", sourceID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, notFound(err)
	}
	return &category, nil
}

func (d *DB) ListSourceCategories(ctx context.Context, restaurantID int64, source string) ([]models.MenuCategory, error) {
	categories := []models.MenuCategory{}
	err := d.Bun.NewSelect().Model(&categories).
		Where("restaurant_id = ?", restaurantID).
		Where("source = ?", source).
		Scan(ctx)
	return categories, err
}

func (d *DB) FindSourceItem(ctx context.Context, categoryID int64, source, sourceID string) (*models.MenuItem, error) {
	var item models.MenuItem
	err := d.Bun.NewSelect().Model(&item).
		Where("category_id = ?", categoryID).
		Where("source = ?", source).
		Where("source_id = ?", sourceID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, notFound(err)
	}
	return &item, nil
}

func (d *DB) InsertCategory(ctx context.Context, category *models.MenuCategory) error {
	_, err := d.Bun.NewInsert().Model(category).Exec(ctx)
	return err
}

func (d *DB) InsertMenuItem(ctx context.Context, item *models.MenuItem) error {
	_, err := d.Bun.NewInsert().Model(item).Exec(ctx)
	return err
}
