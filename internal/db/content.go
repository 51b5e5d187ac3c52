package db

import (
	"context"
	"fmt"

	"ms-restaurant/internal/models"
	"ms-restaurant/internal/utils"

	"github.com/uptrace/bun"
)

// ---------------- BANNERS ----------------

func (d *DB) ListBanners(ctx context.Context, activeOnly bool) ([]models.Banner, error) {
	banners := []models.Banner{}
	q := d.Bun.NewSelect().Model(&banners)
	if activeOnly {
		q = q.Where("open = 1")
	}
	err := q.OrderExpr("sort_order ASC, id ASC").Scan(ctx)
	return banners, err
}

// CreateBanner appends the banner after the current last sort position.
func (d *DB) CreateBanner(ctx context.Context, banner *models.Banner) error {
	var maxSort int
	err := d.Bun.NewSelect().Table("banners").ColumnExpr("COALESCE(MAX(sort_order), 0)").Scan(ctx, &maxSort)
	if err != nil {
		return err
	}
	banner.SortOrder = maxSort + 1
	_, err = d.Bun.NewInsert().Model(banner).Exec(ctx)
	return err
}

func (d *DB) DeleteBanner(ctx context.Context, id int64) (bool, error) {
	res, err := d.Bun.NewDelete().Model((*models.Banner)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// ReorderBanners assigns sort_order 1..n following ids.
func (d *DB) ReorderBanners(ctx context.Context, ids []int64) error {
	return d.RunInTx(ctx, func(ctx context.Context, tx *DB) error {
		for i, id := range ids {
			_, err := tx.Bun.NewUpdate().Table("banners").
				Set("sort_order = ?", i+1).
				Where("id = ?", id).
				Exec(ctx)
			if err != nil {
				return fmt.Errorf("reorder banner %d: %w", id, err)
			}
		}
		return nil
	})
}

// ---------------- NEWSLETTERS ----------------

func (d *DB) CreateNewsletter(ctx context.Context, newsletter *models.Newsletter) error {
	_, err := d.Bun.NewInsert().Model(newsletter).Exec(ctx)
	return err
}

func (d *DB) ListNewsletters(ctx context.Context, channel, status string) ([]models.Newsletter, error) {
	newsletters := []models.Newsletter{}
	q := d.Bun.NewSelect().Model(&newsletters).Where("deleted_at IS NULL")
	if channel != "" {
		q = q.Where("channel = ?", channel)
	}
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.OrderExpr("created_at DESC, id DESC").Scan(ctx)
	return newsletters, err
}

// MarkNewslettersDelivered stamps ids as delivered at the given time.
func (d *DB) MarkNewslettersDelivered(ctx context.Context, ids []int64, at string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := d.Bun.NewUpdate().Table("newsletters").
		Set("status = ?", models.NewsletterDelivered).
		Set("delivered_at = ?", at).
		Where("id IN (?)", bun.In(ids)).
		Exec(ctx)
	return err
}

func (d *DB) SoftDeleteNewsletter(ctx context.Context, id int64) (bool, error) {
	res, err := d.Bun.NewUpdate().Table("newsletters").
		Set("deleted_at = ?", utils.Now()).
		Where("id = ?", id).
		Where("deleted_at IS NULL").
		Exec(ctx)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// ---------------- SETTINGS ----------------

// GetSettings returns trimmed values for keys; missing keys map to "".
func (d *DB) GetSettings(ctx context.Context, keys ...string) (map[string]string, error) {
	out := make(map[string]string, len(keys))
	for _, key := range keys {
		out[key] = ""
	}
	if len(keys) == 0 {
		return out, nil
	}
	var rows []models.Setting
	err := d.Bun.NewSelect().Model(&rows).Where("key IN (?)", bun.In(keys)).Scan(ctx)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.Key] = row.Value
	}
	return out, nil
}

func (d *DB) GetSetting(ctx context.Context, key string) (string, error) {
	values, err := d.GetSettings(ctx, key)
	if err != nil {
		return "", err
	}
	return values[key], nil
}

// UpsertSettings writes every key in one transaction.
func (d *DB) UpsertSettings(ctx context.Context, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	now := utils.Now()
	rows := make([]models.Setting, 0, len(values))
	for key, value := range values {
		rows = append(rows, models.Setting{Key: key, Value: value, UpdatedAt: now})
	}
	_, err := d.Bun.NewInsert().Model(&rows).
		On("CONFLICT (key) DO UPDATE").
		Set("value = EXCLUDED.value").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

// ---------------- TELEGRAM ----------------

func (d *DB) ListTelegramSettings(ctx context.Context) ([]models.TelegramSettings, error) {
	rows := []models.TelegramSettings{}
	err := d.Bun.NewSelect().Model(&rows).OrderExpr("restaurant_id").Scan(ctx)
	return rows, err
}

func (d *DB) GetTelegramSettings(ctx context.Context, restaurantID int64) (*models.TelegramSettings, error) {
	var row models.TelegramSettings
	err := d.Bun.NewSelect().Model(&row).Where("restaurant_id = ?", restaurantID).Limit(1).Scan(ctx)
	if err != nil {
		return nil, notFound(err)
	}
	return &row, nil
}

func (d *DB) UpsertTelegramSettings(ctx context.Context, row *models.TelegramSettings) error {
	_, err := d.Bun.NewInsert().Model(row).
		On("CONFLICT (restaurant_id) DO UPDATE").
		Set("chat_id = EXCLUDED.chat_id").
		Set("enabled = EXCLUDED.enabled").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}
