package db

import (
	"context"

	"ms-restaurant/internal/models"
)

// ---------------- RESTAURANTS ----------------

func (d *DB) ListRestaurants(ctx context.Context) ([]models.Restaurant, error) {
	restaurants := []models.Restaurant{}
	err := d.Bun.NewSelect().Model(&restaurants).OrderExpr("id DESC").Scan(ctx)
	return restaurants, err
}

func (d *DB) GetRestaurant(ctx context.Context, id int64) (*models.Restaurant, error) {
	var restaurant models.Restaurant
	err := d.Bun.NewSelect().Model(&restaurant).Where("id = ?", id).Limit(1).Scan(ctx)
	if err != nil {
		return nil, notFound(err)
	}
	return &restaurant, nil
}

func (d *DB) GetRestaurantByPosterToken(ctx context.Context, token string) (*models.Restaurant, error) {
	var restaurant models.Restaurant
	err := d.Bun.NewSelect().Model(&restaurant).Where("token_poster = ?", token).Limit(1).Scan(ctx)
	if err != nil {
		return nil, notFound(err)
	}
	return &restaurant, nil
}

// CreateRestaurant inserts the restaurant and its default fees in one transaction.
func (d *DB) CreateRestaurant(ctx context.Context, restaurant *models.Restaurant, fees []models.RestaurantFee) error {
	return d.RunInTx(ctx, func(ctx context.Context, tx *DB) error {
		if _, err := tx.Bun.NewInsert().Model(restaurant).Exec(ctx); err != nil {
			return err
		}
		if len(fees) == 0 {
			return nil
		}
		for i := range fees {
			fees[i].RestaurantID = restaurant.ID
		}
		_, err := tx.Bun.NewInsert().Model(&fees).Exec(ctx)
		return err
	})
}

func (d *DB) UpdateRestaurant(ctx context.Context, id int64, fields Fields) (bool, error) {
	n, err := d.updateFields(ctx, "restaurants", id, fields)
	return n > 0, err
}

func (d *DB) SetRestaurantOpen(ctx context.Context, id int64, open bool, status string) error {
	_, err := d.Bun.NewUpdate().Table("restaurants").
		Set("open = ?", open).
		Set("status = ?", status).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

func (d *DB) DeleteRestaurant(ctx context.Context, id int64) (bool, error) {
	res, err := d.Bun.NewDelete().Model((*models.Restaurant)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// ---------------- FEES ----------------

func (d *DB) ListFees(ctx context.Context, restaurantID int64) ([]models.RestaurantFee, error) {
	fees := []models.RestaurantFee{}
	err := d.Bun.NewSelect().Model(&fees).
		Where("restaurant_id = ?", restaurantID).
		OrderExpr("is_default DESC, id ASC").
		Scan(ctx)
	return fees, err
}

func (d *DB) GetFee(ctx context.Context, id int64) (*models.RestaurantFee, error) {
	var fee models.RestaurantFee
	err := d.Bun.NewSelect().Model(&fee).Where("id = ?", id).Limit(1).Scan(ctx)
	if err != nil {
		return nil, notFound(err)
	}
	return &fee, nil
}

func (d *DB) CreateFee(ctx context.Context, fee *models.RestaurantFee) error {
	_, err := d.Bun.NewInsert().Model(fee).Exec(ctx)
	return err
}

func (d *DB) UpdateFee(ctx context.Context, id int64, fields Fields) (bool, error) {
	n, err := d.updateFields(ctx, "restaurant_fees", id, fields)
	return n > 0, err
}

func (d *DB) DeleteFee(ctx context.Context, id int64) error {
	_, err := d.Bun.NewDelete().Model((*models.RestaurantFee)(nil)).Where("id = ?", id).Exec(ctx)
	return err
}
