package db

import (
	"context"

	"ms-restaurant/internal/models"
	"ms-restaurant/internal/utils"
)

// ---------------- CLIENTS ----------------

func (d *DB) GetClient(ctx context.Context, id int64) (*models.Client, error) {
	var client models.Client
	err := d.Bun.NewSelect().Model(&client).Where("id = ?", id).Limit(1).Scan(ctx)
	if err != nil {
		return nil, notFound(err)
	}
	return &client, nil
}

func (d *DB) GetClientByPhone(ctx context.Context, phone string) (*models.Client, error) {
	var client models.Client
	err := d.Bun.NewSelect().Model(&client).Where("phone = ?", phone).Limit(1).Scan(ctx)
	if err != nil {
		return nil, notFound(err)
	}
	return &client, nil
}

// CreateClient fails with a unique violation when the phone is taken.
func (d *DB) CreateClient(ctx context.Context, client *models.Client) error {
	_, err := d.Bun.NewInsert().Model(client).Exec(ctx)
	return err
}

func (d *DB) ListClients(ctx context.Context) ([]models.Client, error) {
	var clients []models.Client
	err := d.Bun.NewSelect().Model(&clients).OrderExpr("id DESC").Scan(ctx)
	return clients, err
}

func (d *DB) UpdateClientName(ctx context.Context, id int64, name string) error {
	_, err := d.Bun.NewUpdate().Table("clients").
		Set("name = ?", nullString(name)).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

// UpdateClientPassword returns false when the client does not exist.
func (d *DB) UpdateClientPassword(ctx context.Context, id int64, salt, hash string) (bool, error) {
	res, err := d.Bun.NewUpdate().Table("clients").
		Set("password_salt = ?", salt).
		Set("password_hash = ?", hash).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// UpsertClientCredentials creates the client or resets its password and name.
// It reports whether a new row was inserted.
func (d *DB) UpsertClientCredentials(ctx context.Context, phone, name, salt, hash string) (bool, error) {
	existing, err := d.GetClientByPhone(ctx, phone)
	switch {
	case err == nil:
		_, err = d.Bun.NewUpdate().Table("clients").
			Set("password_salt = ?", salt).
			Set("password_hash = ?", hash).
			Set("name = COALESCE(?, name)", nullString(name)).
			Where("id = ?", existing.ID).
			Exec(ctx)
		return false, err
	case err != ErrNotFound:
		return false, err
	}
	client := &models.Client{
		Phone:        phone,
		Name:         name,
		PasswordHash: hash,
		PasswordSalt: salt,
		CreatedAt:    utils.Now(),
	}
	return true, d.CreateClient(ctx, client)
}

// RecordClientOrder bumps the order counter and last order time.
func (d *DB) RecordClientOrder(ctx context.Context, id int64, at string) error {
	_, err := d.Bun.NewUpdate().Table("clients").
		Set("orders_count = COALESCE(orders_count, 0) + 1").
		Set("last_order_at = ?", at).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

// ---------------- ADDRESSES ----------------

func (d *DB) ListClientAddresses(ctx context.Context, clientID int64) ([]models.ClientAddress, error) {
	addresses := []models.ClientAddress{}
	err := d.Bun.NewSelect().Model(&addresses).
		Where("client_id = ?", clientID).
		OrderExpr("id DESC").
		Scan(ctx)
	return addresses, err
}

func (d *DB) CreateClientAddress(ctx context.Context, clientID int64, title, address string) (*models.ClientAddress, error) {
	row := &models.ClientAddress{
		ClientID:  clientID,
		Title:     title,
		Address:   address,
		CreatedAt: utils.Now(),
	}
	if _, err := d.Bun.NewInsert().Model(row).Exec(ctx); err != nil {
		return nil, err
	}
	return row, nil
}

// DeleteClientAddress returns false when no address matched both ids.
func (d *DB) DeleteClientAddress(ctx context.Context, id, clientID int64) (bool, error) {
	res, err := d.Bun.NewDelete().Model((*models.ClientAddress)(nil)).
		Where("id = ?", id).
		Where("client_id = ?", clientID).
		Exec(ctx)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
