package models

import (
	"github.com/uptrace/bun"
)

type Client struct {
	bun.BaseModel `bun:"table:clients,alias:c"`

	ID           int64  `bun:"id,pk,autoincrement"`
	Phone        string `bun:"phone,notnull,unique"`
	Name         string `bun:"name,nullzero"`
	PasswordHash string `bun:"password_hash,notnull"`
	PasswordSalt string `bun:"password_salt,notnull"`
	CreatedAt    string `bun:"created_at,notnull"`
	OrdersCount  int64  `bun:"orders_count,notnull"`
	LastOrderAt  string `bun:"last_order_at,nullzero"`
}

type ClientAddress struct {
	bun.BaseModel `bun:"table:client_addresses,alias:ca"`

	ID        int64  `bun:"id,pk,autoincrement" json:"id"`
	ClientID  int64  `bun:"client_id,notnull" json:"-"`
	Title     string `bun:"title,nullzero" json:"title"`
	Address   string `bun:"address,notnull" json:"address"`
	CreatedAt string `bun:"created_at,notnull" json:"createdAt"`
}

type Employee struct {
	bun.BaseModel `bun:"table:employees,alias:e"`

	ID                        int64  `bun:"id,pk,autoincrement"`
	Name                      string `bun:"name,notnull"`
	Phone                     string `bun:"phone,notnull,unique"`
	Role                      string `bun:"role,nullzero"`
	Login                     string `bun:"login,nullzero,unique"`
	PasswordHash              string `bun:"password_hash,nullzero"`
	PasswordSalt              string `bun:"password_salt,nullzero"`
	CanEditRestaurants        bool   `bun:"can_edit_restaurants,notnull"`
	CanChangeRestaurantStatus bool   `bun:"can_change_restaurant_status,notnull"`
	CanManageEmployees        bool   `bun:"can_manage_employees,notnull"`
	CanAddRestaurants         bool   `bun:"can_add_restaurants,notnull"`
	CreatedAt                 string `bun:"created_at,notnull"`
}
