package models

import (
	"github.com/uptrace/bun"
)

const IntegrationPoster = "poster"

type Restaurant struct {
	bun.BaseModel `bun:"table:restaurants,alias:r"`

	ID              int64  `bun:"id,pk,autoincrement"`
	Name            string `bun:"name,notnull"`
	Address         string `bun:"address,notnull"`
	Description     string `bun:"description,notnull"`
	Status          string `bun:"status,notnull"`
	Image           string `bun:"image,notnull"`
	Logo            string `bun:"logo,nullzero"`
	Color           string `bun:"color,notnull"`
	Open            bool   `bun:"open,notnull"`
	AddedAt         string `bun:"added_at,notnull"`
	TokenPoster     string `bun:"token_poster,nullzero"`
	SpotID          string `bun:"spot_id,nullzero"`
	IntegrationType string `bun:"integration_type,nullzero"`
	OnecBaseURL     string `bun:"onec_base_url,nullzero"`
	OnecAuthMethod  string `bun:"onec_auth_method,nullzero"`
	OnecLogin       string `bun:"onec_login,nullzero"`
	OnecPassword    string `bun:"onec_password,nullzero"`
	OnecToken       string `bun:"onec_token,nullzero"`
	WorkStart       string `bun:"work_start,nullzero"`
	WorkEnd         string `bun:"work_end,nullzero"`
	AutoSchedule    bool   `bun:"auto_schedule,notnull"`
}

// Integration defaults to poster when unset.
func (r *Restaurant) Integration() string {
	if r.IntegrationType == "" {
		return IntegrationPoster
	}
	return r.IntegrationType
}

type RestaurantFee struct {
	bun.BaseModel `bun:"table:restaurant_fees,alias:f"`

	ID           int64   `bun:"id,pk,autoincrement" json:"id"`
	RestaurantID int64   `bun:"restaurant_id,notnull" json:"restaurantId"`
	Title        string  `bun:"title,notnull" json:"title"`
	Description  string  `bun:"description,notnull" json:"description"`
	Price        float64 `bun:"price,notnull" json:"price"`
	IsDefault    bool    `bun:"is_default,notnull" json:"isDefault"`
}

type TelegramSettings struct {
	bun.BaseModel `bun:"table:restaurant_telegram_settings,alias:ts"`

	RestaurantID int64  `bun:"restaurant_id,pk"`
	ChatID       string `bun:"chat_id,nullzero"`
	Enabled      bool   `bun:"enabled,notnull"`
	UpdatedAt    string `bun:"updated_at,notnull"`
}
