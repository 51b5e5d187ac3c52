package models

import (
	"github.com/uptrace/bun"
)

const BannerActive = "Активен"

type Banner struct {
	bun.BaseModel `bun:"table:banners,alias:b"`

	ID        int64  `bun:"id,pk,autoincrement" json:"id"`
	Title     string `bun:"title,notnull" json:"title"`
	Image     string `bun:"image,notnull" json:"image"`
	Status    string `bun:"status,notnull" json:"status"`
	Open      bool   `bun:"open,notnull" json:"open"`
	AddedAt   string `bun:"added_at,notnull" json:"addedAt"`
	SortOrder int    `bun:"sort_order,notnull" json:"sortOrder"`
}

const (
	ChannelSplash = "splash"
	ChannelPush   = "push"

	NewsletterQueued    = "queued"
	NewsletterDelivered = "delivered"
)

type Newsletter struct {
	bun.BaseModel `bun:"table:newsletters,alias:n"`

	ID          int64  `bun:"id,pk,autoincrement" json:"id"`
	Title       string `bun:"title,notnull" json:"title"`
	Message     string `bun:"message,notnull" json:"message"`
	Image       string `bun:"image,nullzero" json:"image"`
	Channel     string `bun:"channel,notnull" json:"channel"`
	Status      string `bun:"status,notnull" json:"status"`
	CreatedAt   string `bun:"created_at,notnull" json:"createdAt"`
	DeliveredAt string `bun:"delivered_at,nullzero" json:"deliveredAt"`
	Error       string `bun:"error,nullzero" json:"error"`
	DeletedAt   string `bun:"deleted_at,nullzero" json:"-"`
}

type Setting struct {
	bun.BaseModel `bun:"table:app_settings,alias:s"`

	Key       string `bun:"key,pk"`
	Value     string `bun:"value,nullzero"`
	UpdatedAt string `bun:"updated_at,nullzero"`
}

// Setting keys stored in app_settings.
const (
	SettingPlumBaseURL      = "plum_base_url"
	SettingPlumLogin        = "plum_login"
	SettingPlumPassword     = "plum_password"
	SettingTelegramBotToken = "telegram_bot_token"
	SettingSupportPhone     = "support_phone"
	SettingSupportMessageRu = "support_message_ru"
	SettingSupportMessageUz = "support_message_uz"
)
