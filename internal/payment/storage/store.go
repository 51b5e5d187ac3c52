// Package storage resolves the gateway settings kept in app_settings.
package storage

import (
	"context"
	"fmt"
	"strings"

	"ms-restaurant/internal/models"
)

// Store is the settings access the gateway needs. *db.DB implements it.
type Store interface {
	GetSettings(ctx context.Context, keys ...string) (map[string]string, error)
	UpsertSettings(ctx context.Context, values map[string]string) error
}

// Settings are the stored gateway credentials.
type Settings struct {
	BaseURL  string `json:"baseUrl"`
	Login    string `json:"login"`
	Password string `json:"password"`
}

var settingKeys = []string{models.SettingPlumBaseURL, models.SettingPlumLogin, models.SettingPlumPassword}

// Load returns the stored values as they are, without the environment fallback.
func Load(ctx context.Context, store Store) (Settings, error) {
	values, err := store.GetSettings(ctx, settingKeys...)
	if err != nil {
		return Settings{}, fmt.Errorf("load payment settings: %w", err)
	}
	return Settings{
		BaseURL:  values[models.SettingPlumBaseURL],
		Login:    values[models.SettingPlumLogin],
		Password: values[models.SettingPlumPassword],
	}, nil
}

// Resolve trims the stored values and falls back to fallbackBaseURL when no base URL is stored.
func Resolve(ctx context.Context, store Store, fallbackBaseURL string) (Settings, error) {
	settings, err := Load(ctx, store)
	if err != nil {
		return Settings{}, err
	}
	settings.BaseURL = strings.TrimSpace(settings.BaseURL)
	settings.Login = strings.TrimSpace(settings.Login)
	settings.Password = strings.TrimSpace(settings.Password)
	if settings.BaseURL == "" {
		settings.BaseURL = strings.TrimSpace(fallbackBaseURL)
	}
	return settings, nil
}

// Save trims and stores all three values.
func Save(ctx context.Context, store Store, settings Settings) (Settings, error) {
	settings = Settings{
		BaseURL:  strings.TrimSpace(settings.BaseURL),
		Login:    strings.TrimSpace(settings.Login),
		Password: strings.TrimSpace(settings.Password),
	}
	err := store.UpsertSettings(ctx, map[string]string{
		models.SettingPlumBaseURL:  settings.BaseURL,
		models.SettingPlumLogin:    settings.Login,
		models.SettingPlumPassword: settings.Password,
	})
	if err != nil {
		return Settings{}, fmt.Errorf("save payment settings: %w", err)
	}
	return settings, nil
}
