package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ms-restaurant/internal/db"
	"ms-restaurant/internal/logger"
	"ms-restaurant/internal/models"
	"ms-restaurant/internal/utils"
)

// Store is the settings access of the notifier and its handlers. *db.DB implements it.
type Store interface {
	GetSetting(ctx context.Context, key string) (string, error)
	UpsertSettings(ctx context.Context, values map[string]string) error
	ListTelegramSettings(ctx context.Context) ([]models.TelegramSettings, error)
	GetTelegramSettings(ctx context.Context, restaurantID int64) (*models.TelegramSettings, error)
	UpsertTelegramSettings(ctx context.Context, row *models.TelegramSettings) error
}

type Notifier struct {
	Store  Store
	Client *Client
	Logger *logger.Logger
}

func NewNotifier(store Store, client *Client, log *logger.Logger) *Notifier {
	if log == nil {
		log = logger.Discard()
	}
	return &Notifier{Store: store, Client: client, Logger: log}
}

func (n *Notifier) BotToken(ctx context.Context) (string, error) {
	token, err := n.Store.GetSetting(ctx, models.SettingTelegramBotToken)
	return strings.TrimSpace(token), err
}

// ChatID returns the configured chat of an enabled restaurant, "" otherwise.
func (n *Notifier) ChatID(ctx context.Context, restaurantID int64) (string, error) {
	row, err := n.Store.GetTelegramSettings(ctx, restaurantID)
	if errors.Is(err, db.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	chatID := strings.TrimSpace(row.ChatID)
	if chatID == "" || !row.Enabled {
		return "", nil
	}
	return chatID, nil
}

// SetRestaurant stores the chat of a restaurant. Enabling needs a chat id.
func (n *Notifier) SetRestaurant(ctx context.Context, restaurantID int64, chatID string, enabled bool) (*models.TelegramSettings, error) {
	row := &models.TelegramSettings{
		RestaurantID: restaurantID,
		ChatID:       NormalizeChatID(chatID),
		Enabled:      enabled && strings.TrimSpace(chatID) != "",
		UpdatedAt:    utils.Now(),
	}
	if err := n.Store.UpsertTelegramSettings(ctx, row); err != nil {
		return nil, fmt.Errorf("save telegram settings: %w", err)
	}
	return row, nil
}

// NotifyOrder sends the order notice when a bot token and an enabled chat exist.
// Failures are logged and dropped.
func (n *Notifier) NotifyOrder(ctx context.Context, notice OrderNotice) {
	token, err := n.BotToken(ctx)
	if err != nil {
		n.Logger.Error("TELEGRAM", fmt.Sprintf("Order #%d: failed to read bot token: %v", notice.OrderID, err))
		return
	}
	chatID, err := n.ChatID(ctx, notice.RestaurantID)
	if err != nil {
		n.Logger.Error("TELEGRAM", fmt.Sprintf("Order #%d: failed to read chat settings: %v", notice.OrderID, err))
		return
	}
	if token == "" || chatID == "" {
		return
	}

	if err := n.Client.Send(ctx, token, chatID, FormatOrderMessage(notice)); err != nil {
		n.Logger.Error("TELEGRAM", fmt.Sprintf("Order #%d: send to restaurant %d chat %s with token %s failed: %v",
			notice.OrderID, notice.RestaurantID, chatID, MaskToken(token), err))
		return
	}
	n.Logger.Info("TELEGRAM", fmt.Sprintf("Order #%d notification sent to restaurant %d", notice.OrderID, notice.RestaurantID))
}
