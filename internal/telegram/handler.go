package telegram

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"ms-restaurant/internal/apperr"
	"ms-restaurant/internal/logger"
	"ms-restaurant/internal/models"
	"ms-restaurant/internal/utils"
)

const DefaultTestMessage = "Muhtasham Admin: Telegram test message."

type Handler struct {
	Notifier *Notifier
	Logger   *logger.Logger
}

type restaurantSettingsDTO struct {
	RestaurantID int64  `json:"restaurantId"`
	ChatID       string `json:"chatId"`
	Enabled      bool   `json:"enabled"`
	UpdatedAt    string `json:"updatedAt"`
}

// GetSettings handles GET /api/integrations/telegram. The token is only shown masked.
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	token, err := h.Notifier.BotToken(r.Context())
	if err != nil {
		utils.WriteError(w, apperr.Internal(err))
		return
	}
	rows, err := h.Notifier.Store.ListTelegramSettings(r.Context())
	if err != nil {
		utils.WriteError(w, apperr.Internal(err))
		return
	}
	restaurants := make([]restaurantSettingsDTO, 0, len(rows))
	for _, row := range rows {
		restaurants = append(restaurants, restaurantSettingsDTO{
			RestaurantID: row.RestaurantID,
			ChatID:       row.ChatID,
			Enabled:      row.Enabled,
			UpdatedAt:    row.UpdatedAt,
		})
	}
	utils.OK(w, map[string]any{
		"token":       MaskToken(token),
		"hasToken":    token != "",
		"restaurants": restaurants,
	})
}

type updateSettingsRequest struct {
	Token        *string `json:"token"`
	RestaurantID any     `json:"restaurantId"`
	ChatID       any     `json:"chatId"`
	Enabled      any     `json:"enabled"`
}

// UpdateSettings handles PATCH /api/integrations/telegram: token and/or one restaurant chat.
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req *updateSettingsRequest
	if err := utils.DecodeJSON(r, &req); err != nil || req == nil {
		utils.Fail(w, http.StatusBadRequest)
		return
	}

	if req.Token != nil {
		err := h.Notifier.Store.UpsertSettings(r.Context(), map[string]string{
			models.SettingTelegramBotToken: strings.TrimSpace(*req.Token),
		})
		if err != nil {
			utils.WriteError(w, apperr.Internal(err))
			return
		}
		h.Logger.LogSecurity("TELEGRAM_TOKEN", "Bot token updated")
	}

	var restaurant any
	if number, ok := req.RestaurantID.(json.Number); ok {
		id, err := number.Int64()
		if err != nil || id <= 0 {
			utils.Fail(w, http.StatusBadRequest)
			return
		}
		chatID, _ := req.ChatID.(string)
		enabled, _ := req.Enabled.(bool)
		row, err := h.Notifier.SetRestaurant(r.Context(), id, chatID, enabled)
		if err != nil {
			utils.WriteError(w, apperr.Internal(err))
			return
		}
		restaurant = map[string]any{"chatId": row.ChatID, "enabled": row.Enabled, "updatedAt": row.UpdatedAt}
	}

	utils.OK(w, map[string]any{"restaurant": restaurant})
}

type testMessageRequest struct {
	RestaurantID json.Number `json:"restaurantId"`
	Message      string      `json:"message"`
}

// SendTest handles POST /api/integrations/telegram/test.
func (h *Handler) SendTest(w http.ResponseWriter, r *http.Request) {
	var req testMessageRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.Fail(w, http.StatusBadRequest)
		return
	}
	restaurantID, err := req.RestaurantID.Int64()
	if err != nil || restaurantID <= 0 {
		utils.Fail(w, http.StatusBadRequest)
		return
	}

	token, err := h.Notifier.BotToken(r.Context())
	if err != nil {
		utils.WriteError(w, apperr.Internal(err))
		return
	}
	chatID, err := h.Notifier.ChatID(r.Context(), restaurantID)
	if err != nil {
		utils.WriteError(w, apperr.Internal(err))
		return
	}
	if token == "" || chatID == "" {
		utils.WriteJSON(w, http.StatusBadRequest, map[string]any{
			"ok":    false,
			"error": "Telegram is not configured for this restaurant.",
		})
		return
	}

	text := strings.TrimSpace(req.Message)
	if text == "" {
		text = DefaultTestMessage
	}
	if err := h.Notifier.Client.Send(r.Context(), token, chatID, text); err != nil {
		h.Logger.Warn("TELEGRAM", fmt.Sprintf("Test message to restaurant %d failed: %v", restaurantID, err))
		message := err.Error()
		var sendErr *SendError
		if errors.As(err, &sendErr) {
			message = sendErr.Description
		}
		utils.WriteJSON(w, http.StatusBadGateway, map[string]any{"ok": false, "error": message})
		return
	}
	utils.OK(w, nil)
}
