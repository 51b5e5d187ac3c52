package order

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"ms-restaurant/internal/apperr"
	"ms-restaurant/internal/auth"
	"ms-restaurant/internal/logger"
	"ms-restaurant/internal/utils"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	Service *Service
	Logger  *logger.Logger
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id, err == nil && id > 0
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return int(f)
}

func queryID(r *http.Request, name string) (*int64, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, false
	}
	return &id, true
}

// Create handles POST /api/orders for an authenticated client.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	claims := auth.Client(r.Context())
	if claims == nil {
		utils.Fail(w, http.StatusUnauthorized)
		return
	}
	var body map[string]any
	if err := utils.DecodeJSON(r, &body); err != nil || body == nil {
		utils.Fail(w, http.StatusBadRequest)
		return
	}

	result, err := h.Service.Create(r.Context(), claims.ClientID, Normalize(body))
	if err != nil {
		if apperr.StatusOf(err) >= http.StatusInternalServerError {
			h.Logger.Error("ORDER", fmt.Sprintf("Create failed for client %d: %v", claims.ClientID, err))
		}
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, result)
}

// List handles GET /api/orders?limit=&sync=1.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	claims := auth.Client(r.Context())
	if claims == nil {
		utils.Fail(w, http.StatusUnauthorized)
		return
	}
	limit := queryInt(r, "limit", DefaultPageSize)
	orders, err := h.Service.ListForClient(r.Context(), claims.ClientID, limit, r.URL.Query().Get("sync") == "1")
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.OK(w, map[string]any{"orders": orders})
}

// Retry handles POST /api/admin/orders/{id}/retry.
func (h *Handler) Retry(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		utils.Fail(w, http.StatusBadRequest)
		return
	}
	result, err := h.Service.Retry(r.Context(), id)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	h.Logger.LogOrder("RETRY", id, fmt.Sprintf("Requested by %q, ok=%v", auth.AdminLogin(r.Context()), result["ok"]))
	utils.WriteJSON(w, http.StatusOK, result)
}

// AdminList handles GET /api/admin/orders.
func (h *Handler) AdminList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	restaurantID, ok := queryID(r, "restaurantId")
	if !ok {
		restaurantID = nil
	}
	since, ok := queryID(r, "since")
	if !ok {
		since = nil
	}
	result, err := h.Service.AdminList(r.Context(), AdminQuery{
		Limit:        queryInt(r, "limit", DefaultPageSize),
		Page:         queryInt(r, "page", 1),
		Status:       q.Get("status"),
		RestaurantID: restaurantID,
		Query:        strings.TrimSpace(q.Get("q")),
		From:         q.Get("from"),
		To:           q.Get("to"),
		Since:        since,
	})
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, result)
}

// AdminBonus handles GET /api/admin/clients/{id}/bonus?restaurantId=.
func (h *Handler) AdminBonus(w http.ResponseWriter, r *http.Request) {
	clientID, ok := pathID(r, "id")
	if !ok {
		utils.Fail(w, http.StatusBadRequest)
		return
	}
	h.writeBonus(w, r, clientID)
}

// ClientBonus handles GET /api/clients/me/bonus?restaurantId=.
func (h *Handler) ClientBonus(w http.ResponseWriter, r *http.Request) {
	claims := auth.Client(r.Context())
	if claims == nil {
		utils.Fail(w, http.StatusUnauthorized)
		return
	}
	h.writeBonus(w, r, claims.ClientID)
}

func (h *Handler) writeBonus(w http.ResponseWriter, r *http.Request, clientID int64) {
	restaurantID, ok := queryID(r, "restaurantId")
	if !ok || restaurantID == nil {
		utils.Fail(w, http.StatusBadRequest)
		return
	}
	bonus, err := h.Service.ClientBonus(r.Context(), clientID, *restaurantID)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.OK(w, map[string]any{"bonus": bonus})
}

type changeBonusRequest struct {
	RestaurantID json.Number `json:"restaurantId"`
	Count        json.Number `json:"count"`
}

// ChangeBonus handles POST /api/admin/clients/{id}/bonus.
func (h *Handler) ChangeBonus(w http.ResponseWriter, r *http.Request) {
	clientID, ok := pathID(r, "id")
	if !ok {
		utils.Fail(w, http.StatusBadRequest)
		return
	}
	var req changeBonusRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.Fail(w, http.StatusBadRequest)
		return
	}
	restaurantID, errID := req.RestaurantID.Int64()
	count, errCount := req.Count.Float64()
	if errID != nil || errCount != nil || count == 0 {
		utils.Fail(w, http.StatusBadRequest)
		return
	}

	bonus, err := h.Service.ChangeBonus(r.Context(), clientID, restaurantID, count)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	h.Logger.LogSecurity("BONUS_CHANGED", fmt.Sprintf("%q changed bonus of client %d at restaurant %d by %s",
		auth.AdminLogin(r.Context()), clientID, restaurantID, req.Count))
	utils.OK(w, map[string]any{"bonus": bonus})
}

// Routes registers the order routes. admin guards the admin subset, client the client one.
func (h *Handler) Routes(r chi.Router, admin, client func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(client)
		r.Post("/api/orders", h.Create)
		r.Get("/api/orders", h.List)
		r.Get("/api/clients/me/bonus", h.ClientBonus)
	})
	r.Group(func(r chi.Router) {
		r.Use(admin)
		r.Get("/api/admin/orders", h.AdminList)
		r.Post("/api/admin/orders/{id}/retry", h.Retry)
		r.Get("/api/admin/clients/{id}/bonus", h.AdminBonus)
		r.Post("/api/admin/clients/{id}/bonus", h.ChangeBonus)
	})
}
