package menu

import (
	"fmt"
	"net/http"
	"strconv"

	"ms-restaurant/internal/auth"
	"ms-restaurant/internal/logger"
	"ms-restaurant/internal/utils"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	Service *Service
	Logger  *logger.Logger
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil
}

// Read handles GET /api/restaurants/{id}/menu?lang=&includeHidden=1.
// Hidden rows are only returned to admins.
func (h *Handler) Read(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		utils.Fail(w, http.StatusBadRequest)
		return
	}
	includeHidden := auth.IsAdmin(r.Context()) && r.URL.Query().Get("includeHidden") == "1"
	menu, err := h.Service.Read(r.Context(), id, r.URL.Query().Get("lang"), includeHidden)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, menu)
}

// Sync handles POST /api/restaurants/{id}/menu/sync.
func (h *Handler) Sync(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		utils.Fail(w, http.StatusBadRequest)
		return
	}
	var opts SyncOptions
	if err := utils.DecodeJSON(r, &opts); err != nil {
		opts = SyncOptions{}
	}
	result, err := h.Service.Sync(r.Context(), id, opts)
	if err != nil {
		h.Logger.Warn("MENU", fmt.Sprintf("Sync of restaurant %d failed: %v", id, err))
		utils.WriteError(w, err)
		return
	}
	utils.OK(w, map[string]any{"categoryCount": result.CategoryCount, "productCount": result.ProductCount})
}

// PatchCategory handles PATCH /api/menu/categories/{id}.
func (h *Handler) PatchCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		utils.Fail(w, http.StatusBadRequest)
		return
	}
	var patch CategoryPatch
	if err := utils.DecodeJSON(r, &patch); err != nil {
		utils.Fail(w, http.StatusBadRequest)
		return
	}
	if err := h.Service.PatchCategory(r.Context(), id, patch); err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.OK(w, nil)
}

// PatchItem handles PATCH /api/menu/items/{id}.
func (h *Handler) PatchItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		utils.Fail(w, http.StatusBadRequest)
		return
	}
	var patch ItemPatch
	if err := utils.DecodeJSON(r, &patch); err != nil {
		utils.Fail(w, http.StatusBadRequest)
		return
	}
	if err := h.Service.PatchItem(r.Context(), id, patch); err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.OK(w, nil)
}

// Routes registers the menu routes. public wraps the read, admin the writes.
func (h *Handler) Routes(r chi.Router, admin, public func(http.Handler) http.Handler) {
	r.With(public).Get("/api/restaurants/{id}/menu", h.Read)
	r.Group(func(r chi.Router) {
		r.Use(admin)
		r.Post("/api/restaurants/{id}/menu/sync", h.Sync)
		r.Patch("/api/menu/categories/{id}", h.PatchCategory)
		r.Patch("/api/menu/items/{id}", h.PatchItem)
	})
}
