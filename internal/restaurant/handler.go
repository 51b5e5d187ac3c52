package restaurant

import (
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

// List handles GET /api/restaurants.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Service.List(r.Context(), auth.IsAdmin(r.Context()))
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, rows)
}

// Create handles POST /api/restaurants.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in CreateInput
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.Fail(w, http.StatusBadRequest)
		return
	}
	id, err := h.Service.Create(r.Context(), auth.AdminLogin(r.Context()), in)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.OK(w, map[string]any{"id": id})
}

// Update handles PATCH /api/restaurants/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		utils.Fail(w, http.StatusBadRequest)
		return
	}
	var patch Patch
	if err := utils.DecodeJSON(r, &patch); err != nil {
		utils.Fail(w, http.StatusBadRequest)
		return
	}
	if err := h.Service.Update(r.Context(), auth.AdminLogin(r.Context()), id, patch); err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.OK(w, nil)
}

// Delete handles DELETE /api/restaurants/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		utils.Fail(w, http.StatusBadRequest)
		return
	}
	if err := h.Service.Delete(r.Context(), auth.AdminLogin(r.Context()), id); err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.OK(w, nil)
}

// ListFees handles GET /api/restaurants/{id}/fees.
func (h *Handler) ListFees(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		utils.Fail(w, http.StatusBadRequest)
		return
	}
	fees, err := h.Service.ListFees(r.Context(), id)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, fees)
}

// CreateFee handles POST /api/restaurants/{id}/fees.
func (h *Handler) CreateFee(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		utils.Fail(w, http.StatusBadRequest)
		return
	}
	var in FeeInput
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.Fail(w, http.StatusBadRequest)
		return
	}
	feeID, err := h.Service.CreateFee(r.Context(), id, in)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.OK(w, map[string]any{"id": feeID})
}

// UpdateFee handles PATCH /api/fees/{id}.
func (h *Handler) UpdateFee(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		utils.Fail(w, http.StatusBadRequest)
		return
	}
	var in FeeInput
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.Fail(w, http.StatusBadRequest)
		return
	}
	if err := h.Service.UpdateFee(r.Context(), id, in); err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.OK(w, nil)
}

// DeleteFee handles DELETE /api/fees/{id}.
func (h *Handler) DeleteFee(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		utils.Fail(w, http.StatusBadRequest)
		return
	}
	if err := h.Service.DeleteFee(r.Context(), id); err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.OK(w, nil)
}

// Routes registers the restaurant routes. public wraps the reads, admin the writes.
func (h *Handler) Routes(r chi.Router, admin, public func(http.Handler) http.Handler) {
	r.With(public).Get("/api/restaurants", h.List)
	r.With(public).Get("/api/restaurants/{id}/fees", h.ListFees)
	r.Group(func(r chi.Router) {
		r.Use(admin)
		r.Post("/api/restaurants", h.Create)
		r.Patch("/api/restaurants/{id}", h.Update)
		r.Delete("/api/restaurants/{id}", h.Delete)
		r.Post("/api/restaurants/{id}/fees", h.CreateFee)
		r.Patch("/api/fees/{id}", h.UpdateFee)
		r.Delete("/api/fees/{id}", h.DeleteFee)
	})
}
