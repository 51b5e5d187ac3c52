package auth

import (
	"errors"
	"net/http"

	"ms-restaurant/internal/db"
	"ms-restaurant/internal/utils"

	"github.com/go-chi/chi/v5"
)

// Handler serves the admin session endpoints.
type Handler struct {
	Service *Service
}

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// Login handles POST /api/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.Fail(w, http.StatusBadRequest)
		return
	}
	token, err := h.Service.Login(r.Context(), req.Login, req.Password)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	SetSessionCookie(w, r, token, h.Service.Config.SessionTTL)
	utils.OK(w, nil)
}

// Logout handles POST /api/logout.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	ClearSessionCookie(w, r)
	utils.OK(w, nil)
}

// Me handles GET /api/me.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	login := AdminLogin(r.Context())
	perms, err := h.Service.Permissions(r.Context(), login)
	if errors.Is(err, db.ErrNotFound) {
		utils.Fail(w, http.StatusNotFound)
		return
	}
	if err != nil {
		utils.Fail(w, http.StatusInternalServerError)
		return
	}
	utils.OK(w, map[string]any{"login": login, "permissions": perms})
}

func (h *Handler) Routes(r chi.Router, login func(http.Handler) http.Handler) {
	r.With(login).Post("/api/login", h.Login)
	r.Post("/api/logout", h.Logout)
	r.With(h.Service.RequireAdmin).Get("/api/me", h.Me)
}
