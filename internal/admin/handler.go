package admin

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

// Middleware is the access control the routes are mounted with.
type Middleware struct {
	Admin      func(http.Handler) http.Handler
	Client     func(http.Handler) http.Handler
	Public     func(http.Handler) http.Handler
	Register   func(http.Handler) http.Handler
	Login      func(http.Handler) http.Handler
	Permission func(auth.Permission) func(http.Handler) http.Handler
}

func pathInt(r *http.Request, key string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, key), 10, 64)
	return id, err == nil
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := utils.DecodeJSON(r, dst); err != nil {
		utils.Fail(w, http.StatusBadRequest)
		return false
	}
	return true
}

func clientID(r *http.Request) int64 {
	if claims := auth.Client(r.Context()); claims != nil {
		return claims.ClientID
	}
	return 0
}

// ---------------- EMPLOYEES ----------------

func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Service.ListEmployees(r.Context())
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, rows)
}

func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var in EmployeeInput
	if !decode(w, r, &in) {
		return
	}
	employee, err := h.Service.CreateEmployee(r.Context(), in)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.OK(w, map[string]any{"employee": employee})
}

func (h *Handler) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(r, "id")
	if !ok {
		utils.Fail(w, http.StatusBadRequest)
		return
	}
	var in EmployeeInput
	if !decode(w, r, &in) {
		return
	}
	if err := h.Service.UpdateEmployee(r.Context(), id, in); err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.OK(w, nil)
}

func (h *Handler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(r, "id")
	if !ok {
		utils.Fail(w, http.StatusBadRequest)
		return
	}
	if err := h.Service.DeleteEmployee(r.Context(), id); err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.OK(w, nil)
}

// ---------------- CLIENTS (ADMIN) ----------------

func (h *Handler) ListClients(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Service.ListClients(r.Context())
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, rows)
}

func (h *Handler) ResetClientPassword(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(r, "id")
	if !ok {
		utils.Fail(w, http.StatusBadRequest)
		return
	}
	var in struct {
		Password *string `json:"password"`
	}
	if !decode(w, r, &in) {
		return
	}
	if err := h.Service.ResetClientPassword(r.Context(), id, in.Password); err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.OK(w, nil)
}

func (h *Handler) writeAddresses(w http.ResponseWriter, r *http.Request, owner int64) {
	rows, err := h.Service.ListAddresses(r.Context(), owner)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, rows)
}

func (h *Handler) addAddress(w http.ResponseWriter, r *http.Request, owner int64) {
	var in AddressInput
	if !decode(w, r, &in) {
		return
	}
	address, err := h.Service.AddAddress(r.Context(), owner, in)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.OK(w, map[string]any{"address": address})
}

func (h *Handler) deleteAddress(w http.ResponseWriter, r *http.Request, owner int64) {
	addressID, ok := pathInt(r, "addressId")
	if !ok {
		utils.Fail(w, http.StatusBadRequest)
		return
	}
	if err := h.Service.DeleteAddress(r.Context(), owner, addressID); err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.OK(w, nil)
}

// withClientParam runs fn with the {id} path parameter, 400 when it is not numeric.
func withClientParam(fn func(w http.ResponseWriter, r *http.Request, owner int64)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathInt(r, "id")
		if !ok {
			utils.Fail(w, http.StatusBadRequest)
			return
		}
		fn(w, r, id)
	}
}

// withSelf runs fn for the client of the bearer token.
func withSelf(fn func(w http.ResponseWriter, r *http.Request, owner int64)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fn(w, r, clientID(r))
	}
}

// ---------------- CLIENT SELF-SERVICE ----------------

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var in Credentials
	if !decode(w, r, &in) {
		return
	}
	session, err := h.Service.Register(r.Context(), in)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.OK(w, map[string]any{"accessToken": session.AccessToken, "client": session.Client})
}

func (h *Handler) ClientLogin(w http.ResponseWriter, r *http.Request) {
	var in Credentials
	if !decode(w, r, &in) {
		return
	}
	session, err := h.Service.Login(r.Context(), in)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.OK(w, map[string]any{"accessToken": session.AccessToken, "client": session.Client})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	profile, err := h.Service.Profile(r.Context(), clientID(r))
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.OK(w, map[string]any{"client": profile})
}

func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var in ProfileInput
	if !decode(w, r, &in) {
		return
	}
	id := clientID(r)
	name, posterOK, err := h.Service.UpdateProfile(r.Context(), id, in)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.OK(w, map[string]any{
		"client":   map[string]any{"id": id, "name": name},
		"posterOk": posterOK,
	})
}

func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var in PasswordChange
	if !decode(w, r, &in) {
		return
	}
	if err := h.Service.ChangePassword(r.Context(), clientID(r), in); err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.OK(w, nil)
}

func (h *Handler) ClientNewsletters(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	items, err := h.Service.ClientNewsletters(r.Context(), q.Get("channel"), q.Get("markDelivered") == "1")
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.OK(w, map[string]any{"items": items})
}

// ---------------- BANNERS ----------------

func (h *Handler) ListBanners(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Service.ListBanners(r.Context(), r.URL.Query().Get("active") == "1")
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, rows)
}

func (h *Handler) CreateBanner(w http.ResponseWriter, r *http.Request) {
	var in BannerInput
	if !decode(w, r, &in) {
		return
	}
	id, err := h.Service.CreateBanner(r.Context(), in)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.OK(w, map[string]any{"id": id})
}

func (h *Handler) DeleteBanner(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(r, "id")
	if !ok {
		utils.Fail(w, http.StatusBadRequest)
		return
	}
	if err := h.Service.DeleteBanner(r.Context(), id); err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.OK(w, nil)
}

func (h *Handler) ReorderBanners(w http.ResponseWriter, r *http.Request) {
	var in struct {
		IDs []any `json:"ids"`
	}
	if !decode(w, r, &in) {
		return
	}
	if err := h.Service.ReorderBanners(r.Context(), in.IDs); err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.OK(w, nil)
}

// ---------------- NEWSLETTERS ----------------

func (h *Handler) ListNewsletters(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rows, err := h.Service.ListNewsletters(r.Context(), q.Get("channel"), q.Get("status"), q.Get("markDelivered") == "1")
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, rows)
}

func (h *Handler) CreateNewsletter(w http.ResponseWriter, r *http.Request) {
	var in NewsletterInput
	if !decode(w, r, &in) {
		return
	}
	newsletter, err := h.Service.CreateNewsletter(r.Context(), in)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.OK(w, map[string]any{"id": newsletter.ID, "createdAt": newsletter.CreatedAt, "status": newsletter.Status})
}

func (h *Handler) DeleteNewsletter(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(r, "id")
	if !ok {
		utils.Fail(w, http.StatusBadRequest)
		return
	}
	if err := h.Service.DeleteNewsletter(r.Context(), id); err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.OK(w, nil)
}

// ---------------- SUPPORT PHONE ----------------

func (h *Handler) SupportContact(w http.ResponseWriter, r *http.Request) {
	contact, err := h.Service.SupportContact(r.Context())
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, contact)
}

func (h *Handler) UpdateSupportContact(w http.ResponseWriter, r *http.Request) {
	var in SupportInput
	if !decode(w, r, &in) {
		return
	}
	contact, err := h.Service.UpdateSupportContact(r.Context(), in)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.OK(w, map[string]any{"phone": contact.Phone, "messageRu": contact.MessageRu, "messageUz": contact.MessageUz})
}

func (h *Handler) Routes(r chi.Router, mw Middleware) {
	manageEmployees := mw.Permission(auth.PermManageEmployees)
	editRestaurants := mw.Permission(auth.PermEditRestaurants)

	r.With(mw.Public).Get("/api/banners", h.ListBanners)
	r.With(mw.Public).Get("/api/support-phone", h.SupportContact)
	r.Get("/api/clients/newsletters", h.ClientNewsletters)
	r.With(mw.Register).Post("/api/clients/register", h.Register)
	r.With(mw.Login).Post("/api/clients/login", h.ClientLogin)

	r.Group(func(r chi.Router) {
		r.Use(mw.Client)
		r.Get("/api/clients/me", h.Me)
		r.Patch("/api/clients/me", h.UpdateMe)
		r.Post("/api/clients/me/password", h.ChangePassword)
		r.Get("/api/clients/me/addresses", withSelf(h.writeAddresses))
		r.Post("/api/clients/me/addresses", withSelf(h.addAddress))
		r.Delete("/api/clients/me/addresses/{addressId}", withSelf(h.deleteAddress))
	})

	r.Group(func(r chi.Router) {
		r.Use(mw.Admin)
		r.Get("/api/employees", h.ListEmployees)
		r.With(manageEmployees).Post("/api/employees", h.CreateEmployee)
		r.With(manageEmployees).Patch("/api/employees/{id}", h.UpdateEmployee)
		r.With(manageEmployees).Delete("/api/employees/{id}", h.DeleteEmployee)

		r.Get("/api/clients", h.ListClients)
		r.Patch("/api/clients/{id}/password", h.ResetClientPassword)
		r.Get("/api/clients/{id}/addresses", withClientParam(h.writeAddresses))
		r.Post("/api/clients/{id}/addresses", withClientParam(h.addAddress))
		r.Delete("/api/clients/{id}/addresses/{addressId}", withClientParam(h.deleteAddress))

		r.Post("/api/banners", h.CreateBanner)
		r.Delete("/api/banners/{id}", h.DeleteBanner)
		r.Post("/api/banners/reorder", h.ReorderBanners)

		r.Get("/api/newsletters", h.ListNewsletters)
		r.Post("/api/newsletters", h.CreateNewsletter)
		r.With(editRestaurants).Delete("/api/newsletters/{id}", h.DeleteNewsletter)
		r.With(editRestaurants).Patch("/api/support-phone", h.UpdateSupportContact)
	})
}
