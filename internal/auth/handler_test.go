package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ms-restaurant/internal/db"
	"ms-restaurant/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newSessionRouter(s *Service) http.Handler {
	r := chi.NewRouter()
	h := &Handler{Service: s}
	h.Routes(r, func(next http.Handler) http.Handler { return next })
	return r
}

func TestLoginThenMe(t *testing.T) {
	store := new(MockEmployeeStore)
	store.On("GetEmployeeByLogin", mock.Anything, "root").Return(nil, db.ErrNotFound).Maybe()
	router := newSessionRouter(newTestService(t, store))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(`{"login":"root","password":"root-pass"}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true,"login":"root","permissions":{"canEditRestaurants":true,"canChangeRestaurantStatus":true,"canAddRestaurants":true,"canManageEmployees":true}}`, rec.Body.String())
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	store := new(MockEmployeeStore)
	store.On("GetEmployeeByLogin", mock.Anything, "root").Return(nil, db.ErrNotFound)
	router := newSessionRouter(newTestService(t, store))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(`{"login":"root","password":"nope"}`)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, rec.Result().Cookies())
}

func TestMeForDeletedEmployee(t *testing.T) {
	store := new(MockEmployeeStore)
	store.On("GetEmployeeByLogin", mock.Anything, "gone").Return(nil, db.ErrNotFound)
	store.On("GetEmployeeByLogin", mock.Anything, "kate").Return(&models.Employee{Login: "kate", CanAddRestaurants: true}, nil)
	s := newTestService(t, store)
	router := newSessionRouter(s)

	me := func(login string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: CreateSessionToken(login, "session-secret", s.Config.SessionTTL, fixedNow)})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusNotFound, me("gone").Code)
	rec := me("kate")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"canAddRestaurants":true`)
	assert.Contains(t, rec.Body.String(), `"canManageEmployees":false`)
}

func TestLogoutClearsCookie(t *testing.T) {
	router := newSessionRouter(newTestService(t, new(MockEmployeeStore)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/logout", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, rec.Result().Cookies(), 1)
	assert.Equal(t, SessionCookieName, rec.Result().Cookies()[0].Name)
}
