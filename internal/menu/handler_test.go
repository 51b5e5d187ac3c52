package menu

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ms-restaurant/internal/auth"
	"ms-restaurant/internal/logger"
	"ms-restaurant/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Test-Admin") == "1" {
			r = r.WithContext(auth.WithAdmin(r.Context(), "root"))
		}
		next.ServeHTTP(w, r)
	})
}

func TestHandlerReadHidesRowsFromPublic(t *testing.T) {
	svc, store, _, restaurant := setup(t, categoriesBody, productsBody)
	ctx := context.Background()
	require.NoError(t, store.InsertCategory(ctx, &models.MenuCategory{RestaurantID: restaurant.ID, NameRu: "Открыто", NameUz: "Ochiq"}))
	require.NoError(t, store.InsertCategory(ctx, &models.MenuCategory{RestaurantID: restaurant.ID, NameRu: "Скрыто", NameUz: "Yashirin", Hidden: true}))

	h := &Handler{Service: svc, Logger: logger.Discard()}
	router := chi.NewRouter()
	h.Routes(router, withAdmin, withAdmin)

	count := func(admin bool) int {
		req := httptest.NewRequest(http.MethodGet, "/api/restaurants/"+jsonInt(restaurant.ID)+"/menu?includeHidden=1", nil)
		if admin {
			req.Header.Set("X-Test-Admin", "1")
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		var body []map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		return len(body)
	}
	assert.Equal(t, 1, count(false))
	assert.Equal(t, 2, count(true))
}

func TestHandlerSyncAndPatch(t *testing.T) {
	svc, _, _, restaurant := setup(t, categoriesBody, productsBody)
	h := &Handler{Service: svc, Logger: logger.Discard()}
	router := chi.NewRouter()
	h.Routes(router, withAdmin, withAdmin)

	req := httptest.NewRequest(http.MethodPost, "/api/restaurants/"+jsonInt(restaurant.ID)+"/menu/sync", strings.NewReader(`{"scope":"all"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true,"categoryCount":2,"productCount":2}`, rec.Body.String())

	req = httptest.NewRequest(http.MethodPatch, "/api/menu/categories/abc", strings.NewReader(`{"hidden":true}`))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = httptest.NewRequest(http.MethodPatch, "/api/menu/items/1", strings.NewReader(`{"hidden":"yes"}`))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = httptest.NewRequest(http.MethodPatch, "/api/menu/items/1", strings.NewReader(`{"descriptionRu":" горячий "}`))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
}

func jsonInt(id int64) string {
	raw, _ := json.Marshal(id)
	return string(raw)
}
