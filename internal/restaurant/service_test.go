package restaurant

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"ms-restaurant/internal/apperr"
	"ms-restaurant/internal/auth"
	"ms-restaurant/internal/database/dbtest"
	"ms-restaurant/internal/db"
	"ms-restaurant/internal/logger"
	"ms-restaurant/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockAuthorizer struct {
	mock.Mock
}

func (m *MockAuthorizer) HasPermission(ctx context.Context, login string, perm auth.Permission) (bool, error) {
	args := m.Called(ctx, login, perm)
	return args.Bool(0), args.Error(1)
}

// grant allows exactly perms for login.
func grant(login string, perms ...auth.Permission) *MockAuthorizer {
	m := new(MockAuthorizer)
	allowed := map[auth.Permission]bool{}
	for _, p := range perms {
		allowed[p] = true
	}
	for _, p := range []auth.Permission{auth.PermEditRestaurants, auth.PermChangeRestaurantStatus, auth.PermAddRestaurants, auth.PermManageEmployees} {
		m.On("HasPermission", mock.Anything, login, p).Return(allowed[p], nil).Maybe()
	}
	return m
}

var noon = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func setupService(t *testing.T, authz Authorizer) (*Service, *db.DB) {
	t.Helper()
	store := db.New(dbtest.New(t))
	svc := NewService(store, authz, time.UTC, logger.Discard())
	svc.Now = func() time.Time { return noon }
	return svc, store
}

func ptr[T any](v T) *T { return &v }

func TestScheduledOpen(t *testing.T) {
	tests := []struct {
		start, end string
		open, ok   bool
	}{
		{"09:00", "22:00", true, true},
		{"13:00", "22:00", false, true},
		{"22:00", "13:00", true, true},
		{"22:00", "11:59", false, true},
		{"10:00", "10:00", true, true},
		{"12:00", "12:01", true, true},
		{"11:00", "12:00", false, true},
		{"09:00:00", "23:30:00", true, true},
		{"", "22:00", false, false},
		{"24:00", "22:00", false, false},
		{"9", "22:00", false, false},
		{"aa:bb", "22:00", false, false},
	}
	for _, tt := range tests {
		open, ok := ScheduledOpen(tt.start, tt.end, noon)
		assert.Equal(t, tt.ok, ok, "%s-%s", tt.start, tt.end)
		assert.Equal(t, tt.open, open, "%s-%s", tt.start, tt.end)
	}
}

func TestCreateSeedsDefaults(t *testing.T) {
	svc, store := setupService(t, grant("root", auth.PermAddRestaurants))
	ctx := context.Background()

	id, err := svc.Create(ctx, "root", CreateInput{Name: " Muhtasham ", Address: "Street 1", Description: "Plov"})
	require.NoError(t, err)

	r, err := store.GetRestaurant(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Muhtasham", r.Name)
	assert.Equal(t, StatusOpen, r.Status)
	assert.True(t, r.Open)
	assert.Equal(t, "/logo_green.png", r.Image)
	assert.Equal(t, "#1a6b3a", r.Color)
	assert.Equal(t, "2025-03-01", r.AddedAt)
	assert.Equal(t, models.IntegrationPoster, r.Integration())

	fees, err := store.ListFees(ctx, id)
	require.NoError(t, err)
	require.Len(t, fees, 2)
	assert.Equal(t, "Доставка", fees[0].Title)
	assert.Equal(t, 15000.0, fees[0].Price)
	assert.Equal(t, "Пакет", fees[1].Title)
	assert.Equal(t, 2000.0, fees[1].Price)
	assert.True(t, fees[0].IsDefault && fees[1].IsDefault)
}

func TestCreateAppliesSchedule(t *testing.T) {
	svc, store := setupService(t, grant("root", auth.PermAddRestaurants))
	ctx := context.Background()

	id, err := svc.Create(ctx, "root", CreateInput{
		Name: "Night", Address: "a", Description: "d", Status: ptr(StatusOpen),
		WorkStart: "20:00", WorkEnd: "04:00", AutoSchedule: true,
	})
	require.NoError(t, err)
	r, err := store.GetRestaurant(ctx, id)
	require.NoError(t, err)
	assert.False(t, r.Open)
	assert.Equal(t, StatusClosed, r.Status)
}

func TestCreateChecks(t *testing.T) {
	svc, _ := setupService(t, grant("staff", auth.PermEditRestaurants))
	ctx := context.Background()

	_, err := svc.Create(ctx, "staff", CreateInput{Name: "x", Address: "y", Description: "z"})
	assert.Equal(t, http.StatusForbidden, apperr.StatusOf(err))

	svc, _ = setupService(t, grant("root", auth.PermAddRestaurants))
	_, err = svc.Create(ctx, "root", CreateInput{Name: "x", Address: " ", Description: "z"})
	assert.Equal(t, http.StatusBadRequest, apperr.StatusOf(err))
}

func seed(t *testing.T, store *db.DB, r *models.Restaurant) *models.Restaurant {
	t.Helper()
	if r.Status == "" {
		r.Status = StatusOpen
	}
	r.Address, r.Description, r.Image, r.Color, r.AddedAt = "a", "d", "i", "#000", "2024-01-01"
	require.NoError(t, store.CreateRestaurant(context.Background(), r, DefaultFees()))
	return r
}

func TestUpdatePermissionSplit(t *testing.T) {
	svc, store := setupService(t, grant("cashier", auth.PermChangeRestaurantStatus))
	ctx := context.Background()
	r := seed(t, store, &models.Restaurant{Name: "A", Open: true})

	require.NoError(t, svc.Update(ctx, "cashier", r.ID, Patch{Status: ptr(" " + StatusClosed + " ")}))
	got, err := store.GetRestaurant(ctx, r.ID)
	require.NoError(t, err)
	assert.False(t, got.Open)
	assert.Equal(t, StatusClosed, got.Status)

	err = svc.Update(ctx, "cashier", r.ID, Patch{Name: ptr("B"), Status: ptr(StatusOpen)})
	assert.Equal(t, http.StatusForbidden, apperr.StatusOf(err))

	err = svc.Update(ctx, "cashier", r.ID, Patch{})
	assert.Equal(t, http.StatusBadRequest, apperr.StatusOf(err))
}

func TestUpdateScheduleRecomputesOpen(t *testing.T) {
	svc, store := setupService(t, grant("root", auth.PermEditRestaurants))
	ctx := context.Background()
	r := seed(t, store, &models.Restaurant{Name: "A", Open: true, WorkStart: "13:00", WorkEnd: "23:00"})

	require.NoError(t, svc.Update(ctx, "root", r.ID, Patch{AutoSchedule: ptr(true)}))
	got, err := store.GetRestaurant(ctx, r.ID)
	require.NoError(t, err)
	assert.True(t, got.AutoSchedule)
	assert.False(t, got.Open)
	assert.Equal(t, StatusClosed, got.Status)

	err = svc.Update(ctx, "root", 9999, Patch{WorkStart: ptr("08:00")})
	assert.Equal(t, http.StatusNotFound, apperr.StatusOf(err))
}

func TestListReconcilesScheduleAndSplitsDTO(t *testing.T) {
	svc, store := setupService(t, nil)
	ctx := context.Background()
	closed := seed(t, store, &models.Restaurant{Name: "Auto", Status: StatusClosed, AutoSchedule: true, WorkStart: "09:00", WorkEnd: "21:00", TokenPoster: "secret"})
	manual := seed(t, store, &models.Restaurant{Name: "Manual", Status: StatusClosed, WorkStart: "09:00", WorkEnd: "21:00"})

	rows, err := svc.List(ctx, false)
	require.NoError(t, err)
	public := rows.([]PublicDTO)
	require.Len(t, public, 2)
	assert.Equal(t, manual.ID, public[0].ID)
	assert.False(t, public[0].Open)
	assert.True(t, public[1].Open)
	assert.Equal(t, StatusOpen, public[1].Status)

	raw, err := json.Marshal(public[1])
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "tokenPoster")

	stored, err := store.GetRestaurant(ctx, closed.ID)
	require.NoError(t, err)
	assert.True(t, stored.Open)

	rows, err = svc.List(ctx, true)
	require.NoError(t, err)
	admin := rows.([]AdminDTO)
	assert.Equal(t, "secret", admin[1].TokenPoster)
	assert.Equal(t, models.IntegrationPoster, admin[1].IntegrationType)
}

func TestDeleteNeedsEditPermission(t *testing.T) {
	svc, store := setupService(t, grant("cashier", auth.PermChangeRestaurantStatus))
	r := seed(t, store, &models.Restaurant{Name: "A"})

	err := svc.Delete(context.Background(), "cashier", r.ID)
	assert.Equal(t, http.StatusForbidden, apperr.StatusOf(err))
	_, err = store.GetRestaurant(context.Background(), r.ID)
	assert.NoError(t, err)
}

func TestFees(t *testing.T) {
	svc, store := setupService(t, nil)
	ctx := context.Background()
	r := seed(t, store, &models.Restaurant{Name: "A"})

	price := json.Number("3000")
	id, err := svc.CreateFee(ctx, r.ID, FeeInput{Title: ptr(" Сервис "), Price: &price})
	require.NoError(t, err)

	_, err = svc.CreateFee(ctx, r.ID, FeeInput{Title: ptr("  ")})
	assert.Equal(t, http.StatusBadRequest, apperr.StatusOf(err))

	newPrice := json.Number("3500")
	require.NoError(t, svc.UpdateFee(ctx, id, FeeInput{Price: &newPrice}))
	assert.Equal(t, http.StatusBadRequest, apperr.StatusOf(svc.UpdateFee(ctx, id, FeeInput{})))
	assert.Equal(t, http.StatusNotFound, apperr.StatusOf(svc.UpdateFee(ctx, 9999, FeeInput{Title: ptr("x")})))

	fees, err := svc.ListFees(ctx, r.ID)
	require.NoError(t, err)
	require.Len(t, fees, 3)
	assert.Equal(t, "Сервис", fees[2].Title)
	assert.Equal(t, 3500.0, fees[2].Price)

	assert.Equal(t, http.StatusBadRequest, apperr.StatusOf(svc.DeleteFee(ctx, fees[0].ID)))
	assert.Equal(t, http.StatusNotFound, apperr.StatusOf(svc.DeleteFee(ctx, 9999)))
	require.NoError(t, svc.DeleteFee(ctx, id))

	fees, err = svc.ListFees(ctx, r.ID)
	require.NoError(t, err)
	assert.Len(t, fees, 2)
}
