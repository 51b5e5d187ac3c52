package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"ms-restaurant/internal/apperr"
	"ms-restaurant/internal/auth"
	"ms-restaurant/internal/config"
	"ms-restaurant/internal/database/dbtest"
	"ms-restaurant/internal/db"
	"ms-restaurant/internal/logger"
	"ms-restaurant/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockProfileSync struct {
	mock.Mock
}

func (m *MockProfileSync) SyncClientProfile(ctx context.Context, clientID, restaurantID int64) bool {
	return m.Called(ctx, clientID, restaurantID).Bool(0)
}

var fixedNow = time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)

func newAccounts(store *db.DB) *auth.Service {
	return auth.NewService(config.AuthConfig{
		AdminLogin:      "root",
		SessionSecret:   "session-secret",
		SessionTTL:      8 * time.Hour,
		ClientJWTSecret: "client-secret",
		ClientTokenTTL:  24 * time.Hour,
	}, store, nil)
}

func setupService(t *testing.T) (*Service, *db.DB, *MockProfileSync) {
	t.Helper()
	store := db.New(dbtest.New(t))
	profiles := new(MockProfileSync)
	svc := NewService(store, newAccounts(store), profiles, logger.Discard())
	svc.Now = func() time.Time { return fixedNow }
	return svc, store, profiles
}

func ptr[T any](v T) *T { return &v }

func TestCreateEmployee(t *testing.T) {
	svc, store, _ := setupService(t)
	ctx := context.Background()

	employee, err := svc.CreateEmployee(ctx, EmployeeInput{
		Name: ptr(" Kate "), Phone: ptr("+998901112233"), Login: ptr("kate"), Password: ptr("pw"),
		Permissions: &PermissionsInput{CanEditRestaurants: ptr(true)},
	})
	require.NoError(t, err)
	assert.Equal(t, "Kate", employee.Name)
	assert.Equal(t, "2025-03-01T09:30:00.000Z", employee.CreatedAt)
	assert.Equal(t, auth.Permissions{CanEditRestaurants: true}, employee.Permissions)

	stored, err := store.GetEmployeeByLogin(ctx, "kate")
	require.NoError(t, err)
	assert.True(t, auth.VerifyPassword("pw", stored.PasswordSalt, stored.PasswordHash))

	conflicts := []EmployeeInput{
		{Name: ptr("A"), Phone: ptr("+998900000001"), Login: ptr("root"), Password: ptr("pw")},
		{Name: ptr("B"), Phone: ptr("+998901112233"), Login: ptr("other"), Password: ptr("pw")},
		{Name: ptr("C"), Phone: ptr("+998900000002"), Login: ptr("kate"), Password: ptr("pw")},
	}
	for _, in := range conflicts {
		_, err := svc.CreateEmployee(ctx, in)
		assert.Equal(t, http.StatusConflict, apperr.StatusOf(err), *in.Name)
	}

	_, err = svc.CreateEmployee(ctx, EmployeeInput{Name: ptr("D"), Phone: ptr("+998900000003"), Login: ptr("d")})
	assert.Equal(t, http.StatusBadRequest, apperr.StatusOf(err))
}

func TestUpdateEmployee(t *testing.T) {
	svc, store, _ := setupService(t)
	ctx := context.Background()
	kate, err := svc.CreateEmployee(ctx, EmployeeInput{Name: ptr("Kate"), Phone: ptr("+998901112233"), Login: ptr("kate"), Password: ptr("pw")})
	require.NoError(t, err)
	_, err = svc.CreateEmployee(ctx, EmployeeInput{Name: ptr("Bob"), Phone: ptr("+998904445566"), Login: ptr("bob"), Password: ptr("pw")})
	require.NoError(t, err)

	require.NoError(t, svc.UpdateEmployee(ctx, kate.ID, EmployeeInput{
		Role:        ptr(" cashier "),
		Password:    ptr("new-pw"),
		Permissions: &PermissionsInput{CanManageEmployees: ptr(true)},
	}))
	stored, err := store.GetEmployee(ctx, kate.ID)
	require.NoError(t, err)
	assert.Equal(t, "cashier", stored.Role)
	assert.True(t, stored.CanManageEmployees)
	assert.False(t, stored.CanEditRestaurants)
	assert.True(t, auth.VerifyPassword("new-pw", stored.PasswordSalt, stored.PasswordHash))

	assert.Equal(t, http.StatusConflict, apperr.StatusOf(svc.UpdateEmployee(ctx, kate.ID, EmployeeInput{Login: ptr("bob")})))
	assert.Equal(t, http.StatusConflict, apperr.StatusOf(svc.UpdateEmployee(ctx, kate.ID, EmployeeInput{Login: ptr("root")})))
	assert.Equal(t, http.StatusConflict, apperr.StatusOf(svc.UpdateEmployee(ctx, kate.ID, EmployeeInput{Phone: ptr("+998904445566")})))
	assert.NoError(t, svc.UpdateEmployee(ctx, kate.ID, EmployeeInput{Login: ptr("kate")}))
	assert.Equal(t, http.StatusBadRequest, apperr.StatusOf(svc.UpdateEmployee(ctx, kate.ID, EmployeeInput{Password: ptr("  ")})))
	assert.Equal(t, http.StatusNotFound, apperr.StatusOf(svc.UpdateEmployee(ctx, 9999, EmployeeInput{Name: ptr("x")})))

	require.NoError(t, svc.DeleteEmployee(ctx, kate.ID))
	assert.Equal(t, http.StatusNotFound, apperr.StatusOf(svc.DeleteEmployee(ctx, kate.ID)))
	list, err := svc.ListEmployees(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "bob", list[0].Login)
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	session, err := svc.Register(ctx, Credentials{Phone: ptr("90 123 45 67"), Password: ptr("secret"), Name: ptr(" Ali ")})
	require.NoError(t, err)
	assert.Equal(t, "+998901234567", session.Client.Phone)
	assert.Equal(t, "Ali", session.Client.Name)
	claims, err := auth.VerifyClientToken(session.AccessToken, "client-secret", time.Now())
	require.NoError(t, err)
	assert.Equal(t, session.Client.ID, claims.ClientID)

	_, err = svc.Register(ctx, Credentials{Phone: ptr("998901234567"), Password: ptr("x"), Name: ptr("Dup")})
	assert.Equal(t, http.StatusConflict, apperr.StatusOf(err))
	_, err = svc.Register(ctx, Credentials{Phone: ptr("901234568"), Password: ptr("x")})
	assert.Equal(t, http.StatusBadRequest, apperr.StatusOf(err))

	again, err := svc.Login(ctx, Credentials{Phone: ptr("+998 90 123 45 67"), Password: ptr("secret")})
	require.NoError(t, err)
	assert.Equal(t, session.Client.ID, again.Client.ID)

	_, err = svc.Login(ctx, Credentials{Phone: ptr("901234567"), Password: ptr("wrong")})
	assert.Equal(t, http.StatusUnauthorized, apperr.StatusOf(err))
	_, err = svc.Login(ctx, Credentials{Phone: ptr("909999999"), Password: ptr("secret")})
	assert.Equal(t, http.StatusUnauthorized, apperr.StatusOf(err))
	_, err = svc.Login(ctx, Credentials{Phone: ptr("901234567")})
	assert.Equal(t, http.StatusBadRequest, apperr.StatusOf(err))
}

func TestChangePassword(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()
	session, err := svc.Register(ctx, Credentials{Phone: ptr("901234567"), Password: ptr("old"), Name: ptr("Ali")})
	require.NoError(t, err)
	id := session.Client.ID

	assert.Equal(t, http.StatusUnauthorized, apperr.StatusOf(svc.ChangePassword(ctx, id, PasswordChange{OldPassword: ptr("nope"), NewPassword: ptr("new")})))
	assert.Equal(t, http.StatusBadRequest, apperr.StatusOf(svc.ChangePassword(ctx, id, PasswordChange{OldPassword: ptr("old")})))
	require.NoError(t, svc.ChangePassword(ctx, id, PasswordChange{OldPassword: ptr("old"), NewPassword: ptr("new")}))

	_, err = svc.Login(ctx, Credentials{Phone: ptr("901234567"), Password: ptr("new")})
	assert.NoError(t, err)

	require.NoError(t, svc.ResetClientPassword(ctx, id, ptr("reset")))
	_, err = svc.Login(ctx, Credentials{Phone: ptr("901234567"), Password: ptr("reset")})
	assert.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, apperr.StatusOf(svc.ResetClientPassword(ctx, 9999, ptr("x"))))
	assert.Equal(t, http.StatusBadRequest, apperr.StatusOf(svc.ResetClientPassword(ctx, id, nil)))
}

func TestUpdateProfileSyncsPOS(t *testing.T) {
	svc, store, profiles := setupService(t)
	ctx := context.Background()
	session, err := svc.Register(ctx, Credentials{Phone: ptr("901234567"), Password: ptr("pw"), Name: ptr("Ali")})
	require.NoError(t, err)
	id := session.Client.ID
	profiles.On("SyncClientProfile", mock.Anything, id, int64(3)).Return(true).Once()

	name, posterOK, err := svc.UpdateProfile(ctx, id, ProfileInput{Name: ptr(" Vali "), RestaurantID: ptr(json.Number("3"))})
	require.NoError(t, err)
	assert.Equal(t, "Vali", name)
	assert.True(t, posterOK)

	_, posterOK, err = svc.UpdateProfile(ctx, id, ProfileInput{Name: ptr("Vali")})
	require.NoError(t, err)
	assert.False(t, posterOK)
	profiles.AssertNumberOfCalls(t, "SyncClientProfile", 1)

	stored, err := store.GetClient(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Vali", stored.Name)

	_, _, err = svc.UpdateProfile(ctx, id, ProfileInput{Name: ptr(" ")})
	assert.Equal(t, http.StatusBadRequest, apperr.StatusOf(err))
}

func TestAddresses(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()
	ali, err := svc.Register(ctx, Credentials{Phone: ptr("901234567"), Password: ptr("pw"), Name: ptr("Ali")})
	require.NoError(t, err)
	vali, err := svc.Register(ctx, Credentials{Phone: ptr("901234568"), Password: ptr("pw"), Name: ptr("Vali")})
	require.NoError(t, err)

	home, err := svc.AddAddress(ctx, ali.Client.ID, AddressInput{Title: ptr("Home"), Address: ptr(" Chilonzor 5 ")})
	require.NoError(t, err)
	assert.Equal(t, "Chilonzor 5", home.Address)

	_, err = svc.AddAddress(ctx, ali.Client.ID, AddressInput{Title: ptr("Empty")})
	assert.Equal(t, http.StatusBadRequest, apperr.StatusOf(err))
	_, err = svc.AddAddress(ctx, 9999, AddressInput{Address: ptr("x")})
	assert.Equal(t, http.StatusNotFound, apperr.StatusOf(err))

	assert.Equal(t, http.StatusNotFound, apperr.StatusOf(svc.DeleteAddress(ctx, vali.Client.ID, home.ID)))
	list, err := svc.ListAddresses(ctx, ali.Client.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, svc.DeleteAddress(ctx, ali.Client.ID, home.ID))
	list, err = svc.ListAddresses(ctx, ali.Client.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestBanners(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	first, err := svc.CreateBanner(ctx, BannerInput{Title: ptr("Spring")})
	require.NoError(t, err)
	second, err := svc.CreateBanner(ctx, BannerInput{Title: ptr("Hidden"), Status: ptr("Скрыт"), Image: ptr("/b.png")})
	require.NoError(t, err)
	_, err = svc.CreateBanner(ctx, BannerInput{Title: ptr(" ")})
	assert.Equal(t, http.StatusBadRequest, apperr.StatusOf(err))

	all, err := svc.ListBanners(ctx, false)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, defaultBannerImage, all[0].Image)
	assert.Equal(t, "2025-03-01", all[0].AddedAt)
	assert.True(t, all[0].Open)
	assert.False(t, all[1].Open)

	active, err := svc.ListBanners(ctx, true)
	require.NoError(t, err)
	assert.Len(t, active, 1)

	require.NoError(t, svc.ReorderBanners(ctx, []any{json.Number(jsonID(second)), json.Number(jsonID(first))}))
	all, err = svc.ListBanners(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, second, all[0].ID)

	assert.Equal(t, http.StatusBadRequest, apperr.StatusOf(svc.ReorderBanners(ctx, nil)))
	assert.Equal(t, http.StatusBadRequest, apperr.StatusOf(svc.ReorderBanners(ctx, []any{json.Number("1"), "2"})))
	assert.Equal(t, http.StatusBadRequest, apperr.StatusOf(svc.ReorderBanners(ctx, []any{json.Number("1.5")})))

	require.NoError(t, svc.DeleteBanner(ctx, first))
	assert.Equal(t, http.StatusNotFound, apperr.StatusOf(svc.DeleteBanner(ctx, first)))
}

func jsonID(id int64) string {
	raw, _ := json.Marshal(id)
	return string(raw)
}

func TestNewsletters(t *testing.T) {
	svc, store, _ := setupService(t)
	ctx := context.Background()

	splash, err := svc.CreateNewsletter(ctx, NewsletterInput{Title: ptr("Hi"), Message: ptr("Welcome"), Channel: ptr(models.ChannelSplash)})
	require.NoError(t, err)
	assert.Equal(t, models.NewsletterQueued, splash.Status)
	_, err = svc.CreateNewsletter(ctx, NewsletterInput{Title: ptr("Push"), Message: ptr("m"), Channel: ptr(models.ChannelPush)})
	require.NoError(t, err)
	_, err = svc.CreateNewsletter(ctx, NewsletterInput{Title: ptr("x"), Message: ptr("m"), Channel: ptr("sms")})
	assert.Equal(t, http.StatusBadRequest, apperr.StatusOf(err))

	all, err := svc.ListNewsletters(ctx, "sms", "", false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	items, err := svc.ClientNewsletters(ctx, "", true)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, models.NewsletterDelivered, items[0].Status)
	assert.Equal(t, "2025-03-01T09:30:00.000Z", items[0].DeliveredAt)

	delivered, err := store.ListNewsletters(ctx, "", models.NewsletterDelivered)
	require.NoError(t, err)
	require.Len(t, delivered, 1)
	assert.Equal(t, splash.ID, delivered[0].ID)

	_, err = svc.ClientNewsletters(ctx, "sms", false)
	assert.Equal(t, http.StatusBadRequest, apperr.StatusOf(err))

	require.NoError(t, svc.DeleteNewsletter(ctx, splash.ID))
	assert.Equal(t, http.StatusNotFound, apperr.StatusOf(svc.DeleteNewsletter(ctx, splash.ID)))
	assert.Equal(t, http.StatusBadRequest, apperr.StatusOf(svc.DeleteNewsletter(ctx, 0)))
	items, err = svc.ClientNewsletters(ctx, models.ChannelSplash, false)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestSupportContact(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	empty, err := svc.SupportContact(ctx)
	require.NoError(t, err)
	assert.Equal(t, SupportContact{}, empty)

	_, err = svc.UpdateSupportContact(ctx, SupportInput{Phone: ptr(" +998712000000 "), MessageRu: ptr("Звоните")})
	require.NoError(t, err)
	got, err := svc.SupportContact(ctx)
	require.NoError(t, err)
	assert.Equal(t, SupportContact{Phone: "+998712000000", MessageRu: "Звоните"}, got)
}
