package services

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ms-restaurant/internal/payment/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidCardNumber(t *testing.T) {
	tests := []struct {
		number string
		want   bool
	}{
		{"4111111111111111", true},
		{"4111111111111112", false},
		{"4111 1111 1111 1111", true},
		{"8600 4954 7331 6478", true},
		{"411111111111", false},
		{"41111111111111111111", false},
		{"4111-1111-1111-1111", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ValidCardNumber(tt.number), tt.number)
	}
}

func TestValidExpireDate(t *testing.T) {
	now := time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		value string
		want  bool
	}{
		{"2603", true},
		{"2602", false},
		{"2512", false},
		{"2701", true},
		{"2613", false},
		{"2600", false},
		{"263", false},
		{"26a3", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ValidExpireDate(tt.value, now), tt.value)
	}
}

func TestAuthHeaderNeedsBothParts(t *testing.T) {
	assert.Empty(t, AuthHeader(storage.Settings{Login: "shop"}))
	assert.Empty(t, AuthHeader(storage.Settings{Password: "secret"}))
	assert.Equal(t, "Basic c2hvcDpzZWNyZXQ=", AuthHeader(storage.Settings{Login: "shop", Password: "secret"}))
}

type capturedRequest struct {
	Path   string
	Auth   string
	Body   map[string]any
	Called bool
}

func newGateway(t *testing.T, status int, reply string) (string, *capturedRequest) {
	t.Helper()
	captured := &capturedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.Called = true
		captured.Path = r.URL.Path
		captured.Auth = r.Header.Get("Authorization")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &captured.Body)
		w.WriteHeader(status)
		_, _ = io.WriteString(w, reply)
	}))
	t.Cleanup(srv.Close)
	return srv.URL, captured
}

func TestChargeSendsCardData(t *testing.T) {
	base, captured := newGateway(t, http.StatusOK, `{"result":{"session":123456},"error":null}`)
	svc := NewPlumService(nil)

	result, err := svc.Charge(context.Background(), storage.Settings{BaseURL: base + "/", Login: "shop", Password: "secret"}, 15, ChargeRequest{
		Amount:     27000,
		CardNumber: "8600495473316478",
		ExpireDate: "2712",
		ExtraID:    ExtraID(15),
	})
	require.NoError(t, err)
	assert.False(t, result.Failed())
	assert.Equal(t, int64(123456), SessionFromPayload(result.Payload()))

	assert.Equal(t, "/Payment/paymentWithoutRegistration", captured.Path)
	assert.Equal(t, "Basic c2hvcDpzZWNyZXQ=", captured.Auth)
	assert.Equal(t, float64(27000), captured.Body["amount"])
	assert.Equal(t, "8600495473316478", captured.Body["cardNumber"])
	assert.Equal(t, "2712", captured.Body["expireDate"])
	assert.Equal(t, "order-15", captured.Body["extraId"])
	assert.Equal(t, "", captured.Body["transactionData"])
}

func TestChargeWithoutCredentialsSendsNoAuth(t *testing.T) {
	base, captured := newGateway(t, http.StatusOK, `{"result":{"session":1}}`)
	_, err := NewPlumService(nil).Charge(context.Background(), storage.Settings{BaseURL: base}, 1, ChargeRequest{})
	require.NoError(t, err)
	assert.Empty(t, captured.Auth)
}

func TestResultFailureDetection(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		failed bool
	}{
		{"ok", http.StatusOK, `{"result":{"session":1}}`, false},
		{"null error", http.StatusOK, `{"error":null}`, false},
		{"empty error", http.StatusOK, `{"error":""}`, false},
		{"error string", http.StatusOK, `{"error":"Card blocked"}`, true},
		{"error object", http.StatusOK, `{"error":{"code":-31}}`, true},
		{"http error", http.StatusBadRequest, `{}`, true},
		{"not json", http.StatusOK, `oops`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base, _ := newGateway(t, tt.status, tt.body)
			result, err := NewPlumService(nil).Confirm(context.Background(), storage.Settings{BaseURL: base}, 1, 5, "0000")
			require.NoError(t, err)
			assert.Equal(t, tt.failed, result.Failed())
		})
	}
}

func TestConfirmSendsSessionAndOTP(t *testing.T) {
	base, captured := newGateway(t, http.StatusOK, `{"result":{"status":"paid"}}`)
	result, err := NewPlumService(nil).Confirm(context.Background(), storage.Settings{BaseURL: base}, 9, 77, "123456")
	require.NoError(t, err)
	assert.JSONEq(t, `{"result":{"status":"paid"}}`, result.Payload())
	assert.Equal(t, "/Payment/confirmPayment", captured.Path)
	assert.Equal(t, float64(77), captured.Body["session"])
	assert.Equal(t, "123456", captured.Body["otp"])
}

func TestNotConfigured(t *testing.T) {
	_, err := NewPlumService(nil).Charge(context.Background(), storage.Settings{}, 1, ChargeRequest{})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestNonJSONPayloadIsNull(t *testing.T) {
	result := &Result{StatusCode: http.StatusBadGateway, Body: []byte("<html>")}
	assert.Equal(t, "null", result.Payload())
}

func TestSessionParsing(t *testing.T) {
	assert.Equal(t, int64(42), SessionFromPayload(`{"result":{"session":42}}`))
	assert.Equal(t, int64(42), SessionFromPayload(`{"result":{"session":"42"}}`))
	assert.Equal(t, int64(0), SessionFromPayload(`{"result":{}}`))
	assert.Equal(t, int64(0), SessionFromPayload(`not json`))
	assert.Equal(t, int64(0), SessionFromPayload(""))

	assert.Equal(t, int64(7), ParseSession(float64(7)))
	assert.Equal(t, int64(7), ParseSession(json.Number("7")))
	assert.Equal(t, int64(0), ParseSession("abc"))
	assert.Equal(t, int64(0), ParseSession(nil))
}

func TestConfirmAccepted(t *testing.T) {
	assert.True(t, ConfirmAccepted(`{"result":{"status":"ok"}}`))
	assert.True(t, ConfirmAccepted(`{"error":null,"result":{}}`))
	assert.False(t, ConfirmAccepted(""))
	assert.False(t, ConfirmAccepted(`{"error":"wrong otp"}`))
	assert.False(t, ConfirmAccepted(`{"error":{"code":-31}}`))
}
