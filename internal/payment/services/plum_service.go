// Package services is the Plum card gateway client.
package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"ms-restaurant/internal/logger"
	"ms-restaurant/internal/payment/storage"
)

const RequestTimeout = 10 * time.Second

var ErrNotConfigured = errors.New("payment base URL is not configured")

// PlumService calls the gateway with per-call settings, so edits to the stored
// credentials apply to the next request.
type PlumService struct {
	HTTPClient *http.Client
	Logger     *logger.Logger
}

func NewPlumService(log *logger.Logger) *PlumService {
	if log == nil {
		log = logger.Discard()
	}
	return &PlumService{HTTPClient: &http.Client{}, Logger: log}
}

// ChargeRequest is the body of paymentWithoutRegistration.
type ChargeRequest struct {
	Amount          int64  `json:"amount"`
	CardNumber      string `json:"cardNumber"`
	ExpireDate      string `json:"expireDate"`
	ExtraID         string `json:"extraId"`
	TransactionData string `json:"transactionData"`
}

// ExtraID tags a charge with the order it pays for.
func ExtraID(orderID int64) string {
	return fmt.Sprintf("order-%d", orderID)
}

// Result is a gateway reply. Data is nil when the body is not JSON.
type Result struct {
	StatusCode int
	Data       any
	Body       []byte
}

func (r *Result) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Failed is true on a non-2xx status or a truthy "error" field.
func (r *Result) Failed() bool {
	if !r.OK() {
		return true
	}
	record, ok := r.Data.(map[string]any)
	if !ok {
		return false
	}
	return truthy(record["error"])
}

// Payload is the verbatim JSON body, or "null" when it was not JSON.
func (r *Result) Payload() string {
	if r.Data == nil {
		return "null"
	}
	return string(bytes.TrimSpace(r.Body))
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case json.Number:
		f, err := t.Float64()
		return err != nil || f != 0
	case float64:
		return t != 0
	}
	return true
}

// AuthHeader is the Basic credential, empty unless both login and password are set.
func AuthHeader(settings storage.Settings) string {
	if settings.Login == "" || settings.Password == "" {
		return ""
	}
	credentials := settings.Login + ":" + settings.Password
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(credentials))
}

func (s *PlumService) post(ctx context.Context, settings storage.Settings, path string, payload any) (*Result, error) {
	if settings.BaseURL == "" {
		return nil, ErrNotConfigured
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", path, err)
	}

	ctx, cancel := context.WithTimeout(ctx, RequestTimeout)
	defer cancel()

	url := strings.TrimRight(settings.BaseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if header := AuthHeader(settings); header != "" {
		req.Header.Set("Authorization", header)
	}

	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("payment %s request failed: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", path, err)
	}
	result := &Result{StatusCode: resp.StatusCode, Body: raw}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var data any
	if err := dec.Decode(&data); err == nil {
		result.Data = data
	}
	return result, nil
}

// Charge starts a card payment; the gateway answers with an OTP session.
func (s *PlumService) Charge(ctx context.Context, settings storage.Settings, orderID int64, charge ChargeRequest) (*Result, error) {
	result, err := s.post(ctx, settings, "/Payment/paymentWithoutRegistration", charge)
	if err != nil {
		s.Logger.LogPayment("CHARGE", orderID, fmt.Sprintf("Request failed: %v", err))
		return nil, err
	}
	s.Logger.LogPayment("CHARGE", orderID, fmt.Sprintf("HTTP %d, failed=%t", result.StatusCode, result.Failed()))
	return result, nil
}

// Confirm completes a charge with the OTP the cardholder received.
func (s *PlumService) Confirm(ctx context.Context, settings storage.Settings, orderID, session int64, otp string) (*Result, error) {
	result, err := s.post(ctx, settings, "/Payment/confirmPayment", map[string]any{
		"session": session,
		"otp":     otp,
	})
	if err != nil {
		s.Logger.LogPayment("CONFIRM", orderID, fmt.Sprintf("Request failed: %v", err))
		return nil, err
	}
	s.Logger.LogPayment("CONFIRM", orderID, fmt.Sprintf("HTTP %d, failed=%t", result.StatusCode, result.Failed()))
	return result, nil
}

// SessionFromPayload reads result.session from a stored charge payload, 0 when absent.
func SessionFromPayload(payload string) int64 {
	if strings.TrimSpace(payload) == "" {
		return 0
	}
	dec := json.NewDecoder(strings.NewReader(payload))
	dec.UseNumber()
	var data struct {
		Result struct {
			Session any `json:"session"`
		} `json:"result"`
	}
	if err := dec.Decode(&data); err != nil {
		return 0
	}
	return ParseSession(data.Result.Session)
}

// ConfirmAccepted reports whether a stored confirm payload records an accepted payment.
// An empty payload means confirmation never ran.
func ConfirmAccepted(payload string) bool {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return false
	}
	dec := json.NewDecoder(strings.NewReader(payload))
	dec.UseNumber()
	var data any
	if err := dec.Decode(&data); err != nil {
		return false
	}
	result := Result{StatusCode: 200, Data: data}
	return !result.Failed()
}

// ParseSession accepts a JSON number or a numeric string.
func ParseSession(v any) int64 {
	var s string
	switch t := v.(type) {
	case json.Number:
		s = t.String()
	case float64:
		return int64(t)
	case string:
		s = strings.TrimSpace(t)
	default:
		return 0
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int64(f)
	}
	return 0
}
