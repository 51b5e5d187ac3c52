// Package poster talks to the Poster POS API.
package poster

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"ms-restaurant/internal/logger"
)

const (
	DefaultBaseURL = "https://joinposter.com/api"
	ClientTimeout  = 8 * time.Second
	OrderTimeout   = 10 * time.Second
)

// Client calls POS methods authenticated by a per-restaurant token.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Logger     *logger.Logger
}

func NewClient(baseURL string, log *logger.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{},
		Logger:     log,
	}
}

// Response is a POS reply. Data is the decoded JSON body, nil when the body is not JSON.
type Response struct {
	StatusCode int
	Data       any
	Body       []byte
}

func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// APIError is the provider error message carried in the body, if any.
func (r *Response) APIError() string {
	return ParseError(r.Data)
}

// Failed is true on a non-2xx status or a provider error in the body.
func (r *Response) Failed() bool {
	return !r.OK() || r.APIError() != ""
}

// Payload is the verbatim JSON body, or "null" when the body was not JSON.
func (r *Response) Payload() string {
	if r.Data == nil {
		return "null"
	}
	return string(bytes.TrimSpace(r.Body))
}

func (c *Client) methodURL(method, token string, query url.Values) string {
	if query == nil {
		query = url.Values{}
	}
	query.Set("token", token)
	return fmt.Sprintf("%s/%s?%s", c.BaseURL, method, query.Encode())
}

// do sends the request and decodes the reply. Transport failures and timeouts are errors;
// HTTP error statuses are not.
func (c *Client) do(ctx context.Context, method, token, httpMethod string, query url.Values, contentType string, body io.Reader, timeout time.Duration) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, httpMethod, c.methodURL(method, token, query), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request: %w", method, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		c.Logger.LogPoster(method, token, fmt.Sprintf("Request failed: %v", err))
		return nil, fmt.Errorf("poster %s request failed: %w", method, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", method, err)
	}

	out := &Response{StatusCode: resp.StatusCode, Body: raw}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var data any
	if err := dec.Decode(&data); err == nil {
		out.Data = data
	}

	c.Logger.LogPoster(method, token, fmt.Sprintf("HTTP %d in %s", resp.StatusCode, time.Since(start).Round(time.Millisecond)))
	return out, nil
}

func (c *Client) postJSON(ctx context.Context, method, token string, payload any) (*Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", method, err)
	}
	return c.do(ctx, method, token, http.MethodPost, nil, "application/json", bytes.NewReader(body), ClientTimeout)
}

func (c *Client) postForm(ctx context.Context, method, token string, form url.Values, timeout time.Duration) (*Response, error) {
	return c.do(ctx, method, token, http.MethodPost, nil, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()), timeout)
}

func (c *Client) get(ctx context.Context, method, token string, query url.Values) (*Response, error) {
	return c.do(ctx, method, token, http.MethodGet, query, "", nil, ClientTimeout)
}

// ---------------- CLIENTS ----------------

// FindClientByPhone returns the first POS client id matching phone, "" when none.
func (c *Client) FindClientByPhone(ctx context.Context, token, phone string) (string, error) {
	resp, err := c.get(ctx, "clients.getClients", token, url.Values{
		"phone":  {phone},
		"num":    {"1"},
		"offset": {"0"},
	})
	if err != nil {
		return "", err
	}
	if !resp.OK() {
		return "", nil
	}
	return FirstClientID(resp.Data), nil
}

// CreateClient creates a POS client and returns its id ("" when the reply carries none).
func (c *Client) CreateClient(ctx context.Context, token, phone, name string) (string, *Response, error) {
	resp, err := c.postJSON(ctx, "clients.create", token, map[string]any{
		"phone":       phone,
		"client_name": name,
	})
	if err != nil {
		return "", nil, err
	}
	if !resp.OK() {
		return "", resp, nil
	}
	return ExtractClientID(resp.Data), resp, nil
}

func (c *Client) UpdateClient(ctx context.Context, token, clientID, phone, name string) (*Response, error) {
	return c.postJSON(ctx, "clients.update", token, map[string]any{
		"client_id":   clientID,
		"phone":       phone,
		"client_name": name,
	})
}

// ChangeClientBonus applies a signed delta to the client's bonus balance.
func (c *Client) ChangeClientBonus(ctx context.Context, token, clientID string, delta int64) (*Response, error) {
	return c.postForm(ctx, "clients.changeClientBonus", token, url.Values{
		"client_id": {clientID},
		"count":     {strconv.FormatInt(delta, 10)},
	}, ClientTimeout)
}

func (c *Client) GetClient(ctx context.Context, token, clientID string) (*Response, error) {
	return c.get(ctx, "clients.getClient", token, url.Values{"client_id": {clientID}})
}

// ---------------- INCOMING ORDERS ----------------

// Product is one incoming order line; Price is in major units.
type Product struct {
	ProductID string
	Count     float64
	Price     float64
}

// IncomingOrder is the form sent to incomingOrders.createIncomingOrder.
// ClientID wins over Phone/FirstName when set.
type IncomingOrder struct {
	SpotID        string
	ClientID      string
	Phone         string
	FirstName     string
	ServiceMode   int
	DeliveryPrice float64
	Address       string
	Comment       string
	Products      []Product
}

// DefaultComment is sent when the order has no comment of its own.
const DefaultComment = "Order from app"

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// toMinor converts major units to rounded POS minor units.
func toMinor(v float64) string {
	return strconv.FormatInt(int64(math.Round(v*100)), 10)
}

// Form encodes the order. Money goes out in minor units.
func (o IncomingOrder) Form() url.Values {
	form := url.Values{}
	form.Set("spot_id", o.SpotID)
	if o.ClientID != "" {
		form.Set("client_id", o.ClientID)
	} else {
		form.Set("phone", o.Phone)
		if o.FirstName != "" {
			form.Set("first_name", o.FirstName)
		}
	}
	if o.ServiceMode != 0 {
		form.Set("service_mode", strconv.Itoa(o.ServiceMode))
	}
	if o.DeliveryPrice > 0 {
		form.Set("delivery_price", toMinor(o.DeliveryPrice))
	}
	if o.Address != "" {
		form.Set("client_address[address1]", o.Address)
	}
	comment := o.Comment
	if comment == "" {
		comment = DefaultComment
	}
	form.Set("comment", comment)
	for i, p := range o.Products {
		prefix := fmt.Sprintf("products[%d]", i)
		form.Set(prefix+"[product_id]", p.ProductID)
		form.Set(prefix+"[count]", formatNumber(p.Count))
		form.Set(prefix+"[price]", toMinor(p.Price))
	}
	return form
}

func (c *Client) CreateIncomingOrder(ctx context.Context, token string, order IncomingOrder) (*Response, error) {
	return c.postForm(ctx, "incomingOrders.createIncomingOrder", token, order.Form(), OrderTimeout)
}

func (c *Client) GetIncomingOrder(ctx context.Context, token, incomingID string) (*Response, error) {
	return c.get(ctx, "incomingOrders.getIncomingOrder", token, url.Values{"incoming_order_id": {incomingID}})
}

// ---------------- MENU ----------------

func spotQuery(spotID string) url.Values {
	query := url.Values{}
	if spotID != "" {
		query.Set("spot_id", spotID)
	}
	return query
}

func (c *Client) GetCategories(ctx context.Context, token, spotID string) (*Response, error) {
	return c.do(ctx, "menu.getCategories", token, http.MethodGet, spotQuery(spotID), "", nil, OrderTimeout)
}

func (c *Client) GetProducts(ctx context.Context, token, spotID string) (*Response, error) {
	return c.do(ctx, "menu.getProducts", token, http.MethodGet, spotQuery(spotID), "", nil, OrderTimeout)
}
