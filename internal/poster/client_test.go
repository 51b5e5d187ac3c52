package poster

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	Method      string
	Path        string
	Query       url.Values
	ContentType string
	Body        string
}

func newTestServer(t *testing.T, status int, body string) (*Client, *[]recordedRequest) {
	t.Helper()
	var requests []recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		requests = append(requests, recordedRequest{
			Method:      r.Method,
			Path:        r.URL.Path,
			Query:       r.URL.Query(),
			ContentType: r.Header.Get("Content-Type"),
			Body:        string(raw),
		})
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/api/", nil), &requests
}

func TestCreateIncomingOrderForm(t *testing.T) {
	client, requests := newTestServer(t, http.StatusOK, `{"response":{"incoming_order_id":9}}`)

	resp, err := client.CreateIncomingOrder(context.Background(), "tok", IncomingOrder{
		SpotID:        "1",
		Phone:         "+998901234567",
		FirstName:     "Ali",
		ServiceMode:   3,
		DeliveryPrice: 15000,
		Address:       "Chilonzor 1",
		Products: []Product{
			{ProductID: "42", Count: 2, Price: 25000.5},
			{ProductID: "43", Count: 1.5, Price: 100},
		},
	})
	require.NoError(t, err)
	assert.False(t, resp.Failed())
	assert.Equal(t, "9", ParseIncomingMeta(resp.Data).IncomingID)

	require.Len(t, *requests, 1)
	req := (*requests)[0]
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/api/incomingOrders.createIncomingOrder", req.Path)
	assert.Equal(t, "tok", req.Query.Get("token"))
	assert.Equal(t, "application/x-www-form-urlencoded", req.ContentType)

	form, err := url.ParseQuery(req.Body)
	require.NoError(t, err)
	assert.Equal(t, "1", form.Get("spot_id"))
	assert.Equal(t, "+998901234567", form.Get("phone"))
	assert.Equal(t, "Ali", form.Get("first_name"))
	assert.Empty(t, form.Get("client_id"))
	assert.Equal(t, "3", form.Get("service_mode"))
	assert.Equal(t, "1500000", form.Get("delivery_price"))
	assert.Equal(t, "Chilonzor 1", form.Get("client_address[address1]"))
	assert.Equal(t, DefaultComment, form.Get("comment"))
	assert.Equal(t, "42", form.Get("products[0][product_id]"))
	assert.Equal(t, "2", form.Get("products[0][count]"))
	assert.Equal(t, "2500050", form.Get("products[0][price]"))
	assert.Equal(t, "1.5", form.Get("products[1][count]"))
	assert.Equal(t, "10000", form.Get("products[1][price]"))
}

func TestIncomingOrderFormPrefersClientID(t *testing.T) {
	form := IncomingOrder{SpotID: "1", ClientID: "77", Phone: "+998", FirstName: "Ali", Comment: "no onions"}.Form()
	assert.Equal(t, "77", form.Get("client_id"))
	assert.Empty(t, form.Get("phone"))
	assert.Empty(t, form.Get("first_name"))
	assert.Empty(t, form.Get("service_mode"))
	assert.Empty(t, form.Get("delivery_price"))
	assert.Equal(t, "no onions", form.Get("comment"))
}

func TestResponseFailureModes(t *testing.T) {
	client, _ := newTestServer(t, http.StatusOK, `{"error":30,"message":"bad token"}`)
	resp, err := client.GetIncomingOrder(context.Background(), "tok", "9")
	require.NoError(t, err)
	assert.True(t, resp.OK())
	assert.True(t, resp.Failed())
	assert.Equal(t, "30", resp.APIError())
	assert.JSONEq(t, `{"error":30,"message":"bad token"}`, resp.Payload())

	client, _ = newTestServer(t, http.StatusInternalServerError, `<html>oops</html>`)
	resp, err = client.GetIncomingOrder(context.Background(), "tok", "9")
	require.NoError(t, err)
	assert.True(t, resp.Failed())
	assert.Nil(t, resp.Data)
	assert.Equal(t, "null", resp.Payload())
}

func TestTimeoutIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	t.Cleanup(srv.Close)
	client := NewClient(srv.URL, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := client.GetClient(ctx, "tok", "1")
	assert.Error(t, err)
}

func TestCreateClientSendsJSON(t *testing.T) {
	client, requests := newTestServer(t, http.StatusOK, `{"response":1042}`)

	id, _, err := client.CreateClient(context.Background(), "tok", "+998901234567", "Ali")
	require.NoError(t, err)
	assert.Equal(t, "1042", id)

	req := (*requests)[0]
	assert.Equal(t, "/api/clients.create", req.Path)
	assert.Equal(t, "application/json", req.ContentType)
	var body map[string]string
	require.NoError(t, json.Unmarshal([]byte(req.Body), &body))
	assert.Equal(t, map[string]string{"phone": "+998901234567", "client_name": "Ali"}, body)
}

func TestCreateClientHTTPError(t *testing.T) {
	client, _ := newTestServer(t, http.StatusBadRequest, `{"error":"dup"}`)
	id, resp, err := client.CreateClient(context.Background(), "tok", "+998", "Ali")
	require.NoError(t, err)
	assert.Empty(t, id)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestFindClientByPhone(t *testing.T) {
	client, requests := newTestServer(t, http.StatusOK, `{"response":[{"client_id":77}]}`)
	id, err := client.FindClientByPhone(context.Background(), "tok", "+998901234567")
	require.NoError(t, err)
	assert.Equal(t, "77", id)

	q := (*requests)[0].Query
	assert.Equal(t, "+998901234567", q.Get("phone"))
	assert.Equal(t, "1", q.Get("num"))
	assert.Equal(t, "0", q.Get("offset"))
}

func TestChangeClientBonusForm(t *testing.T) {
	client, requests := newTestServer(t, http.StatusOK, `{"response":500}`)
	resp, err := client.ChangeClientBonus(context.Background(), "tok", "77", -30)
	require.NoError(t, err)
	assert.Equal(t, 500.0, BonusBalance(resp.Data))

	form, err := url.ParseQuery((*requests)[0].Body)
	require.NoError(t, err)
	assert.Equal(t, "77", form.Get("client_id"))
	assert.Equal(t, "-30", form.Get("count"))
}

func TestMenuRequestsCarrySpot(t *testing.T) {
	client, requests := newTestServer(t, http.StatusOK, `{"response":[]}`)
	_, err := client.GetCategories(context.Background(), "tok", "3")
	require.NoError(t, err)
	_, err = client.GetProducts(context.Background(), "tok", "")
	require.NoError(t, err)

	assert.Equal(t, "/api/menu.getCategories", (*requests)[0].Path)
	assert.Equal(t, "3", (*requests)[0].Query.Get("spot_id"))
	assert.Equal(t, "/api/menu.getProducts", (*requests)[1].Path)
	assert.False(t, (*requests)[1].Query.Has("spot_id"))
}
