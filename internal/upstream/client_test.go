package upstream

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alturino/storefront/internal/config"
	inErrors "github.com/Alturino/storefront/internal/errors"
	"github.com/Alturino/storefront/internal/log"
)

const productsJson = `[
	{"id":1,"title":"Backpack","price":109.95,"category":"men's clothing","rating":{"rate":3.9,"count":120}},
	{"id":2,"title":"T-Shirt","price":22.3}
]`

func setup(t *testing.T, timeout time.Duration, router *mux.Router) *Client {
	t.Helper()
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return NewClient(config.Upstream{BaseURL: server.URL + "/", Timeout: timeout})
}

func TestGetProducts(t *testing.T) {
	router := mux.NewRouter()
	router.HandleFunc("/products", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, productsJson)
	}).Methods(http.MethodGet)
	client := setup(t, time.Second, router)

	products, err := client.GetProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, 1, products[0].ID)
	assert.True(t, decimal.RequireFromString("109.95").Equal(products[0].Price))
	assert.Equal(t, "Backpack", products[0].Title)
	require.NotNil(t, products[0].Rating)
	assert.Equal(t, 120, products[0].Rating.Count)
	assert.Nil(t, products[1].Rating)
}

func TestGetProductsFailures(t *testing.T) {
	tests := []struct {
		name               string
		handler            http.HandlerFunc
		timeout            time.Duration
		expectedStatusCode int
		expectedTimeout    bool
	}{
		{
			name: "given upstream server error should return upstream unavailable with status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
			},
			timeout:            time.Second,
			expectedStatusCode: http.StatusServiceUnavailable,
		},
		{
			name: "given malformed body should return upstream unavailable",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, `{"not":"a list"`)
			},
			timeout: time.Second,
		},
		{
			name: "given slow upstream should return upstream timeout",
			handler: func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-time.After(time.Second):
				case <-r.Context().Done():
				}
			},
			timeout:         50 * time.Millisecond,
			expectedTimeout: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := mux.NewRouter()
			router.HandleFunc("/products", tt.handler)
			client := setup(t, tt.timeout, router)

			products, err := client.GetProducts(context.Background())
			assert.Nil(t, products)
			assert.ErrorIs(t, err, inErrors.ErrUpstreamUnavailable)

			var upstreamErr *inErrors.UpstreamError
			require.ErrorAs(t, err, &upstreamErr)
			assert.Equal(t, tt.expectedStatusCode, upstreamErr.StatusCode)
			assert.Equal(t, tt.expectedTimeout, upstreamErr.Timeout)
		})
	}
}

func TestGetProductsUnreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	baseURL := server.URL
	server.Close()
	client := NewClient(config.Upstream{BaseURL: baseURL, Timeout: time.Second})

	_, err := client.GetProducts(context.Background())
	assert.ErrorIs(t, err, inErrors.ErrUpstreamUnavailable)
}

func TestFindCartsByUserId(t *testing.T) {
	router := mux.NewRouter()
	router.HandleFunc("/carts/user/{userId}", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", mux.Vars(r)["userId"])
		assert.Equal(t, "req-42", r.Header.Get("X-Request-Id"))
		_, _ = io.WriteString(w, `[
			{"id":1,"userId":1,"date":"2020-03-02T00:00:00.000Z","products":[{"productId":1,"quantity":4}],"__v":0},
			{"id":2,"userId":1,"products":[{"productId":2,"quantity":1,"price":5.5}]}
		]`)
	}).Methods(http.MethodGet)
	client := setup(t, time.Second, router)

	c := log.AttachRequestIDToContext(context.Background(), "req-42")
	carts, err := client.FindCartsByUserId(c, 1)
	require.NoError(t, err)
	require.Len(t, carts, 2)
	assert.Equal(t, "2020-03-02T00:00:00.000Z", carts[0].Date)
	assert.Nil(t, carts[0].Products[0].Price)
	require.NotNil(t, carts[1].Products[0].Price)
	assert.True(t, decimal.RequireFromString("5.5").Equal(*carts[1].Products[0].Price))
}

func TestCartForwarding(t *testing.T) {
	requestBody := json.RawMessage(
		`{"userId":1, "date":"2020-01-02T00:00:00.000Z", "note":"gift", "products":[{"productId":1,"quantity":5}]}`,
	)
	upstreamBody := `{"id":11,"userId":1,"date":"2020-01-02T00:00:00.000Z","products":[{"productId":1,"quantity":5}],"__v":0}`

	router := mux.NewRouter()
	handler := func(statusCode int) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodDelete {
				received, err := io.ReadAll(r.Body)
				require.NoError(t, err)
				assert.Equal(t, string(requestBody), string(received))
			}
			w.WriteHeader(statusCode)
			_, _ = io.WriteString(w, upstreamBody)
		}
	}
	router.HandleFunc("/carts/404", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}).Methods(http.MethodPut)
	router.HandleFunc("/carts", handler(http.StatusCreated)).Methods(http.MethodPost)
	router.HandleFunc("/carts/{cartId}", handler(http.StatusOK)).Methods(http.MethodPut, http.MethodDelete)
	client := setup(t, time.Second, router)
	c := context.Background()

	resp, err := client.InsertCart(c, requestBody)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, upstreamBody, string(resp.Body))

	resp, err = client.UpdateCart(c, 11, requestBody)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, upstreamBody, string(resp.Body))

	resp, err = client.RemoveCart(c, 11)
	require.NoError(t, err)
	assert.Equal(t, upstreamBody, string(resp.Body))

	_, err = client.UpdateCart(c, 404, requestBody)
	var upstreamErr *inErrors.UpstreamError
	require.ErrorAs(t, err, &upstreamErr)
	assert.Equal(t, http.StatusNotFound, upstreamErr.StatusCode)
}
