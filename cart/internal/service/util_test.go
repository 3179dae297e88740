package service

import (
	"context"
	"encoding/json"
	"net/http"
	"path/filepath"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Alturino/storefront/cart/pkg/request"
	"github.com/Alturino/storefront/internal/payment"
	"github.com/Alturino/storefront/internal/pricecache"
	"github.com/Alturino/storefront/internal/upstream"
	productResponse "github.com/Alturino/storefront/product/pkg/response"
)

type fakeCartClient struct {
	mu       sync.Mutex
	carts    map[int][]request.Cart
	err      error
	calls    int
	body     json.RawMessage
	received []json.RawMessage
}

func (f *fakeCartClient) FindCartsByUserId(_ context.Context, userId int) ([]request.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.carts[userId], nil
}

func (f *fakeCartClient) InsertCart(_ context.Context, body json.RawMessage) (upstream.Response, error) {
	return f.forward(http.StatusCreated, body)
}

func (f *fakeCartClient) UpdateCart(_ context.Context, _ int, body json.RawMessage) (upstream.Response, error) {
	return f.forward(http.StatusOK, body)
}

func (f *fakeCartClient) RemoveCart(context.Context, int) (upstream.Response, error) {
	return f.forward(http.StatusOK, nil)
}

func (f *fakeCartClient) forward(statusCode int, body json.RawMessage) (upstream.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.received = append(f.received, body)
	if f.err != nil {
		return upstream.Response{}, f.err
	}
	return upstream.Response{StatusCode: statusCode, Body: f.body}, nil
}

type fakeProvider struct {
	mu     sync.Mutex
	params []payment.IntentParams
	err    error
}

func (f *fakeProvider) CreatePaymentIntent(
	_ context.Context,
	params payment.IntentParams,
) (payment.Intent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.params = append(f.params, params)
	if f.err != nil {
		return payment.Intent{}, f.err
	}
	return payment.Intent{
		ID:           "pi_1",
		Amount:       params.Amount,
		Currency:     params.Currency,
		ClientSecret: "pi_1_secret",
	}, nil
}

func price(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

// setup returns a service over fakes; a nil catalog leaves the price cache empty.
func setup(
	t *testing.T,
	catalog map[int]string,
	client *fakeCartClient,
	provider *fakeProvider,
) (CartService, *pricecache.PriceCache) {
	t.Helper()
	prices := pricecache.New(pricecache.NewFileStore(filepath.Join(t.TempDir(), "products.json")))
	if catalog != nil {
		products := make([]productResponse.Product, 0, len(catalog))
		for id, p := range catalog {
			products = append(products, productResponse.Product{ID: id, Price: decimal.RequireFromString(p)})
		}
		require.NoError(t, prices.Replace(context.Background(), products))
	}
	return NewCartService(client, prices, provider), prices
}
