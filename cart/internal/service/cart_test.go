package service

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alturino/storefront/cart/pkg/request"
	"github.com/Alturino/storefront/cart/pkg/response"
	inErrors "github.com/Alturino/storefront/internal/errors"
	"github.com/Alturino/storefront/internal/pricecache"
	productResponse "github.com/Alturino/storefront/product/pkg/response"
)

func TestFindCartsByUserId(t *testing.T) {
	tests := []struct {
		name           string
		catalog        map[int]string
		carts          []request.Cart
		expectedTotals []string
		expectedPrices [][]string
		expectedErr    error
	}{
		{
			name:    "given cached prices should price items and total each cart",
			catalog: map[int]string{1: "10.0", 2: "5.0"},
			carts: []request.Cart{
				{ID: 1, UserId: 1, Products: []request.CartItem{
					{ProductId: 1, Quantity: 2},
					{ProductId: 2, Quantity: 1},
				}},
			},
			expectedTotals: []string{"25"},
			expectedPrices: [][]string{{"10", "5"}},
		},
		{
			name:    "given carts should keep them separate and in upstream order",
			catalog: map[int]string{1: "109.95", 2: "22.3"},
			carts: []request.Cart{
				{ID: 7, UserId: 1, Products: []request.CartItem{{ProductId: 2, Quantity: 3}}},
				{ID: 3, UserId: 1, Products: []request.CartItem{{ProductId: 1, Quantity: 1}}},
			},
			expectedTotals: []string{"66.9", "109.95"},
			expectedPrices: [][]string{{"22.3"}, {"109.95"}},
		},
		{
			name:    "given priced item should keep its price",
			catalog: map[int]string{1: "10"},
			carts: []request.Cart{
				{ID: 1, UserId: 1, Products: []request.CartItem{
					{ProductId: 1, Quantity: 1, Price: price("4.5")},
					{ProductId: 1, Quantity: 1},
				}},
			},
			expectedTotals: []string{"14.5"},
			expectedPrices: [][]string{{"4.5", "10"}},
		},
		{
			name:    "given exact decimals should not accumulate float error",
			catalog: map[int]string{1: "0.1", 2: "0.2"},
			carts: []request.Cart{
				{ID: 1, UserId: 1, Products: []request.CartItem{
					{ProductId: 1, Quantity: 1},
					{ProductId: 2, Quantity: 1},
				}},
			},
			expectedTotals: []string{"0.3"},
			expectedPrices: [][]string{{"0.1", "0.2"}},
		},
		{
			name:           "given user without carts should return empty list",
			catalog:        map[int]string{1: "10"},
			carts:          nil,
			expectedTotals: []string{},
			expectedPrices: [][]string{},
		},
		{
			name:    "given unknown product should fail",
			catalog: map[int]string{1: "10"},
			carts: []request.Cart{
				{ID: 1, UserId: 1, Products: []request.CartItem{{ProductId: 99, Quantity: 1}}},
			},
			expectedErr: inErrors.ErrUnknownProduct,
		},
		{
			name:        "given no price snapshot should fail",
			catalog:     nil,
			expectedErr: inErrors.ErrPriceCacheMissing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeCartClient{carts: map[int][]request.Cart{1: tt.carts}}
			svc, _ := setup(t, tt.catalog, client, &fakeProvider{})

			carts, err := svc.FindCartsByUserId(context.Background(), 1)
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.Nil(t, carts)
				return
			}
			require.NoError(t, err)
			require.Len(t, carts, len(tt.expectedTotals))
			for i, cart := range carts {
				assert.Equal(t, tt.carts[i].ID, cart.ID)
				assert.True(
					t,
					decimal.RequireFromString(tt.expectedTotals[i]).Equal(cart.Total),
					"expected total %s got %s", tt.expectedTotals[i], cart.Total,
				)
				require.Len(t, cart.Products, len(tt.expectedPrices[i]))
				for j, item := range cart.Products {
					assert.True(t, decimal.RequireFromString(tt.expectedPrices[i][j]).Equal(item.Price))
				}
			}
		})
	}
}

func TestFindCartsByUserIdChecksSnapshotBeforeUpstream(t *testing.T) {
	client := &fakeCartClient{}
	svc, _ := setup(t, nil, client, &fakeProvider{})

	_, err := svc.FindCartsByUserId(context.Background(), 1)
	assert.ErrorIs(t, err, inErrors.ErrPriceCacheMissing)
	assert.Zero(t, client.calls)
}

func TestFindCartsByUserIdUnknownProductNamesId(t *testing.T) {
	client := &fakeCartClient{carts: map[int][]request.Cart{
		1: {{ID: 1, UserId: 1, Products: []request.CartItem{{ProductId: 99, Quantity: 1}}}},
	}}
	svc, _ := setup(t, map[int]string{1: "10"}, client, &fakeProvider{})

	_, err := svc.FindCartsByUserId(context.Background(), 1)
	var unknown *inErrors.UnknownProductError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, 99, unknown.ProductID)
}

func TestFindCartsByUserIdInvalidUser(t *testing.T) {
	client := &fakeCartClient{}
	svc, _ := setup(t, map[int]string{1: "10"}, client, &fakeProvider{})

	_, err := svc.FindCartsByUserId(context.Background(), 0)
	assert.ErrorIs(t, err, inErrors.ErrInvalidArgument)
	assert.Zero(t, client.calls)
}

func TestFindCartsByUserIdIsIdempotent(t *testing.T) {
	client := &fakeCartClient{carts: map[int][]request.Cart{
		1: {{ID: 1, UserId: 1, Products: []request.CartItem{{ProductId: 1, Quantity: 3}}}},
	}}
	svc, _ := setup(t, map[int]string{1: "19.99"}, client, &fakeProvider{})
	c := context.Background()

	first, err := svc.FindCartsByUserId(c, 1)
	require.NoError(t, err)
	second, err := svc.FindCartsByUserId(c, 1)
	require.NoError(t, err)

	firstJson, err := json.Marshal(first)
	require.NoError(t, err)
	secondJson, err := json.Marshal(second)
	require.NoError(t, err)
	assert.JSONEq(t, string(firstJson), string(secondJson))
	assert.True(t, decimal.RequireFromString("59.97").Equal(first[0].Total))
}

func TestFindCartsByUserIdUpstreamFailure(t *testing.T) {
	client := &fakeCartClient{err: &inErrors.UpstreamError{Operation: "FindCartsByUserId", StatusCode: 500}}
	svc, _ := setup(t, map[int]string{1: "10"}, client, &fakeProvider{})

	_, err := svc.FindCartsByUserId(context.Background(), 1)
	assert.ErrorIs(t, err, inErrors.ErrUpstreamUnavailable)
}

func TestPriceCart(t *testing.T) {
	snapshot := pricecache.NewSnapshot([]productResponse.Product{
		{ID: 1, Price: decimal.RequireFromString("10")},
	})

	cart, err := PriceCart(snapshot, request.Cart{
		ID:       4,
		UserId:   2,
		Date:     "2020-03-02T00:00:00.000Z",
		Products: []request.CartItem{{ProductId: 1, Quantity: 2}},
	})
	require.NoError(t, err)
	assert.Equal(t, 4, cart.ID)
	assert.Equal(t, 2, cart.UserId)
	assert.Equal(t, "2020-03-02T00:00:00.000Z", cart.Date)
	assert.Equal(t, []response.CartItem{
		{ProductId: 1, Quantity: 2, Price: decimal.RequireFromString("10")},
	}, cart.Products)
	assert.True(t, decimal.NewFromInt(20).Equal(cart.Total))
}

func TestCartForwarding(t *testing.T) {
	upstreamBody := json.RawMessage(`{"id":11,"userId":1,"products":[{"productId":1,"quantity":5}]}`)
	requestBody := json.RawMessage(`{"userId":1,"note":"gift","products":[{"productId":1,"quantity":5}]}`)
	c := context.Background()

	t.Run("given upstream success should return status and body verbatim", func(t *testing.T) {
		client := &fakeCartClient{body: upstreamBody}
		svc, _ := setup(t, nil, client, &fakeProvider{})

		resp, err := svc.InsertCart(c, requestBody)
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		assert.Equal(t, upstreamBody, resp.Body)

		resp, err = svc.UpdateCart(c, 11, requestBody)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, upstreamBody, resp.Body)

		resp, err = svc.RemoveCart(c, 11)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, upstreamBody, resp.Body)

		assert.Equal(t, 3, client.calls)
		assert.Equal(t, requestBody, client.received[0])
		assert.Equal(t, requestBody, client.received[1])
	})

	t.Run("given upstream failure should surface upstream error", func(t *testing.T) {
		client := &fakeCartClient{err: &inErrors.UpstreamError{Operation: "UpdateCart", StatusCode: 404}}
		svc, _ := setup(t, nil, client, &fakeProvider{})

		_, err := svc.UpdateCart(c, 404, requestBody)
		var upstreamErr *inErrors.UpstreamError
		require.ErrorAs(t, err, &upstreamErr)
		assert.Equal(t, 404, upstreamErr.StatusCode)

		_, err = svc.InsertCart(c, requestBody)
		assert.ErrorIs(t, err, inErrors.ErrUpstreamUnavailable)

		_, err = svc.RemoveCart(c, 1)
		assert.ErrorIs(t, err, inErrors.ErrUpstreamUnavailable)
	})
}
