package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	inErrors "github.com/Alturino/storefront/internal/errors"
	"github.com/Alturino/storefront/internal/pricecache"
	"github.com/Alturino/storefront/product/internal/service"
	"github.com/Alturino/storefront/product/pkg/response"
)

type fakeFetcher struct {
	products []response.Product
	err      error
}

func (f fakeFetcher) GetProducts(context.Context) ([]response.Product, error) {
	return f.products, f.err
}

func setup(t *testing.T, fetcher fakeFetcher) *mux.Router {
	t.Helper()
	prices := pricecache.New(pricecache.NewFileStore(filepath.Join(t.TempDir(), "products.json")))
	svc := service.NewProductService(fetcher, prices)
	router := mux.NewRouter()
	AttachProductController(router, &svc)
	return router
}

func TestGetProducts(t *testing.T) {
	catalog := []response.Product{
		{ID: 1, Title: "Backpack", Price: decimal.RequireFromString("109.95")},
		{ID: 2, Title: "T-Shirt", Price: decimal.RequireFromString("22.3")},
	}

	tests := []struct {
		name               string
		url                string
		fetcher            fakeFetcher
		expectedStatusCode int
		expectedIds        []int
	}{
		{
			name:               "given no order should default to ascending",
			url:                "/products",
			fetcher:            fakeFetcher{products: catalog},
			expectedStatusCode: http.StatusOK,
			expectedIds:        []int{2, 1},
		},
		{
			name:               "given desc should sort descending",
			url:                "/products?order=desc",
			fetcher:            fakeFetcher{products: catalog},
			expectedStatusCode: http.StatusOK,
			expectedIds:        []int{1, 2},
		},
		{
			name:               "given unknown order should return bad request",
			url:                "/products?order=random",
			fetcher:            fakeFetcher{products: catalog},
			expectedStatusCode: http.StatusBadRequest,
		},
		{
			name: "given upstream failure should propagate upstream status",
			url:  "/products?order=asc",
			fetcher: fakeFetcher{
				err: &inErrors.UpstreamError{Operation: "GetProducts", StatusCode: http.StatusServiceUnavailable},
			},
			expectedStatusCode: http.StatusServiceUnavailable,
		},
		{
			name: "given upstream timeout should return gateway timeout",
			url:  "/products",
			fetcher: fakeFetcher{
				err: &inErrors.UpstreamError{Operation: "GetProducts", Timeout: true},
			},
			expectedStatusCode: http.StatusGatewayTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setup(t, tt.fetcher)
			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatusCode, rec.Code)
			if tt.expectedStatusCode != http.StatusOK {
				body := map[string]interface{}{}
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
				assert.Equal(t, "failed", body["status"])
				assert.NotEmpty(t, body["message"])
				return
			}

			products := []response.Product{}
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&products))
			ids := make([]int, 0, len(products))
			for _, p := range products {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tt.expectedIds, ids)
		})
	}
}
