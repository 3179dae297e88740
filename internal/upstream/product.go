package upstream

import (
	"context"
	"net/http"

	"github.com/Alturino/storefront/product/pkg/response"
)

const operationGetProducts = "GetProducts"

func (cl *Client) GetProducts(c context.Context) ([]response.Product, error) {
	resp, err := cl.do(c, operationGetProducts, http.MethodGet, "/products", nil)
	if err != nil {
		return nil, err
	}
	return decode[[]response.Product](operationGetProducts, resp.Body)
}
