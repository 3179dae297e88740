package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Alturino/storefront/cart/pkg/request"
)

const (
	operationFindCartsByUserId = "FindCartsByUserId"
	operationInsertCart        = "InsertCart"
	operationUpdateCart        = "UpdateCart"
	operationRemoveCart        = "RemoveCart"
)

func (cl *Client) FindCartsByUserId(c context.Context, userId int) ([]request.Cart, error) {
	resp, err := cl.do(
		c,
		operationFindCartsByUserId,
		http.MethodGet,
		fmt.Sprintf("/carts/user/%d", userId),
		nil,
	)
	if err != nil {
		return nil, err
	}
	return decode[[]request.Cart](operationFindCartsByUserId, resp.Body)
}

// InsertCart sends body to the upstream byte for byte.
func (cl *Client) InsertCart(c context.Context, body json.RawMessage) (Response, error) {
	return cl.do(c, operationInsertCart, http.MethodPost, "/carts", body)
}

func (cl *Client) UpdateCart(c context.Context, cartId int, body json.RawMessage) (Response, error) {
	return cl.do(c, operationUpdateCart, http.MethodPut, fmt.Sprintf("/carts/%d", cartId), body)
}

func (cl *Client) RemoveCart(c context.Context, cartId int) (Response, error) {
	return cl.do(c, operationRemoveCart, http.MethodDelete, fmt.Sprintf("/carts/%d", cartId), nil)
}
