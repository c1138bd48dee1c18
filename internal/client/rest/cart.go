package rest

import (
	"context"
	"net/http"

	"github.com/go-faster/jx"

	"github.com/xenking/storefront-checkout/internal/domain/cart"
	"github.com/xenking/storefront-checkout/internal/jsonx"
)

var _ cart.Service = (*CartClient)(nil)

// CartClient implements cart.Service.
type CartClient struct {
	c *Client
}

func (cc *CartClient) call(ctx context.Context, method, path string, in func(e *jx.Encoder)) (*cart.Cart, error) {
	var out cart.Cart
	dec := func(d *jx.Decoder) error { return jsonx.DecodeCart(d, &out) }
	if err := cc.c.do(ctx, method, path, nil, in, dec, cart.ErrNotFound); err != nil {
		return nil, err
	}
	return &out, nil
}

// Get fetches the user's cart.
func (cc *CartClient) Get(ctx context.Context, userID string) (*cart.Cart, error) {
	return cc.call(ctx, http.MethodGet, "/carts"+segment(userID), nil)
}

// AddItem adds a product to the user's cart.
func (cc *CartClient) AddItem(ctx context.Context, userID string, req cart.AddItemRequest) (*cart.Cart, error) {
	return cc.call(ctx, http.MethodPost, "/carts"+segment(userID)+"/items", func(e *jx.Encoder) {
		jsonx.EncodeAddItem(e, req)
	})
}

// UpdateQuantity sets the quantity of a cart line.
func (cc *CartClient) UpdateQuantity(ctx context.Context, userID, productID string, quantity int) (*cart.Cart, error) {
	path := "/carts" + segment(userID) + "/items" + segment(productID)
	return cc.call(ctx, http.MethodPut, path, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("quantity")
		e.Int(quantity)
		e.ObjEnd()
	})
}

// RemoveItem deletes a cart line.
func (cc *CartClient) RemoveItem(ctx context.Context, userID, productID string) (*cart.Cart, error) {
	path := "/carts" + segment(userID) + "/items" + segment(productID)
	return cc.call(ctx, http.MethodDelete, path, nil)
}
