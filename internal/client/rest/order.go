package rest

import (
	"context"
	"net/http"
	"net/url"

	"github.com/go-faster/jx"

	"github.com/xenking/storefront-checkout/internal/domain/order"
	"github.com/xenking/storefront-checkout/internal/jsonx"
)

var _ order.Service = (*OrderClient)(nil)

// OrderClient implements order.Service.
type OrderClient struct {
	c *Client
}

// Create places an order.
func (oc *OrderClient) Create(ctx context.Context, req order.CreateRequest) (*order.Order, error) {
	var out order.Order
	enc := func(e *jx.Encoder) { jsonx.EncodeCreateOrder(e, req) }
	dec := func(d *jx.Decoder) error { return jsonx.DecodeOrder(d, &out) }
	if err := oc.c.do(ctx, http.MethodPost, "/orders", nil, enc, dec, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListByUser returns the user's orders.
func (oc *OrderClient) ListByUser(ctx context.Context, userID string) ([]order.Order, error) {
	var out []order.Order
	q := url.Values{"userId": []string{userID}}
	dec := func(d *jx.Decoder) error { return jsonx.DecodeOrders(d, &out) }
	if err := oc.c.do(ctx, http.MethodGet, "/orders", q, nil, dec, nil); err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns an order by id.
func (oc *OrderClient) Get(ctx context.Context, id string) (*order.Order, error) {
	var out order.Order
	dec := func(d *jx.Decoder) error { return jsonx.DecodeOrder(d, &out) }
	if err := oc.c.do(ctx, http.MethodGet, "/orders"+segment(id), nil, nil, dec, order.ErrNotFound); err != nil {
		return nil, err
	}
	return &out, nil
}
