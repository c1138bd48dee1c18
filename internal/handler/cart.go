package handler

import (
	"context"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/xenking/storefront-checkout/internal/domain/cart"
	"github.com/xenking/storefront-checkout/internal/domain/coupon"
	"github.com/xenking/storefront-checkout/internal/jsonx"
	"github.com/xenking/storefront-checkout/internal/session"
)

type quantityRequest struct {
	Quantity int
}

func (req *quantityRequest) Decode(d *jx.Decoder) error {
	return d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		if string(key) != "quantity" {
			return d.Skip()
		}
		v, err := d.Int()
		if err != nil {
			return errors.Wrap(err, "decode quantity")
		}
		req.Quantity = v
		return nil
	})
}

type couponRequest struct {
	Code string `validate:"required,max=32"`
}

func (req *couponRequest) Decode(d *jx.Decoder) error {
	return d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		if string(key) != "code" {
			return d.Skip()
		}
		v, err := d.Str()
		if err != nil {
			return errors.Wrap(err, "decode code")
		}
		req.Code = v
		return nil
	})
}

type donationRequest struct {
	Amount decimal.Decimal
}

func (req *donationRequest) Decode(d *jx.Decoder) error {
	return d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		if string(key) != "amount" {
			return d.Skip()
		}
		v, err := jsonx.DecodeDecimal(d)
		if err != nil {
			return errors.Wrap(err, "decode amount")
		}
		req.Amount = v
		return nil
	})
}

func (h *Handler) refreshCart(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(ctx context.Context, s *session.Session) error {
		return s.Cart.Fetch(ctx, s.UserID)
	})
}

func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	var req cart.AddItemRequest
	if err := h.decode(r, &req, func(d *jx.Decoder) error { return jsonx.DecodeAddItem(d, &req) }); err != nil {
		h.fail(w, r, err)
		return
	}
	h.mutate(w, r, func(ctx context.Context, s *session.Session) error {
		return s.Cart.AddItem(ctx, s.UserID, req)
	})
}

func (h *Handler) updateQuantity(w http.ResponseWriter, r *http.Request) {
	var req quantityRequest
	if err := h.decode(r, &req, req.Decode); err != nil {
		h.fail(w, r, err)
		return
	}
	productID := r.PathValue("productId")
	h.mutate(w, r, func(ctx context.Context, s *session.Session) error {
		return s.Cart.UpdateQuantity(ctx, s.UserID, productID, req.Quantity)
	})
}

func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request) {
	productID := r.PathValue("productId")
	h.mutate(w, r, func(ctx context.Context, s *session.Session) error {
		return s.Cart.RemoveItem(ctx, s.UserID, productID)
	})
}

func (h *Handler) applyCoupon(w http.ResponseWriter, r *http.Request) {
	var req couponRequest
	if err := h.decode(r, &req, req.Decode); err != nil {
		h.fail(w, r, err)
		return
	}
	code := coupon.Normalize(req.Code)
	h.mutate(w, r, func(_ context.Context, s *session.Session) error {
		s.Cart.ApplyCoupon(code)
		return nil
	})
}

func (h *Handler) removeCoupon(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(_ context.Context, s *session.Session) error {
		s.Cart.RemoveCoupon()
		return nil
	})
}

func (h *Handler) setDonation(w http.ResponseWriter, r *http.Request) {
	var req donationRequest
	if err := h.decode(r, &req, req.Decode); err != nil {
		h.fail(w, r, err)
		return
	}
	h.mutate(w, r, func(_ context.Context, s *session.Session) error {
		return s.Cart.SetDonation(req.Amount)
	})
}
