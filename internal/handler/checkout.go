package handler

import (
	"context"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/xenking/storefront-checkout/internal/domain/payment"
	"github.com/xenking/storefront-checkout/internal/jsonx"
	"github.com/xenking/storefront-checkout/internal/session"
)

type selectAddressRequest struct {
	AddressID string `validate:"required"`
}

func (req *selectAddressRequest) Decode(d *jx.Decoder) error {
	return d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		if string(key) != "address_id" {
			return d.Skip()
		}
		v, err := d.Str()
		if err != nil {
			return errors.Wrap(err, "decode address_id")
		}
		req.AddressID = v
		return nil
	})
}

func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(_ context.Context, s *session.Session) error {
		return s.PlaceOrder()
	})
}

func (h *Handler) selectAddress(w http.ResponseWriter, r *http.Request) {
	var req selectAddressRequest
	if err := h.decode(r, &req, req.Decode); err != nil {
		h.fail(w, r, err)
		return
	}
	h.mutate(w, r, func(_ context.Context, s *session.Session) error {
		return s.SelectAddress(req.AddressID)
	})
}

func (h *Handler) continueToPayment(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(_ context.Context, s *session.Session) error {
		return s.Flow.ContinueToPayment()
	})
}

func (h *Handler) back(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(_ context.Context, s *session.Session) error {
		s.Flow.Back()
		return nil
	})
}

func (h *Handler) confirmPayment(w http.ResponseWriter, r *http.Request) {
	var card payment.Card
	if err := h.decode(r, &card, func(d *jx.Decoder) error { return jsonx.DecodeCard(d, &card) }); err != nil {
		h.fail(w, r, err)
		return
	}

	id := r.PathValue("id")
	o, err := h.sessions.ConfirmPayment(r.Context(), id, card)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	snap, err := h.sessions.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, placedOrderView{
		Order:   newOrderView(o),
		Session: newSessionView(snap),
	})
}
