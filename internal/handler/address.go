package handler

import (
	"context"
	"net/http"

	"github.com/go-faster/jx"

	"github.com/xenking/storefront-checkout/internal/domain/profile"
	"github.com/xenking/storefront-checkout/internal/jsonx"
	"github.com/xenking/storefront-checkout/internal/session"
)

// Address payloads are validated by the address book itself, so field
// errors come back the same way for add and update.
func (h *Handler) addAddress(w http.ResponseWriter, r *http.Request) {
	var a profile.Address
	if err := h.decodeRaw(r, func(d *jx.Decoder) error { return jsonx.DecodeAddress(d, &a) }); err != nil {
		h.fail(w, r, err)
		return
	}
	h.mutate(w, r, func(ctx context.Context, s *session.Session) error {
		_, err := s.AddAddress(ctx, a)
		return err
	})
}

func (h *Handler) updateAddress(w http.ResponseWriter, r *http.Request) {
	var a profile.Address
	if err := h.decodeRaw(r, func(d *jx.Decoder) error { return jsonx.DecodeAddress(d, &a) }); err != nil {
		h.fail(w, r, err)
		return
	}
	a.ID = r.PathValue("addressId")
	h.mutate(w, r, func(ctx context.Context, s *session.Session) error {
		return s.UpdateAddress(ctx, a)
	})
}

func (h *Handler) removeAddress(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("addressId")
	h.mutate(w, r, func(ctx context.Context, s *session.Session) error {
		return s.RemoveAddress(ctx, id)
	})
}

func (h *Handler) setDefaultAddress(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("addressId")
	h.mutate(w, r, func(ctx context.Context, s *session.Session) error {
		return s.SetDefaultAddress(ctx, id)
	})
}
