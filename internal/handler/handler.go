// Package handler implements the checkout JSON API.
package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-playground/validator/v10"

	"github.com/xenking/storefront-checkout/internal/domain/order"
	"github.com/xenking/storefront-checkout/internal/domain/payment"
	"github.com/xenking/storefront-checkout/internal/jsonx"
	"github.com/xenking/storefront-checkout/internal/session"
)

const maxBodyBytes = 64 << 10

// Sessions is the session manager the handler drives.
type Sessions interface {
	Create(ctx context.Context, userID string) (*session.Snapshot, error)
	Get(ctx context.Context, id string) (*session.Snapshot, error)
	Delete(ctx context.Context, id string) error
	Do(ctx context.Context, id string, fn func(ctx context.Context, s *session.Session) error) error
	ConfirmPayment(ctx context.Context, id string, card payment.Card) (*order.Order, error)
}

var _ Sessions = (*session.Manager)(nil)

// Handler serves the /api routes.
type Handler struct {
	sessions Sessions
	orders   order.Service
	validate *validator.Validate
}

// NewHandler creates a Handler.
func NewHandler(sessions Sessions, orders order.Service) *Handler {
	return &Handler{
		sessions: sessions,
		orders:   orders,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Routes returns the API routes. Paths include the /api prefix.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/sessions", h.createSession)
	mux.HandleFunc("GET /api/sessions/{id}", h.getSession)
	mux.HandleFunc("DELETE /api/sessions/{id}", h.deleteSession)

	mux.HandleFunc("POST /api/sessions/{id}/cart/refresh", h.refreshCart)
	mux.HandleFunc("POST /api/sessions/{id}/cart/items", h.addItem)
	mux.HandleFunc("PUT /api/sessions/{id}/cart/items/{productId}", h.updateQuantity)
	mux.HandleFunc("DELETE /api/sessions/{id}/cart/items/{productId}", h.removeItem)
	mux.HandleFunc("PUT /api/sessions/{id}/cart/coupon", h.applyCoupon)
	mux.HandleFunc("DELETE /api/sessions/{id}/cart/coupon", h.removeCoupon)
	mux.HandleFunc("PUT /api/sessions/{id}/cart/donation", h.setDonation)

	mux.HandleFunc("POST /api/sessions/{id}/checkout/place-order", h.placeOrder)
	mux.HandleFunc("PUT /api/sessions/{id}/checkout/address", h.selectAddress)
	mux.HandleFunc("POST /api/sessions/{id}/checkout/continue", h.continueToPayment)
	mux.HandleFunc("POST /api/sessions/{id}/checkout/back", h.back)
	mux.HandleFunc("POST /api/sessions/{id}/checkout/confirm-payment", h.confirmPayment)

	mux.HandleFunc("POST /api/sessions/{id}/addresses", h.addAddress)
	mux.HandleFunc("PUT /api/sessions/{id}/addresses/{addressId}", h.updateAddress)
	mux.HandleFunc("DELETE /api/sessions/{id}/addresses/{addressId}", h.removeAddress)
	mux.HandleFunc("PUT /api/sessions/{id}/addresses/{addressId}/default", h.setDefaultAddress)

	mux.HandleFunc("GET /api/sessions/{id}/orders", h.listOrders)
	mux.HandleFunc("GET /api/sessions/{id}/orders/{orderId}", h.getOrder)

	mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "not_found", "no such route")
	})
	return mux
}

// mutate runs fn against the session in the path and responds with the
// resulting session view.
func (h *Handler) mutate(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, s *session.Session) error) {
	var view sessionView
	err := h.sessions.Do(r.Context(), r.PathValue("id"), func(ctx context.Context, s *session.Session) error {
		if err := fn(ctx, s); err != nil {
			return err
		}
		view = newSessionView(s.Snapshot())
		return nil
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// jsonEncoder is a response body.
type jsonEncoder interface {
	Encode(e *jx.Encoder)
}

// decode reads a JSON body with dec and validates v, the value dec fills.
func (h *Handler) decode(r *http.Request, v any, dec func(d *jx.Decoder) error) error {
	if err := h.decodeRaw(r, dec); err != nil {
		return err
	}
	if err := h.validate.Struct(v); err != nil {
		return errors.Wrap(err, "validate request")
	}
	return nil
}

// decodeRaw reads a JSON body with dec without validating it. Unknown
// fields are ignored.
func (h *Handler) decodeRaw(r *http.Request, dec func(d *jx.Decoder) error) error {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return &badRequestError{Err: err}
	}
	if len(data) > maxBodyBytes {
		return &badRequestError{Err: errors.Errorf("body exceeds %d bytes", maxBodyBytes)}
	}
	if err := jsonx.Unmarshal(data, dec); err != nil {
		return &badRequestError{Err: err}
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v jsonEncoder) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(jsonx.Marshal(v.Encode))
}
