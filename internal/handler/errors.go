package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/xenking/storefront-checkout/internal/client/rest"
	"github.com/xenking/storefront-checkout/internal/domain/cart"
	"github.com/xenking/storefront-checkout/internal/domain/checkout"
	"github.com/xenking/storefront-checkout/internal/domain/order"
	"github.com/xenking/storefront-checkout/internal/domain/profile"
	"github.com/xenking/storefront-checkout/internal/session"
)

type badRequestError struct {
	Err error
}

func (e *badRequestError) Error() string {
	return fmt.Sprintf("malformed request body: %v", e.Err)
}

func (e *badRequestError) Unwrap() error {
	return e.Err
}

type errorBody struct {
	Code    int
	Kind    string
	Message string
}

func (b errorBody) Encode(e *jx.Encoder) {
	e.ObjStart()
	e.FieldStart("error")
	e.ObjStart()
	e.FieldStart("code")
	e.Int(b.Code)
	e.FieldStart("kind")
	e.Str(b.Kind)
	e.FieldStart("message")
	e.Str(b.Message)
	e.ObjEnd()
	e.ObjEnd()
}

// classify maps domain errors to an HTTP status and a stable kind the
// storefront can switch on.
func classify(err error) (status int, kind string) {
	var (
		badReq     *badRequestError
		validation validator.ValidationErrors
		flowErr    *checkout.ValidationError
		qtyErr     *cart.InvalidQuantityError
		transition *checkout.TransitionError
		payErr     *checkout.PaymentError
		creation   *order.CreationError
		cartFetch  *cart.FetchError
		fetch      *session.FetchError
		upstream   *rest.StatusError
	)

	switch {
	case errors.As(err, &badReq):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, checkout.ErrAddressRequired):
		return http.StatusUnprocessableEntity, "address_required"
	case errors.As(err, &flowErr), errors.As(err, &validation), errors.As(err, &qtyErr),
		errors.Is(err, cart.ErrNegativeDonation), errors.Is(err, order.ErrEmptyCart):
		return http.StatusUnprocessableEntity, "validation_failed"
	case errors.As(err, &transition):
		return http.StatusConflict, "wrong_step"
	case errors.As(err, &payErr):
		return http.StatusPaymentRequired, "payment_failed"
	case errors.As(err, &creation):
		return http.StatusBadGateway, "order_creation_failed"
	case errors.As(err, &cartFetch), errors.As(err, &fetch):
		return http.StatusBadGateway, "fetch_failed"
	case errors.Is(err, session.ErrNotFound), errors.Is(err, profile.ErrNotFound),
		errors.Is(err, order.ErrNotFound), errors.Is(err, cart.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.As(err, &upstream):
		return http.StatusBadGateway, "upstream_failed"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	}
	return http.StatusInternalServerError, "internal"
}

// fail logs err and writes the mapped error response. Internal errors are
// not echoed to the client.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, kind := classify(err)
	lg := zctx.From(r.Context())

	msg := err.Error()
	switch {
	case status >= http.StatusInternalServerError && status != http.StatusBadGateway && status != http.StatusGatewayTimeout:
		lg.Error("Request failed", zap.Error(err))
		msg = "internal error"
	case status >= http.StatusInternalServerError:
		lg.Warn("Upstream failure", zap.String("kind", kind), zap.Error(err))
	default:
		lg.Debug("Request rejected", zap.String("kind", kind), zap.Error(err))
	}
	writeError(w, r, status, kind, msg)
}

func writeError(w http.ResponseWriter, _ *http.Request, status int, kind, msg string) {
	writeJSON(w, status, errorBody{Code: status, Kind: kind, Message: msg})
}
