package handler

import (
	"net/http"

	"github.com/go-faster/errors"

	"github.com/xenking/storefront-checkout/internal/domain/order"
)

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	snap, err := h.sessions.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	orders, err := h.orders.ListByUser(r.Context(), snap.UserID)
	if err != nil {
		h.fail(w, r, errors.Wrap(err, "list orders"))
		return
	}

	views := make([]orderView, len(orders))
	for i := range orders {
		views[i] = newOrderView(&orders[i])
	}
	writeJSON(w, http.StatusOK, orderListView(views))
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	snap, err := h.sessions.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	o, err := h.orders.Get(r.Context(), r.PathValue("orderId"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	// Orders of other users are reported as missing.
	if o.UserID != snap.UserID {
		h.fail(w, r, order.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, newOrderView(o))
}
