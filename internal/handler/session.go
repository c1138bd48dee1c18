package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
)

type createSessionRequest struct {
	UserID string `validate:"required,max=128"`
}

func (req *createSessionRequest) Decode(d *jx.Decoder) error {
	return d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		if string(key) != "user_id" {
			return d.Skip()
		}
		v, err := d.Str()
		if err != nil {
			return errors.Wrap(err, "decode user_id")
		}
		req.UserID = v
		return nil
	})
}

func (h *Handler) createSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := h.decode(r, &req, req.Decode); err != nil {
		h.fail(w, r, err)
		return
	}
	snap, err := h.sessions.Create(r.Context(), req.UserID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/sessions/"+snap.ID)
	writeJSON(w, http.StatusCreated, newSessionView(snap))
}

func (h *Handler) getSession(w http.ResponseWriter, r *http.Request) {
	snap, err := h.sessions.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionView(snap))
}

func (h *Handler) deleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Delete(r.Context(), r.PathValue("id")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
