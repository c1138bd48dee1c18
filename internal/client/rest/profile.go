package rest

import (
	"context"
	"net/http"

	"github.com/go-faster/jx"

	"github.com/xenking/storefront-checkout/internal/domain/profile"
	"github.com/xenking/storefront-checkout/internal/jsonx"
)

var _ profile.Service = (*ProfileClient)(nil)

// ProfileClient implements profile.Service.
type ProfileClient struct {
	c *Client
}

// Get fetches the user's profile.
func (pc *ProfileClient) Get(ctx context.Context, userID string) (*profile.Profile, error) {
	var out profile.Profile
	dec := func(d *jx.Decoder) error { return jsonx.DecodeProfile(d, &out) }
	if err := pc.c.do(ctx, http.MethodGet, "/profiles"+segment(userID), nil, nil, dec, profile.ErrNotFound); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update replaces the user's profile.
func (pc *ProfileClient) Update(ctx context.Context, userID string, p *profile.Profile) (*profile.Profile, error) {
	var out profile.Profile
	enc := func(e *jx.Encoder) { jsonx.EncodeProfile(e, *p) }
	dec := func(d *jx.Decoder) error { return jsonx.DecodeProfile(d, &out) }
	if err := pc.c.do(ctx, http.MethodPut, "/profiles"+segment(userID), nil, enc, dec, profile.ErrNotFound); err != nil {
		return nil, err
	}
	return &out, nil
}
