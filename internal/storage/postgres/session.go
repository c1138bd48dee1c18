package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/xenking/storefront-checkout/internal/domain/cart"
	"github.com/xenking/storefront-checkout/internal/domain/profile"
	"github.com/xenking/storefront-checkout/internal/jsonx"
	"github.com/xenking/storefront-checkout/internal/session"
)

const (
	saveSessionSQL = `INSERT INTO checkout_sessions
	(id, user_id, cart_items, coupon_code, donation, cart_loaded, profile, checkout, created_at, updated_at, expires_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	ON CONFLICT (id) DO UPDATE SET
		cart_items = EXCLUDED.cart_items,
		coupon_code = EXCLUDED.coupon_code,
		donation = EXCLUDED.donation,
		cart_loaded = EXCLUDED.cart_loaded,
		profile = EXCLUDED.profile,
		checkout = EXCLUDED.checkout,
		updated_at = EXCLUDED.updated_at,
		expires_at = EXCLUDED.expires_at`

	loadSessionSQL = `SELECT id, user_id, cart_items, coupon_code, donation, cart_loaded,
		profile, checkout, created_at, updated_at
	FROM checkout_sessions
	WHERE id = $1 AND (expires_at IS NULL OR expires_at > now())`

	deleteSessionSQL = `DELETE FROM checkout_sessions WHERE id = $1`

	deleteExpiredSessionsSQL = `DELETE FROM checkout_sessions
	WHERE expires_at IS NOT NULL AND expires_at <= now()`
)

var _ session.Repository = (*SessionRepository)(nil)

type sessionRow struct {
	ID         string          `db:"id"`
	UserID     string          `db:"user_id"`
	CartItems  []byte          `db:"cart_items"`
	CouponCode string          `db:"coupon_code"`
	Donation   decimal.Decimal `db:"donation"`
	CartLoaded bool            `db:"cart_loaded"`
	Profile    []byte          `db:"profile"`
	Checkout   []byte          `db:"checkout"`
	CreatedAt  time.Time       `db:"created_at"`
	UpdatedAt  time.Time       `db:"updated_at"`
}

// SessionRepository implements session.Repository backed by PostgreSQL.
// Cart lines, the profile and the checkout state are stored as JSONB; the
// donation is a NUMERIC column.
type SessionRepository struct {
	pool *pgxpool.Pool
	ttl  time.Duration
}

// NewSessionRepository returns a SessionRepository. Sessions expire ttl
// after their last save; zero disables expiry.
func NewSessionRepository(pool *pgxpool.Pool, ttl time.Duration) *SessionRepository {
	return &SessionRepository{pool: pool, ttl: ttl}
}

// Save inserts or updates a session.
func (r *SessionRepository) Save(ctx context.Context, s *session.Snapshot) error {
	if _, err := s.Checkout.Step.MarshalText(); err != nil {
		return fmt.Errorf("marshaling checkout state: %w", err)
	}
	itemsJSON := jsonx.Marshal(func(e *jx.Encoder) { jsonx.EncodeCartItems(e, s.Cart.Items) })
	var profileJSON []byte
	if s.Profile != nil {
		profileJSON = jsonx.Marshal(func(e *jx.Encoder) { jsonx.EncodeProfile(e, *s.Profile) })
	}
	checkoutJSON := jsonx.Marshal(func(e *jx.Encoder) { jsonx.EncodeCheckoutState(e, s.Checkout) })

	updated := s.UpdatedAt
	if updated.IsZero() {
		updated = time.Now()
	}
	var expires *time.Time
	if r.ttl > 0 {
		t := updated.Add(r.ttl)
		expires = &t
	}

	_, err := r.pool.Exec(ctx, saveSessionSQL,
		s.ID, s.UserID, itemsJSON, s.Cart.CouponCode, s.Cart.DonationAmount, s.CartLoaded,
		profileJSON, checkoutJSON, s.CreatedAt, updated, expires,
	)
	if err != nil {
		return fmt.Errorf("saving session %q: %w", s.ID, err)
	}
	return nil
}

// Load returns a live session. Expired sessions are reported as
// session.ErrNotFound.
func (r *SessionRepository) Load(ctx context.Context, id string) (*session.Snapshot, error) {
	rows, err := r.pool.Query(ctx, loadSessionSQL, id)
	if err != nil {
		return nil, fmt.Errorf("loading session %q: %w", id, err)
	}
	row, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[sessionRow])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, session.ErrNotFound
		}
		return nil, fmt.Errorf("loading session %q: %w", id, err)
	}

	s := &session.Snapshot{
		ID:     row.ID,
		UserID: row.UserID,
		Cart: cart.Cart{
			CouponCode:     row.CouponCode,
			DonationAmount: row.Donation,
		},
		CartLoaded: row.CartLoaded,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}
	if err := jsonx.Unmarshal(row.CartItems, func(d *jx.Decoder) error {
		return jsonx.DecodeCartItems(d, &s.Cart.Items)
	}); err != nil {
		return nil, fmt.Errorf("unmarshaling cart items: %w", err)
	}
	if len(row.Profile) > 0 {
		var p profile.Profile
		if err := jsonx.Unmarshal(row.Profile, func(d *jx.Decoder) error {
			return jsonx.DecodeProfile(d, &p)
		}); err != nil {
			return nil, fmt.Errorf("unmarshaling profile: %w", err)
		}
		s.Profile = &p
	}
	if err := jsonx.Unmarshal(row.Checkout, func(d *jx.Decoder) error {
		return jsonx.DecodeCheckoutState(d, &s.Checkout)
	}); err != nil {
		return nil, fmt.Errorf("unmarshaling checkout state: %w", err)
	}
	return s, nil
}

// Delete removes a session. Deleting an unknown session is not an error.
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.pool.Exec(ctx, deleteSessionSQL, id); err != nil {
		return fmt.Errorf("deleting session %q: %w", id, err)
	}
	return nil
}

// DeleteExpired purges expired sessions and returns how many were removed.
func (r *SessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, deleteExpiredSessionsSQL)
	if err != nil {
		return 0, fmt.Errorf("deleting expired sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Ping checks database connectivity.
func (r *SessionRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}
