// Package session keeps the per-browser-session checkout state: the cart
// store, the checkout flow and the user's profile.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/xenking/storefront-checkout/internal/domain/cart"
	"github.com/xenking/storefront-checkout/internal/domain/checkout"
	"github.com/xenking/storefront-checkout/internal/domain/profile"
	"github.com/xenking/storefront-checkout/internal/jsonx"
)

// ErrNotFound is returned when a session does not exist or has expired.
var ErrNotFound = errors.New("session not found")

// Snapshot is the persisted form of a session.
type Snapshot struct {
	ID         string
	UserID     string
	Cart       cart.Cart
	CartLoaded bool
	Profile    *profile.Profile
	Checkout   checkout.State
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Encode writes the snapshot as JSON.
func (s *Snapshot) Encode(e *jx.Encoder) {
	e.ObjStart()
	e.FieldStart("id")
	e.Str(s.ID)
	e.FieldStart("user_id")
	e.Str(s.UserID)
	e.FieldStart("cart")
	jsonx.EncodeCart(e, s.Cart)
	e.FieldStart("cart_loaded")
	e.Bool(s.CartLoaded)
	if s.Profile != nil {
		e.FieldStart("profile")
		jsonx.EncodeProfile(e, *s.Profile)
	}
	e.FieldStart("checkout")
	jsonx.EncodeCheckoutState(e, s.Checkout)
	e.FieldStart("created_at")
	jsonx.EncodeTime(e, s.CreatedAt)
	e.FieldStart("updated_at")
	jsonx.EncodeTime(e, s.UpdatedAt)
	e.ObjEnd()
}

// Decode reads a snapshot written by Encode.
func (s *Snapshot) Decode(d *jx.Decoder) error {
	return d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		var err error
		switch k := string(key); k {
		case "id":
			s.ID, err = d.Str()
		case "user_id":
			s.UserID, err = d.Str()
		case "cart":
			err = jsonx.DecodeCart(d, &s.Cart)
		case "cart_loaded":
			s.CartLoaded, err = d.Bool()
		case "profile":
			if d.Next() == jx.Null {
				s.Profile = nil
				err = d.Null()
				break
			}
			var p profile.Profile
			if err = jsonx.DecodeProfile(d, &p); err == nil {
				s.Profile = &p
			}
		case "checkout":
			err = jsonx.DecodeCheckoutState(d, &s.Checkout)
		case "created_at":
			s.CreatedAt, err = jsonx.DecodeTime(d)
		case "updated_at":
			s.UpdatedAt, err = jsonx.DecodeTime(d)
		default:
			return d.Skip()
		}
		if err != nil {
			return errors.Wrapf(err, "decode snapshot field %q", k)
		}
		return nil
	})
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (s *Snapshot) MarshalBinary() ([]byte, error) {
	if _, err := s.Checkout.Step.MarshalText(); err != nil {
		return nil, err
	}
	return jsonx.Marshal(s.Encode), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (s *Snapshot) UnmarshalBinary(data []byte) error {
	return jsonx.Unmarshal(data, s.Decode)
}

// Repository persists session snapshots.
type Repository interface {
	Save(ctx context.Context, s *Snapshot) error
	// Load returns ErrNotFound for unknown or expired sessions.
	Load(ctx context.Context, id string) (*Snapshot, error)
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}

// FetchError indicates session bootstrap could not load remote data.
type FetchError struct {
	Resource string
	UserID   string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s for user %s: %v", e.Resource, e.UserID, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Session is a live, hydrated session. It is only valid inside the
// Manager callback that produced it.
type Session struct {
	ID        string
	UserID    string
	Cart      *cart.Store
	Flow      *checkout.Flow
	Profile   *profile.Profile
	CreatedAt time.Time

	profiles profile.Service
}

// Snapshot captures the current state for persistence.
func (s *Session) Snapshot() *Snapshot {
	var p *profile.Profile
	if s.Profile != nil {
		cp := *s.Profile
		cp.Addresses = append(profile.AddressBook(nil), s.Profile.Addresses...)
		p = &cp
	}
	return &Snapshot{
		ID:         s.ID,
		UserID:     s.UserID,
		Cart:       s.Cart.Snapshot(),
		CartLoaded: s.Cart.Loaded(),
		Profile:    p,
		Checkout:   s.Flow.State(),
		CreatedAt:  s.CreatedAt,
	}
}

// Addresses returns the user's address book.
func (s *Session) Addresses() profile.AddressBook {
	if s.Profile == nil {
		return nil
	}
	return s.Profile.Addresses
}

// DefaultAddress returns the default address, or nil for an empty book.
func (s *Session) DefaultAddress() *profile.Address {
	a, ok := s.Addresses().Default()
	if !ok {
		return nil
	}
	return &a
}

// PlaceOrder starts checkout, preselecting the default address.
func (s *Session) PlaceOrder() error {
	return s.Flow.PlaceOrder(s.DefaultAddress())
}

// SelectAddress selects an address from the address book by id.
func (s *Session) SelectAddress(id string) error {
	a, ok := s.Addresses().Find(id)
	if !ok {
		return errors.Wrapf(profile.ErrNotFound, "address %s", id)
	}
	return s.Flow.SelectAddress(a)
}
