package session

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/xenking/storefront-checkout/internal/domain/profile"
)

// RefreshProfile reloads the profile from the profile service.
func (s *Session) RefreshProfile(ctx context.Context) error {
	p, err := s.profiles.Get(ctx, s.UserID)
	if err != nil {
		return &FetchError{Resource: "profile", UserID: s.UserID, Err: err}
	}
	s.Profile = p
	s.syncSelection()
	return nil
}

// AddAddress adds an address to the book and saves the profile.
func (s *Session) AddAddress(ctx context.Context, a profile.Address) (profile.Address, error) {
	book, added, err := s.Addresses().Add(a)
	if err != nil {
		return profile.Address{}, err
	}
	if err := s.saveAddresses(ctx, book); err != nil {
		return profile.Address{}, err
	}
	if saved, ok := s.Addresses().Find(added.ID); ok {
		return saved, nil
	}
	return added, nil
}

// UpdateAddress replaces an address and saves the profile.
func (s *Session) UpdateAddress(ctx context.Context, a profile.Address) error {
	book, err := s.Addresses().Update(a)
	if err != nil {
		return err
	}
	return s.saveAddresses(ctx, book)
}

// RemoveAddress deletes an address and saves the profile. A removed
// address is also dropped from the checkout selection.
func (s *Session) RemoveAddress(ctx context.Context, id string) error {
	book, err := s.Addresses().Remove(id)
	if err != nil {
		return err
	}
	return s.saveAddresses(ctx, book)
}

// SetDefaultAddress makes id the only default address.
func (s *Session) SetDefaultAddress(ctx context.Context, id string) error {
	book, err := s.Addresses().SetDefault(id)
	if err != nil {
		return err
	}
	return s.saveAddresses(ctx, book)
}

func (s *Session) saveAddresses(ctx context.Context, book profile.AddressBook) error {
	p := profile.Profile{UserID: s.UserID}
	if s.Profile != nil {
		p = *s.Profile
	}
	p.Addresses = book

	updated, err := s.profiles.Update(ctx, s.UserID, &p)
	if err != nil {
		return errors.Wrap(err, "update profile")
	}
	s.Profile = updated
	s.syncSelection()
	return nil
}

// syncSelection keeps the flow's selected address in step with the book.
func (s *Session) syncSelection() {
	sel := s.Flow.State().SelectedAddress
	if sel == nil {
		return
	}
	a, ok := s.Addresses().Find(sel.ID)
	if !ok {
		s.Flow.ClearAddress()
		return
	}
	if err := s.Flow.SelectAddress(a); err != nil {
		s.Flow.ClearAddress()
	}
}
