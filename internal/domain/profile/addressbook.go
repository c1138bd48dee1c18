package profile

import (
	"github.com/google/uuid"
)

// AddressBook is a user's list of addresses. All mutations go through its
// methods, which keep exactly one default address whenever the book is not
// empty. Methods never modify the receiver; they return the new book.
type AddressBook []Address

// Default returns the default address.
func (b AddressBook) Default() (Address, bool) {
	for _, a := range b {
		if a.IsDefault {
			return a, true
		}
	}
	return Address{}, false
}

// Find returns the address with the given id.
func (b AddressBook) Find(id string) (Address, bool) {
	i := b.index(id)
	if i < 0 {
		return Address{}, false
	}
	return b[i], true
}

// Add validates a, assigns it an id, and appends it. The first address of a
// book becomes the default; a new address flagged as default takes over.
func (b AddressBook) Add(a Address) (AddressBook, Address, error) {
	if err := a.Validate(); err != nil {
		return b, Address{}, err
	}
	a.ID = uuid.NewString()

	out := append(b.clone(), a)
	out = out.normalize(preferred(a))

	added, _ := out.Find(a.ID)
	return out, added, nil
}

// Update replaces the address with the same id. If the update leaves the
// book without a default, the first address becomes the default.
func (b AddressBook) Update(a Address) (AddressBook, error) {
	i := b.index(a.ID)
	if i < 0 {
		return b, ErrNotFound
	}
	if err := a.Validate(); err != nil {
		return b, err
	}

	out := b.clone()
	out[i] = a
	return out.normalize(preferred(a)), nil
}

// Remove deletes the address with the given id. Removing the default
// promotes the first remaining address.
func (b AddressBook) Remove(id string) (AddressBook, error) {
	i := b.index(id)
	if i < 0 {
		return b, ErrNotFound
	}

	out := make(AddressBook, 0, len(b)-1)
	out = append(out, b[:i]...)
	out = append(out, b[i+1:]...)
	return out.normalize(""), nil
}

// SetDefault marks the address with the given id as the only default.
func (b AddressBook) SetDefault(id string) (AddressBook, error) {
	if b.index(id) < 0 {
		return b, ErrNotFound
	}
	return b.clone().normalize(id), nil
}

// normalize enforces the single-default invariant on a book it owns.
// preferID, when set, is the address that must end up as the default.
func (b AddressBook) normalize(preferID string) AddressBook {
	if len(b) == 0 {
		return b
	}

	keep := preferID
	if keep == "" {
		if d, ok := b.Default(); ok {
			keep = d.ID
		} else {
			keep = b[0].ID
		}
	}

	for i := range b {
		b[i].IsDefault = b[i].ID == keep
	}
	return b
}

func (b AddressBook) index(id string) int {
	for i, a := range b {
		if a.ID == id {
			return i
		}
	}
	return -1
}

func (b AddressBook) clone() AddressBook {
	out := make(AddressBook, len(b))
	copy(out, b)
	return out
}

func preferred(a Address) string {
	if a.IsDefault {
		return a.ID
	}
	return ""
}
