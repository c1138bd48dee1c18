package jsonx

import (
	"github.com/go-faster/jx"

	"github.com/xenking/storefront-checkout/internal/domain/profile"
)

// EncodeAddress writes an address.
func EncodeAddress(e *jx.Encoder, a profile.Address) {
	e.ObjStart()
	e.FieldStart("id")
	e.Str(a.ID)
	e.FieldStart("name")
	e.Str(a.Name)
	e.FieldStart("street")
	e.Str(a.Street)
	e.FieldStart("city")
	e.Str(a.City)
	e.FieldStart("state")
	e.Str(a.State)
	e.FieldStart("zip")
	e.Str(a.Zip)
	e.FieldStart("country")
	e.Str(a.Country)
	e.FieldStart("mobile")
	e.Str(a.Mobile)
	e.FieldStart("address_type")
	e.Str(string(a.Type))
	e.FieldStart("is_default")
	e.Bool(a.IsDefault)
	e.ObjEnd()
}

// DecodeAddress reads an address.
func DecodeAddress(d *jx.Decoder, a *profile.Address) error {
	return d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		var err error
		switch k := string(key); k {
		case "id":
			a.ID, err = optStr(d)
		case "name":
			a.Name, err = optStr(d)
		case "street":
			a.Street, err = optStr(d)
		case "city":
			a.City, err = optStr(d)
		case "state":
			a.State, err = optStr(d)
		case "zip":
			a.Zip, err = optStr(d)
		case "country":
			a.Country, err = optStr(d)
		case "mobile":
			a.Mobile, err = optStr(d)
		case "address_type":
			var s string
			s, err = optStr(d)
			a.Type = profile.AddressType(s)
		case "is_default":
			a.IsDefault, err = d.Bool()
		default:
			return d.Skip()
		}
		return field(k, err)
	})
}

// EncodeAddressBook writes the addresses as an array; an empty book is [].
func EncodeAddressBook(e *jx.Encoder, b profile.AddressBook) {
	e.ArrStart()
	for _, a := range b {
		EncodeAddress(e, a)
	}
	e.ArrEnd()
}

// EncodeProfile writes a profile.
func EncodeProfile(e *jx.Encoder, p profile.Profile) {
	e.ObjStart()
	e.FieldStart("user_id")
	e.Str(p.UserID)
	if p.Name != "" {
		e.FieldStart("name")
		e.Str(p.Name)
	}
	if p.Email != "" {
		e.FieldStart("email")
		e.Str(p.Email)
	}
	if p.Mobile != "" {
		e.FieldStart("mobile")
		e.Str(p.Mobile)
	}
	e.FieldStart("addresses")
	EncodeAddressBook(e, p.Addresses)
	e.ObjEnd()
}

// DecodeProfile reads a profile.
func DecodeProfile(d *jx.Decoder, p *profile.Profile) error {
	return d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		var err error
		switch k := string(key); k {
		case "user_id":
			p.UserID, err = optStr(d)
		case "name":
			p.Name, err = optStr(d)
		case "email":
			p.Email, err = optStr(d)
		case "mobile":
			p.Mobile, err = optStr(d)
		case "addresses":
			p.Addresses = p.Addresses[:0]
			err = arr(d, func(d *jx.Decoder) error {
				var a profile.Address
				if err := DecodeAddress(d, &a); err != nil {
					return err
				}
				p.Addresses = append(p.Addresses, a)
				return nil
			})
		default:
			return d.Skip()
		}
		return field(k, err)
	})
}
