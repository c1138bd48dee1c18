// Package jsonx encodes and decodes the domain types on the wire with
// go-faster/jx. Decoders skip unknown fields; decimals are written as
// strings and read from strings or numbers.
package jsonx

import (
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"
)

// Marshal runs enc against a fresh encoder and returns the bytes.
func Marshal(enc func(e *jx.Encoder)) []byte {
	var e jx.Encoder
	enc(&e)
	return e.Bytes()
}

// Unmarshal decodes a single JSON value from data with dec.
func Unmarshal(data []byte, dec func(d *jx.Decoder) error) error {
	d := jx.DecodeBytes(data)
	if err := dec(d); err != nil {
		return err
	}
	if d.Next() != jx.Invalid {
		return errors.New("unexpected data after JSON value")
	}
	return nil
}

// EncodeDecimal writes v as a JSON string.
func EncodeDecimal(e *jx.Encoder, v decimal.Decimal) {
	e.Str(v.String())
}

// DecodeDecimal reads a decimal given as a string, a number or null.
func DecodeDecimal(d *jx.Decoder) (decimal.Decimal, error) {
	switch tt := d.Next(); tt {
	case jx.String:
		s, err := d.Str()
		if err != nil {
			return decimal.Zero, err
		}
		v, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero, errors.Wrapf(err, "parse decimal %q", s)
		}
		return v, nil
	case jx.Number:
		n, err := d.Num()
		if err != nil {
			return decimal.Zero, err
		}
		v, err := decimal.NewFromString(string(n))
		if err != nil {
			return decimal.Zero, errors.Wrapf(err, "parse decimal %s", string(n))
		}
		return v, nil
	case jx.Null:
		return decimal.Zero, d.Null()
	default:
		return decimal.Zero, errors.Errorf("decimal: unexpected %s", tt)
	}
}

// EncodeTime writes t in RFC 3339 with nanoseconds.
func EncodeTime(e *jx.Encoder, t time.Time) {
	e.Str(t.Format(time.RFC3339Nano))
}

// DecodeTime reads an RFC 3339 timestamp. Null yields the zero time.
func DecodeTime(d *jx.Decoder) (time.Time, error) {
	if d.Next() == jx.Null {
		return time.Time{}, d.Null()
	}
	s, err := d.Str()
	if err != nil {
		return time.Time{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "parse time %q", s)
	}
	return t, nil
}

// optStr reads a string that may be null.
func optStr(d *jx.Decoder) (string, error) {
	if d.Next() == jx.Null {
		return "", d.Null()
	}
	return d.Str()
}

// field wraps a field decoding error with the field name.
func field(name string, err error) error {
	if err != nil {
		return errors.Wrapf(err, "decode field %q", name)
	}
	return nil
}

// arr reads an array that may be null.
func arr(d *jx.Decoder, f func(d *jx.Decoder) error) error {
	if d.Next() == jx.Null {
		return d.Null()
	}
	return d.Arr(f)
}
