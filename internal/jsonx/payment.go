package jsonx

import (
	"github.com/go-faster/jx"

	"github.com/xenking/storefront-checkout/internal/domain/payment"
)

// DecodeCard reads card details entered on the payment step.
func DecodeCard(d *jx.Decoder, c *payment.Card) error {
	return d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		var err error
		switch k := string(key); k {
		case "holder":
			c.Holder, err = optStr(d)
		case "number":
			c.Number, err = optStr(d)
		case "expiry_month":
			c.ExpiryMonth, err = optStr(d)
		case "expiry_year":
			c.ExpiryYear, err = optStr(d)
		case "cvv":
			c.CVV, err = optStr(d)
		default:
			return d.Skip()
		}
		return field(k, err)
	})
}

// EncodeConfirmation writes a payment confirmation.
func EncodeConfirmation(e *jx.Encoder, c payment.Confirmation) {
	e.ObjStart()
	e.FieldStart("token")
	e.Str(c.Token)
	if c.Network != "" {
		e.FieldStart("network")
		e.Str(c.Network)
	}
	if c.Last4 != "" {
		e.FieldStart("last4")
		e.Str(c.Last4)
	}
	e.FieldStart("amount")
	EncodeDecimal(e, c.Amount)
	e.FieldStart("confirmed_at")
	EncodeTime(e, c.ConfirmedAt)
	e.ObjEnd()
}

// DecodeConfirmation reads a payment confirmation.
func DecodeConfirmation(d *jx.Decoder, c *payment.Confirmation) error {
	return d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		var err error
		switch k := string(key); k {
		case "token":
			c.Token, err = optStr(d)
		case "network":
			c.Network, err = optStr(d)
		case "last4":
			c.Last4, err = optStr(d)
		case "amount":
			c.Amount, err = DecodeDecimal(d)
		case "confirmed_at":
			c.ConfirmedAt, err = DecodeTime(d)
		default:
			return d.Skip()
		}
		return field(k, err)
	})
}
