package jsonx

import (
	"github.com/go-faster/jx"

	"github.com/xenking/storefront-checkout/internal/domain/checkout"
	"github.com/xenking/storefront-checkout/internal/domain/payment"
	"github.com/xenking/storefront-checkout/internal/domain/profile"
)

// EncodeCheckoutState writes the wizard state. The step is written by name.
func EncodeCheckoutState(e *jx.Encoder, st checkout.State) {
	e.ObjStart()
	e.FieldStart("step")
	e.Str(st.Step.String())
	if st.SelectedAddress != nil {
		e.FieldStart("selected_address")
		EncodeAddress(e, *st.SelectedAddress)
	}
	e.FieldStart("payment_confirmed")
	e.Bool(st.PaymentConfirmed)
	if st.Payment != nil {
		e.FieldStart("payment")
		EncodeConfirmation(e, *st.Payment)
	}
	e.ObjEnd()
}

// DecodeCheckoutState reads the wizard state.
func DecodeCheckoutState(d *jx.Decoder, st *checkout.State) error {
	return d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		var err error
		switch k := string(key); k {
		case "step":
			var s string
			if s, err = d.Str(); err == nil {
				err = st.Step.UnmarshalText([]byte(s))
			}
		case "selected_address":
			if d.Next() == jx.Null {
				st.SelectedAddress = nil
				err = d.Null()
				break
			}
			var a profile.Address
			if err = DecodeAddress(d, &a); err == nil {
				st.SelectedAddress = &a
			}
		case "payment_confirmed":
			st.PaymentConfirmed, err = d.Bool()
		case "payment":
			if d.Next() == jx.Null {
				st.Payment = nil
				err = d.Null()
				break
			}
			var c payment.Confirmation
			if err = DecodeConfirmation(d, &c); err == nil {
				st.Payment = &c
			}
		default:
			return d.Skip()
		}
		return field(k, err)
	})
}
