package jsonx

import (
	"testing"
	"time"

	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/storefront-checkout/internal/domain/cart"
	"github.com/xenking/storefront-checkout/internal/domain/checkout"
	"github.com/xenking/storefront-checkout/internal/domain/order"
	"github.com/xenking/storefront-checkout/internal/domain/payment"
	"github.com/xenking/storefront-checkout/internal/domain/profile"
)

func TestDecodeDecimal(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "string", input: `"490.50"`, want: "490.5"},
		{name: "number", input: `12.25`, want: "12.25"},
		{name: "integer", input: `7`, want: "7"},
		{name: "null", input: `null`, want: "0"},
		{name: "garbage string", input: `"abc"`, wantErr: true},
		{name: "bool", input: `true`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got decimal.Decimal
			err := Unmarshal([]byte(tt.input), func(d *jx.Decoder) error {
				var err error
				got, err = DecodeDecimal(d)
				return err
			})
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestUnmarshal_TrailingData(t *testing.T) {
	var it cart.AddItemRequest
	err := Unmarshal([]byte(`{"product_id":"p1","quantity":1} {}`), func(d *jx.Decoder) error {
		return DecodeAddItem(d, &it)
	})
	require.Error(t, err)
}

func TestDecodeAddItem_SkipsUnknownFields(t *testing.T) {
	var it cart.AddItemRequest
	err := Unmarshal([]byte(`{"product_id":"kurta","extra":{"a":[1,2]},"size":"M","quantity":2}`), func(d *jx.Decoder) error {
		return DecodeAddItem(d, &it)
	})
	require.NoError(t, err)
	assert.Equal(t, cart.AddItemRequest{ProductID: "kurta", Size: "M", Quantity: 2}, it)
}

func TestDecodeAddItem_WrongType(t *testing.T) {
	var it cart.AddItemRequest
	err := Unmarshal([]byte(`{"product_id":"kurta","quantity":"two"}`), func(d *jx.Decoder) error {
		return DecodeAddItem(d, &it)
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"quantity"`)
}

func TestDecodeCart(t *testing.T) {
	input := `{
		"items": [{
			"product_id": "kurta",
			"name": "Cotton Kurta",
			"size": "M",
			"quantity": 2,
			"unit_price": "450.00",
			"original_price": 900,
			"discount_percent": "50",
			"shipping_cost": null,
			"rating": 4.5
		}],
		"coupon_code": "NEWUSER",
		"donation_amount": "10"
	}`

	var c cart.Cart
	require.NoError(t, Unmarshal([]byte(input), func(d *jx.Decoder) error { return DecodeCart(d, &c) }))

	require.Len(t, c.Items, 1)
	it := c.Items[0]
	assert.Equal(t, "kurta", it.ProductID)
	assert.Equal(t, "Cotton Kurta", it.Name)
	assert.Equal(t, 2, it.Quantity)
	assert.True(t, it.UnitPrice.Equal(decimal.RequireFromString("450")))
	assert.True(t, it.OriginalPrice.Equal(decimal.RequireFromString("900")))
	assert.True(t, it.ShippingCost.IsZero())
	assert.Equal(t, "NEWUSER", c.CouponCode)
	assert.True(t, c.DonationAmount.Equal(decimal.NewFromInt(10)))
}

func TestDecodeCart_NullItems(t *testing.T) {
	var c cart.Cart
	require.NoError(t, Unmarshal([]byte(`{"items":null,"donation_amount":"0"}`), func(d *jx.Decoder) error {
		return DecodeCart(d, &c)
	}))
	assert.True(t, c.IsEmpty())
}

func TestEncodeCart(t *testing.T) {
	c := cart.Cart{DonationAmount: decimal.RequireFromString("5.50")}
	got := Marshal(func(e *jx.Encoder) { EncodeCart(e, c) })
	assert.JSONEq(t, `{"items":[],"donation_amount":"5.5"}`, string(got))
}

func TestOrder_RoundTrip(t *testing.T) {
	created := time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)
	o := order.Order{
		ID:     "o1",
		UserID: "u1",
		Items:  []order.Item{{ProductID: "kurta", Size: "M", Quantity: 2}},
		ShippingAddress: profile.Address{
			ID: "a1", Name: "Asha", Street: "MG Road", City: "Pune", State: "MH",
			Zip: "411001", Country: "IN", Mobile: "+91 98765 43210", Type: profile.AddressHome, IsDefault: true,
		},
		TotalAmount: decimal.RequireFromString("490.5"),
		PaymentInfo: order.PaymentInfo{Method: "card", Token: "tok", Last4: "4242"},
		Status:      order.StatusNew,
		CreatedAt:   created,
	}

	data := Marshal(func(e *jx.Encoder) { EncodeOrder(e, o) })

	var got order.Order
	require.NoError(t, Unmarshal(data, func(d *jx.Decoder) error { return DecodeOrder(d, &got) }))
	assert.True(t, got.TotalAmount.Equal(o.TotalAmount))
	got.TotalAmount = o.TotalAmount
	assert.Equal(t, o, got)
}

func TestEncodeCreateOrder(t *testing.T) {
	req := order.CreateRequest{
		UserID:      "u1",
		Items:       []order.Item{{ProductID: "kurta", Quantity: 1}},
		TotalAmount: decimal.RequireFromString("100"),
		PaymentInfo: order.PaymentInfo{Method: "card", Token: "tok"},
	}
	data := Marshal(func(e *jx.Encoder) { EncodeCreateOrder(e, req) })

	var body map[string]jx.Raw
	require.NoError(t, Unmarshal(data, func(d *jx.Decoder) error {
		body = make(map[string]jx.Raw)
		return d.ObjBytes(func(d *jx.Decoder, key []byte) error {
			raw, err := d.Raw()
			body[string(key)] = raw
			return err
		})
	}))
	assert.Equal(t, `"100"`, body["total_amount"].String())
	assert.Equal(t, `"u1"`, body["user_id"].String())
	assert.Contains(t, body, "shipping_address")
	assert.Contains(t, body, "payment_info")
	assert.NotContains(t, body, "status")
}

func TestDecodeOrders_Null(t *testing.T) {
	out := []order.Order{{ID: "stale"}}
	require.NoError(t, Unmarshal([]byte(`null`), func(d *jx.Decoder) error { return DecodeOrders(d, &out) }))
	assert.Empty(t, out)
}

func TestDecodeProfile(t *testing.T) {
	input := `{"user_id":"u1","name":"Asha","addresses":[{"id":"a1","city":"Pune","address_type":"WORK","is_default":true}],"loyalty":{"tier":"gold"}}`

	var p profile.Profile
	require.NoError(t, Unmarshal([]byte(input), func(d *jx.Decoder) error { return DecodeProfile(d, &p) }))
	assert.Equal(t, "u1", p.UserID)
	assert.Equal(t, "Asha", p.Name)
	require.Len(t, p.Addresses, 1)
	assert.Equal(t, profile.AddressWork, p.Addresses[0].Type)
	assert.True(t, p.Addresses[0].IsDefault)
}

func TestEncodeProfile_EmptyAddressBook(t *testing.T) {
	got := Marshal(func(e *jx.Encoder) { EncodeProfile(e, profile.Profile{UserID: "u1"}) })
	assert.JSONEq(t, `{"user_id":"u1","addresses":[]}`, string(got))
}

func TestDecodeCard(t *testing.T) {
	input := `{"holder":"Asha","number":"4242424242424242","expiry_month":"12","expiry_year":"2030","cvv":"123"}`

	var c payment.Card
	require.NoError(t, Unmarshal([]byte(input), func(d *jx.Decoder) error { return DecodeCard(d, &c) }))
	assert.Equal(t, payment.Card{
		Holder: "Asha", Number: "4242424242424242", ExpiryMonth: "12", ExpiryYear: "2030", CVV: "123",
	}, c)
}

func TestCheckoutState_RoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		state checkout.State
	}{
		{name: "bag", state: checkout.State{Step: checkout.StepBag}},
		{
			name: "payment with address",
			state: checkout.State{
				Step:            checkout.StepPayment,
				SelectedAddress: &profile.Address{ID: "a1", City: "Pune", Type: profile.AddressHome},
			},
		},
		{
			name: "confirmed",
			state: checkout.State{
				Step:             checkout.StepPayment,
				SelectedAddress:  &profile.Address{ID: "a1"},
				PaymentConfirmed: true,
				Payment: &payment.Confirmation{
					Token:       "tok",
					Network:     "visa",
					Last4:       "4242",
					Amount:      decimal.NewFromInt(490),
					ConfirmedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
				},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := Marshal(func(e *jx.Encoder) { EncodeCheckoutState(e, tt.state) })

			var got checkout.State
			require.NoError(t, Unmarshal(data, func(d *jx.Decoder) error { return DecodeCheckoutState(d, &got) }))
			if tt.state.Payment != nil {
				require.NotNil(t, got.Payment)
				assert.True(t, got.Payment.Amount.Equal(tt.state.Payment.Amount))
				got.Payment.Amount = tt.state.Payment.Amount
			}
			assert.Equal(t, tt.state, got)
		})
	}
}

func TestDecodeCheckoutState_UnknownStep(t *testing.T) {
	var st checkout.State
	err := Unmarshal([]byte(`{"step":"shipping"}`), func(d *jx.Decoder) error { return DecodeCheckoutState(d, &st) })
	require.Error(t, err)
}
