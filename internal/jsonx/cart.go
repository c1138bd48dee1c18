package jsonx

import (
	"github.com/go-faster/jx"

	"github.com/xenking/storefront-checkout/internal/domain/cart"
)

// EncodeCart writes a cart.
func EncodeCart(e *jx.Encoder, c cart.Cart) {
	e.ObjStart()
	e.FieldStart("items")
	EncodeCartItems(e, c.Items)
	if c.CouponCode != "" {
		e.FieldStart("coupon_code")
		e.Str(c.CouponCode)
	}
	e.FieldStart("donation_amount")
	EncodeDecimal(e, c.DonationAmount)
	e.ObjEnd()
}

// EncodeCartItems writes cart lines as an array; no lines is [].
func EncodeCartItems(e *jx.Encoder, items []cart.Item) {
	e.ArrStart()
	for _, it := range items {
		encodeCartItem(e, it)
	}
	e.ArrEnd()
}

// DecodeCartItems reads an array of cart lines. Null yields no lines.
func DecodeCartItems(d *jx.Decoder, items *[]cart.Item) error {
	*items = (*items)[:0]
	return arr(d, func(d *jx.Decoder) error {
		var it cart.Item
		if err := decodeCartItem(d, &it); err != nil {
			return err
		}
		*items = append(*items, it)
		return nil
	})
}

func encodeCartItem(e *jx.Encoder, it cart.Item) {
	e.ObjStart()
	e.FieldStart("product_id")
	e.Str(it.ProductID)
	if it.Name != "" {
		e.FieldStart("name")
		e.Str(it.Name)
	}
	if it.Size != "" {
		e.FieldStart("size")
		e.Str(it.Size)
	}
	e.FieldStart("quantity")
	e.Int(it.Quantity)
	e.FieldStart("unit_price")
	EncodeDecimal(e, it.UnitPrice)
	e.FieldStart("original_price")
	EncodeDecimal(e, it.OriginalPrice)
	e.FieldStart("discount_percent")
	EncodeDecimal(e, it.DiscountPercent)
	e.FieldStart("shipping_cost")
	EncodeDecimal(e, it.ShippingCost)
	e.ObjEnd()
}

// DecodeCart reads a cart. Coupon and donation are read when present.
func DecodeCart(d *jx.Decoder, c *cart.Cart) error {
	return d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		var err error
		switch k := string(key); k {
		case "items":
			err = DecodeCartItems(d, &c.Items)
			return field(k, err)
		case "coupon_code":
			c.CouponCode, err = optStr(d)
			return field(k, err)
		case "donation_amount":
			c.DonationAmount, err = DecodeDecimal(d)
			return field(k, err)
		default:
			return d.Skip()
		}
	})
}

func decodeCartItem(d *jx.Decoder, it *cart.Item) error {
	return d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		var err error
		switch k := string(key); k {
		case "product_id":
			it.ProductID, err = d.Str()
		case "name":
			it.Name, err = optStr(d)
		case "size":
			it.Size, err = optStr(d)
		case "quantity":
			it.Quantity, err = d.Int()
		case "unit_price":
			it.UnitPrice, err = DecodeDecimal(d)
		case "original_price":
			it.OriginalPrice, err = DecodeDecimal(d)
		case "discount_percent":
			it.DiscountPercent, err = DecodeDecimal(d)
		case "shipping_cost":
			it.ShippingCost, err = DecodeDecimal(d)
		default:
			return d.Skip()
		}
		return field(k, err)
	})
}

// EncodeAddItem writes an add-to-bag request.
func EncodeAddItem(e *jx.Encoder, req cart.AddItemRequest) {
	e.ObjStart()
	e.FieldStart("product_id")
	e.Str(req.ProductID)
	if req.Size != "" {
		e.FieldStart("size")
		e.Str(req.Size)
	}
	e.FieldStart("quantity")
	e.Int(req.Quantity)
	e.ObjEnd()
}

// DecodeAddItem reads an add-to-bag request.
func DecodeAddItem(d *jx.Decoder, req *cart.AddItemRequest) error {
	return d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		var err error
		switch k := string(key); k {
		case "product_id":
			req.ProductID, err = d.Str()
		case "size":
			req.Size, err = optStr(d)
		case "quantity":
			req.Quantity, err = d.Int()
		default:
			return d.Skip()
		}
		return field(k, err)
	})
}
