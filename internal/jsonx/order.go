package jsonx

import (
	"github.com/go-faster/jx"

	"github.com/xenking/storefront-checkout/internal/domain/order"
)

func encodeOrderItems(e *jx.Encoder, items []order.Item) {
	e.ArrStart()
	for _, it := range items {
		e.ObjStart()
		e.FieldStart("product_id")
		e.Str(it.ProductID)
		if it.Size != "" {
			e.FieldStart("size")
			e.Str(it.Size)
		}
		e.FieldStart("quantity")
		e.Int(it.Quantity)
		e.ObjEnd()
	}
	e.ArrEnd()
}

func decodeOrderItems(d *jx.Decoder, items *[]order.Item) error {
	*items = (*items)[:0]
	return arr(d, func(d *jx.Decoder) error {
		var it order.Item
		err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
			var err error
			switch k := string(key); k {
			case "product_id":
				it.ProductID, err = d.Str()
			case "size":
				it.Size, err = optStr(d)
			case "quantity":
				it.Quantity, err = d.Int()
			default:
				return d.Skip()
			}
			return field(k, err)
		})
		if err != nil {
			return err
		}
		*items = append(*items, it)
		return nil
	})
}

func encodePaymentInfo(e *jx.Encoder, p order.PaymentInfo) {
	e.ObjStart()
	e.FieldStart("method")
	e.Str(p.Method)
	e.FieldStart("token")
	e.Str(p.Token)
	if p.Last4 != "" {
		e.FieldStart("last4")
		e.Str(p.Last4)
	}
	e.ObjEnd()
}

func decodePaymentInfo(d *jx.Decoder, p *order.PaymentInfo) error {
	return d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		var err error
		switch k := string(key); k {
		case "method":
			p.Method, err = optStr(d)
		case "token":
			p.Token, err = optStr(d)
		case "last4":
			p.Last4, err = optStr(d)
		default:
			return d.Skip()
		}
		return field(k, err)
	})
}

// EncodeCreateOrder writes the order service's create payload.
func EncodeCreateOrder(e *jx.Encoder, req order.CreateRequest) {
	e.ObjStart()
	e.FieldStart("user_id")
	e.Str(req.UserID)
	e.FieldStart("items")
	encodeOrderItems(e, req.Items)
	e.FieldStart("total_amount")
	EncodeDecimal(e, req.TotalAmount)
	e.FieldStart("shipping_address")
	EncodeAddress(e, req.ShippingAddress)
	e.FieldStart("payment_info")
	encodePaymentInfo(e, req.PaymentInfo)
	e.ObjEnd()
}

// EncodeOrder writes an order.
func EncodeOrder(e *jx.Encoder, o order.Order) {
	e.ObjStart()
	e.FieldStart("id")
	e.Str(o.ID)
	e.FieldStart("user_id")
	e.Str(o.UserID)
	e.FieldStart("items")
	encodeOrderItems(e, o.Items)
	e.FieldStart("total_amount")
	EncodeDecimal(e, o.TotalAmount)
	e.FieldStart("shipping_address")
	EncodeAddress(e, o.ShippingAddress)
	e.FieldStart("payment_info")
	encodePaymentInfo(e, o.PaymentInfo)
	e.FieldStart("status")
	e.Str(string(o.Status))
	e.FieldStart("created_at")
	EncodeTime(e, o.CreatedAt)
	e.ObjEnd()
}

// DecodeOrder reads an order.
func DecodeOrder(d *jx.Decoder, o *order.Order) error {
	return d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		var err error
		switch k := string(key); k {
		case "id":
			o.ID, err = d.Str()
		case "user_id":
			o.UserID, err = optStr(d)
		case "items":
			err = decodeOrderItems(d, &o.Items)
		case "total_amount":
			o.TotalAmount, err = DecodeDecimal(d)
		case "shipping_address":
			err = DecodeAddress(d, &o.ShippingAddress)
		case "payment_info":
			err = decodePaymentInfo(d, &o.PaymentInfo)
		case "status":
			var s string
			s, err = optStr(d)
			o.Status = order.Status(s)
		case "created_at":
			o.CreatedAt, err = DecodeTime(d)
		default:
			return d.Skip()
		}
		return field(k, err)
	})
}

// DecodeOrders reads an array of orders. Null yields no orders.
func DecodeOrders(d *jx.Decoder, out *[]order.Order) error {
	if d.Next() == jx.Null {
		*out = nil
		return d.Null()
	}
	*out = (*out)[:0]
	return d.Arr(func(d *jx.Decoder) error {
		var o order.Order
		if err := DecodeOrder(d, &o); err != nil {
			return err
		}
		*out = append(*out, o)
		return nil
	})
}
