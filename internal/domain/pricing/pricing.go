// Package pricing computes the price breakdown shown at checkout.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/xenking/storefront-checkout/internal/domain/cart"
	"github.com/xenking/storefront-checkout/internal/domain/coupon"
)

var hundred = decimal.NewFromInt(100)

// Breakdown is derived from a cart on every read and never stored.
//
//	TotalPayable = TotalMRP - TotalDiscount - CouponDiscount + ShippingCost + Donation
//
// TotalPayable is not clamped at zero.
type Breakdown struct {
	TotalMRP       decimal.Decimal
	TotalDiscount  decimal.Decimal
	CouponDiscount decimal.Decimal
	ShippingCost   decimal.Decimal
	Donation       decimal.Decimal
	TotalPayable   decimal.Decimal
}

// Compute returns the breakdown for c at full precision.
func Compute(c cart.Cart) Breakdown {
	mrp := decimal.Zero
	discount := decimal.Zero
	shipping := decimal.Zero

	for _, it := range c.Items {
		qty := decimal.NewFromInt(int64(it.Quantity))
		mrp = mrp.Add(it.UnitPrice.Mul(qty))

		if it.DiscountPercent.IsPositive() {
			discount = discount.Add(it.UnitPrice.Mul(it.DiscountPercent).Mul(qty).Div(hundred))
		}

		// One shipment per order: the most expensive item shipping is
		// charged once.
		if it.ShippingCost.GreaterThan(shipping) {
			shipping = it.ShippingCost
		}
	}

	couponDiscount := coupon.DiscountFor(c.CouponCode, mrp)
	donation := c.DonationAmount

	return Breakdown{
		TotalMRP:       mrp,
		TotalDiscount:  discount,
		CouponDiscount: couponDiscount,
		ShippingCost:   shipping,
		Donation:       donation,
		TotalPayable:   mrp.Sub(discount).Sub(couponDiscount).Add(shipping).Add(donation),
	}
}

// Rounded returns a copy with every field rounded to two decimal places.
func (b Breakdown) Rounded() Breakdown {
	return Breakdown{
		TotalMRP:       b.TotalMRP.Round(2),
		TotalDiscount:  b.TotalDiscount.Round(2),
		CouponDiscount: b.CouponDiscount.Round(2),
		ShippingCost:   b.ShippingCost.Round(2),
		Donation:       b.Donation.Round(2),
		TotalPayable:   b.TotalPayable.Round(2),
	}
}
