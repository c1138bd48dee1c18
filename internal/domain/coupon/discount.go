package coupon

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Discount returns the amount the rule takes off the given merchandise
// total. The result is not rounded; callers round at presentation time.
func (r Rule) Discount(subtotal decimal.Decimal) decimal.Decimal {
	switch r.DiscountType {
	case DiscountPercentage:
		return subtotal.Mul(r.Value).Div(hundred)
	default:
		return decimal.Zero
	}
}

// DiscountFor looks up code and applies it to subtotal. Unknown and empty
// codes yield zero.
func DiscountFor(code string, subtotal decimal.Decimal) decimal.Decimal {
	r, ok := Find(code)
	if !ok {
		return decimal.Zero
	}
	return r.Discount(subtotal)
}
