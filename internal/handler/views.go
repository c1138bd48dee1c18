package handler

import (
	"time"

	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/xenking/storefront-checkout/internal/domain/cart"
	"github.com/xenking/storefront-checkout/internal/domain/checkout"
	"github.com/xenking/storefront-checkout/internal/domain/order"
	"github.com/xenking/storefront-checkout/internal/domain/pricing"
	"github.com/xenking/storefront-checkout/internal/domain/profile"
	"github.com/xenking/storefront-checkout/internal/jsonx"
	"github.com/xenking/storefront-checkout/internal/session"
)

// money renders an amount with two decimals.
func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

type itemView struct {
	ProductID       string
	Name            string
	Size            string
	Quantity        int
	UnitPrice       string
	OriginalPrice   string
	DiscountPercent string
	ShippingCost    string
}

func (v itemView) Encode(e *jx.Encoder) {
	e.ObjStart()
	e.FieldStart("product_id")
	e.Str(v.ProductID)
	if v.Name != "" {
		e.FieldStart("name")
		e.Str(v.Name)
	}
	if v.Size != "" {
		e.FieldStart("size")
		e.Str(v.Size)
	}
	e.FieldStart("quantity")
	e.Int(v.Quantity)
	e.FieldStart("unit_price")
	e.Str(v.UnitPrice)
	e.FieldStart("original_price")
	e.Str(v.OriginalPrice)
	e.FieldStart("discount_percent")
	e.Str(v.DiscountPercent)
	e.FieldStart("shipping_cost")
	e.Str(v.ShippingCost)
	e.ObjEnd()
}

type cartView struct {
	Items          []itemView
	CouponCode     string
	DonationAmount string
}

func (v cartView) Encode(e *jx.Encoder) {
	e.ObjStart()
	e.FieldStart("items")
	e.ArrStart()
	for _, it := range v.Items {
		it.Encode(e)
	}
	e.ArrEnd()
	if v.CouponCode != "" {
		e.FieldStart("coupon_code")
		e.Str(v.CouponCode)
	}
	e.FieldStart("donation_amount")
	e.Str(v.DonationAmount)
	e.ObjEnd()
}

type breakdownView struct {
	TotalMRP       string
	TotalDiscount  string
	CouponDiscount string
	ShippingCost   string
	Donation       string
	TotalPayable   string
}

func (v breakdownView) Encode(e *jx.Encoder) {
	e.ObjStart()
	e.FieldStart("total_mrp")
	e.Str(v.TotalMRP)
	e.FieldStart("total_discount")
	e.Str(v.TotalDiscount)
	e.FieldStart("coupon_discount")
	e.Str(v.CouponDiscount)
	e.FieldStart("shipping_cost")
	e.Str(v.ShippingCost)
	e.FieldStart("donation")
	e.Str(v.Donation)
	e.FieldStart("total_payable")
	e.Str(v.TotalPayable)
	e.ObjEnd()
}

type checkoutView struct {
	Step             string
	SelectedAddress  *profile.Address
	PaymentConfirmed bool
}

func (v checkoutView) Encode(e *jx.Encoder) {
	e.ObjStart()
	e.FieldStart("step")
	e.Str(v.Step)
	if v.SelectedAddress != nil {
		e.FieldStart("selected_address")
		jsonx.EncodeAddress(e, *v.SelectedAddress)
	}
	e.FieldStart("payment_confirmed")
	e.Bool(v.PaymentConfirmed)
	e.ObjEnd()
}

type sessionView struct {
	ID        string
	UserID    string
	Cart      cartView
	Breakdown breakdownView
	Checkout  checkoutView
	Addresses profile.AddressBook
	UpdatedAt time.Time
}

func (v sessionView) Encode(e *jx.Encoder) {
	e.ObjStart()
	e.FieldStart("id")
	e.Str(v.ID)
	e.FieldStart("user_id")
	e.Str(v.UserID)
	e.FieldStart("cart")
	v.Cart.Encode(e)
	e.FieldStart("breakdown")
	v.Breakdown.Encode(e)
	e.FieldStart("checkout")
	v.Checkout.Encode(e)
	e.FieldStart("addresses")
	jsonx.EncodeAddressBook(e, v.Addresses)
	e.FieldStart("updated_at")
	jsonx.EncodeTime(e, v.UpdatedAt)
	e.ObjEnd()
}

type orderItemView struct {
	ProductID string
	Size      string
	Quantity  int
}

func (v orderItemView) Encode(e *jx.Encoder) {
	e.ObjStart()
	e.FieldStart("product_id")
	e.Str(v.ProductID)
	if v.Size != "" {
		e.FieldStart("size")
		e.Str(v.Size)
	}
	e.FieldStart("quantity")
	e.Int(v.Quantity)
	e.ObjEnd()
}

type orderView struct {
	ID              string
	UserID          string
	Items           []orderItemView
	TotalAmount     string
	ShippingAddress profile.Address
	PaymentMethod   string
	PaymentLast4    string
	Status          order.Status
	CreatedAt       time.Time
}

func (v orderView) Encode(e *jx.Encoder) {
	e.ObjStart()
	e.FieldStart("id")
	e.Str(v.ID)
	e.FieldStart("user_id")
	e.Str(v.UserID)
	e.FieldStart("items")
	e.ArrStart()
	for _, it := range v.Items {
		it.Encode(e)
	}
	e.ArrEnd()
	e.FieldStart("total_amount")
	e.Str(v.TotalAmount)
	e.FieldStart("shipping_address")
	jsonx.EncodeAddress(e, v.ShippingAddress)
	if v.PaymentMethod != "" {
		e.FieldStart("payment_method")
		e.Str(v.PaymentMethod)
	}
	if v.PaymentLast4 != "" {
		e.FieldStart("payment_last4")
		e.Str(v.PaymentLast4)
	}
	e.FieldStart("status")
	e.Str(string(v.Status))
	e.FieldStart("created_at")
	jsonx.EncodeTime(e, v.CreatedAt)
	e.ObjEnd()
}

type orderListView []orderView

func (v orderListView) Encode(e *jx.Encoder) {
	e.ArrStart()
	for _, o := range v {
		o.Encode(e)
	}
	e.ArrEnd()
}

type placedOrderView struct {
	Order   orderView
	Session sessionView
}

func (v placedOrderView) Encode(e *jx.Encoder) {
	e.ObjStart()
	e.FieldStart("order")
	v.Order.Encode(e)
	e.FieldStart("session")
	v.Session.Encode(e)
	e.ObjEnd()
}

func newCartView(c cart.Cart) cartView {
	items := make([]itemView, len(c.Items))
	for i, it := range c.Items {
		items[i] = itemView{
			ProductID:       it.ProductID,
			Name:            it.Name,
			Size:            it.Size,
			Quantity:        it.Quantity,
			UnitPrice:       money(it.UnitPrice),
			OriginalPrice:   money(it.OriginalPrice),
			DiscountPercent: it.DiscountPercent.String(),
			ShippingCost:    money(it.ShippingCost),
		}
	}
	return cartView{
		Items:          items,
		CouponCode:     c.CouponCode,
		DonationAmount: money(c.DonationAmount),
	}
}

func newBreakdownView(b pricing.Breakdown) breakdownView {
	return breakdownView{
		TotalMRP:       money(b.TotalMRP),
		TotalDiscount:  money(b.TotalDiscount),
		CouponDiscount: money(b.CouponDiscount),
		ShippingCost:   money(b.ShippingCost),
		Donation:       money(b.Donation),
		TotalPayable:   money(b.TotalPayable),
	}
}

func newCheckoutView(st checkout.State) checkoutView {
	return checkoutView{
		Step:             st.Step.String(),
		SelectedAddress:  st.SelectedAddress,
		PaymentConfirmed: st.PaymentConfirmed,
	}
}

func newSessionView(s *session.Snapshot) sessionView {
	var book profile.AddressBook
	if s.Profile != nil {
		book = s.Profile.Addresses
	}
	return sessionView{
		ID:        s.ID,
		UserID:    s.UserID,
		Cart:      newCartView(s.Cart),
		Breakdown: newBreakdownView(pricing.Compute(s.Cart)),
		Checkout:  newCheckoutView(s.Checkout),
		Addresses: book,
		UpdatedAt: s.UpdatedAt,
	}
}

func newOrderView(o *order.Order) orderView {
	items := make([]orderItemView, len(o.Items))
	for i, it := range o.Items {
		items[i] = orderItemView{ProductID: it.ProductID, Size: it.Size, Quantity: it.Quantity}
	}
	return orderView{
		ID:              o.ID,
		UserID:          o.UserID,
		Items:           items,
		TotalAmount:     money(o.TotalAmount),
		ShippingAddress: o.ShippingAddress,
		PaymentMethod:   o.PaymentInfo.Method,
		PaymentLast4:    o.PaymentInfo.Last4,
		Status:          o.Status,
		CreatedAt:       o.CreatedAt,
	}
}
