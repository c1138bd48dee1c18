package coupon

import (
	"strings"

	"github.com/shopspring/decimal"
)

// NewUser is the only coupon code the storefront honours.
const NewUser = "NEWUSER"

// DiscountType enumerates the supported coupon discount strategies.
type DiscountType string

const (
	// DiscountPercentage applies a percentage of the merchandise total.
	DiscountPercentage DiscountType = "percentage"
)

// Rule defines a coupon's discount behaviour.
type Rule struct {
	Code         string
	DiscountType DiscountType
	Value        decimal.Decimal
	Description  string
}

// rules is the fixed coupon table. There is no registry or remote
// validation: a code either appears here or grants nothing.
var rules = map[string]Rule{
	NewUser: {
		Code:         NewUser,
		DiscountType: DiscountPercentage,
		Value:        decimal.NewFromInt(10),
		Description:  "10% off for new users",
	},
}

// Find returns the rule for an exact code match.
func Find(code string) (Rule, bool) {
	r, ok := rules[code]
	return r, ok
}

// Normalize trims surrounding whitespace and upper-cases user input so that
// " newuser " and "NEWUSER" address the same rule.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
