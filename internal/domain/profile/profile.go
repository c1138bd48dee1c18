package profile

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/go-playground/validator/v10"
)

// ErrNotFound is returned when a profile or address does not exist.
var ErrNotFound = errors.New("not found")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("phone", validPhone); err != nil {
		panic(err)
	}
	return v
}

// validPhone accepts 7 to 15 digits with an optional leading "+" and the
// usual separators (space, dash, dot, parentheses).
func validPhone(fl validator.FieldLevel) bool {
	digits := 0
	for i, r := range fl.Field().String() {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '+' && i == 0:
		case r == ' ', r == '-', r == '.', r == '(', r == ')':
		default:
			return false
		}
	}
	return digits >= 7 && digits <= 15
}

// AddressType classifies a delivery address.
type AddressType string

const (
	AddressHome AddressType = "HOME"
	AddressWork AddressType = "WORK"
)

// Address is a delivery address in the user's profile.
type Address struct {
	ID        string      `json:"id"`
	Name      string      `json:"name" validate:"required"`
	Street    string      `json:"street" validate:"required"`
	City      string      `json:"city" validate:"required"`
	State     string      `json:"state" validate:"required"`
	Zip       string      `json:"zip" validate:"required,printascii,min=3,max=12"`
	Country   string      `json:"country" validate:"required"`
	Mobile    string      `json:"mobile" validate:"required,phone,max=24"`
	Type      AddressType `json:"address_type" validate:"required,oneof=HOME WORK"`
	IsDefault bool        `json:"is_default"`
}

// Validate checks that all required fields are present and well formed.
func (a Address) Validate() error {
	if err := validate.Struct(a); err != nil {
		return errors.Wrap(err, "invalid address")
	}
	return nil
}

// Profile is the user data the checkout needs.
type Profile struct {
	UserID    string      `json:"user_id"`
	Name      string      `json:"name,omitempty"`
	Email     string      `json:"email,omitempty"`
	Mobile    string      `json:"mobile,omitempty"`
	Addresses AddressBook `json:"addresses"`
}

// Service is the remote profile service.
type Service interface {
	Get(ctx context.Context, userID string) (*Profile, error)
	Update(ctx context.Context, userID string, p *Profile) (*Profile, error)
}
