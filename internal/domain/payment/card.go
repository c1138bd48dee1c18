package payment

import (
	"context"
	"strings"
	"time"

	creditcard "github.com/durango/go-credit-card"
	"github.com/go-faster/errors"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var _ Confirmer = (*CardConfirmer)(nil)

var validate = validator.New(validator.WithRequiredStructEnabled())

// CardConfirmer verifies card details locally (format, Luhn checksum,
// expiry, CVV, network) and issues a confirmation token. It stands in for a
// payment processor.
type CardConfirmer struct {
	allowTestCards bool
	now            func() time.Time
	newToken       func() string
}

// NewCardConfirmer creates a CardConfirmer. Well-known test card numbers are
// accepted only when allowTestCards is set.
func NewCardConfirmer(allowTestCards bool) *CardConfirmer {
	return &CardConfirmer{
		allowTestCards: allowTestCards,
		now:            time.Now,
		newToken:       uuid.NewString,
	}
}

// Confirm validates the card and the amount and returns a confirmation.
func (c *CardConfirmer) Confirm(ctx context.Context, req Request) (*Confirmation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !req.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if err := validate.Struct(req.Card); err != nil {
		return nil, errors.Wrap(err, "invalid card details")
	}

	card := creditcard.Card{
		Number: req.Card.Number,
		Cvv:    req.Card.CVV,
		Month:  req.Card.ExpiryMonth,
		Year:   req.Card.ExpiryYear,
	}
	if err := card.Validate(c.allowTestCards); err != nil {
		return nil, errors.Wrap(ErrCardRejected, strings.ToLower(err.Error()))
	}
	if err := card.Method(); err != nil {
		return nil, errors.Wrap(ErrCardRejected, strings.ToLower(err.Error()))
	}

	last4, err := card.LastFour()
	if err != nil {
		return nil, errors.Wrap(ErrCardRejected, strings.ToLower(err.Error()))
	}

	return &Confirmation{
		Token:       c.newToken(),
		Network:     card.Company.Short,
		Last4:       last4,
		Amount:      req.Amount,
		ConfirmedAt: c.now().UTC(),
	}, nil
}
