package checkout

import (
	"github.com/go-faster/errors"
)

// Step is a position in the checkout wizard.
type Step int

const (
	StepBag Step = iota
	StepAddress
	StepPayment
)

var stepNames = [...]string{
	StepBag:     "bag",
	StepAddress: "address",
	StepPayment: "payment",
}

func (s Step) String() string {
	if s < StepBag || s > StepPayment {
		return "unknown"
	}
	return stepNames[s]
}

// MarshalText implements encoding.TextMarshaler.
func (s Step) MarshalText() ([]byte, error) {
	if s < StepBag || s > StepPayment {
		return nil, errors.Errorf("invalid step %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Step) UnmarshalText(text []byte) error {
	for i, name := range stepNames {
		if name == string(text) {
			*s = Step(i)
			return nil
		}
	}
	return errors.Errorf("unknown step %q", text)
}
