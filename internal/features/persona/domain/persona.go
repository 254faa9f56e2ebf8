package domain

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// PersonaConfig describes the home-owner the model role-plays.
type PersonaConfig struct {
	OwnerName           string `json:"owner_name" validate:"required"`
	Nature              string `json:"nature" validate:"required"`
	Description         string `json:"description" validate:"required"`
	Difficulty          string `json:"difficulty" validate:"required"`
	PropertyDescription string `json:"property_description" validate:"required"`
	AskingPrice         *int64 `json:"asking_price" validate:"required,gte=0"`
	PriceTier           string `json:"price_tier" validate:"required"`
}

// IncompletePersonaError lists the persona fields that still need a value
// (Missing) or hold a value outside their range (Invalid).
type IncompletePersonaError struct {
	Missing []string `json:"missing,omitempty"`
	Invalid []string `json:"invalid,omitempty"`
}

func (e *IncompletePersonaError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing: "+strings.Join(e.Missing, ", "))
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, "invalid: "+strings.Join(e.Invalid, ", "))
	}
	return fmt.Sprintf("please fill in all persona parameters to begin the chat (%s)", strings.Join(parts, "; "))
}

var validate *validator.Validate

func init() {
	validate = validator.New()
	// Report json names so messages match what clients send.
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// Validate returns an *IncompletePersonaError when any required field is unset.
// Surrounding whitespace does not count as a value.
func (p PersonaConfig) Validate() error {
	normalized := p.normalized()
	err := validate.Struct(normalized)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("failed to validate persona: %w", err)
	}
	incomplete := &IncompletePersonaError{}
	for _, e := range validationErrors {
		if e.Tag() == "required" {
			incomplete.Missing = append(incomplete.Missing, e.Field())
		} else {
			incomplete.Invalid = append(incomplete.Invalid, e.Field())
		}
	}
	return incomplete
}

func (p PersonaConfig) normalized() PersonaConfig {
	p.OwnerName = strings.TrimSpace(p.OwnerName)
	p.Nature = strings.TrimSpace(p.Nature)
	p.Description = strings.TrimSpace(p.Description)
	p.Difficulty = strings.TrimSpace(p.Difficulty)
	p.PropertyDescription = strings.TrimSpace(p.PropertyDescription)
	p.PriceTier = strings.TrimSpace(p.PriceTier)
	return p
}

// Price is a helper for building an asking price literal.
func Price(v int64) *int64 {
	return &v
}
