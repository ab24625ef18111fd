package model

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var pricePattern = regexp.MustCompile(`^\d+([.,]\d{1,2})?$`)

// ParsePrice reads a display price such as "5,63" or "899.00".
func ParsePrice(price string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.Replace(strings.TrimSpace(price), ",", ".", 1))
}

// NewValidator returns a validator with the "price" rule registered.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// registration only fails for an empty tag or a nil func
	_ = v.RegisterValidation("price", func(fl validator.FieldLevel) bool {
		return pricePattern.MatchString(fl.Field().String())
	})
	return v
}
