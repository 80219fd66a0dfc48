package handlers

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// currencyCodePattern accepts ISO 4217 fiat codes and Stellar asset codes.
var currencyCodePattern = regexp.MustCompile(`^[A-Za-z]{3,12}$`)

// RegisterCustomValidators wires the binding tags used by the request DTOs
// into gin's validator engine. Must run before any request is bound.
func RegisterCustomValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("currencycode", func(fl validator.FieldLevel) bool {
			return currencyCodePattern.MatchString(fl.Field().String())
		})
	}
}
