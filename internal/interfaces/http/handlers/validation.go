// internal/interfaces/http/handlers/validation.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/technexus/storefront-backend/internal/pkg/auth"
)

// RegisterValidators adds the custom binding tags used by request structs.
// It must run before the first request is bound.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("unexpected binding validator engine")
	}
	return v.RegisterValidation("phone", validPhone)
}

// validPhone accepts anything that normalizes to an international number
func validPhone(fl validator.FieldLevel) bool {
	return auth.ValidPhone(auth.NormalizePhone(fl.Field().String()))
}
