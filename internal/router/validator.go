package router

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/jwalitptl/telemed-api/internal/model"
)

// registerValidators installs the enum checks referenced by binding tags
// on the request models.
func registerValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		return model.Role(fl.Field().String()).Valid()
	})
	v.RegisterValidation("consultation_type", func(fl validator.FieldLevel) bool {
		return model.ConsultationType(fl.Field().String()).Valid()
	})
}
