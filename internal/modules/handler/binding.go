package handler

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/buildvault/bimlibrary/internal/pkg/utils/storagekey"
)

// modelName rejects display names that cannot become storage keys:
// path separators, traversal sequences, null bytes.
func modelName(fl validator.FieldLevel) bool {
	return storagekey.ValidateDisplayName(fl.Field().String()) == nil
}

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("modelname", modelName)
	}
}
