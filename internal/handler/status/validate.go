package status

import (
	"github.com/go-playground/validator/v10"

	"github.com/chrisjgf/ez-stablecoin/internal/model"
)

var validate = validator.New()

// validateUpdate rejects amounts that can never be legitimate. Partial
// updates are the norm, so nil fields are fine.
func validateUpdate(update model.StatusUpdate) error {
	return validate.Struct(update)
}
