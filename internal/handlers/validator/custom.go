package validator

import (
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

func uuidValidator(fl validator.FieldLevel) bool {
	val, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}

	_, err := uuid.Parse(val)
	return err == nil
}

func decisionValidator(fl validator.FieldLevel) bool {
	val, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}

	switch val {
	case "APPROVED", "REJECTED":
		return true
	default:
		return false
	}
}
