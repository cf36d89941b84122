package form

import (
	"farmers-connect/internal/common/validation"
)

// Validate checks state against the schema's rules.
func Validate(schema Schema, state State) *validation.ValidationResult {
	return validation.ValidateForm(state, schema.Rules())
}

// ValidationMessage is the display line for a failed result. The schema's
// RequiredMessage wins when any required field is missing.
func ValidationMessage(schema Schema, result *validation.ValidationResult) string {
	if result == nil || result.Valid {
		return ""
	}
	if schema.RequiredMessage != "" && result.HasCode(validation.CodeRequiredFieldMissing) {
		return schema.RequiredMessage
	}
	return result.Summary()
}
