package validation

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// FieldType is the declared type of a raw string form value.
type FieldType string

const (
	TypeString  FieldType = "string"
	TypeNumber  FieldType = "number"
	TypeInteger FieldType = "integer"
	TypeBoolean FieldType = "boolean"
	TypeEmail   FieldType = "email"
)

// Property holds the constraints of one field.
type Property struct {
	Type     FieldType
	Required bool
	Minimum  *float64
	Maximum  *float64
	Enum     []string
}

// Field is a named Property. Fields are validated in declaration order so the
// resulting messages are stable.
type Field struct {
	Name string
	Property
}

// FormSchema is the ordered list of fields a form accepts.
type FormSchema struct {
	Fields []Field
}

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

const (
	CodeRequiredFieldMissing = "REQUIRED_FIELD_MISSING"
	CodeInvalidType          = "INVALID_TYPE"
	CodeMinimumViolation     = "MINIMUM_VIOLATION"
	CodeMaximumViolation     = "MAXIMUM_VIOLATION"
	CodeInvalidEnumValue     = "INVALID_ENUM_VALUE"
	CodeExtraField           = "EXTRA_FIELD"
)

// Float returns a pointer to v, for Minimum and Maximum literals.
func Float(v float64) *float64 {
	return &v
}

// ValidateForm validates raw string values against the schema. Keys that are
// not declared in the schema are reported as EXTRA_FIELD.
func ValidateForm(values map[string]string, schema FormSchema) *ValidationResult {
	errors := []ValidationError{}
	declared := make(map[string]struct{}, len(schema.Fields))

	for _, field := range schema.Fields {
		declared[field.Name] = struct{}{}
		raw := strings.TrimSpace(values[field.Name])

		if raw == "" {
			if field.Required {
				errors = append(errors, ValidationError{
					Field:   field.Name,
					Message: "required field missing",
					Code:    CodeRequiredFieldMissing,
				})
			}
			continue
		}

		errors = append(errors, validateField(field.Name, raw, field.Property)...)
	}

	extra := make([]string, 0)
	for name := range values {
		if _, ok := declared[name]; !ok {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	for _, name := range extra {
		errors = append(errors, ValidationError{
			Field:   name,
			Message: "field not allowed in schema",
			Code:    CodeExtraField,
		})
	}

	return &ValidationResult{
		Valid:  len(errors) == 0,
		Errors: errors,
	}
}

func validateField(fieldName, raw string, prop Property) []ValidationError {
	switch prop.Type {
	case TypeNumber, TypeInteger:
		num, err := parseNumber(raw, prop.Type)
		if err != nil {
			return []ValidationError{{
				Field:   fieldName,
				Message: err.Error(),
				Code:    CodeInvalidType,
			}}
		}
		return validateRange(fieldName, num, prop)

	case TypeBoolean:
		if _, err := strconv.ParseBool(raw); err != nil {
			return []ValidationError{{
				Field:   fieldName,
				Message: "expected boolean",
				Code:    CodeInvalidType,
			}}
		}

	case TypeEmail:
		if !ValidateEmail(raw) {
			return []ValidationError{{
				Field:   fieldName,
				Message: "invalid email format",
				Code:    CodeInvalidType,
			}}
		}
	}

	if len(prop.Enum) > 0 {
		for _, enumVal := range prop.Enum {
			if raw == enumVal {
				return nil
			}
		}
		return []ValidationError{{
			Field:   fieldName,
			Message: fmt.Sprintf("value must be one of %v", prop.Enum),
			Code:    CodeInvalidEnumValue,
		}}
	}
	return nil
}

func parseNumber(raw string, typ FieldType) (float64, error) {
	if typ == TypeInteger {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("expected integer")
		}
		return float64(n), nil
	}
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, fmt.Errorf("expected number")
	}
	return n, nil
}

func validateRange(fieldName string, num float64, prop Property) []ValidationError {
	var errors []ValidationError
	if prop.Minimum != nil && num < *prop.Minimum {
		errors = append(errors, ValidationError{
			Field:   fieldName,
			Message: "value must be >= " + formatBound(*prop.Minimum),
			Code:    CodeMinimumViolation,
		})
	}
	if prop.Maximum != nil && num > *prop.Maximum {
		errors = append(errors, ValidationError{
			Field:   fieldName,
			Message: "value must be <= " + formatBound(*prop.Maximum),
			Code:    CodeMaximumViolation,
		})
	}
	return errors
}

func formatBound(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// ValidateDocument validates a JSON document against a JSON schema.
func ValidateDocument(schemaJSON string, document []byte) error {
	schemaLoader := gojsonschema.NewStringLoader(schemaJSON)
	documentLoader := gojsonschema.NewBytesLoader(document)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("document validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// GetErrorMessages returns a simple list of error messages
func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, len(vr.Errors))
	for i, err := range vr.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return messages
}

// Summary joins all error messages into one display line.
func (vr *ValidationResult) Summary() string {
	return strings.Join(vr.GetErrorMessages(), "; ")
}

// HasErrors checks if validation has errors for specific field
func (vr *ValidationResult) HasErrors(field string) bool {
	for _, err := range vr.Errors {
		if err.Field == field {
			return true
		}
	}
	return false
}

// HasCode reports whether any error carries the given code.
func (vr *ValidationResult) HasCode(code string) bool {
	for _, err := range vr.Errors {
		if err.Code == code {
			return true
		}
	}
	return false
}

// ValidateEmail validates email format
func ValidateEmail(email string) bool {
	emailPattern := regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	return emailPattern.MatchString(email)
}

// ValidateURL validates URL format
func ValidateURL(url string) bool {
	urlPattern := regexp.MustCompile(`^(https?)://[^\s/$.?#].[^\s]*$`)
	return urlPattern.MatchString(url)
}
