package utils

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// FieldErrors accumulates validation messages keyed by field name.
type FieldErrors map[string]string

// Add records a message for a field, keeping the first message per field.
func (f FieldErrors) Add(field, message string) {
	if _, exists := f[field]; !exists {
		f[field] = message
	}
}

// HasErrors reports whether any field failed validation.
func (f FieldErrors) HasErrors() bool {
	return len(f) > 0
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report errors under the json field name, not the Go field name.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate performs validation on a struct and returns field-keyed errors.
func Validate(s interface{}) FieldErrors {
	fieldErrors := FieldErrors{}
	err := validate.Struct(s)
	if err == nil {
		return fieldErrors
	}
	if errs, ok := err.(validator.ValidationErrors); ok {
		for _, e := range errs {
			fieldErrors.Add(e.Field(), validationMessage(e))
		}
		return fieldErrors
	}
	fieldErrors.Add("non_field_errors", err.Error())
	return fieldErrors
}

func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "min":
		return fmt.Sprintf("Ensure this field has at least %s characters.", e.Param())
	case "max":
		return fmt.Sprintf("Ensure this field has no more than %s characters.", e.Param())
	case "oneof":
		return fmt.Sprintf("Value must be one of: %s.", e.Param())
	case "datetime":
		return fmt.Sprintf("Date must be in %s format.", e.Param())
	}
	return fmt.Sprintf("Failed validation on %s.", e.Tag())
}

// BindAndValidate binds the request body to a struct and validates it.
// If binding or validation fails, it sends a 400 response and returns false.
func BindAndValidate(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		BadRequest(c, "Invalid request payload: "+err.Error())
		return false
	}
	if fieldErrors := Validate(obj); fieldErrors.HasErrors() {
		ValidationFailed(c, fieldErrors)
		return false
	}
	return true
}

// ValidPhone reports whether a phone number contains only digits and
// optional + or - characters.
func ValidPhone(phone string) bool {
	if phone == "" {
		return false
	}
	stripped := strings.ReplaceAll(strings.ReplaceAll(phone, "-", ""), "+", "")
	if stripped == "" {
		return false
	}
	for _, r := range stripped {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ValidPostalCode reports whether a postal code is alphanumeric with
// optional hyphens.
func ValidPostalCode(code string) bool {
	if code == "" {
		return false
	}
	stripped := strings.ReplaceAll(code, "-", "")
	if stripped == "" {
		return false
	}
	for _, r := range stripped {
		isDigit := r >= '0' && r <= '9'
		isLower := r >= 'a' && r <= 'z'
		isUpper := r >= 'A' && r <= 'Z'
		if !isDigit && !isLower && !isUpper {
			return false
		}
	}
	return true
}
