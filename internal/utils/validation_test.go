package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidPhone(t *testing.T) {
	cases := []struct {
		phone string
		want  bool
	}{
		{"5550100", true},
		{"+1-555-0100", true},
		{"555-0100", true},
		{"", false},
		{"+-", false},
		{"555 0100", false},
		{"555CALL", false},
		{"555.0100", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ValidPhone(tc.phone), "phone %q", tc.phone)
	}
}

func TestValidPostalCode(t *testing.T) {
	cases := []struct {
		code string
		want bool
	}{
		{"62704", true},
		{"K1A-0B1", true},
		{"SW1A1AA", true},
		{"", false},
		{"---", false},
		{"62 704", false},
		{"62704!", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ValidPostalCode(tc.code), "postal code %q", tc.code)
	}
}

func TestValidateReportsJSONFieldNames(t *testing.T) {
	type sample struct {
		Email string `json:"email" validate:"required,email"`
		Name  string `json:"name" validate:"required"`
	}

	fieldErrors := Validate(&sample{Email: "nope"})
	assert.Contains(t, fieldErrors, "email")
	assert.Contains(t, fieldErrors, "name")
	assert.True(t, fieldErrors.HasErrors())
}

func TestFieldErrorsKeepFirstMessage(t *testing.T) {
	fieldErrors := FieldErrors{}
	fieldErrors.Add("email", "first")
	fieldErrors.Add("email", "second")
	assert.Equal(t, "first", fieldErrors["email"])
}
