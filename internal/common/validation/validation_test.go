package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		name  string
		value string
		valid bool
	}{
		{"plain name", "Jane", true},
		{"surrounded by spaces", "  Jane  ", true},
		{"empty", "", false},
		{"only spaces", "   ", false},
		{"at limit", strings.Repeat("a", MaxFirstNameLength), true},
		{"over limit", strings.Repeat("a", MaxFirstNameLength+1), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName("first_name", tt.value)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name  string
		value string
		valid bool
	}{
		{"plain address", "a@b.com", true},
		{"subdomain", "user@mail.example.org", true},
		{"plus tag", "user+tag@example.com", true},
		{"empty", "", false},
		{"no at sign", "userexample.com", false},
		{"no domain dot", "user@example", false},
		{"embedded space", "us er@example.com", false},
		{"double at", "a@@b.com", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.value)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidateDigits(t *testing.T) {
	tests := []struct {
		name   string
		value  string
		digits int
		valid  bool
	}{
		{"phone", "66850080", 8, true},
		{"id number", "295072100108", 12, true},
		{"empty", "", 8, false},
		{"too short", "6685008", 8, false},
		{"too long", "668500801", 8, false},
		{"letter inside", "6685008a", 8, false},
		{"leading plus", "+6850080", 8, false},
		{"spaces", "66 50080", 8, false},
		{"arabic-indic digits", "٠١٢٣٤٥٦٧", 8, false},
		{"fullwidth digits", "６６８５００８０", 8, false},
		{"arabic-indic tail", "6685008٠", 8, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDigits("value", tt.value, tt.digits)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, ValidatePassword("s3cret"))
	assert.NoError(t, ValidatePassword("a much longer passphrase"))
	assert.Error(t, ValidatePassword(""))
	assert.Error(t, ValidatePassword("12345"))
}
