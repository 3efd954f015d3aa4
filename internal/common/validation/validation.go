package validation

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	MaxFirstNameLength = 64
	MaxLastNameLength  = 64
	MaxEmailLength     = 254
	MaxEventLength     = 100
	MaxMessageLength   = 2000

	MinNameLength     = 1
	MinPasswordLength = 6
)

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidateName checks a first or last name.
func ValidateName(field, name string) error {
	name = strings.TrimSpace(name)
	if len(name) < MinNameLength {
		return fmt.Errorf("%s cannot be empty", field)
	}
	if len(name) > MaxFirstNameLength {
		return fmt.Errorf("%s cannot exceed %d characters", field, MaxFirstNameLength)
	}
	return nil
}

// ValidateEmail checks the shape of an email address.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("email cannot be empty")
	}
	if len(email) > MaxEmailLength {
		return fmt.Errorf("email cannot exceed %d characters", MaxEmailLength)
	}
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("email is not a valid address")
	}
	return nil
}

// ValidateDigits checks that value is exactly digits ASCII decimal digits.
// Phone and national ID formats are deployment constants, so the length
// comes from configuration rather than being hardcoded here.
func ValidateDigits(field, value string, digits int) error {
	if value == "" {
		return fmt.Errorf("%s cannot be empty", field)
	}
	count := 0
	for _, r := range value {
		if r < '0' || r > '9' {
			return fmt.Errorf("%s must contain only digits", field)
		}
		count++
	}
	if count != digits {
		return fmt.Errorf("%s must be exactly %d digits", field, digits)
	}
	return nil
}

// ValidatePassword checks the minimum password length.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters long", MinPasswordLength)
	}
	return nil
}
