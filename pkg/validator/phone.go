package validator

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrEmptyPhone indicates phone number is empty
	ErrEmptyPhone = errors.New("phone number cannot be empty")

	// ErrInvalidFormat indicates phone number contains invalid characters
	ErrInvalidFormat = errors.New("phone number can only contain digits, spaces, dashes, dots, parentheses and a leading +")

	// ErrInvalidLength indicates the number does not have 9 subscriber digits
	ErrInvalidLength = errors.New("phone number must be 0XXXXXXXXX or +380XXXXXXXXX")
)

const countryCode = "380"

var phoneChars = regexp.MustCompile(`^\+?[\d\s\-().]+$`)

// PhoneValidator normalizes Ukrainian phone numbers
type PhoneValidator struct{}

// NewPhoneValidator creates a new phone validator instance
func NewPhoneValidator() *PhoneValidator {
	return &PhoneValidator{}
}

// Validate accepts 0671234567, 067 123 45 67, +38 (067) 123-45-67 and
// 380671234567, and returns the number as +380671234567.
func (v *PhoneValidator) Validate(phone string) (string, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return "", ErrEmptyPhone
	}
	if !phoneChars.MatchString(phone) {
		return "", ErrInvalidFormat
	}

	digits := v.Sanitize(phone)
	switch {
	case len(digits) == 12 && strings.HasPrefix(digits, countryCode):
		digits = digits[3:]
	case len(digits) == 10 && digits[0] == '0':
		digits = digits[1:]
	default:
		return "", ErrInvalidLength
	}
	return "+" + countryCode + digits, nil
}

// Sanitize keeps digits only
func (v *PhoneValidator) Sanitize(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Format renders a number as +380 XX XXX XX XX
func (v *PhoneValidator) Format(phone string) (string, error) {
	n, err := v.Validate(phone)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s %s %s %s %s", n[:4], n[4:6], n[6:9], n[9:11], n[11:13]), nil
}

// IsValid is a convenience method that returns true if phone is valid
func (v *PhoneValidator) IsValid(phone string) bool {
	_, err := v.Validate(phone)
	return err == nil
}
