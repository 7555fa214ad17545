package validator

import (
	"errors"
	"net/mail"
	"strings"
)

// ErrInvalidEmail indicates the address is not a plain addr-spec
var ErrInvalidEmail = errors.New("email must look like name@domain.tld")

// NormalizeEmail trims and lowercases an address and checks it is a bare
// name@domain with a dotted domain.
func NormalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		return "", ErrInvalidEmail
	}
	at := strings.LastIndex(email, "@")
	domain := email[at+1:]
	if !strings.Contains(domain, ".") || strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") {
		return "", ErrInvalidEmail
	}
	return email, nil
}
