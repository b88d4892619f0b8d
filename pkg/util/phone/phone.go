// Package phone normalizes phone numbers to E.164 before they hit storage.
package phone

import (
	"errors"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// DefaultRegion is assumed for numbers without a country prefix.
const DefaultRegion = "US"

var ErrInvalid = errors.New("invalid phone number")

// Normalize parses a phone number and returns its E.164 form. An empty
// input is passed through untouched so optional fields stay optional.
func Normalize(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}

	num, err := phonenumbers.Parse(raw, DefaultRegion)
	if err != nil {
		return "", ErrInvalid
	}
	if !phonenumbers.IsValidNumber(num) {
		return "", ErrInvalid
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}

// Valid reports whether the input parses as a real phone number.
func Valid(raw string) bool {
	_, err := Normalize(raw)
	return err == nil && strings.TrimSpace(raw) != ""
}
