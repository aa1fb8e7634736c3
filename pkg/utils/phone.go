package utils

import (
	"errors"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

var (
	ErrPhoneEmpty   = errors.New("phone number cannot be empty")
	ErrPhoneInvalid = errors.New("invalid phone number")
)

// NormalizePhoneNumber parses phone in the given default region and returns
// it in E.164 form. Numbers with a leading + ignore the region.
func NormalizePhoneNumber(phone, region string) (string, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return "", ErrPhoneEmpty
	}

	num, err := phonenumbers.Parse(phone, strings.ToUpper(region))
	if err != nil {
		return "", ErrPhoneInvalid
	}
	if !phonenumbers.IsValidNumber(num) {
		return "", ErrPhoneInvalid
	}

	return phonenumbers.Format(num, phonenumbers.E164), nil
}

// FormatPhoneNumberForDisplay renders an E.164 number in international format.
// Anything that does not parse is returned as-is.
func FormatPhoneNumberForDisplay(phone string) string {
	num, err := phonenumbers.Parse(phone, "")
	if err != nil {
		return phone
	}
	return phonenumbers.Format(num, phonenumbers.INTERNATIONAL)
}
