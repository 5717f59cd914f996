package utils

import (
	"errors"
	"strings"
	"unicode"

	"github.com/nyaruka/phonenumbers"
)

var ErrInvalidPhone = errors.New("phone must have DDD plus 9 digits")

// NormalizeString trims whitespace and normalizes string input
func NormalizeString(s string) string {
	return strings.TrimSpace(s)
}

// NormalizePhone keeps digits and a leading +.
func NormalizePhone(phone string) string {
	cleaned := strings.TrimSpace(phone)
	if cleaned == "" {
		return ""
	}

	var result strings.Builder
	for i, r := range cleaned {
		if i == 0 && r == '+' {
			result.WriteRune(r)
		} else if unicode.IsDigit(r) {
			result.WriteRune(r)
		}
	}

	return result.String()
}

// NormalizeBRPhone accepts an 11 digit Brazilian number (DDD + number), with
// or without formatting or the +55 prefix, and returns it in E.164.
func NormalizeBRPhone(raw string) (string, error) {
	digits := strings.TrimPrefix(NormalizePhone(raw), "+")
	if len(digits) == 13 && strings.HasPrefix(digits, "55") {
		digits = digits[2:]
	}
	if len(digits) != 11 {
		return "", ErrInvalidPhone
	}

	num, err := phonenumbers.Parse(digits, "BR")
	if err != nil {
		return "", ErrInvalidPhone
	}
	if !phonenumbers.IsValidNumberForRegion(num, "BR") {
		return "", ErrInvalidPhone
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}

// FormatPhone renders an E.164 number in its national form, or returns the
// input unchanged when it cannot be parsed.
func FormatPhone(e164 string) string {
	num, err := phonenumbers.Parse(e164, "BR")
	if err != nil {
		return e164
	}
	return phonenumbers.Format(num, phonenumbers.NATIONAL)
}
