// internal/pkg/auth/phone.go
package auth

import (
	"errors"
	"regexp"
	"strings"
)

var (
	phonePattern = regexp.MustCompile(`^\+\d{6,15}$`)
	phoneNoise   = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "")

	ErrInvalidPhone = errors.New("phone number must be in international format, e.g. +255712345678")
)

// NormalizePhone strips formatting and makes sure the number carries a leading '+'.
// It does not validate.
func NormalizePhone(raw string) string {
	p := phoneNoise.Replace(strings.TrimSpace(raw))
	if p == "" {
		return ""
	}
	if strings.HasPrefix(p, "00") {
		p = "+" + p[2:]
	}
	if !strings.HasPrefix(p, "+") {
		p = "+" + p
	}
	return p
}

// ComposePhone builds a phone number either from a full number or from a
// country code and a local number. A leading zero on the local number is dropped.
func ComposePhone(phone, countryCode, localNumber string) string {
	if strings.TrimSpace(countryCode) != "" && strings.TrimSpace(localNumber) != "" {
		cc := strings.TrimPrefix(phoneNoise.Replace(strings.TrimSpace(countryCode)), "+")
		local := strings.TrimLeft(phoneNoise.Replace(strings.TrimSpace(localNumber)), "0")
		return NormalizePhone(cc + local)
	}
	return NormalizePhone(phone)
}

// ValidPhone reports whether p is a normalized international number.
func ValidPhone(p string) bool {
	return phonePattern.MatchString(p)
}

// PhoneDigits returns only the digits of p.
func PhoneDigits(p string) string {
	var b strings.Builder
	for _, r := range p {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IsAllowlisted reports whether phone matches any entry of the allowlist, comparing digits only.
func IsAllowlisted(phone string, allowlist []string) bool {
	d := PhoneDigits(phone)
	if d == "" {
		return false
	}
	for _, a := range allowlist {
		if PhoneDigits(a) == d {
			return true
		}
	}
	return false
}
