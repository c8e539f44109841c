package util

import (
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"
)

// dateLayouts are tried in order when parsing a transaction date.
var dateLayouts = []string{
	time.RFC3339,          // 2024-01-01T09:30:00+08:00
	"2006-01-02T15:04:05", // 2024-01-01T09:30:00
	"2006-01-02",          // 2024-01-01
}

// ParseDate parses a caller-supplied date and returns it in UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("date is empty")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

// ValidateEmail checks for a bare address such as "a@b.co".
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("email is empty")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndex(email, "@"):], ".") {
		return fmt.Errorf("invalid email %q", email)
	}
	return nil
}

// maxPasswordBytes is the most bcrypt will hash.
const maxPasswordBytes = 72

// ValidatePassword checks the 6–64 character rule and bcrypt's byte limit,
// which multibyte passwords can hit first.
func ValidatePassword(password string) error {
	if err := ValidateLength("Password", password, 6, 64); err != nil {
		return err
	}
	if len(password) > maxPasswordBytes {
		return fmt.Errorf("Password cannot exceed %d bytes", maxPasswordBytes)
	}
	return nil
}

// ValidateLength checks that s has between min and max characters.
func ValidateLength(field, s string, min, max int) error {
	n := utf8.RuneCountInString(s)
	if n < min {
		return fmt.Errorf("%s must be at least %d characters", field, min)
	}
	if n > max {
		return fmt.Errorf("%s cannot exceed %d characters", field, max)
	}
	return nil
}
