package utils

import (
	"crypto/rand"
	"math/big"
	"strings"
	"unicode"
)

const passwordAlphabet = "abcdefghijkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GeneratePassword returns a random password of the given length drawn from
// an unambiguous alphanumeric alphabet. Used for first-login credentials.
func GeneratePassword(length int) string {
	if length < 8 {
		length = 8
	}
	var b strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(passwordAlphabet))))
		if err != nil {
			// crypto/rand only fails when the OS entropy source is broken
			panic(err)
		}
		b.WriteByte(passwordAlphabet[n.Int64()])
	}
	return b.String()
}

// CheckPasswordStrength enforces the password policy: at least 8 characters
// with an uppercase letter, a lowercase letter, and a digit.
func CheckPasswordStrength(password string) string {
	if len(password) < 8 {
		return "Password must be at least 8 characters long"
	}
	if len(password) > 64 {
		return "Password too long"
	}
	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasUpper {
		return "Password must contain an uppercase letter"
	}
	if !hasLower {
		return "Password must contain a lowercase letter"
	}
	if !hasDigit {
		return "Password must contain a number"
	}
	return ""
}

// NameInitials derives up-to-two uppercase initials from a display name.
func NameInitials(name string) string {
	parts := strings.Fields(strings.TrimSpace(name))
	if len(parts) == 0 {
		return ""
	}
	first := strings.ToUpper(parts[0][:1])
	if len(parts) == 1 {
		return first
	}
	last := strings.ToUpper(parts[len(parts)-1][:1])
	return first + last
}

// Slugify lowercases a string and collapses every non-alphanumeric run
// into a single hyphen. Used for form slugs and human form identifiers.
func Slugify(s string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastHyphen = false
		} else if !lastHyphen {
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
