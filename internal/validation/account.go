// Package validation holds input rules for accounts and groups.
package validation

import (
	"errors"
	"net/mail"
	"regexp"
	"strings"
	"unicode"
)

const (
	maxUsernameLength = 150
	minPasswordLength = 8
	// bcrypt ignores input past 72 bytes.
	maxPasswordBytes = 72
	maxEmailLength   = 254
)

var usernameRegex = regexp.MustCompile(`^[\p{L}\p{N}_.@+-]+$`)

// reservedUsernames collide with top-level routes served before profile pages.
var reservedUsernames = map[string]struct{}{
	"auth":    {},
	"new":     {},
	"follow":  {},
	"group":   {},
	"media":   {},
	"static":  {},
	"health":  {},
	"metrics": {},
	"admin":   {},
}

// ValidateUsername checks length, allowed characters and reserved names.
func ValidateUsername(username string) error {
	if username == "" {
		return errors.New("This field is required.")
	}
	if len([]rune(username)) > maxUsernameLength {
		return errors.New("Ensure this value has at most 150 characters.")
	}
	if !usernameRegex.MatchString(username) {
		return errors.New("Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters.")
	}
	if _, reserved := reservedUsernames[strings.ToLower(username)]; reserved {
		return errors.New("This username is reserved.")
	}
	return nil
}

// ValidateEmail accepts an empty address or a single bare address.
func ValidateEmail(email string) error {
	if email == "" {
		return nil
	}
	if len(email) > maxEmailLength {
		return errors.New("Enter a valid email address.")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		return errors.New("Enter a valid email address.")
	}
	at := strings.LastIndex(email, "@")
	domain := email[at+1:]
	if !strings.Contains(domain, ".") || strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") {
		return errors.New("Enter a valid email address.")
	}
	return nil
}

// ValidatePassword applies the account password rules.
func ValidatePassword(password, username string) error {
	if len([]rune(password)) < minPasswordLength {
		return errors.New("This password is too short. It must contain at least 8 characters.")
	}
	if len(password) > maxPasswordBytes {
		return errors.New("This password is too long.")
	}
	if isNumeric(password) {
		return errors.New("This password is entirely numeric.")
	}
	if username != "" && strings.EqualFold(password, username) {
		return errors.New("The password is too similar to the username.")
	}
	return nil
}

func isNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return s != ""
}
