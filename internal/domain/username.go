package domain

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/shelfshare/shelfshare-server/internal/errors"
)

const (
	UsernameMinLength = 3
	UsernameMaxLength = 30
)

// usernamePattern: lowercase alphanumeric, hyphens allowed inside but not at
// either end. Consecutive hyphens are checked separately for a clearer error.
var usernamePattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]*[a-z0-9])?$`)

// reservedUsernames are route segments and brand names that can never be
// claimed as a public profile slug.
var reservedUsernames = map[string]bool{
	"admin":      true,
	"api":        true,
	"login":      true,
	"logout":     true,
	"signup":     true,
	"settings":   true,
	"sync":       true,
	"lists":      true,
	"library":    true,
	"me":         true,
	"about":      true,
	"help":       true,
	"support":    true,
	"terms":      true,
	"privacy":    true,
	"static":     true,
	"assets":     true,
	"share":      true,
	"audible":    true,
	"shelfshare": true,
}

// ValidateUsername checks a prospective public profile slug.
// Rules: 3-30 characters, lowercase letters/digits/hyphens, must start and
// end with a letter or digit, no consecutive hyphens, not a reserved word.
func ValidateUsername(username string) error {
	if utf8.RuneCountInString(username) < UsernameMinLength {
		return errors.Validationf("username must be at least %d characters", UsernameMinLength)
	}
	if utf8.RuneCountInString(username) > UsernameMaxLength {
		return errors.Validationf("username must not exceed %d characters", UsernameMaxLength)
	}
	if strings.Contains(username, "--") {
		return errors.Validation("username must not contain consecutive hyphens")
	}
	if !usernamePattern.MatchString(username) {
		return errors.Validation("username must be lowercase letters, digits, and hyphens, starting and ending with a letter or digit")
	}
	if reservedUsernames[username] {
		return errors.Validationf("username %q is reserved", username)
	}
	return nil
}
