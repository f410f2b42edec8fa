package validation

import (
	"errors"
	"regexp"
)

var groupSlugRegex = regexp.MustCompile(`^[-a-zA-Z0-9_]{1,50}$`)

// ValidateGroupSlug checks that slug is a URL-safe identifier of at most 50 characters.
func ValidateGroupSlug(slug string) error {
	if !groupSlugRegex.MatchString(slug) {
		return errors.New("slug must be 1-50 letters, numbers, underscores or hyphens")
	}
	return nil
}

// ValidateGroupTitle checks the group title length.
func ValidateGroupTitle(title string) error {
	n := len([]rune(title))
	if n == 0 {
		return errors.New("title is required")
	}
	if n > 200 {
		return errors.New("title must be at most 200 characters")
	}
	return nil
}
