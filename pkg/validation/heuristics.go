package validation

import (
	"regexp"
	"strings"
)

// The email/mobile checks key off the field's label text rather than an
// explicit semantic flag. The predicates below isolate that heuristic so it
// can be swapped for a per-field semantic kind without touching the engine.

var (
	mobileLabelPattern = regexp.MustCompile(`(?i)(mobile|phone|cell)`)
	emailPattern       = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	mobilePattern      = regexp.MustCompile(`^\+?[0-9\s-]{10,15}$`)

	// Password strength is four independent character-class requirements;
	// RE2 has no lookahead, so each class gets its own pattern.
	hasLowerPattern   = regexp.MustCompile(`[a-z]`)
	hasUpperPattern   = regexp.MustCompile(`[A-Z]`)
	hasDigitPattern   = regexp.MustCompile(`\d`)
	hasSpecialPattern = regexp.MustCompile(`[^A-Za-z\d]`)
)

// LabelLooksLikeEmail reports whether a text field's label marks it as an
// email input.
func LabelLooksLikeEmail(label string) bool {
	return strings.Contains(strings.ToLower(label), "email")
}

// LabelLooksLikeMobile reports whether a field's label marks it as a phone
// number input.
func LabelLooksLikeMobile(label string) bool {
	return mobileLabelPattern.MatchString(label)
}

// IsEmailAddress checks the single-@, trailing-domain email shape.
func IsEmailAddress(value string) bool {
	return emailPattern.MatchString(value)
}

// IsMobileNumber accepts 10-15 digits with an optional leading + and
// embedded spaces or dashes.
func IsMobileNumber(value string) bool {
	return mobilePattern.MatchString(value)
}

// IsStrongPassword requires at least one lowercase letter, one uppercase
// letter, one digit, and one non-alphanumeric character.
func IsStrongPassword(value string) bool {
	return hasLowerPattern.MatchString(value) &&
		hasUpperPattern.MatchString(value) &&
		hasDigitPattern.MatchString(value) &&
		hasSpecialPattern.MatchString(value)
}
