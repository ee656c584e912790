package util

import (
	"fmt"
	"regexp"
	"strings"
)

// validLabelChars matches only lowercase alphanumeric characters and hyphens.
var validLabelChars = regexp.MustCompile(`^[a-z0-9\-]+$`)

// ValidateLabel checks that s can be used as a single DNS label inside an
// instance hostname:
//   - 1 to 63 characters
//   - Only lowercase alphanumeric characters (a-z, 0-9) and hyphens (-)
//   - First and last character must be alphanumeric
func ValidateLabel(s string) error {
	if len(s) == 0 || len(s) > 63 {
		return fmt.Errorf("label must be 1 to 63 characters, got %d", len(s))
	}

	if !validLabelChars.MatchString(s) {
		return fmt.Errorf("label %q contains invalid characters (only a-z, 0-9, and hyphens are allowed)", s)
	}

	if !isAlphanumeric(s[0]) || !isAlphanumeric(s[len(s)-1]) {
		return fmt.Errorf("label %q must start and end with an alphanumeric character", s)
	}

	return nil
}

// ValidateDomain checks that d is a dotted sequence of valid labels of at
// most 253 characters. A leading "*." is not accepted; wildcard names are
// derived, never configured.
func ValidateDomain(d string) error {
	if len(d) > 253 {
		return fmt.Errorf("domain must be at most 253 characters, got %d", len(d))
	}
	labels := strings.Split(d, ".")
	if len(labels) < 2 {
		return fmt.Errorf("domain %q must contain at least two labels", d)
	}
	for _, l := range labels {
		if err := ValidateLabel(l); err != nil {
			return fmt.Errorf("domain %q: %w", d, err)
		}
	}
	return nil
}

func isAlphanumeric(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
