package utils

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ShortHash returns a short content fingerprint used in revision labels.
func ShortHash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return fmt.Sprintf("%x", sum[:4])
}

// TitleCase capitalizes a label for display, e.g. "contact us" -> "Contact Us".
// Using golang.org/x/text/cases since strings.Title is deprecated.
func TitleCase(s string) string {
	return cases.Title(language.Und, cases.NoLower).String(s)
}

// HumanizeIdentifier turns snake/kebab identifiers into a display label,
// e.g. "contact_form" -> "Contact Form".
func HumanizeIdentifier(id string) string {
	cleaned := strings.NewReplacer("_", " ", "-", " ").Replace(id)
	return TitleCase(strings.TrimSpace(cleaned))
}

// IsEmptyString checks if a string is empty after trimming whitespace.
func IsEmptyString(s string) bool {
	return strings.TrimSpace(s) == ""
}
