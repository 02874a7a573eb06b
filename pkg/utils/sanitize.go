package utils

import (
	"html"
	"regexp"
	"strings"
	"unicode"
)

var htmlTag = regexp.MustCompile(`<[^>]*>`)

// SanitizeString trims input and escapes HTML entities.
func SanitizeString(input string) string {
	return html.EscapeString(strings.TrimSpace(input))
}

// SanitizeName normalizes a display name: trimmed, lower-cased, tags removed.
func SanitizeName(name string) string {
	name = stripHTML(name)
	name = removeControlChars(name)
	return strings.ToLower(strings.TrimSpace(name))
}

// SanitizeEmail sanitizes email input
func SanitizeEmail(email string) string {
	// Convert to lowercase and trim
	email = strings.ToLower(strings.TrimSpace(email))

	// Remove any HTML tags
	email = stripHTML(email)

	// Remove any control characters
	email = removeControlChars(email)

	return email
}

// SanitizeText sanitizes multi-line text input
func SanitizeText(input string) string {
	escaped := html.EscapeString(strings.TrimSpace(input))

	// Remove any control characters except newlines and tabs
	var result strings.Builder
	for _, r := range escaped {
		if unicode.IsPrint(r) || r == '\n' || r == '\t' || r == '\r' {
			result.WriteRune(r)
		}
	}

	return result.String()
}

func stripHTML(input string) string {
	return htmlTag.ReplaceAllString(input, "")
}

func removeControlChars(input string) string {
	var result strings.Builder
	for _, r := range input {
		if unicode.IsPrint(r) || unicode.IsSpace(r) {
			result.WriteRune(r)
		}
	}
	return result.String()
}
