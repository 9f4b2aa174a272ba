package utils

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const maxTitleLength = 255

// ValidationError marks malformed input so the HTTP layer can answer 400
// instead of treating it as an internal failure.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ValidateProjectTitle rejects empty and oversized titles.
func ValidateProjectTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return &ValidationError{Field: "title", Reason: "cannot be empty"}
	}

	if utf8.RuneCountInString(title) > maxTitleLength {
		return &ValidationError{Field: "title", Reason: fmt.Sprintf("too long (max %d characters)", maxTitleLength)}
	}

	if !utf8.ValidString(title) {
		return &ValidationError{Field: "title", Reason: "contains invalid UTF-8"}
	}

	return nil
}

// ValidateDimensions rejects non-positive canvas dimensions.
func ValidateDimensions(width, height int) error {
	if width <= 0 {
		return &ValidationError{Field: "width", Reason: fmt.Sprintf("must be positive, got %d", width)}
	}
	if height <= 0 {
		return &ValidationError{Field: "height", Reason: fmt.Sprintf("must be positive, got %d", height)}
	}
	return nil
}
