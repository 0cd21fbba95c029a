package domain

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

const (
	MaxNameChars    = 15
	MaxMessageChars = 50

	// TimestampLayout renders e.g. "2024-05-01 02:03:04 PM CET".
	TimestampLayout = "2006-01-02 03:04:05 PM MST"
)

// ErrInvalidEntry is the sentinel wrapped by every ValidationError.
var ErrInvalidEntry = errors.New("invalid entry")

// Entry is one guestbook submission.
type Entry struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// ValidationError reports which field was rejected and why.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidEntry
}

// NormalizeText trims surrounding whitespace and applies NFC so that length
// checks count user-perceived characters consistently.
func NormalizeText(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// CharCount returns the number of code points in s.
func CharCount(s string) int {
	return utf8.RuneCountInString(s)
}

// ValidateEntry checks the required and length rules for name and message.
// Both inputs are expected to be normalized already.
func ValidateEntry(name, message string) error {
	if err := validateField("name", name, MaxNameChars); err != nil {
		return err
	}
	return validateField("message", message, MaxMessageChars)
}

func validateField(field, value string, max int) error {
	if value == "" {
		return &ValidationError{Field: field, Reason: "is required"}
	}
	if !utf8.ValidString(value) {
		return &ValidationError{Field: field, Reason: "is not valid UTF-8"}
	}
	if n := CharCount(value); n > max {
		return &ValidationError{Field: field, Reason: fmt.Sprintf("must be at most %d characters (got %d)", max, n)}
	}
	return nil
}
