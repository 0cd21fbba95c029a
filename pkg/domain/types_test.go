package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateEntryBoundaries(t *testing.T) {
	cases := []struct {
		name    string
		message string
		field   string
	}{
		{name: strings.Repeat("a", MaxNameChars), message: strings.Repeat("b", MaxMessageChars)},
		{name: strings.Repeat("a", MaxNameChars+1), message: "hi", field: "name"},
		{name: "Ann", message: strings.Repeat("b", MaxMessageChars+1), field: "message"},
		{name: "", message: "hi", field: "name"},
		{name: "Ann", message: "", field: "message"},
	}
	for _, tc := range cases {
		err := ValidateEntry(tc.name, tc.message)
		if tc.field == "" {
			if err != nil {
				t.Fatalf("expected %q/%q to be valid, got %v", tc.name, tc.message, err)
			}
			continue
		}
		if !errors.Is(err, ErrInvalidEntry) {
			t.Fatalf("expected ErrInvalidEntry for %q/%q, got %v", tc.name, tc.message, err)
		}
		var verr *ValidationError
		if !errors.As(err, &verr) || verr.Field != tc.field {
			t.Fatalf("expected validation error on %s, got %v", tc.field, err)
		}
	}
}

func TestValidateEntryCountsCharactersNotBytes(t *testing.T) {
	name := strings.Repeat("留", MaxNameChars)
	if err := ValidateEntry(name, "你好"); err != nil {
		t.Fatalf("15 CJK characters should be accepted: %v", err)
	}
}

func TestNormalizeTextComposesAndTrims(t *testing.T) {
	decomposed := "  Jose\u0301  "
	got := NormalizeText(decomposed)
	if got != "Jos\u00e9" {
		t.Fatalf("unexpected normalized text: %q", got)
	}
	if CharCount(got) != 4 {
		t.Fatalf("expected 4 characters, got %d", CharCount(got))
	}
	if NormalizeText(" \t ") != "" {
		t.Fatalf("whitespace-only input should normalize to empty")
	}
}
