package utils

import "testing"

func TestTitleCase(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"contact us", "Contact Us"},
		{"ADD", "ADD"},
		{"hero section", "Hero Section"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := TitleCase(tt.in); got != tt.want {
			t.Errorf("TitleCase(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestHumanizeIdentifier(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"contact_form", "Contact Form"},
		{"hero-banner", "Hero Banner"},
		{"pricing", "Pricing"},
	}
	for _, tt := range tests {
		if got := HumanizeIdentifier(tt.in); got != tt.want {
			t.Errorf("HumanizeIdentifier(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestShortHashIsStable(t *testing.T) {
	a := ShortHash("<html></html>")
	b := ShortHash("<html></html>")
	if a != b {
		t.Errorf("hash not stable: %q vs %q", a, b)
	}
	if len(a) != 8 {
		t.Errorf("expected 8 hex chars, got %q", a)
	}
	if ShortHash("other") == a {
		t.Error("different content produced identical hash")
	}
}

func TestIsEmptyString(t *testing.T) {
	if !IsEmptyString("   \n\t") {
		t.Error("whitespace-only string should be empty")
	}
	if IsEmptyString(" x ") {
		t.Error("non-empty string reported empty")
	}
}
