package textutil

import "testing"

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"lecture", "lecture"},
		{"  spaced  ", "spaced"},
		{"a/b", "a-b"},
		{`a\b:c*d`, "a-b-c-d"},
		{`what?"<>|`, "what"},
		{"..", ""},
		{".", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := SanitizeFileName(tt.input); got != tt.expected {
				t.Errorf("SanitizeFileName(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNFCComposesDecomposedInput(t *testing.T) {
	decomposed := "Cafe\u0301"
	composed := "Caf\u00e9"
	if got := NFC(decomposed); got != composed {
		t.Fatalf("NFC(%q) = %q, want %q", decomposed, got, composed)
	}
	if got := SanitizeFileName(decomposed); got != composed {
		t.Fatalf("SanitizeFileName should compose, got %q", got)
	}
}
