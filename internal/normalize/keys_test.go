package normalize

import (
	"testing"
)

func TestKey(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain key",
			input:    "HELLO",
			expected: "HELLO",
		},
		{
			name:     "surrounding whitespace",
			input:    "  HELLO \t",
			expected: "HELLO",
		},
		{
			name:     "export prefix",
			input:    "export DB_HOST",
			expected: "DB_HOST",
		},
		{
			name:     "export prefix with tab",
			input:    "export\tAPI_KEY",
			expected: "API_KEY",
		},
		{
			name:     "export as part of the name",
			input:    "exported",
			expected: "exported",
		},
		{
			name:     "bare export keyword",
			input:    "export",
			expected: "export",
		},
		{
			name:     "case preserved",
			input:    "MixedCase",
			expected: "MixedCase",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Key(tt.input)
			if result != tt.expected {
				t.Errorf("Key(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestValidKey(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"HELLO", true},
		{"db.host", true},
		{"_PRIVATE", true},
		{"", false},
		{"TWO WORDS", false},
		{"A=B", false},
		{"TAB\tKEY", false},
		{"NUL\x00", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ValidKey(tt.input); got != tt.expected {
				t.Errorf("ValidKey(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestApplyPrefix(t *testing.T) {
	tests := []struct {
		name     string
		prefix   string
		key      string
		expected string
	}{
		{
			name:     "with prefix",
			prefix:   "APP_",
			key:      "PORT",
			expected: "APP_PORT",
		},
		{
			name:     "empty prefix",
			prefix:   "",
			key:      "PORT",
			expected: "PORT",
		},
		{
			name:     "empty key",
			prefix:   "APP_",
			key:      "",
			expected: "APP_",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ApplyPrefix(tt.prefix, tt.key)
			if result != tt.expected {
				t.Errorf("ApplyPrefix(%q, %q) = %q, want %q", tt.prefix, tt.key, result, tt.expected)
			}
		})
	}
}
