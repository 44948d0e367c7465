package util

import "testing"

func TestCoalesce(t *testing.T) {
	if got := Coalesce("", "", "hello", "world"); got != "hello" {
		t.Errorf("expected 'hello', got %q", got)
	}
	if got := Coalesce(0, 0, 42); got != 42 {
		t.Errorf("expected 42, got %d", got)
	}
	if got := Coalesce("", ""); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}

func TestSanitizeEnvValue(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`"sk-abc123"`, "sk-abc123"},
		{`'sk-abc123'`, "sk-abc123"},
		{"  sk-abc123  ", "sk-abc123"},
		{`" padded "`, "padded"},
		{`"`, `"`},
		{"", ""},
	}
	for _, tc := range tests {
		if got := SanitizeEnvValue(tc.in); got != tc.want {
			t.Errorf("SanitizeEnvValue(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestMaskSecret(t *testing.T) {
	tests := []struct {
		in     string
		prefix int
		want   string
	}{
		{"sk-1234567890", 4, "sk-1***"},
		{"tok", 4, "***"},
		{"", 4, "***"},
		{"abcdef", 0, "***"},
	}
	for _, tc := range tests {
		if got := MaskSecret(tc.in, tc.prefix); got != tc.want {
			t.Errorf("MaskSecret(%q, %d) = %q, want %q", tc.in, tc.prefix, got, tc.want)
		}
	}
}
