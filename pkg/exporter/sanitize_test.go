package exporter

import (
	"strings"
	"testing"
)

func TestSanitize(t *testing.T) {
	testCases := []struct {
		name  string
		label string
		want  string
	}{
		{"spaces to hyphens", "Top Worker Time Queries", "Top-Worker-Time-Queries"},
		{"reserved removed", `a<b>c:d"e/f\g|h?i*j`, "abcdefghij"},
		{"mixed", "Memory Clerk Usage (MB)", "Memory-Clerk-Usage-(MB)"},
		{"control characters", "a\tb\nc", "abc"},
		{"empty", "", ""},
		{"already clean", "Version-Info", "Version-Info"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Sanitize(tc.label)
			if got != tc.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tc.label, got, tc.want)
			}
			if again := Sanitize(got); again != got {
				t.Errorf("Sanitize is not idempotent: %q -> %q", got, again)
			}
			for _, r := range reserved {
				if strings.ContainsRune(got, r) {
					t.Errorf("Sanitize(%q) kept reserved character %q", tc.label, r)
				}
			}
		})
	}
}

func TestSanitizePreservesOrder(t *testing.T) {
	// stripping must never reorder the surviving characters
	got := Sanitize("z:y:x w")
	if got != "zyx-w" {
		t.Errorf("Sanitize() = %q, want zyx-w", got)
	}
}

func TestNeutralizeInstance(t *testing.T) {
	if got := NeutralizeInstance(`HOST\INST`); got != "HOST$INST" {
		t.Errorf("NeutralizeInstance() = %q", got)
	}
	if got := NeutralizeInstance("host/inst"); got != "host$inst" {
		t.Errorf("NeutralizeInstance() = %q", got)
	}
	if got := NeutralizeInstance("plain"); got != "plain" {
		t.Errorf("NeutralizeInstance() = %q", got)
	}
}
