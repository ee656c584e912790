package util

import (
	"strings"
	"testing"
)

func TestValidateLabel_Valid(t *testing.T) {
	valid := []string{
		"a",
		"web-1",
		"abc123",
		"123numeric",
		"a-b-c",
		strings.Repeat("x", 63),
	}
	for _, name := range valid {
		t.Run(name, func(t *testing.T) {
			if err := ValidateLabel(name); err != nil {
				t.Errorf("expected %q to be valid, got error: %v", name, err)
			}
		})
	}
}

func TestValidateLabel_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		wantMsg string
	}{
		{"", "1 to 63 characters"},
		{strings.Repeat("x", 64), "1 to 63 characters"},
		{"UPPER", "invalid characters"},
		{"web server", "invalid characters"},
		{"my.host", "invalid characters"},
		{"name_with_underscores", "invalid characters"},
		{"-web", "start and end with an alphanumeric"},
		{"web-", "start and end with an alphanumeric"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLabel(tt.name)
			if err == nil {
				t.Errorf("expected %q to be invalid, got nil", tt.name)
				return
			}
			if got := err.Error(); !strings.Contains(got, tt.wantMsg) {
				t.Errorf("expected error containing %q, got %q", tt.wantMsg, got)
			}
		})
	}
}

func TestValidateDomain(t *testing.T) {
	tests := []struct {
		domain string
		ok     bool
	}{
		{"example.com", true},
		{"h1.openclaw.example.com", true},
		{"localhost", false},
		{"*.example.com", false},
		{"example..com", false},
		{"Example.com", false},
		{strings.Repeat("a.", 127) + "com", false},
	}
	for _, tt := range tests {
		t.Run(tt.domain, func(t *testing.T) {
			err := ValidateDomain(tt.domain)
			if (err == nil) != tt.ok {
				t.Errorf("ValidateDomain(%q) error = %v, want ok=%v", tt.domain, err, tt.ok)
			}
		})
	}
}

func TestShellQuote(t *testing.T) {
	tests := map[string]string{
		"/opt/traefik/docker-compose.yml": "/opt/traefik/docker-compose.yml",
		"ghcr.io/org/img:1.2":             "ghcr.io/org/img:1.2",
		"":                                "''",
		"/srv/my stack/compose.yml":       "'/srv/my stack/compose.yml'",
		"it's":                            `'it'\''s'`,
		"$(rm -rf /)":                     "'$(rm -rf /)'",
	}
	for in, want := range tests {
		if got := ShellQuote(in); got != want {
			t.Errorf("ShellQuote(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestJoinLines_SkipsEmpty(t *testing.T) {
	got := JoinLines("a", "", "b", If(false, "c"), If(true, "d"))
	if want := "a\nb\nd"; got != want {
		t.Errorf("JoinLines() = %q, want %q", got, want)
	}
}
