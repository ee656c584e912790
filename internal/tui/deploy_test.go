package tui

import (
	"strings"
	"testing"

	"github.com/ben-haas/clawhouse/internal/compose"
	"github.com/ben-haas/clawhouse/internal/config"
	"github.com/ben-haas/clawhouse/internal/domain"

	"github.com/charmbracelet/huh"
	"github.com/google/go-cmp/cmp"
)

type optionPair struct {
	Key   string
	Value string
}

func optionsToPairs(options []huh.Option[string]) []optionPair {
	pairs := make([]optionPair, 0, len(options))
	for _, o := range options {
		pairs = append(pairs, optionPair{Key: o.Key, Value: o.Value})
	}
	return pairs
}

func TestModeOptions_CoverAllModes(t *testing.T) {
	var values []string
	for _, p := range optionsToPairs(modeOptions()) {
		values = append(values, p.Value)
	}
	var want []string
	for _, m := range domain.Modes {
		want = append(want, string(m))
	}
	if diff := cmp.Diff(want, values); diff != "" {
		t.Errorf("mode options mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildSummary_Tunnel(t *testing.T) {
	summary := buildSummary(config.Deployment{
		Mode:   string(domain.ModeTunnel),
		Tunnel: &compose.TunnelInput{TunnelToken: "secret-token", SharedSecret: "shh"},
	})

	for _, want := range []string{"Mode:           tunnel", "token (inline)", "No inbound ports"} {
		if !strings.Contains(summary, want) {
			t.Errorf("summary missing %q:\n%s", want, summary)
		}
	}
	for _, secret := range []string{"secret-token", "shh"} {
		if strings.Contains(summary, secret) {
			t.Errorf("summary leaks %q", secret)
		}
	}
}

func TestBuildSummary_ReverseProxy(t *testing.T) {
	summary := buildSummary(config.Deployment{
		Mode: string(domain.ModeReverseProxy),
		ReverseProxy: &compose.ReverseProxyInput{
			ACMEEmail:        "you@example.com",
			WildcardDomain:   "h1.openclaw.example.com",
			DNSProviderToken: "dns-secret",
		},
		RuntimeImage: "ghcr.io/openclaw/runtime:1",
	})

	for _, want := range []string{"you@example.com", "h1.openclaw.example.com", "Port 443", "ghcr.io/openclaw/runtime:1"} {
		if !strings.Contains(summary, want) {
			t.Errorf("summary missing %q:\n%s", want, summary)
		}
	}
	if strings.Contains(summary, "dns-secret") {
		t.Error("summary leaks the DNS provider token")
	}
	if strings.HasSuffix(summary, "\n") {
		t.Error("summary has a trailing newline")
	}
}

func TestValidateDomain(t *testing.T) {
	if err := validateDomain(" h1.example.com "); err != nil {
		t.Errorf("validateDomain() error = %v", err)
	}
	if err := validateDomain("*.example.com"); err == nil {
		t.Error("expected wildcard input to be rejected")
	}
}
