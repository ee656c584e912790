package urls

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestResolve_Sharded(t *testing.T) {
	got := Resolve(Params{InstanceID: "alice", BaseDomain: "example.com", HostShard: "h1", TerminalToken: "tok"})

	want := InstanceURLs{
		HostName:       "openclaw-alice.h1.openclaw.example.com",
		WildcardDomain: "h1.openclaw.example.com",
		PrimaryURL:     "https://openclaw-alice.h1.openclaw.example.com/",
		TerminalURL:    "https://openclaw-alice.h1.openclaw.example.com/terminal?token=tok",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Resolve mismatch (-want +got):\n%s", diff)
	}
}

func TestResolve_Flat(t *testing.T) {
	got := Resolve(Params{InstanceID: "alice", BaseDomain: "example.com", TerminalToken: "tok"})

	if got.HostName != "openclaw-alice.example.com" {
		t.Errorf("expected flat hostname, got %q", got.HostName)
	}
	if got.WildcardDomain != "example.com" {
		t.Errorf("expected wildcard domain to collapse to base, got %q", got.WildcardDomain)
	}
}

func TestResolve_CustomSubdomainAndPrefix(t *testing.T) {
	got := Resolve(Params{
		InstanceID:     "bob",
		BaseDomain:     "example.org",
		HostShard:      "eu2",
		Subdomain:      "term",
		InstancePrefix: "t-",
		TerminalToken:  "x",
	})
	if got.HostName != "t-bob.eu2.term.example.org" {
		t.Errorf("unexpected hostname %q", got.HostName)
	}
}

func TestResolve_SubdomainIgnoredWithoutShard(t *testing.T) {
	got := Resolve(Params{InstanceID: "bob", BaseDomain: "example.org", Subdomain: "term", TerminalToken: "x"})
	if got.HostName != "openclaw-bob.example.org" {
		t.Errorf("unexpected hostname %q", got.HostName)
	}
}

func TestResolve_TokenOnlyInTerminalURL(t *testing.T) {
	got := Resolve(Params{InstanceID: "alice", BaseDomain: "example.com", TerminalToken: "a b&c"})

	if strings.Contains(got.PrimaryURL, "token") {
		t.Errorf("primary URL must not carry the token: %s", got.PrimaryURL)
	}
	if !strings.HasSuffix(got.TerminalURL, "/terminal?token=a+b%26c") {
		t.Errorf("expected escaped token in terminal URL, got %s", got.TerminalURL)
	}
}
