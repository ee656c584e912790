package dns

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ben-haas/clawhouse/cmd/commands/cfflags"
	"github.com/ben-haas/clawhouse/internal/cloudflare"
	"github.com/ben-haas/clawhouse/internal/config"
	"github.com/ben-haas/clawhouse/internal/domain"

	"github.com/google/go-cmp/cmp"
)

func setupTestConfig(t *testing.T, cfg *config.Config) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	config.SetPath(path)
	t.Cleanup(config.ResetPath)
	if cfg != nil {
		if err := cfg.SaveTo(path); err != nil {
			t.Fatalf("failed to save config: %v", err)
		}
	}
	t.Setenv(cfflags.TokenEnv, "env-token")
}

// execDNS creates the dns command, wires up output buffers, runs with the
// given args, and returns stdout, stderr and the error.
func execDNS(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var outBuf, errBuf bytes.Buffer
	cmd := NewCommand()
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return outBuf.String(), errBuf.String(), err
}

func decodeRequest(t *testing.T, stdout string) cloudflare.Request {
	t.Helper()
	var req cloudflare.Request
	if err := json.Unmarshal([]byte(stdout), &req); err != nil {
		t.Fatalf("output is not a request descriptor: %v\n%s", err, stdout)
	}
	return req
}

func TestWildcard_TunnelID(t *testing.T) {
	setupTestConfig(t, &config.Config{ZoneID: "zone-1"})

	stdout, _, err := execDNS(t, "wildcard", "--wildcard-domain", "example.com", "--tunnel-id", "tun-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := cloudflare.BuildCreateWildcardDNSRecordRequest(
		cloudflare.ZoneConfig{APIToken: "env-token", ZoneID: "zone-1"}, "example.com", "tun-1")
	if diff := cmp.Diff(want, decodeRequest(t, stdout)); diff != "" {
		t.Errorf("request mismatch (-want +got):\n%s", diff)
	}
}

func TestWildcard_TokenAndBaseDomain(t *testing.T) {
	setupTestConfig(t, &config.Config{ZoneID: "zone-1", BaseDomain: "example.org"})
	token := base64.StdEncoding.EncodeToString([]byte(`{"a":"acct","t":"tun-from-token","s":"c2VjcmV0"}`))

	stdout, _, err := execDNS(t, "wildcard", "--tunnel-token", token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	req := decodeRequest(t, stdout)
	for _, want := range []string{`"name":"*.example.org"`, `"content":"tun-from-token.cfargotunnel.com"`} {
		if !strings.Contains(req.Body, want) {
			t.Errorf("body %s missing %s", req.Body, want)
		}
	}
}

func TestWildcard_Errors(t *testing.T) {
	setupTestConfig(t, &config.Config{ZoneID: "zone-1"})

	tests := map[string][]string{
		"no tunnel":      {"wildcard", "--wildcard-domain", "example.com"},
		"no domain":      {"wildcard", "--tunnel-id", "tun-1"},
		"wildcard input": {"wildcard", "--wildcard-domain", "*.example.com", "--tunnel-id", "tun-1"},
	}
	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			if _, _, err := execDNS(t, args...); !errors.Is(err, domain.ErrInvalidConfig) {
				t.Errorf("error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestCreate_NotProxied(t *testing.T) {
	setupTestConfig(t, nil)

	stdout, _, err := execDNS(t, "create", "--zone-id", "z", "--name", "a.example.com", "--target", "b.example.net", "--proxied=false", "--ttl", "300")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	req := decodeRequest(t, stdout)
	want := `{"type":"CNAME","name":"a.example.com","content":"b.example.net","proxied":false,"ttl":300}`
	if req.Body != want {
		t.Errorf("body = %s, want %s", req.Body, want)
	}
}

func TestList_Curl(t *testing.T) {
	setupTestConfig(t, &config.Config{ZoneID: "zone-1"})

	stdout, _, err := execDNS(t, "list", "--name", "*.example.com", "-o", "curl")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stdout, "/zones/zone-1/dns_records?name=%2A.example.com") {
		t.Errorf("unexpected output:\n%s", stdout)
	}
}

func TestList_DecodeResponse(t *testing.T) {
	setupTestConfig(t, nil)
	path := filepath.Join(t.TempDir(), "records.json")
	body := `{"success":true,"errors":[],"result":[{"id":"r1","name":"*.example.com","type":"CNAME","content":"t.cfargotunnel.com","proxied":true,"ttl":1}]}`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("failed to write response: %v", err)
	}

	stdout, _, err := execDNS(t, "list", "--response", path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"ID", "r1", "*.example.com", "auto"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("table missing %q:\n%s", want, stdout)
		}
	}
}

func TestDelete(t *testing.T) {
	setupTestConfig(t, &config.Config{ZoneID: "zone-1"})

	stdout, _, err := execDNS(t, "delete", "rec-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	req := decodeRequest(t, stdout)
	if req.Method != "DELETE" || !strings.HasSuffix(req.URL, "/zones/zone-1/dns_records/rec-1") {
		t.Errorf("unexpected request: %+v", req)
	}
}

func TestDelete_MissingZone(t *testing.T) {
	setupTestConfig(t, nil)

	_, _, err := execDNS(t, "delete", "rec-1")
	if !errors.Is(err, domain.ErrInvalidConfig) {
		t.Errorf("error = %v, want ErrInvalidConfig", err)
	}
}
