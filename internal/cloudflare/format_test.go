package cloudflare

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ben-haas/clawhouse/internal/domain"
)

func TestRender_JSONRoundTripsDescriptor(t *testing.T) {
	req := BuildDeleteDNSRecordRequest(ZoneConfig{APIToken: "tok", ZoneID: "zone"}, "rec-1")

	out, err := req.Render(FormatJSON)
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	var got Request
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if diff := cmp.Diff(req, got); diff != "" {
		t.Errorf("descriptor mismatch (-want +got):\n%s", diff)
	}
}

func TestRender_Curl(t *testing.T) {
	req := BuildDeleteDNSRecordRequest(ZoneConfig{APIToken: "tok", ZoneID: "zone"}, "rec-1")

	out, err := req.Render(FormatCurl)
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if !strings.HasPrefix(out, "curl -sS -X DELETE ") {
		t.Errorf("unexpected curl output:\n%s", out)
	}
}

func TestRender_UnknownFormat(t *testing.T) {
	_, err := Request{}.Render("yaml")
	if !errors.Is(err, domain.ErrInvalidConfig) {
		t.Errorf("Render(yaml) error = %v, want ErrInvalidConfig", err)
	}
}
