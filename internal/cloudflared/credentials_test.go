package cloudflared

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/ben-haas/clawhouse/internal/domain"

	"github.com/google/go-cmp/cmp"
)

func encodeToken(t *testing.T, payload string) string {
	t.Helper()
	return base64.StdEncoding.EncodeToString([]byte(payload))
}

func TestDecodeToken_HappyPath(t *testing.T) {
	token := encodeToken(t, `{"a":"A","t":"T","s":"S"}`)

	got, err := DecodeToken(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := Credentials{AccountID: "A", TunnelID: "T", TunnelSecret: "S"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("DecodeToken mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeToken_UnpaddedToken(t *testing.T) {
	token := base64.RawStdEncoding.EncodeToString([]byte(`{"a":"acct","t":"tun","s":"c2VjcmV0"}`))

	got, err := DecodeToken(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.TunnelID != "tun" {
		t.Errorf("expected tunnel ID %q, got %q", "tun", got.TunnelID)
	}
}

func TestDecodeToken_Errors(t *testing.T) {
	tests := []struct {
		name      string
		token     string
		wantField string
	}{
		{"not base64", "not-base64!!", ""},
		{"empty", "", ""},
		{"not json", base64.StdEncoding.EncodeToString([]byte("hello")), ""},
		{"missing account", base64.StdEncoding.EncodeToString([]byte(`{"t":"T","s":"S"}`)), "a"},
		{"missing tunnel", base64.StdEncoding.EncodeToString([]byte(`{"a":"A","s":"S"}`)), "t"},
		{"missing secret", base64.StdEncoding.EncodeToString([]byte(`{"a":"A","t":"T"}`)), "s"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeToken(tt.token)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !errors.Is(err, domain.ErrDecode) {
				t.Errorf("expected errors.Is(err, ErrDecode), got %v", err)
			}
			var decErr *DecodeError
			if !errors.As(err, &decErr) {
				t.Fatalf("expected *DecodeError, got %T", err)
			}
			if decErr.Field != tt.wantField {
				t.Errorf("expected field %q, got %q", tt.wantField, decErr.Field)
			}
		})
	}
}

func TestEncodeCredentialsFile(t *testing.T) {
	got := EncodeCredentialsFile(Credentials{AccountID: "A", TunnelID: "T", TunnelSecret: "S"})

	want := "{\n  \"AccountTag\": \"A\",\n  \"TunnelID\": \"T\",\n  \"TunnelSecret\": \"S\"\n}"
	if got != want {
		t.Errorf("EncodeCredentialsFile mismatch:\nwant:\n%s\ngot:\n%s", want, got)
	}
}

func TestEncodeCredentialsFile_StableAcrossCalls(t *testing.T) {
	token := encodeToken(t, `{"s":"S","t":"T","a":"A"}`)

	var outputs []string
	for range 3 {
		creds, err := DecodeToken(token)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		outputs = append(outputs, EncodeCredentialsFile(creds))
	}
	for i := 1; i < len(outputs); i++ {
		if outputs[i] != outputs[0] {
			t.Errorf("output %d differs from first:\n%s\nvs\n%s", i, outputs[i], outputs[0])
		}
	}

	var parsed map[string]string
	if err := json.Unmarshal([]byte(outputs[0]), &parsed); err != nil {
		t.Fatalf("credentials file is not JSON: %v", err)
	}
	if len(parsed) != 3 {
		t.Errorf("expected 3 keys, got %d", len(parsed))
	}
	if strings.Contains(outputs[0], "\n\n") {
		t.Error("credentials file contains blank lines")
	}
}
