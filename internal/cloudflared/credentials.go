// Package cloudflared decodes tunnel tokens and renders the files the
// tunnel client reads at startup: the credentials file and its YAML
// configuration.
package cloudflared

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ben-haas/clawhouse/internal/domain"
)

// Credentials identify a host to one tunnel. They are immutable once
// decoded.
type Credentials struct {
	AccountID    string
	TunnelID     string
	TunnelSecret string
}

// DecodeError reports a tunnel token that is not base64-encoded JSON or
// lacks a required field. It matches domain.ErrDecode with errors.Is.
type DecodeError struct {
	// Field names the missing token key ("a", "t" or "s"); empty when the
	// token could not be parsed at all.
	Field string
	Err   error
}

func (e *DecodeError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("tunnel token: missing field %q", e.Field)
	}
	return fmt.Sprintf("tunnel token: %v", e.Err)
}

func (e *DecodeError) Unwrap() []error {
	if e.Err == nil {
		return []error{domain.ErrDecode}
	}
	return []error{domain.ErrDecode, e.Err}
}

// tokenPayload is the JSON object carried inside a tunnel token.
type tokenPayload struct {
	AccountTag   string `json:"a"`
	TunnelID     string `json:"t"`
	TunnelSecret string `json:"s"`
}

// credentialsFile is the on-disk credentials format. Field order is the
// serialization order.
type credentialsFile struct {
	AccountTag   string `json:"AccountTag"`
	TunnelID     string `json:"TunnelID"`
	TunnelSecret string `json:"TunnelSecret"`
}

// DecodeToken decodes an opaque tunnel token into Credentials.
func DecodeToken(token string) (Credentials, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Credentials{}, &DecodeError{Err: fmt.Errorf("empty token")}
	}

	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		// Tokens copied from dashboards sometimes lose their padding.
		var rawErr error
		raw, rawErr = base64.RawStdEncoding.DecodeString(strings.TrimRight(token, "="))
		if rawErr != nil {
			return Credentials{}, &DecodeError{Err: fmt.Errorf("not base64: %w", err)}
		}
	}

	var p tokenPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return Credentials{}, &DecodeError{Err: fmt.Errorf("not JSON: %w", err)}
	}

	switch {
	case p.AccountTag == "":
		return Credentials{}, &DecodeError{Field: "a"}
	case p.TunnelID == "":
		return Credentials{}, &DecodeError{Field: "t"}
	case p.TunnelSecret == "":
		return Credentials{}, &DecodeError{Field: "s"}
	}

	return Credentials{
		AccountID:    p.AccountTag,
		TunnelID:     p.TunnelID,
		TunnelSecret: p.TunnelSecret,
	}, nil
}

// EncodeCredentialsFile renders creds as the JSON credentials file read by
// the tunnel client, with stable key order and 2-space indentation.
func EncodeCredentialsFile(creds Credentials) string {
	data, err := json.MarshalIndent(credentialsFile{
		AccountTag:   creds.AccountID,
		TunnelID:     creds.TunnelID,
		TunnelSecret: creds.TunnelSecret,
	}, "", "  ")
	if err != nil {
		// A struct of strings always marshals.
		panic(fmt.Sprintf("cloudflared: marshal credentials: %v", err))
	}
	return string(data)
}
