package cloudflare

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/ben-haas/clawhouse/internal/domain"
	"github.com/ben-haas/clawhouse/internal/ingress"
)

// envelope is the standard Cloudflare API response wrapper.
type envelope[T any] struct {
	Success  bool      `json:"success"`
	Errors   []cfError `json:"errors"`
	Result   T         `json:"result"`
	Messages []cfError `json:"messages,omitempty"`
}

// cfError represents a single Cloudflare API error.
type cfError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type tunnelConfigResult struct {
	TunnelID string                     `json:"tunnel_id"`
	Version  int                        `json:"version"`
	Config   map[string]json.RawMessage `json:"config"`
}

// ListedRecord is a DNS record as returned by the list endpoint.
type ListedRecord struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	Content string `json:"content"`
	Proxied bool   `json:"proxied"`
	TTL     int    `json:"ttl"`
}

// RemoteTunnelConfig is the decoded result of a get-tunnel-config call.
type RemoteTunnelConfig struct {
	TunnelID string
	Version  int
	Ingress  []ingress.Rule
	// Extra holds every config key besides ingress (originRequest,
	// warp-routing and so on) exactly as returned. Nil when there are none.
	Extra map[string]json.RawMessage
}

// DecodeTunnelConfig decodes the response body of a get-tunnel-config
// request. status is the HTTP status code the executor observed.
func DecodeTunnelConfig(status int, body []byte) (RemoteTunnelConfig, error) {
	var out envelope[tunnelConfigResult]
	if err := json.Unmarshal(body, &out); err != nil {
		return RemoteTunnelConfig{}, fmt.Errorf("cloudflare: failed to decode response: %w", err)
	}
	if apiErr := envelopeError(out.Success, out.Errors, status); apiErr != nil {
		return RemoteTunnelConfig{}, fmt.Errorf("failed to get tunnel configuration: %w", apiErr)
	}

	remote := RemoteTunnelConfig{
		TunnelID: out.Result.TunnelID,
		Version:  out.Result.Version,
	}
	for key, raw := range out.Result.Config {
		if key == "ingress" {
			if err := json.Unmarshal(raw, &remote.Ingress); err != nil {
				return RemoteTunnelConfig{}, fmt.Errorf("cloudflare: failed to decode ingress: %w", err)
			}
			continue
		}
		if remote.Extra == nil {
			remote.Extra = make(map[string]json.RawMessage)
		}
		remote.Extra[key] = raw
	}
	return remote, nil
}

// DecodeDNSRecords decodes the response body of a list-DNS-records request.
func DecodeDNSRecords(status int, body []byte) ([]ListedRecord, error) {
	var out envelope[[]ListedRecord]
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("cloudflare: failed to decode response: %w", err)
	}
	if apiErr := envelopeError(out.Success, out.Errors, status); apiErr != nil {
		return nil, fmt.Errorf("failed to list records: %w", apiErr)
	}
	return out.Result, nil
}

// BuildIngressUpdate reconciles rule into the tunnel configuration held in
// current (a get-tunnel-config response body) and returns the PUT that
// publishes the merged table. The live table is never edited in place:
// the whole merged table is sent in one request, together with every
// other setting of the current config.
func BuildIngressUpdate(cfg TunnelConfig, status int, current []byte, rule ingress.Rule) (Request, error) {
	remote, err := DecodeTunnelConfig(status, current)
	if err != nil {
		return Request{}, err
	}
	return putTunnelConfigRequest(cfg, ingress.Merge(remote.Ingress, rule), remote.Extra), nil
}

// envelopeError extracts a single error from a Cloudflare response envelope.
// It maps known HTTP-level and API-level error codes to domain sentinels.
func envelopeError(success bool, errors []cfError, httpStatus int) error {
	if success {
		return nil
	}

	switch httpStatus {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", domain.ErrUnauthorized, cfErrorString(errors))
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", domain.ErrNotFound, cfErrorString(errors))
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", domain.ErrRateLimited, cfErrorString(errors))
	case http.StatusConflict:
		return fmt.Errorf("%w: %s", domain.ErrConflict, cfErrorString(errors))
	}

	for _, e := range errors {
		msg := strings.ToLower(e.Message)
		switch {
		case e.Code == 9109 || e.Code == 10000 || strings.Contains(msg, "authentication"):
			return fmt.Errorf("%w: %s", domain.ErrUnauthorized, e.Message)
		case e.Code == 81044 || strings.Contains(msg, "not found"):
			return fmt.Errorf("%w: %s", domain.ErrNotFound, e.Message)
		case e.Code == 81057 || e.Code == 81053 || strings.Contains(msg, "already exists"):
			return fmt.Errorf("%w: %s", domain.ErrConflict, e.Message)
		}
	}

	return fmt.Errorf("cloudflare: %s", cfErrorString(errors))
}

// cfErrorString joins multiple Cloudflare errors into a single string.
func cfErrorString(errors []cfError) string {
	if len(errors) == 0 {
		return "unknown error"
	}
	msgs := make([]string, 0, len(errors))
	for _, e := range errors {
		msgs = append(msgs, fmt.Sprintf("[%d] %s", e.Code, e.Message))
	}
	return strings.Join(msgs, "; ")
}
