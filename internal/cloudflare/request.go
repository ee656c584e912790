// Package cloudflare builds Cloudflare API v4 requests without sending
// them. A Request is an inert description of an HTTP call; executing it,
// retrying it and handling partial failure belong to the caller.
package cloudflare

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/ben-haas/clawhouse/internal/ingress"
	"github.com/ben-haas/clawhouse/internal/util"
)

const (
	// BaseURL is the versioned REST API root.
	BaseURL = "https://api.cloudflare.com/client/v4"

	// TunnelCNAMESuffix is the edge hostname suffix every tunnel owns.
	TunnelCNAMESuffix = "cfargotunnel.com"

	// AutoTTL is the API's "automatic" TTL sentinel. It is not a duration.
	AutoTTL = 1
)

// Request describes one API call. Body is canonical JSON or empty.
type Request struct {
	URL     string            `json:"url"`
	Method  string            `json:"method"`
	Headers map[string]string `json:"headers"`
	Body    string            `json:"body,omitempty"`
}

// ZoneConfig scopes DNS record requests.
type ZoneConfig struct {
	APIToken string
	ZoneID   string
}

// TunnelConfig scopes tunnel configuration requests.
type TunnelConfig struct {
	APIToken  string
	AccountID string
	TunnelID  string
}

// DNSRecord is the input to BuildCreateDNSRecordRequest.
type DNSRecord struct {
	Name   string
	Target string
	// Proxied defaults to true when nil.
	Proxied *bool
	// TTL defaults to AutoTTL when zero.
	TTL int
}

// createRecordBody is the POST payload. Field order is the wire order.
type createRecordBody struct {
	Type    string `json:"type"`
	Name    string `json:"name"`
	Content string `json:"content"`
	Proxied bool   `json:"proxied"`
	TTL     int    `json:"ttl"`
}

// TunnelCNAME returns the edge hostname a DNS record points at to route
// into tunnelID.
func TunnelCNAME(tunnelID string) string {
	return tunnelID + "." + TunnelCNAMESuffix
}

// BuildCreateDNSRecordRequest builds a POST creating a CNAME record.
func BuildCreateDNSRecordRequest(cfg ZoneConfig, rec DNSRecord) Request {
	proxied := true
	if rec.Proxied != nil {
		proxied = *rec.Proxied
	}
	ttl := rec.TTL
	if ttl == 0 {
		ttl = AutoTTL
	}

	return Request{
		URL:     zoneRecordsURL(cfg.ZoneID),
		Method:  http.MethodPost,
		Headers: jsonHeaders(cfg.APIToken),
		Body: mustJSON(createRecordBody{
			Type:    "CNAME",
			Name:    rec.Name,
			Content: rec.Target,
			Proxied: proxied,
			TTL:     ttl,
		}),
	}
}

// BuildCreateWildcardDNSRecordRequest builds the proxied CNAME that sends
// *.wildcardDomain through the tunnel.
func BuildCreateWildcardDNSRecordRequest(cfg ZoneConfig, wildcardDomain, tunnelID string) Request {
	proxied := true
	return BuildCreateDNSRecordRequest(cfg, DNSRecord{
		Name:    "*." + wildcardDomain,
		Target:  TunnelCNAME(tunnelID),
		Proxied: &proxied,
	})
}

// BuildListDNSRecordsRequest builds a GET listing the zone's records,
// optionally filtered by exact name.
func BuildListDNSRecordsRequest(cfg ZoneConfig, nameFilter string) Request {
	u := zoneRecordsURL(cfg.ZoneID)
	if nameFilter != "" {
		u += "?" + url.Values{"name": {nameFilter}}.Encode()
	}
	return Request{
		URL:     u,
		Method:  http.MethodGet,
		Headers: authHeaders(cfg.APIToken),
	}
}

// BuildDeleteDNSRecordRequest builds a DELETE for one record.
func BuildDeleteDNSRecordRequest(cfg ZoneConfig, recordID string) Request {
	return Request{
		URL:     zoneRecordsURL(cfg.ZoneID) + "/" + url.PathEscape(recordID),
		Method:  http.MethodDelete,
		Headers: authHeaders(cfg.APIToken),
	}
}

// BuildGetTunnelConfigRequest builds a GET for a tunnel's remote config.
func BuildGetTunnelConfigRequest(cfg TunnelConfig) Request {
	return Request{
		URL:     tunnelConfigURL(cfg),
		Method:  http.MethodGet,
		Headers: authHeaders(cfg.APIToken),
	}
}

// BuildPutTunnelConfigRequest builds a PUT replacing a tunnel's ingress
// table.
func BuildPutTunnelConfigRequest(cfg TunnelConfig, rules []ingress.Rule) Request {
	return putTunnelConfigRequest(cfg, rules, nil)
}

// putTunnelConfigRequest builds the PUT with extra written alongside the
// ingress table. Keys are emitted in sorted order.
func putTunnelConfigRequest(cfg TunnelConfig, rules []ingress.Rule, extra map[string]json.RawMessage) Request {
	if rules == nil {
		rules = []ingress.Rule{}
	}
	config := make(map[string]json.RawMessage, len(extra)+1)
	for key, raw := range extra {
		config[key] = raw
	}
	config["ingress"] = json.RawMessage(mustJSON(rules))

	return Request{
		URL:     tunnelConfigURL(cfg),
		Method:  http.MethodPut,
		Headers: jsonHeaders(cfg.APIToken),
		Body:    mustJSON(map[string]any{"config": config}),
	}
}

func zoneRecordsURL(zoneID string) string {
	return fmt.Sprintf("%s/zones/%s/dns_records", BaseURL, url.PathEscape(zoneID))
}

// tunnelConfigURL targets the remotely-managed tunnel configuration
// endpoint (accounts/{account}/cfd_tunnel/{tunnel}/configurations).
func tunnelConfigURL(cfg TunnelConfig) string {
	return fmt.Sprintf("%s/accounts/%s/cfd_tunnel/%s/configurations",
		BaseURL, url.PathEscape(cfg.AccountID), url.PathEscape(cfg.TunnelID))
}

func authHeaders(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func jsonHeaders(token string) map[string]string {
	h := authHeaders(token)
	h["Content-Type"] = "application/json"
	return h
}

func mustJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("cloudflare: failed to encode request: %v", err))
	}
	return string(data)
}

// Curl renders r as a curl invocation an operator can paste into a shell.
// Headers are emitted in sorted order so the output is stable.
func (r Request) Curl() string {
	keys := make([]string, 0, len(r.Headers))
	for k := range r.Headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := []string{"curl -sS -X " + r.Method + " " + util.ShellQuote(r.URL)}
	for _, k := range keys {
		parts = append(parts, "-H "+util.ShellQuote(k+": "+r.Headers[k]))
	}
	if r.Body != "" {
		parts = append(parts, "--data "+util.ShellQuote(r.Body))
	}
	return strings.Join(parts, " \\\n  ")
}
