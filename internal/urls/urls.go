// Package urls derives the externally visible addresses of an instance.
package urls

import "net/url"

const (
	DefaultSubdomain      = "openclaw"
	DefaultInstancePrefix = "openclaw-"
)

// Params are the inputs to Resolve. HostShard, Subdomain and
// InstancePrefix are optional.
type Params struct {
	InstanceID    string
	BaseDomain    string
	TerminalToken string

	// HostShard selects a per-host wildcard certificate namespace
	// (<shard>.<subdomain>.<base>). Without it every instance lives
	// directly under BaseDomain, the flat namespace a single tunnel owns.
	HostShard      string
	Subdomain      string
	InstancePrefix string
}

// InstanceURLs are derived on every call and never cached.
type InstanceURLs struct {
	HostName       string `json:"hostName"`
	WildcardDomain string `json:"wildcardDomain"`
	PrimaryURL     string `json:"primaryUrl"`
	TerminalURL    string `json:"terminalUrl"`
}

// Resolve computes the hostnames and URLs for p. The terminal URL carries
// the token as a query parameter; the primary URL never does.
func Resolve(p Params) InstanceURLs {
	prefix := p.InstancePrefix
	if prefix == "" {
		prefix = DefaultInstancePrefix
	}

	wildcard := p.BaseDomain
	if p.HostShard != "" {
		sub := p.Subdomain
		if sub == "" {
			sub = DefaultSubdomain
		}
		wildcard = p.HostShard + "." + sub + "." + p.BaseDomain
	}
	host := prefix + p.InstanceID + "." + wildcard

	terminal := url.URL{
		Scheme:   "https",
		Host:     host,
		Path:     "/terminal",
		RawQuery: url.Values{"token": {p.TerminalToken}}.Encode(),
	}

	return InstanceURLs{
		HostName:       host,
		WildcardDomain: wildcard,
		PrimaryURL:     "https://" + host + "/",
		TerminalURL:    terminal.String(),
	}
}
