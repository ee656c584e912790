// Package compose builds the container-orchestration manifest for each
// deploy mode.
//
// The two manifests are disjoint: the reverse-proxy manifest
// never references the tunnel client or its token, and the tunnel manifest
// never carries certificate-authority or DNS-challenge directives.
package compose

import (
	"fmt"
	"strings"

	"github.com/ben-haas/clawhouse/internal/domain"
)

const (
	DefaultProxyImage        = "traefik:v3.1"
	DefaultTunnelClientImage = "cloudflare/cloudflared:latest"
	DefaultCertResolverName  = "le"
	DefaultEntrypointName    = "websecure"
	DefaultEntrypointPort    = 443

	// DefaultSharedSecretTTLSeconds is one day.
	DefaultSharedSecretTTLSeconds = 86400

	// DNSChallengeProvider is the ACME DNS-challenge provider the proxy uses.
	DNSChallengeProvider = "vercel"

	// ChallengeResolvers are queried to confirm challenge records propagated.
	ChallengeResolvers = "1.1.1.1:53,8.8.8.8:53"

	DashboardPort = 8080

	// ProxyDir holds the proxy's persistent state and the default manifest.
	ProxyDir = "/opt/traefik"

	// CertStorePath is the ACME certificate store on the host.
	CertStorePath = ProxyDir + "/acme.json"

	// TunnelConfigDir is the host directory mounted into the tunnel client.
	TunnelConfigDir = "/var/lib/openclaw/cloudflared"

	// TunnelTokenEnv carries an inline connection token to the tunnel client.
	TunnelTokenEnv = "TUNNEL_TOKEN"

	// ForwardAuthBuildContext is used when no forward-auth image is given.
	ForwardAuthBuildContext = "../../docker/forward-auth"

	// ProxyNetwork is the network runtime containers join to be routed.
	ProxyNetwork = "traefik_default"

	// ProxyService is how the tunnel edge reaches the in-host proxy.
	ProxyService = "http://traefik:80"
)

// Topology is the deployment intent for one mode. It is implemented only
// by ReverseProxyInput and TunnelInput; consumers dispatch with a type
// switch over those two types.
type Topology interface {
	Mode() domain.DeployMode
	Validate() error
	topology()
}

// ReverseProxyInput configures a public TLS entrypoint whose wildcard
// certificate is issued through a DNS challenge.
type ReverseProxyInput struct {
	ACMEEmail string `yaml:"acmeEmail" json:"acmeEmail"`
	// WildcardDomain is the certificate's main domain; *.WildcardDomain is
	// added as a SAN (e.g. h1.openclaw.example.com).
	WildcardDomain    string `yaml:"wildcardDomain" json:"wildcardDomain"`
	DNSProviderToken  string `yaml:"dnsProviderToken" json:"dnsProviderToken"`
	DNSProviderTeamID string `yaml:"dnsProviderTeamId,omitempty" json:"dnsProviderTeamId,omitempty"`
	EnableDashboard   bool   `yaml:"enableDashboard,omitempty" json:"enableDashboard,omitempty"`
	ProxyImage        string `yaml:"proxyImage,omitempty" json:"proxyImage,omitempty"`
	CertResolverName  string `yaml:"certResolverName,omitempty" json:"certResolverName,omitempty"`
	EntrypointName    string `yaml:"entrypointName,omitempty" json:"entrypointName,omitempty"`
	EntrypointPort    int    `yaml:"entrypointPort,omitempty" json:"entrypointPort,omitempty"`
}

func (ReverseProxyInput) Mode() domain.DeployMode { return domain.ModeReverseProxy }
func (ReverseProxyInput) topology()               {}

// WithDefaults returns a copy with every optional field resolved.
func (in ReverseProxyInput) WithDefaults() ReverseProxyInput {
	in.ProxyImage = orDefault(in.ProxyImage, DefaultProxyImage)
	in.CertResolverName = orDefault(in.CertResolverName, DefaultCertResolverName)
	in.EntrypointName = orDefault(in.EntrypointName, DefaultEntrypointName)
	if in.EntrypointPort == 0 {
		in.EntrypointPort = DefaultEntrypointPort
	}
	return in
}

// Validate reports missing required fields.
func (in ReverseProxyInput) Validate() error {
	var missing []string
	if strings.TrimSpace(in.ACMEEmail) == "" {
		missing = append(missing, "acmeEmail")
	}
	if strings.TrimSpace(in.WildcardDomain) == "" {
		missing = append(missing, "wildcardDomain")
	}
	if strings.TrimSpace(in.DNSProviderToken) == "" {
		missing = append(missing, "dnsProviderToken")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: reverse-proxy: missing %s", domain.ErrInvalidConfig, strings.Join(missing, ", "))
	}
	if in.EntrypointPort < 0 || in.EntrypointPort > 65535 {
		return fmt.Errorf("%w: reverse-proxy: entrypointPort %d out of range", domain.ErrInvalidConfig, in.EntrypointPort)
	}
	return singleLine(in.Mode(),
		field{"acmeEmail", in.ACMEEmail},
		field{"wildcardDomain", in.WildcardDomain},
		field{"dnsProviderToken", in.DNSProviderToken},
		field{"dnsProviderTeamId", in.DNSProviderTeamID},
		field{"proxyImage", in.ProxyImage},
		field{"certResolverName", in.CertResolverName},
		field{"entrypointName", in.EntrypointName},
	)
}

// TunnelInput configures an outbound tunnel. Exactly one of TunnelToken
// and TunnelID identifies the tunnel; the token wins when both are set.
type TunnelInput struct {
	// TunnelToken is passed inline to the tunnel client.
	TunnelToken string `yaml:"tunnelToken,omitempty" json:"tunnelToken,omitempty"`
	// TunnelID selects a tunnel whose credentials are already on the host;
	// the client is started from the mounted config directory.
	TunnelID string `yaml:"tunnelId,omitempty" json:"tunnelId,omitempty"`
	// WildcardDomain seeds the initial ingress table with *.WildcardDomain.
	WildcardDomain         string `yaml:"wildcardDomain,omitempty" json:"wildcardDomain,omitempty"`
	SharedSecret           string `yaml:"sharedSecret" json:"sharedSecret"`
	SharedSecretTTLSeconds int    `yaml:"sharedSecretTtlSeconds,omitempty" json:"sharedSecretTtlSeconds,omitempty"`
	ProxyImage             string `yaml:"proxyImage,omitempty" json:"proxyImage,omitempty"`
	TunnelClientImage      string `yaml:"tunnelClientImage,omitempty" json:"tunnelClientImage,omitempty"`
	ForwardAuthImage       string `yaml:"forwardAuthImage,omitempty" json:"forwardAuthImage,omitempty"`
	EnableDashboard        bool   `yaml:"enableDashboard,omitempty" json:"enableDashboard,omitempty"`
}

func (TunnelInput) Mode() domain.DeployMode { return domain.ModeTunnel }
func (TunnelInput) topology()               {}

// WithDefaults returns a copy with every optional field resolved.
func (in TunnelInput) WithDefaults() TunnelInput {
	in.ProxyImage = orDefault(in.ProxyImage, DefaultProxyImage)
	in.TunnelClientImage = orDefault(in.TunnelClientImage, DefaultTunnelClientImage)
	if in.SharedSecretTTLSeconds == 0 {
		in.SharedSecretTTLSeconds = DefaultSharedSecretTTLSeconds
	}
	return in
}

// UsesToken reports whether the client is started with an inline token
// rather than mounted credential files.
func (in TunnelInput) UsesToken() bool {
	return strings.TrimSpace(in.TunnelToken) != ""
}

// Validate reports missing required fields.
func (in TunnelInput) Validate() error {
	var missing []string
	if !in.UsesToken() && strings.TrimSpace(in.TunnelID) == "" {
		missing = append(missing, "tunnelToken or tunnelId")
	}
	if strings.TrimSpace(in.SharedSecret) == "" {
		missing = append(missing, "sharedSecret")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: tunnel: missing %s", domain.ErrInvalidConfig, strings.Join(missing, ", "))
	}
	if in.SharedSecretTTLSeconds < 0 {
		return fmt.Errorf("%w: tunnel: sharedSecretTtlSeconds must not be negative", domain.ErrInvalidConfig)
	}
	return singleLine(in.Mode(),
		field{"tunnelToken", in.TunnelToken},
		field{"tunnelId", in.TunnelID},
		field{"wildcardDomain", in.WildcardDomain},
		field{"sharedSecret", in.SharedSecret},
		field{"proxyImage", in.ProxyImage},
		field{"tunnelClientImage", in.TunnelClientImage},
		field{"forwardAuthImage", in.ForwardAuthImage},
	)
}

type field struct {
	name  string
	value string
}

// singleLine rejects values that span lines. Every value ends up inside a
// manifest line or a script heredoc, where a newline would end it early.
func singleLine(mode domain.DeployMode, fields ...field) error {
	for _, f := range fields {
		if strings.ContainsAny(f.value, "\r\n") {
			return fmt.Errorf("%w: %s: %s must be a single line", domain.ErrInvalidConfig, mode, f.name)
		}
	}
	return nil
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
