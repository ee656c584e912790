package cloudflared

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ben-haas/clawhouse/internal/ingress"

	"gopkg.in/yaml.v3"
)

const (
	// ContainerConfigDir is where the tunnel client container sees the
	// host's persistent config directory.
	ContainerConfigDir = "/etc/cloudflared"

	// CredentialsPath is the credentials file as seen inside the container.
	CredentialsPath = ContainerConfigDir + "/credentials.json"

	// ConfigPath is the client configuration file inside the container.
	ConfigPath = ContainerConfigDir + "/config.yml"
)

type configHeader struct {
	Tunnel          string `yaml:"tunnel"`
	CredentialsFile string `yaml:"credentials-file"`
}

type ingressDocument struct {
	Ingress []ingress.Rule `yaml:"ingress"`
}

// ConfigHeader renders the tunnel identity part of the client config.
func ConfigHeader(tunnelID string) string {
	return marshal(configHeader{Tunnel: tunnelID, CredentialsFile: CredentialsPath})
}

// IngressDocument renders rules as the ingress section of the client
// config. Every rule but the last must carry a hostname and the last must
// be a bare catch-all, so a table without one gets the default appended.
func IngressDocument(rules []ingress.Rule) (string, error) {
	if len(rules) == 0 || !rules[len(rules)-1].IsCatchAll() {
		rules = append(append([]ingress.Rule(nil), rules...), ingress.CatchAll())
	}
	if err := ingress.Validate(rules); err != nil {
		return "", err
	}
	return marshal(ingressDocument{Ingress: rules}), nil
}

// BuildClientConfig renders the complete client configuration file.
func BuildClientConfig(tunnelID string, rules []ingress.Rule) (string, error) {
	doc, err := IngressDocument(rules)
	if err != nil {
		return "", fmt.Errorf("tunnel %s: %w", tunnelID, err)
	}
	return ConfigHeader(tunnelID) + "\n" + doc, nil
}

// DefaultIngress is the table seeded on first run: the wildcard domain
// routes to the in-host proxy and everything else gets a 404. Without a
// wildcard domain the proxy itself becomes the catch-all.
func DefaultIngress(wildcardDomain, proxyService string) []ingress.Rule {
	if wildcardDomain == "" {
		return []ingress.Rule{{Service: proxyService}}
	}
	return ingress.Merge(nil, ingress.Rule{Hostname: "*." + wildcardDomain, Service: proxyService})
}

func marshal(v any) string {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		panic(fmt.Sprintf("cloudflared: marshal yaml: %v", err))
	}
	_ = enc.Close()
	return strings.TrimRight(buf.String(), "\n")
}
