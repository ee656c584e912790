package compose

import (
	"fmt"

	"github.com/ben-haas/clawhouse/internal/domain"
	"github.com/ben-haas/clawhouse/internal/util"
)

// BuildManifest builds the manifest for whichever mode t describes. A nil
// topology is ErrInvalidConfig.
func BuildManifest(t Topology) (string, error) {
	switch in := t.(type) {
	case ReverseProxyInput:
		return BuildReverseProxyManifest(in), nil
	case TunnelInput:
		return BuildTunnelManifest(in), nil
	case nil:
		return "", fmt.Errorf("%w: no topology", domain.ErrInvalidConfig)
	default:
		return "", fmt.Errorf("%w: unsupported topology %T", domain.ErrInvalidConfig, t)
	}
}

// BuildReverseProxyManifest renders a manifest with a single proxy service
// that discovers containers, terminates TLS on the configured entrypoint
// and obtains a wildcard certificate through a DNS challenge.
func BuildReverseProxyManifest(in ReverseProxyInput) string {
	in = in.WithDefaults()

	ep := in.EntrypointName
	cr := in.CertResolverName
	resolver := func(directive string) string {
		return fmt.Sprintf(`      - "--certificatesresolvers.%s.acme.%s"`, cr, directive)
	}
	entrypoint := func(directive string) string {
		return fmt.Sprintf(`      - "--entrypoints.%s.%s"`, ep, directive)
	}

	return util.JoinLines(
		`version: "3.9"`,
		"services:",
		"  traefik:",
		"    image: "+in.ProxyImage,
		"    container_name: traefik",
		"    restart: unless-stopped",
		"    command:",
		`      - "--providers.docker=true"`,
		`      - "--providers.docker.exposedbydefault=false"`,
		entrypoint(fmt.Sprintf("address=:%d", in.EntrypointPort)),
		resolver("email="+in.ACMEEmail),
		resolver("storage=/acme.json"),
		resolver("dnschallenge=true"),
		resolver("dnschallenge.provider="+DNSChallengeProvider),
		resolver("dnschallenge.resolvers="+ChallengeResolvers),
		entrypoint("http.tls.certresolver="+cr),
		entrypoint("http.tls.domains[0].main="+in.WildcardDomain),
		entrypoint("http.tls.domains[0].sans=*."+in.WildcardDomain),
		util.If(in.EnableDashboard, `      - "--api.dashboard=true"`),
		"    environment:",
		"      - VERCEL_API_TOKEN="+in.DNSProviderToken,
		util.If(in.DNSProviderTeamID != "", "      - VERCEL_TEAM_ID="+in.DNSProviderTeamID),
		"    ports:",
		fmt.Sprintf(`      - "%d:%d"`, in.EntrypointPort, in.EntrypointPort),
		util.If(in.EnableDashboard, fmt.Sprintf(`      - "%d:%d"`, DashboardPort, DashboardPort)),
		"    volumes:",
		"      - /var/run/docker.sock:/var/run/docker.sock:ro",
		"      - "+CertStorePath+":/acme.json",
	)
}

// BuildTunnelManifest renders a manifest with an internal-only proxy, a
// forward-auth sidecar guarding the terminal, and the tunnel client. The
// client runs from the inline token when one is given and from the
// mounted config directory otherwise.
func BuildTunnelManifest(in TunnelInput) string {
	in = in.WithDefaults()

	forwardAuthSource := []string{
		"    build:",
		"      context: " + ForwardAuthBuildContext,
	}
	if in.ForwardAuthImage != "" {
		forwardAuthSource = []string{"    image: " + in.ForwardAuthImage}
	}

	var client []string
	if in.UsesToken() {
		client = []string{
			"    command: tunnel --no-autoupdate run",
			"    environment:",
			"      - " + TunnelTokenEnv + "=" + in.TunnelToken,
		}
	} else {
		client = []string{
			"    command: tunnel --no-autoupdate --config /etc/cloudflared/config.yml run",
			"    volumes:",
			"      - " + TunnelConfigDir + ":/etc/cloudflared:ro",
		}
	}

	lines := []string{
		"services:",
		"  traefik:",
		"    image: " + in.ProxyImage,
		"    container_name: traefik",
		"    restart: unless-stopped",
		"    command:",
		`      - "--providers.docker=true"`,
		`      - "--providers.docker.exposedbydefault=false"`,
		`      - "--entrypoints.web.address=:80"`,
		util.If(in.EnableDashboard, `      - "--api.dashboard=true"`),
		"    ports:",
		`      - "80:80"`,
		util.If(in.EnableDashboard, fmt.Sprintf(`      - "%d:%d"`, DashboardPort, DashboardPort)),
		"    volumes:",
		"      - /var/run/docker.sock:/var/run/docker.sock:ro",
		"  openclaw-forward-auth:",
	}
	lines = append(lines, forwardAuthSource...)
	lines = append(lines,
		"    container_name: openclaw-forward-auth",
		"    restart: unless-stopped",
		"    environment:",
		"      - OPENCLAW_TTYD_SECRET="+in.SharedSecret,
		fmt.Sprintf("      - OPENCLAW_TTYD_TTL_SECONDS=%d", in.SharedSecretTTLSeconds),
		"    labels:",
		`      - "traefik.enable=false"`,
		"  cloudflared:",
		"    image: "+in.TunnelClientImage,
		"    container_name: cloudflared",
		"    restart: unless-stopped",
	)
	lines = append(lines, client...)
	lines = append(lines,
		"networks:",
		"  default:",
		"    name: "+ProxyNetwork,
	)
	return util.JoinLines(lines...)
}
