// Package provision assembles the shell script that prepares a single host
// for one deploy mode: it installs the container engine, writes the
// mode's prerequisite files and the compose manifest, and brings the
// stack up.
//
// The script is idempotent. Re-running it on a provisioned host leaves
// operator customizations (daemon configuration, ingress table) in place.
// It never touches edge DNS; wildcard records are created separately from
// requests built by package cloudflare.
package provision

import (
	"fmt"
	"path"

	"github.com/ben-haas/clawhouse/internal/cloudflared"
	"github.com/ben-haas/clawhouse/internal/compose"
	"github.com/ben-haas/clawhouse/internal/domain"
	"github.com/ben-haas/clawhouse/internal/util"
)

// DefaultComposePath is where the manifest is written when Input.ComposePath
// is empty.
const DefaultComposePath = compose.ProxyDir + "/docker-compose.yml"

const (
	daemonConfigPath = "/etc/docker/daemon.json"
	credentialsFile  = compose.TunnelConfigDir + "/credentials.json"
	ingressFile      = compose.TunnelConfigDir + "/ingress.yml"
	clientConfigFile = compose.TunnelConfigDir + "/config.yml"
)

// sudo is expanded by the shell; privilege detection sets it once.
const sudo = "${SUDO}"

// Input describes one provisioning run.
type Input struct {
	// Topology selects the mode and carries its parameters.
	Topology compose.Topology
	// RuntimeImage is pre-pulled after bring-up when set.
	RuntimeImage string
	// ComposePath overrides DefaultComposePath.
	ComposePath string
}

// Mode reports the deploy mode of in. A missing topology reports the
// default mode.
func (in Input) Mode() domain.DeployMode {
	if in.Topology == nil {
		return domain.DefaultDeployMode
	}
	return in.Topology.Mode()
}

// BuildScript renders the provisioning script for in. It fails only when
// the input is incomplete or the tunnel token cannot be decoded, and in
// that case before any text is produced.
func BuildScript(in Input) (string, error) {
	if in.Topology == nil {
		return "", fmt.Errorf("%w: no topology for mode %s", domain.ErrInvalidConfig, in.Mode())
	}
	if err := in.Topology.Validate(); err != nil {
		return "", err
	}

	prereqs, err := prerequisiteSteps(in.Topology)
	if err != nil {
		return "", err
	}
	manifest, err := compose.BuildManifest(in.Topology)
	if err != nil {
		return "", err
	}

	composePath := in.ComposePath
	if composePath == "" {
		composePath = DefaultComposePath
	}

	var lines []string
	lines = append(lines, preambleSteps()...)
	lines = append(lines, privilegeSteps()...)
	lines = append(lines, packageSteps()...)
	lines = append(lines, daemonConfigSteps()...)
	lines = append(lines, prereqs...)
	lines = append(lines, manifestSteps(composePath, manifest)...)
	lines = append(lines, runtimeImageSteps(in.RuntimeImage)...)
	return util.JoinLines(lines...), nil
}

func preambleSteps() []string {
	return []string{
		"set -euo pipefail",
		"export DEBIAN_FRONTEND=noninteractive",
	}
}

func privilegeSteps() []string {
	return []string{
		`if [ "$(id -u)" -ne 0 ]; then SUDO="sudo -n"; else SUDO=""; fi`,
	}
}

func packageSteps() []string {
	return []string{
		sudo + " apt-get update -y",
		sudo + " apt-get install -y ca-certificates curl gnupg lsb-release",
		"if ! command -v docker >/dev/null 2>&1; then curl -fsSL https://get.docker.com | " + sudo + " sh; fi",
		sudo + " systemctl enable --now docker",
		"if ! docker compose version >/dev/null 2>&1; then " + sudo + " apt-get install -y docker-compose-plugin; fi",
	}
}

// daemonConfigSteps pins the engine's minimum API version, but only on a
// host whose daemon.json is absent or empty. A customized file is kept
// and the daemon is restarted only when the file was written.
func daemonConfigSteps() []string {
	return []string{
		`DAEMON_JSON="` + daemonConfigPath + `"`,
		`if [[ ! -s "${DAEMON_JSON}" ]] || [[ "$(tr -d ' \n\t' < "${DAEMON_JSON}" 2>/dev/null || echo '')" == "{}" ]]; then`,
		"  " + sudo + " mkdir -p " + path.Dir(daemonConfigPath),
		"  " + sudo + ` tee "${DAEMON_JSON}" >/dev/null <<'JSON'`,
		"{",
		`  "min-api-version": "1.24"`,
		"}",
		"JSON",
		"  " + sudo + " systemctl restart docker",
		"fi",
	}
}

func prerequisiteSteps(t compose.Topology) ([]string, error) {
	switch in := t.(type) {
	case compose.ReverseProxyInput:
		return certStoreSteps(), nil
	case compose.TunnelInput:
		return tunnelConfigSteps(in)
	default:
		return nil, fmt.Errorf("%w: unsupported topology %T", domain.ErrInvalidConfig, t)
	}
}

func certStoreSteps() []string {
	return []string{
		sudo + " mkdir -p " + compose.ProxyDir,
		sudo + " touch " + compose.CertStorePath,
		sudo + " chmod 600 " + compose.CertStorePath,
	}
}

// tunnelConfigSteps writes the tunnel client's persistent files. The
// ingress file is seeded only on first run; the client config is always
// regenerated from the tunnel identity plus the current ingress file.
func tunnelConfigSteps(in compose.TunnelInput) ([]string, error) {
	tunnelID := in.TunnelID
	var credentials string
	if in.UsesToken() {
		creds, err := cloudflared.DecodeToken(in.TunnelToken)
		if err != nil {
			return nil, err
		}
		tunnelID = creds.TunnelID
		credentials = cloudflared.EncodeCredentialsFile(creds)
	}

	seed, err := cloudflared.IngressDocument(cloudflared.DefaultIngress(in.WildcardDomain, compose.ProxyService))
	if err != nil {
		return nil, err
	}

	lines := []string{sudo + " mkdir -p " + compose.TunnelConfigDir}
	if credentials != "" {
		lines = append(lines, heredoc("", credentialsFile, "JSON", credentials)...)
		lines = append(lines, sudo+" chmod 600 "+credentialsFile)
	}
	lines = append(lines, "if [ ! -f "+ingressFile+" ]; then")
	lines = append(lines, heredoc("  ", ingressFile, "INGRESS", seed)...)
	lines = append(lines, "fi")
	lines = append(lines, heredoc("", clientConfigFile, "CLOUDFLARED", cloudflared.ConfigHeader(tunnelID))...)
	lines = append(lines, sudo+" sh -c 'cat "+ingressFile+" >> "+clientConfigFile+"'")
	return lines, nil
}

// manifestSteps writes the manifest beside its final path and renames it
// into place so a reader never sees a partial file.
func manifestSteps(composePath, manifest string) []string {
	target := util.ShellQuote(composePath)
	tmp := util.ShellQuote(composePath + ".tmp")

	lines := []string{sudo + " mkdir -p " + util.ShellQuote(path.Dir(composePath))}
	lines = append(lines, heredoc("", composePath+".tmp", "COMPOSE", manifest)...)
	lines = append(lines,
		sudo+" mv -f "+tmp+" "+target,
		sudo+" docker compose -f "+target+" up -d",
	)
	return lines
}

func runtimeImageSteps(image string) []string {
	if image == "" {
		return nil
	}
	return []string{sudo + " docker pull " + util.ShellQuote(image)}
}

// heredoc writes body to dest through a quoted heredoc so the shell
// performs no expansion inside it.
func heredoc(indent, dest, delim, body string) []string {
	return []string{
		indent + sudo + " tee " + util.ShellQuote(dest) + " >/dev/null <<'" + delim + "'",
		body,
		delim,
	}
}
