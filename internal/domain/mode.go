package domain

import (
	"fmt"
	"strings"
)

// DeployMode selects the network topology a host is provisioned for.
// The two modes are mutually exclusive: every artifact is built for
// exactly one of them.
type DeployMode string

const (
	// ModeReverseProxy terminates public TLS on the host with a reverse
	// proxy that obtains a wildcard certificate through a DNS challenge.
	ModeReverseProxy DeployMode = "reverse-proxy"

	// ModeTunnel exposes the host through an outbound tunnel to the
	// routing edge; no inbound TLS entrypoint is opened.
	ModeTunnel DeployMode = "tunnel"
)

// DefaultDeployMode is used when no mode is specified.
const DefaultDeployMode = ModeReverseProxy

// Modes lists every supported mode in display order.
var Modes = []DeployMode{ModeReverseProxy, ModeTunnel}

// ParseDeployMode converts user input into a DeployMode. An empty string
// yields DefaultDeployMode.
func ParseDeployMode(s string) (DeployMode, error) {
	switch DeployMode(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return DefaultDeployMode, nil
	case ModeReverseProxy:
		return ModeReverseProxy, nil
	case ModeTunnel:
		return ModeTunnel, nil
	}
	return "", fmt.Errorf("%w: unknown deploy mode %q (valid: %s, %s)", ErrInvalidConfig, s, ModeReverseProxy, ModeTunnel)
}

func (m DeployMode) String() string { return string(m) }
