// Package tui provides an interactive wizard for describing a deployment
// when no deployment file is given.
package tui

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ben-haas/clawhouse/internal/compose"
	"github.com/ben-haas/clawhouse/internal/config"
	"github.com/ben-haas/clawhouse/internal/domain"
	"github.com/ben-haas/clawhouse/internal/util"

	"github.com/charmbracelet/huh"
)

// ErrAborted is returned when the user cancels the wizard.
var ErrAborted = errors.New("deployment wizard aborted by user")

// RunDeployWizard walks the user through the deploy mode and its
// parameters and returns the resulting deployment. Fields set in prefill
// are offered as defaults.
func RunDeployWizard(prefill config.Deployment) (*config.Deployment, error) {
	accessible := os.Getenv("ACCESSIBLE") != ""

	d := prefill
	if d.Mode == "" {
		d.Mode = string(domain.DefaultDeployMode)
	}

	// ── Step 1: Mode ──────────────────────────────────────────────────────────

	modeField := huh.NewSelect[string]().
		Title("Deploy mode").
		Options(modeOptions()...).
		Value(&d.Mode)

	if err := runForm(accessible, huh.NewGroup(modeField)); err != nil {
		return nil, err
	}

	// ── Step 2: Mode parameters ───────────────────────────────────────────────

	switch domain.DeployMode(d.Mode) {
	case domain.ModeTunnel:
		in := compose.TunnelInput{}
		if d.Tunnel != nil {
			in = *d.Tunnel
		}
		if err := runForm(accessible, tunnelGroups(&in)...); err != nil {
			return nil, err
		}
		d.Tunnel, d.ReverseProxy = &in, nil
	default:
		in := compose.ReverseProxyInput{}
		if d.ReverseProxy != nil {
			in = *d.ReverseProxy
		}
		if err := runForm(accessible, reverseProxyGroups(&in)...); err != nil {
			return nil, err
		}
		d.ReverseProxy, d.Tunnel = &in, nil
	}

	// ── Step 3: Host ──────────────────────────────────────────────────────────

	runtimeField := huh.NewInput().
		Title("Runtime image (optional)").
		Description("Pre-pulled after the stack is up so the first instance starts quickly.").
		Placeholder("ghcr.io/openclaw/runtime:latest").
		Value(&d.RuntimeImage)

	if err := runForm(accessible, huh.NewGroup(runtimeField)); err != nil {
		return nil, err
	}

	// ── Step 4: Summary + Confirm ─────────────────────────────────────────────

	confirm := false
	summaryNote := huh.NewNote().
		Title("Deployment summary").
		DescriptionFunc(func() string { return buildSummary(d) }, &d)

	confirmField := huh.NewConfirm().
		Title("Render the provisioning script?").
		Value(&confirm)

	if err := runForm(accessible, huh.NewGroup(summaryNote, confirmField)); err != nil {
		return nil, err
	}
	if !confirm {
		return nil, ErrAborted
	}

	d.RuntimeImage = strings.TrimSpace(d.RuntimeImage)
	return &d, nil
}

func modeOptions() []huh.Option[string] {
	return []huh.Option[string]{
		huh.NewOption("Reverse proxy  (public TLS entrypoint, wildcard certificate)", string(domain.ModeReverseProxy)),
		huh.NewOption("Tunnel  (outbound only, no open ports)", string(domain.ModeTunnel)),
	}
}

func reverseProxyGroups(in *compose.ReverseProxyInput) []*huh.Group {
	return []*huh.Group{
		huh.NewGroup(
			huh.NewInput().
				Title("ACME account email").
				Placeholder("you@example.com").
				Value(&in.ACMEEmail).
				Validate(huh.ValidateNotEmpty()),
			huh.NewInput().
				Title("Wildcard domain").
				Description("The certificate covers this name and *.<name>.\nExample: h1.openclaw.example.com").
				Value(&in.WildcardDomain).
				Validate(validateDomain),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("DNS provider token").
				Description("Used for the DNS-01 challenge.").
				EchoMode(huh.EchoModePassword).
				Value(&in.DNSProviderToken).
				Validate(huh.ValidateNotEmpty()),
			huh.NewInput().
				Title("DNS provider team id (optional)").
				Value(&in.DNSProviderTeamID),
			huh.NewConfirm().
				Title("Expose the proxy dashboard on :" + strconv.Itoa(compose.DashboardPort) + "?").
				Value(&in.EnableDashboard),
		),
	}
}

func tunnelGroups(in *compose.TunnelInput) []*huh.Group {
	return []*huh.Group{
		huh.NewGroup(
			huh.NewInput().
				Title("Tunnel token").
				Description("Leave blank to use credentials already on the host by tunnel id.").
				EchoMode(huh.EchoModePassword).
				Value(&in.TunnelToken),
			huh.NewInput().
				Title("Tunnel id").
				Description("Only used when no token is given.").
				Value(&in.TunnelID).
				Validate(func(v string) error {
					if strings.TrimSpace(in.TunnelToken) == "" && strings.TrimSpace(v) == "" {
						return errors.New("a tunnel token or tunnel id is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Wildcard domain (optional)").
				Description("Seeds the initial ingress table with *.<domain>.").
				Value(&in.WildcardDomain).
				Validate(func(v string) error {
					if strings.TrimSpace(v) == "" {
						return nil
					}
					return validateDomain(v)
				}),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Forward-auth shared secret").
				EchoMode(huh.EchoModePassword).
				Value(&in.SharedSecret).
				Validate(huh.ValidateNotEmpty()),
			huh.NewConfirm().
				Title("Expose the proxy dashboard on :" + strconv.Itoa(compose.DashboardPort) + "?").
				Value(&in.EnableDashboard),
		),
	}
}

func validateDomain(v string) error {
	return util.ValidateDomain(strings.TrimSpace(v))
}

// ── Summary ───────────────────────────────────────────────────────────────────

func buildSummary(d config.Deployment) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Mode:           %s\n", d.Mode)

	switch {
	case d.Tunnel != nil:
		t := d.Tunnel
		if t.UsesToken() {
			fmt.Fprintf(&b, "Tunnel:         token (inline)\n")
		} else {
			fmt.Fprintf(&b, "Tunnel:         %s (host credentials)\n", t.TunnelID)
		}
		fmt.Fprintf(&b, "Wildcard:       %s\n", orNone(t.WildcardDomain))
		fmt.Fprintf(&b, "Dashboard:      %s\n", onOff(t.EnableDashboard))
	case d.ReverseProxy != nil:
		rp := d.ReverseProxy
		fmt.Fprintf(&b, "ACME email:     %s\n", rp.ACMEEmail)
		fmt.Fprintf(&b, "Wildcard:       %s\n", orNone(rp.WildcardDomain))
		fmt.Fprintf(&b, "Dashboard:      %s\n", onOff(rp.EnableDashboard))
	}
	fmt.Fprintf(&b, "Runtime image:  %s\n", orNone(strings.TrimSpace(d.RuntimeImage)))

	fmt.Fprintf(&b, "\nSetup notes:\n")
	fmt.Fprintf(&b, "  - Docker and the compose plugin are installed if missing\n")
	if d.Tunnel != nil {
		fmt.Fprintf(&b, "  - No inbound ports are opened; traffic arrives through the tunnel\n")
		fmt.Fprintf(&b, "  - The ingress file is only written on first run\n")
	} else {
		fmt.Fprintf(&b, "  - Port %d must be reachable from the internet\n", compose.DefaultEntrypointPort)
	}
	fmt.Fprintf(&b, "  - DNS records are not created by the script\n")

	return strings.TrimRight(b.String(), "\n")
}

func orNone(s string) string {
	if s == "" {
		return "None"
	}
	return s
}

func onOff(b bool) string {
	if b {
		return "enabled"
	}
	return "disabled"
}

// ── Form runner ───────────────────────────────────────────────────────────────

func runForm(accessible bool, groups ...*huh.Group) error {
	err := huh.NewForm(groups...).WithAccessible(accessible).Run()
	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return ErrAborted
		}
		return err
	}
	return nil
}
