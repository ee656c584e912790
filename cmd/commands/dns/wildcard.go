package dns

import (
	"fmt"
	"strings"

	"github.com/ben-haas/clawhouse/cmd/commands/cfflags"
	"github.com/ben-haas/clawhouse/internal/cloudflare"
	"github.com/ben-haas/clawhouse/internal/cloudflared"
	"github.com/ben-haas/clawhouse/internal/config"
	"github.com/ben-haas/clawhouse/internal/domain"
	"github.com/ben-haas/clawhouse/internal/history"
	"github.com/ben-haas/clawhouse/internal/util"

	"github.com/spf13/cobra"
)

// WildcardCommand returns the "dns wildcard" command.
func WildcardCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wildcard",
		Short: "Build the wildcard CNAME that routes instances through a tunnel",
		Long: `Build the request that creates a proxied CNAME from *.<wildcard-domain>
to the tunnel's edge hostname. This is the one DNS record tunnel mode
needs; the provisioning script never creates it.

The tunnel is identified by --tunnel-id or by decoding --tunnel-token.
The wildcard domain defaults to the base-domain config key.

Examples:
  clawhouse dns wildcard --wildcard-domain example.com --tunnel-id 6ff42ae2 -o curl
  clawhouse dns wildcard --tunnel-token "$TUNNEL_TOKEN"`,
		Args:        cobra.NoArgs,
		RunE:        runWildcard,
		Annotations: map[string]string{history.AnnotationArtifact: "request"},
	}

	cfflags.AddZoneFlags(cmd)
	cmd.Flags().String("wildcard-domain", "", "Domain whose subdomains route through the tunnel (default from config base-domain)")
	cmd.Flags().String("tunnel-id", "", "Tunnel id")
	cmd.Flags().String("tunnel-token", "", "Tunnel token to take the tunnel id from")

	return cmd
}

func runWildcard(cmd *cobra.Command, args []string) error {
	cfg, err := cfflags.ZoneConfig(cmd)
	if err != nil {
		return err
	}

	tunnelID, err := resolveTunnelID(cmd)
	if err != nil {
		return err
	}

	wildcard, _ := cmd.Flags().GetString("wildcard-domain")
	wildcard = strings.TrimSpace(wildcard)
	if wildcard == "" {
		prefs, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		wildcard = prefs.BaseDomain
	}
	if err := util.ValidateDomain(wildcard); err != nil {
		return fmt.Errorf("%w: --wildcard-domain: %v", domain.ErrInvalidConfig, err)
	}

	cmd.SetContext(history.WithMetadata(cmd.Context(), history.Metadata{Mode: string(domain.ModeTunnel)}))
	return cfflags.Print(cmd, cloudflare.BuildCreateWildcardDNSRecordRequest(cfg, wildcard, tunnelID))
}

func resolveTunnelID(cmd *cobra.Command) (string, error) {
	if token, _ := cmd.Flags().GetString("tunnel-token"); strings.TrimSpace(token) != "" {
		creds, err := cloudflared.DecodeToken(token)
		if err != nil {
			return "", err
		}
		return creds.TunnelID, nil
	}
	id, _ := cmd.Flags().GetString("tunnel-id")
	if id = strings.TrimSpace(id); id == "" {
		return "", fmt.Errorf("%w: --tunnel-id or --tunnel-token is required", domain.ErrInvalidConfig)
	}
	return id, nil
}
