package tunnel

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/ben-haas/clawhouse/cmd/commands/cfflags"
	"github.com/ben-haas/clawhouse/internal/cloudflare"
	"github.com/ben-haas/clawhouse/internal/domain"
	"github.com/ben-haas/clawhouse/internal/history"
	"github.com/ben-haas/clawhouse/internal/ingress"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// RouteCommand returns the "tunnel route" command.
func RouteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "route",
		Short: "Build the request that routes a hostname through a tunnel",
		Long: `Build the PUT request that adds or replaces one ingress rule in a
remotely managed tunnel's configuration.

Pass the current configuration (the body of a GET on the same tunnel) with
--current; the new rule is merged into it so existing routes survive.
Without --current, the request carries only the new rule and the default
catch-all. Use --print-get to obtain the GET request first.

Examples:
  clawhouse tunnel route --tunnel-id ID --print-get -o curl | sh > current.json
  clawhouse tunnel route --tunnel-id ID --current current.json \
      --hostname app.example.com --service http://traefik:80 -o curl`,
		Args:        cobra.NoArgs,
		RunE:        runRoute,
		Annotations: map[string]string{history.AnnotationArtifact: "request"},
	}

	cfflags.AddTunnelFlags(cmd)
	cmd.Flags().String("hostname", "", "Hostname to route (omit for a catch-all)")
	cmd.Flags().String("service", "", "Origin service, e.g. http://traefik:80 or http_status:404")
	cmd.Flags().String("path", "", "Optional path regex")
	cmd.Flags().String("current", "", "File holding the current tunnel configuration response")
	cmd.Flags().Int("status", http.StatusOK, "HTTP status the --current response was returned with")
	cmd.Flags().Bool("print-get", false, "Print the GET request for the current configuration instead")

	return cmd
}

func runRoute(cmd *cobra.Command, args []string) error {
	cfg, err := cfflags.TunnelConfig(cmd)
	if err != nil {
		return err
	}

	if printGet, _ := cmd.Flags().GetBool("print-get"); printGet {
		return cfflags.Print(cmd, cloudflare.BuildGetTunnelConfigRequest(cfg))
	}

	hostname, _ := cmd.Flags().GetString("hostname")
	service, _ := cmd.Flags().GetString("service")
	path, _ := cmd.Flags().GetString("path")
	rule := ingress.Rule{
		Hostname: strings.TrimSpace(hostname),
		Service:  strings.TrimSpace(service),
		Path:     strings.TrimSpace(path),
	}
	if rule.Service == "" {
		return fmt.Errorf("%w: --service is required", domain.ErrInvalidConfig)
	}

	currentPath, _ := cmd.Flags().GetString("current")
	if currentPath == "" {
		log.Debug().Str("tunnel_id", cfg.TunnelID).Msg("no current configuration given, publishing a fresh table")
		return cfflags.Print(cmd, cloudflare.BuildPutTunnelConfigRequest(cfg, ingress.Merge(nil, rule)))
	}

	body, err := os.ReadFile(currentPath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", currentPath, err)
	}
	status, _ := cmd.Flags().GetInt("status")

	req, err := cloudflare.BuildIngressUpdate(cfg, status, body, rule)
	if err != nil {
		return err
	}
	return cfflags.Print(cmd, req)
}
