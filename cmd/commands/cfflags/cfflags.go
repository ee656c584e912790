// Package cfflags holds the flags shared by commands that build Cloudflare
// API requests, and prints the resulting request descriptors.
package cfflags

import (
	"fmt"
	"os"
	"strings"

	"github.com/ben-haas/clawhouse/internal/cloudflare"
	"github.com/ben-haas/clawhouse/internal/config"
	"github.com/ben-haas/clawhouse/internal/domain"
	"github.com/ben-haas/clawhouse/internal/history"

	"github.com/spf13/cobra"
)

// TokenEnv supplies --api-token when the flag is not given.
const TokenEnv = "CLOUDFLARE_API_TOKEN"

// AddZoneFlags registers --api-token, --zone-id and --output.
func AddZoneFlags(cmd *cobra.Command) {
	addCommon(cmd)
	cmd.Flags().String("zone-id", "", "Cloudflare zone id (default from config zone-id)")
}

// AddTunnelFlags registers --api-token, --account-id, --tunnel-id and --output.
func AddTunnelFlags(cmd *cobra.Command) {
	addCommon(cmd)
	cmd.Flags().String("account-id", "", "Cloudflare account id (default from config account-id)")
	cmd.Flags().String("tunnel-id", "", "Tunnel id")
}

func addCommon(cmd *cobra.Command) {
	cmd.Flags().String("api-token", "", "Cloudflare API token (default $"+TokenEnv+")")
	cmd.Flags().StringP("output", "o", cloudflare.FormatJSON, "Output format: json or curl")
}

// ZoneConfig resolves the zone-scoped flags, falling back to saved
// preferences and the environment.
func ZoneConfig(cmd *cobra.Command) (cloudflare.ZoneConfig, error) {
	prefs, err := config.Load()
	if err != nil {
		return cloudflare.ZoneConfig{}, fmt.Errorf("failed to load config: %w", err)
	}
	cfg := cloudflare.ZoneConfig{
		APIToken: apiToken(cmd),
		ZoneID:   flagOr(cmd, "zone-id", prefs.ZoneID),
	}
	return cfg, require(map[string]string{"--api-token": cfg.APIToken, "--zone-id": cfg.ZoneID})
}

// TunnelConfig resolves the tunnel-scoped flags, falling back to saved
// preferences and the environment.
func TunnelConfig(cmd *cobra.Command) (cloudflare.TunnelConfig, error) {
	prefs, err := config.Load()
	if err != nil {
		return cloudflare.TunnelConfig{}, fmt.Errorf("failed to load config: %w", err)
	}
	cfg := cloudflare.TunnelConfig{
		APIToken:  apiToken(cmd),
		AccountID: flagOr(cmd, "account-id", prefs.AccountID),
		TunnelID:  flagOr(cmd, "tunnel-id", ""),
	}
	return cfg, require(map[string]string{
		"--api-token":  cfg.APIToken,
		"--account-id": cfg.AccountID,
		"--tunnel-id":  cfg.TunnelID,
	})
}

// Print renders req in the --output format and records its digest.
func Print(cmd *cobra.Command, req cloudflare.Request) error {
	format, _ := cmd.Flags().GetString("output")
	out, err := req.Render(format)
	if err != nil {
		return err
	}
	cmd.SetContext(history.WithMetadata(cmd.Context(), history.Metadata{Digest: history.Digest(out)}))
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

func apiToken(cmd *cobra.Command) string {
	return flagOr(cmd, "api-token", os.Getenv(TokenEnv))
}

func flagOr(cmd *cobra.Command, name, fallback string) string {
	v, _ := cmd.Flags().GetString(name)
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return strings.TrimSpace(fallback)
}

func require(values map[string]string) error {
	var missing []string
	for _, name := range []string{"--api-token", "--account-id", "--zone-id", "--tunnel-id"} {
		if v, ok := values[name]; ok && v == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", domain.ErrInvalidConfig, strings.Join(missing, ", "))
	}
	return nil
}
