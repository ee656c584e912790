package dns

import (
	"fmt"
	"strings"

	"github.com/ben-haas/clawhouse/cmd/commands/cfflags"
	"github.com/ben-haas/clawhouse/internal/cloudflare"
	"github.com/ben-haas/clawhouse/internal/domain"
	"github.com/ben-haas/clawhouse/internal/history"

	"github.com/spf13/cobra"
)

// CreateCommand returns the "dns create" command.
func CreateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Build a request that creates a CNAME record",
		Long: `Build the request that creates a CNAME record.

Records are proxied with automatic TTL unless told otherwise.

Examples:
  clawhouse dns create --name app.example.com --target 6ff42ae2.cfargotunnel.com
  clawhouse dns create --name app.example.com --target origin.example.net --proxied=false --ttl 300`,
		Args:        cobra.NoArgs,
		RunE:        runCreate,
		Annotations: map[string]string{history.AnnotationArtifact: "request"},
	}

	cfflags.AddZoneFlags(cmd)
	cmd.Flags().String("name", "", "Record name (required)")
	cmd.Flags().String("target", "", "CNAME target (required)")
	cmd.Flags().Bool("proxied", true, "Proxy traffic through the edge")
	cmd.Flags().Int("ttl", cloudflare.AutoTTL, "TTL in seconds (1 = automatic)")

	return cmd
}

func runCreate(cmd *cobra.Command, args []string) error {
	cfg, err := cfflags.ZoneConfig(cmd)
	if err != nil {
		return err
	}

	name, _ := cmd.Flags().GetString("name")
	target, _ := cmd.Flags().GetString("target")
	proxied, _ := cmd.Flags().GetBool("proxied")
	ttl, _ := cmd.Flags().GetInt("ttl")

	rec := cloudflare.DNSRecord{
		Name:    strings.TrimSpace(name),
		Target:  strings.TrimSpace(target),
		Proxied: &proxied,
		TTL:     ttl,
	}
	if rec.Name == "" || rec.Target == "" {
		return fmt.Errorf("%w: --name and --target are required", domain.ErrInvalidConfig)
	}
	if ttl < 0 {
		return fmt.Errorf("%w: --ttl must not be negative", domain.ErrInvalidConfig)
	}

	return cfflags.Print(cmd, cloudflare.BuildCreateDNSRecordRequest(cfg, rec))
}
