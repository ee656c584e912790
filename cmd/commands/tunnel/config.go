package tunnel

import (
	"fmt"
	"os"
	"strings"

	"github.com/ben-haas/clawhouse/internal/cloudflared"
	"github.com/ben-haas/clawhouse/internal/compose"
	"github.com/ben-haas/clawhouse/internal/domain"
	"github.com/ben-haas/clawhouse/internal/history"
	"github.com/ben-haas/clawhouse/internal/ingress"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// ConfigCommand returns the "tunnel config" command.
func ConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Render the tunnel client configuration file",
		Long: `Render the tunnel client's config.yml: the tunnel id, the credentials
file path inside the container, and the ingress table.

The ingress table comes from --ingress (a YAML list of rules, or a
document with an "ingress" key) or, without it, the default table for
--wildcard-domain. A catch-all is appended when missing.

Examples:
  clawhouse tunnel config --tunnel-id 6ff42ae2 --wildcard-domain example.com
  clawhouse tunnel config --tunnel-id 6ff42ae2 --ingress ingress.yml`,
		Args:        cobra.NoArgs,
		RunE:        runConfig,
		Annotations: map[string]string{history.AnnotationArtifact: "tunnel-config"},
	}

	cmd.Flags().String("tunnel-id", "", "Tunnel id (required)")
	cmd.Flags().String("wildcard-domain", "", "Route *.<domain> to the in-host proxy")
	cmd.Flags().String("ingress", "", "YAML file with the ingress rules")
	_ = cmd.MarkFlagRequired("tunnel-id")

	return cmd
}

func runConfig(cmd *cobra.Command, args []string) error {
	tunnelID, _ := cmd.Flags().GetString("tunnel-id")
	wildcard, _ := cmd.Flags().GetString("wildcard-domain")
	ingressPath, _ := cmd.Flags().GetString("ingress")

	rules := cloudflared.DefaultIngress(strings.TrimSpace(wildcard), compose.ProxyService)
	if ingressPath != "" {
		var err error
		if rules, err = readRules(ingressPath); err != nil {
			return err
		}
	}

	out, err := cloudflared.BuildClientConfig(strings.TrimSpace(tunnelID), rules)
	if err != nil {
		return err
	}
	cmd.SetContext(history.WithMetadata(cmd.Context(), history.Metadata{
		Mode:   string(domain.ModeTunnel),
		Digest: history.Digest(out),
	}))
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

// readRules accepts either a bare list of rules or an ingress document.
func readRules(path string) ([]ingress.Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var doc struct {
		Ingress []ingress.Rule `yaml:"ingress"`
	}
	if err := yaml.Unmarshal(data, &doc); err == nil && len(doc.Ingress) > 0 {
		return doc.Ingress, nil
	}

	var rules []ingress.Rule
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrInvalidConfig, path, err)
	}
	return rules, nil
}
