// Package urls implements the command that prints an instance's addresses.
package urls

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ben-haas/clawhouse/internal/compose"
	"github.com/ben-haas/clawhouse/internal/config"
	"github.com/ben-haas/clawhouse/internal/domain"
	"github.com/ben-haas/clawhouse/internal/history"
	"github.com/ben-haas/clawhouse/internal/termtoken"
	"github.com/ben-haas/clawhouse/internal/tui/styles"
	"github.com/ben-haas/clawhouse/internal/urls"
	"github.com/ben-haas/clawhouse/internal/util"

	"github.com/spf13/cobra"
)

// SecretEnv supplies --secret when the flag is not given.
const SecretEnv = "CLAWHOUSE_TERMINAL_SECRET"

// now is swapped out in tests.
var now = time.Now

// NewCommand returns the "urls" command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "urls <instance-id>",
		Short: "Print an instance's hostname and URLs",
		Long: `Print the hostname, wildcard domain, primary URL and terminal URL of an
instance.

With --host-shard, the instance lives under a per-host wildcard
(<prefix><id>.<shard>.<subdomain>.<base-domain>); without it, directly
under the base domain.

The terminal URL carries --token, or a token minted from --secret (or
$CLAWHOUSE_TERMINAL_SECRET) valid for --ttl. The secret is the forward-auth
shared secret of the host.

Examples:
  clawhouse urls abc123 --base-domain example.com --secret "$SECRET"
  clawhouse urls abc123 --base-domain example.com --host-shard h1 -o json`,
		Args:        cobra.ExactArgs(1),
		RunE:        runURLs,
		Annotations: map[string]string{history.AnnotationArtifact: "urls"},
	}

	cmd.Flags().String("base-domain", "", "Registered domain (default from config base-domain)")
	cmd.Flags().String("host-shard", "", "Per-host shard label")
	cmd.Flags().String("subdomain", "", "Label between shard and base domain (default from config, then \""+urls.DefaultSubdomain+"\")")
	cmd.Flags().String("instance-prefix", "", "Hostname prefix (default from config, then \""+urls.DefaultInstancePrefix+"\")")
	cmd.Flags().String("token", "", "Terminal token to embed")
	cmd.Flags().String("secret", "", "Shared secret to mint a terminal token with (default $"+SecretEnv+")")
	cmd.Flags().Duration("ttl", compose.DefaultSharedSecretTTLSeconds*time.Second, "Lifetime of a minted token")
	cmd.Flags().StringP("output", "o", "text", "Output format: text or json")

	return cmd
}

func runURLs(cmd *cobra.Command, args []string) error {
	prefs, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	p := urls.Params{
		InstanceID:     strings.TrimSpace(args[0]),
		BaseDomain:     flagOr(cmd, "base-domain", prefs.BaseDomain),
		HostShard:      flagOr(cmd, "host-shard", ""),
		Subdomain:      flagOr(cmd, "subdomain", prefs.Subdomain),
		InstancePrefix: flagOr(cmd, "instance-prefix", prefs.InstancePrefix),
		TerminalToken:  flagOr(cmd, "token", ""),
	}
	if err := validate(p); err != nil {
		return err
	}

	if p.TerminalToken == "" {
		if secret := flagOr(cmd, "secret", envSecret()); secret != "" {
			ttl, _ := cmd.Flags().GetDuration("ttl")
			host := urls.Resolve(p).HostName
			if p.TerminalToken, err = termtoken.Generate(secret, host, ttl, now()); err != nil {
				return fmt.Errorf("%w: %v", domain.ErrInvalidConfig, err)
			}
		}
	}

	u := urls.Resolve(p)
	out, err := render(cmd, u)
	if err != nil {
		return err
	}
	cmd.SetContext(history.WithMetadata(cmd.Context(), history.Metadata{Digest: history.Digest(out)}))
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

func validate(p urls.Params) error {
	if err := util.ValidateLabel(p.InstanceID); err != nil {
		return fmt.Errorf("%w: instance id: %v", domain.ErrInvalidConfig, err)
	}
	if err := util.ValidateDomain(p.BaseDomain); err != nil {
		return fmt.Errorf("%w: --base-domain: %v", domain.ErrInvalidConfig, err)
	}
	for name, label := range map[string]string{"--host-shard": p.HostShard, "--subdomain": p.Subdomain} {
		if label == "" {
			continue
		}
		if err := util.ValidateLabel(label); err != nil {
			return fmt.Errorf("%w: %s: %v", domain.ErrInvalidConfig, name, err)
		}
	}
	return nil
}

func render(cmd *cobra.Command, u urls.InstanceURLs) (string, error) {
	output, _ := cmd.Flags().GetString("output")
	switch output {
	case "json":
		data, err := json.MarshalIndent(u, "", "  ")
		if err != nil {
			return "", err
		}
		return string(data), nil
	case "", "text":
		const w = 10
		lines := []string{
			styles.Field("Host", u.HostName, w),
			styles.Field("Wildcard", u.WildcardDomain, w),
			styles.Field("Primary", styles.AccentText.Render(u.PrimaryURL), w),
		}
		if strings.HasSuffix(u.TerminalURL, "token=") {
			lines = append(lines, styles.Field("Terminal", styles.MutedText.Render("(no token; pass --token or --secret)"), w))
		} else {
			lines = append(lines, styles.Field("Terminal", styles.AccentText.Render(u.TerminalURL), w))
		}
		return strings.Join(lines, "\n"), nil
	default:
		return "", fmt.Errorf("%w: unsupported output format %q", domain.ErrInvalidConfig, output)
	}
}

func envSecret() string {
	return strings.TrimSpace(os.Getenv(SecretEnv))
}

func flagOr(cmd *cobra.Command, name, fallback string) string {
	v, _ := cmd.Flags().GetString(name)
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return strings.TrimSpace(fallback)
}
