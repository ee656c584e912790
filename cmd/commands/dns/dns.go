// Package dns implements commands that build Cloudflare DNS record requests.
package dns

import "github.com/spf13/cobra"

// NewCommand returns the top-level "dns" Cobra command with all subcommands attached.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dns",
		Short: "Build Cloudflare DNS record requests",
		Long: `Build the Cloudflare API requests that manage DNS records for instance
hosts. Requests are printed as JSON descriptors or curl commands; nothing
is sent.

The API token is read from --api-token or $CLOUDFLARE_API_TOKEN, and the
zone from --zone-id or the zone-id config key.`,
	}

	cmd.AddCommand(WildcardCommand())
	cmd.AddCommand(CreateCommand())
	cmd.AddCommand(ListCommand())
	cmd.AddCommand(DeleteCommand())

	return cmd
}
