// Package tunnel implements commands for the outbound tunnel client: token
// decoding, client configuration and ingress routing.
package tunnel

import "github.com/spf13/cobra"

// NewCommand returns the "tunnel" parent command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tunnel",
		Short: "Render tunnel client files and ingress updates",
		Long: `Render the files the tunnel client reads and the API request that
routes a hostname through an existing tunnel.

Nothing here contacts the tunnel or the API; feed the printed request to
curl or your own tooling.`,
	}

	cmd.AddCommand(DecodeCommand())
	cmd.AddCommand(ConfigCommand())
	cmd.AddCommand(RouteCommand())

	return cmd
}
