package tunnel

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/ben-haas/clawhouse/internal/cloudflared"
	"github.com/ben-haas/clawhouse/internal/history"

	"github.com/spf13/cobra"
)

// DecodeCommand returns the "tunnel decode" command.
func DecodeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode <token|->",
		Short: "Convert a tunnel token into a credentials file",
		Long: `Decode a tunnel connection token into the JSON credentials file the
tunnel client reads. Pass "-" to read the token from stdin.

Examples:
  clawhouse tunnel decode "$TUNNEL_TOKEN" > credentials.json
  pass show cf/tunnel | clawhouse tunnel decode -`,
		Args: cobra.ExactArgs(1),
		RunE: runDecode,
		Annotations: map[string]string{
			history.AnnotationArtifact:   "credentials",
			history.AnnotationSecretArgs: "true",
		},
	}

	return cmd
}

func runDecode(cmd *cobra.Command, args []string) error {
	token := args[0]
	if token == "-" {
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("failed to read token from stdin: %w", err)
		}
		token = strings.TrimSpace(line)
	}

	creds, err := cloudflared.DecodeToken(token)
	if err != nil {
		return err
	}

	out := cloudflared.EncodeCredentialsFile(creds)
	cmd.SetContext(history.WithMetadata(cmd.Context(), history.Metadata{Digest: history.Digest(out)}))
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}
