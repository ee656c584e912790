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

// DeleteCommand returns the "dns delete" command.
func DeleteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <record-id>",
		Short: "Build a request that deletes a DNS record",
		Long: `Build the request that deletes one DNS record by id. Find ids with
"clawhouse dns list --response".

Examples:
  clawhouse dns delete 372e67954025e0ba6aaa6d586b9e0b59 -o curl`,
		Args:        cobra.ExactArgs(1),
		RunE:        runDelete,
		Annotations: map[string]string{history.AnnotationArtifact: "request"},
	}

	cfflags.AddZoneFlags(cmd)
	return cmd
}

func runDelete(cmd *cobra.Command, args []string) error {
	id := strings.TrimSpace(args[0])
	if id == "" {
		return fmt.Errorf("%w: record id is required", domain.ErrInvalidConfig)
	}

	cfg, err := cfflags.ZoneConfig(cmd)
	if err != nil {
		return err
	}
	return cfflags.Print(cmd, cloudflare.BuildDeleteDNSRecordRequest(cfg, id))
}
