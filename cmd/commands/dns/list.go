package dns

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"text/tabwriter"

	"github.com/ben-haas/clawhouse/cmd/commands/cfflags"
	"github.com/ben-haas/clawhouse/internal/cloudflare"
	"github.com/ben-haas/clawhouse/internal/history"

	"github.com/spf13/cobra"
)

// ListCommand returns the "dns list" command.
func ListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Build a request that lists DNS records, or decode its response",
		Long: `Build the request that lists the zone's DNS records, optionally filtered
by exact name.

With --response, decode a saved response body instead and print the
records as a table (or JSON with -o json).

Examples:
  clawhouse dns list --name '*.example.com' -o curl
  clawhouse dns list -o curl | sh > records.json
  clawhouse dns list --response records.json`,
		Args:        cobra.NoArgs,
		RunE:        runList,
		Annotations: map[string]string{history.AnnotationArtifact: "request"},
	}

	cfflags.AddZoneFlags(cmd)
	cmd.Flags().String("name", "", "Only records with this exact name")
	cmd.Flags().String("response", "", "Decode this saved list response instead of building a request")
	cmd.Flags().Int("status", http.StatusOK, "HTTP status the --response body was returned with")

	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	if path, _ := cmd.Flags().GetString("response"); path != "" {
		return printRecords(cmd, path)
	}

	cfg, err := cfflags.ZoneConfig(cmd)
	if err != nil {
		return err
	}
	name, _ := cmd.Flags().GetString("name")
	return cfflags.Print(cmd, cloudflare.BuildListDNSRecordsRequest(cfg, name))
}

func printRecords(cmd *cobra.Command, path string) error {
	body, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	status, _ := cmd.Flags().GetInt("status")

	records, err := cloudflare.DecodeDNSRecords(status, body)
	if err != nil {
		return err
	}

	if output, _ := cmd.Flags().GetString("output"); output == cloudflare.FormatJSON && cmd.Flags().Changed("output") {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(records)
	}

	if len(records) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No DNS records found.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTYPE\tNAME\tCONTENT\tPROXIED\tTTL")
	fmt.Fprintln(w, "--\t----\t----\t-------\t-------\t---")
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%t\t%s\n", r.ID, r.Type, r.Name, r.Content, r.Proxied, formatTTL(r.TTL))
	}
	return w.Flush()
}

func formatTTL(ttl int) string {
	if ttl == cloudflare.AutoTTL {
		return "auto"
	}
	return fmt.Sprintf("%d", ttl)
}
