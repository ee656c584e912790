package history

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/ben-haas/clawhouse/internal/history"
	"github.com/ben-haas/clawhouse/internal/tui/styles"

	"github.com/spf13/cobra"
)

func ListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent renders",
		Long: `List recent renders stored locally.

The digest column lets you check whether a file on a host is the one
clawhouse rendered: compare it with "sha256sum provision.sh".

Examples:
  clawhouse history list
  clawhouse history list --limit 50
  clawhouse history list --command "clawhouse script"
  clawhouse history list -o json`,
		RunE:         runList,
		SilenceUsage: true,
	}

	cmd.Flags().Int("limit", 25, "Number of entries to display")
	cmd.Flags().String("command", "", "Filter by exact command path")
	cmd.Flags().StringP("output", "o", "table", "Output format: table or json")

	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	if limit <= 0 {
		return fmt.Errorf("limit must be greater than 0")
	}

	filter, _ := cmd.Flags().GetString("command")
	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		output = "table"
	}
	if output != "table" && output != "json" {
		return fmt.Errorf("unsupported output format %q", output)
	}

	repo, err := history.Open()
	if err != nil {
		return err
	}
	defer repo.Close()

	var entries []history.Entry
	if filter != "" {
		entries, err = repo.ListByCommand(filter, limit)
	} else {
		entries, err = repo.List(limit)
	}
	if err != nil {
		return err
	}

	if output == "json" {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(entries)
	}

	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No renders recorded.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tCOMMAND\tMODE\tARTIFACT\tOUTCOME\tDURATION\tDIGEST")
	fmt.Fprintln(w, "----\t-------\t----\t--------\t-------\t--------\t------")
	for _, entry := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			entry.Timestamp.Local().Format("2006-01-02 15:04:05"),
			entry.Command,
			dash(entry.Mode),
			dash(entry.Artifact),
			styles.OutcomeIndicator(entry.Outcome),
			formatDuration(entry.DurationMs),
			shortDigest(entry),
		)
	}
	return w.Flush()
}

// shortDigest shows the first 12 hex digits, or the error for failed renders.
func shortDigest(entry history.Entry) string {
	if entry.Outcome == history.OutcomeError && entry.Detail != "" {
		return entry.Detail
	}
	if len(entry.Digest) > 12 {
		return entry.Digest[:12]
	}
	return dash(entry.Digest)
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func formatDuration(ms int64) string {
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}
	d := time.Duration(ms) * time.Millisecond
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return fmt.Sprintf("%dm", int(d.Minutes()))
}
