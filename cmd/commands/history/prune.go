package history

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ben-haas/clawhouse/internal/history"

	"github.com/spf13/cobra"
)

func PruneCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete history entries older than a duration",
		Long: `Delete history entries older than a duration (90 days by default).

With --keep-digests the latest entry of every rendered artifact survives,
so a digest found on a host can still be traced to the render that
produced it.

Examples:
  clawhouse history prune
  clawhouse history prune --older-than 30d --keep-digests
  clawhouse history prune --older-than 72h --failed-only`,
		RunE:         runPrune,
		SilenceUsage: true,
	}

	retention := fmt.Sprintf("%dd", int64(history.DefaultRetention/(24*time.Hour)))
	cmd.Flags().String("older-than", retention, "Remove entries older than this duration (e.g. 30d, 72h)")
	cmd.Flags().Bool("failed-only", false, "Only remove renders that failed")
	cmd.Flags().Bool("keep-digests", false, "Keep the latest entry for each artifact digest")

	return cmd
}

func runPrune(cmd *cobra.Command, args []string) error {
	olderThanRaw, _ := cmd.Flags().GetString("older-than")
	olderThanRaw = strings.TrimSpace(olderThanRaw)
	if olderThanRaw == "" {
		return fmt.Errorf("--older-than is required")
	}

	olderThan, err := parseDuration(olderThanRaw)
	if err != nil {
		return err
	}
	failedOnly, _ := cmd.Flags().GetBool("failed-only")
	keepDigests, _ := cmd.Flags().GetBool("keep-digests")

	repo, err := history.Open()
	if err != nil {
		return err
	}
	defer repo.Close()

	removed, err := repo.PruneWith(history.PruneOptions{
		OlderThan:   olderThan,
		FailedOnly:  failedOnly,
		KeepDigests: keepDigests,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Removed %d history entr(y/ies).\n", removed)
	return nil
}

func parseDuration(input string) (time.Duration, error) {
	if days, ok := strings.CutSuffix(input, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", input)
		}
		if n < 0 {
			return 0, fmt.Errorf("duration must be positive")
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}

	d, err := time.ParseDuration(input)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", input)
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must be positive")
	}
	return d, nil
}
