// Package history implements commands for the local render history.
package history

import "github.com/spf13/cobra"

// NewCommand returns the "history" parent command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "View and manage render history",
		Long: "View a local record of rendered artifacts and prune old entries.\n\n" +
			"Only a SHA-256 digest of each artifact is kept, never its contents.\n" +
			"History is stored locally in ~/.config/clawhouse/clawhouse.db.\n" +
			"Set CLAWHOUSE_DISABLE_HISTORY=1 to stop recording.",
		SilenceUsage: true,
	}

	cmd.AddCommand(ListCommand())
	cmd.AddCommand(PruneCommand())

	return cmd
}
