package config

import (
	"github.com/ben-haas/clawhouse/internal/config"

	"github.com/spf13/cobra"
)

// NewCommand returns the "config" parent command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage clawhouse configuration",
		Long: "View and modify persistent clawhouse settings.\n\n" +
			"Configuration is stored at ~/.config/clawhouse/config.json.\n" +
			"Saved values are used when the matching flag is not given.\n\n" +
			config.KeysHelp(),
	}

	cmd.AddCommand(SetCommand())
	cmd.AddCommand(GetCommand())

	return cmd
}
