package config

import (
	"fmt"
	"strings"

	"github.com/ben-haas/clawhouse/internal/config"
	"github.com/ben-haas/clawhouse/internal/tui/styles"
	"github.com/ben-haas/clawhouse/internal/util"

	"github.com/spf13/cobra"
)

// GetCommand returns the "config get" command.
func GetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get [key]",
		Short: "Get a configuration value",
		Long: "Get a persistent configuration value.\n\n" +
			"If no key is provided, all keys and their values are listed.\n\n" +
			config.KeysHelp() +
			"\nExamples:\n" +
			"  clawhouse config get                 # list all values\n" +
			"  clawhouse config get base-domain     # print a single value",
		Args:         cobra.MaximumNArgs(1),
		RunE:         runGet,
		SilenceUsage: true,
	}

	return cmd
}

func runGet(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// No key: list all values.
	if len(args) == 0 {
		width := 0
		for _, spec := range config.Keys {
			width = max(width, len(spec.Name))
		}
		for _, spec := range config.Keys {
			value := spec.Get(cfg)
			if value == "" {
				value = styles.MutedText.Render("(not set)")
			}
			fmt.Fprintln(cmd.OutOrStdout(), styles.Field(spec.Name, value, width+1))
		}
		return nil
	}

	key := util.NormalizeKey(args[0])
	spec := config.Lookup(key)
	if spec == nil {
		return fmt.Errorf("unknown configuration key %q (valid: %s)", args[0], strings.Join(config.KeyNames(), ", "))
	}

	value := spec.Get(cfg)
	if value == "" {
		fmt.Fprintln(cmd.OutOrStdout(), "not set")
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), value)
	}
	return nil
}
