package config

import (
	"fmt"
	"path"
	"strings"

	"github.com/ben-haas/clawhouse/internal/config"
	"github.com/ben-haas/clawhouse/internal/util"

	"github.com/spf13/cobra"
)

// SetCommand returns the "config set" command.
func SetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: "Set a persistent configuration value. Pass an empty value to unset.\n\n" +
			config.KeysHelp() +
			"\nExamples:\n" +
			"  clawhouse config set base-domain example.com\n" +
			"  clawhouse config set zone-id 023e105f4ecef8ad9ca31a8372d0c353",
		Args: cobra.ExactArgs(2),
		Run:  runSet,
	}

	return cmd
}

// validators maps key names to optional pre-save validation functions.
// Keys not present in this map have no extra validation.
var validators = map[string]func(value string) error{
	"base-domain":     util.ValidateDomain,
	"subdomain":       util.ValidateLabel,
	"instance-prefix": validatePrefix,
	"compose-path":    validateAbsPath,
}

// caseInsensitive lists keys whose values are lowercased before saving.
var caseInsensitive = map[string]bool{
	"base-domain":     true,
	"subdomain":       true,
	"instance-prefix": true,
}

func runSet(cmd *cobra.Command, args []string) {
	key := util.NormalizeKey(args[0])
	value := strings.TrimSpace(args[1])

	spec := config.Lookup(key)
	if spec == nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: unknown configuration key %q\n", args[0])
		fmt.Fprintf(cmd.ErrOrStderr(), "Valid keys: %s\n", strings.Join(config.KeyNames(), ", "))
		return
	}

	if caseInsensitive[spec.Name] {
		value = util.NormalizeKey(value)
	}

	if validate, ok := validators[spec.Name]; ok && value != "" {
		if err := validate(value); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error: invalid %s: %v\n", spec.Name, err)
			return
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		return
	}

	spec.Set(cfg, value)
	if err := cfg.Save(); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		return
	}

	if value == "" {
		fmt.Fprintf(cmd.OutOrStdout(), "%s unset\n", spec.Name)
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s set to %q\n", spec.Name, value)
}

// validatePrefix accepts a prefix that still yields a valid label when an
// instance id is appended.
func validatePrefix(prefix string) error {
	return util.ValidateLabel(prefix + "x")
}

func validateAbsPath(p string) error {
	if !path.IsAbs(p) {
		return fmt.Errorf("path %q must be absolute", p)
	}
	return nil
}
