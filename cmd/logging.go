package cmd

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// setupLogging points the global logger at stderr so rendered artifacts on
// stdout stay clean. --verbose wins over --log-level.
func setupLogging(cmd *cobra.Command) error {
	levelName, _ := cmd.Flags().GetString("log-level")
	verbose, _ := cmd.Flags().GetBool("verbose")

	level, err := zerolog.ParseLevel(levelName)
	if err != nil {
		return fmt.Errorf("invalid --log-level %q: %w", levelName, err)
	}
	if verbose {
		level = zerolog.DebugLevel
	}

	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), TimeFormat: time.RFC3339})
	return nil
}
