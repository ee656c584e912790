// Package deploy implements the commands that render a host's deployment
// artifacts from a deployment file.
package deploy

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ben-haas/clawhouse/internal/config"
	"github.com/ben-haas/clawhouse/internal/history"
	"github.com/ben-haas/clawhouse/internal/provision"
	"github.com/ben-haas/clawhouse/internal/tui"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// errNoDeployment is returned when no file is given and no wizard can run.
var errNoDeployment = errors.New("--file is required when not running in a terminal")

// isInteractive reports whether the wizard may prompt. Tests override it.
var isInteractive = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stderr.Fd()))
}

// runWizard is swapped out in tests.
var runWizard = tui.RunDeployWizard

func addDeploymentFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("file", "f", "", "Deployment file (YAML, ${VAR} references are expanded)")
	cmd.Flags().StringP("output", "o", "", "Write to this file instead of stdout")
}

// loadInput resolves the deployment from --file, or from the wizard when
// no file is given and a terminal is attached. Flags override the file,
// which overrides saved preferences.
func loadInput(cmd *cobra.Command, allowWizard bool) (provision.Input, error) {
	prefs, err := config.Load()
	if err != nil {
		return provision.Input{}, fmt.Errorf("failed to load config: %w", err)
	}

	path, _ := cmd.Flags().GetString("file")
	path = strings.TrimSpace(path)

	var d *config.Deployment
	switch {
	case path != "":
		log.Debug().Str("file", path).Msg("loading deployment file")
		d, err = config.LoadDeployment(path)
	case allowWizard && isInteractive():
		d, err = runWizard(config.Deployment{ComposePath: prefs.ComposePath, RuntimeImage: prefs.RuntimeImage})
	default:
		return provision.Input{}, errNoDeployment
	}
	if err != nil {
		return provision.Input{}, err
	}

	in, err := d.Input(prefs)
	if err != nil {
		return provision.Input{}, err
	}

	if v, _ := cmd.Flags().GetString("compose-path"); v != "" {
		in.ComposePath = v
	}
	if v, _ := cmd.Flags().GetString("runtime-image"); v != "" {
		in.RuntimeImage = v
	}
	return in, nil
}

// writeArtifact prints content to stdout or --output and attaches its
// digest to the command context for history.
func writeArtifact(cmd *cobra.Command, in provision.Input, content string) error {
	cmd.SetContext(history.WithMetadata(cmd.Context(), history.Metadata{
		Mode:   string(in.Mode()),
		Digest: history.Digest(content),
	}))

	out, _ := cmd.Flags().GetString("output")
	if out == "" {
		fmt.Fprintln(cmd.OutOrStdout(), content)
		return nil
	}

	// Artifacts embed secrets.
	if err := os.WriteFile(out, []byte(content+"\n"), 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}
	log.Info().Str("path", out).Int("bytes", len(content)+1).Msg("artifact written")
	fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", out)
	return nil
}
