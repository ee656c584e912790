package deploy

import (
	"github.com/ben-haas/clawhouse/internal/history"
	"github.com/ben-haas/clawhouse/internal/provision"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// ScriptCommand returns the "script" command.
func ScriptCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "script",
		Short: "Render the host provisioning script",
		Long: `Render the shell script that provisions a fresh host for one deploy mode.

The script installs Docker and the compose plugin if missing, writes the
mode's prerequisite files and the compose manifest, and starts the stack.
It is safe to re-run; customized daemon and ingress files are preserved.
It never creates DNS records (see "clawhouse dns wildcard").

Without --file, an interactive wizard collects the deployment when running
in a terminal.

Examples:
  clawhouse script -f deploy.yml
  clawhouse script -f deploy.yml -o provision.sh
  clawhouse script                                  # interactive wizard
  ssh root@host 'bash -s' < provision.sh`,
		Args:        cobra.NoArgs,
		RunE:        runScript,
		Annotations: map[string]string{history.AnnotationArtifact: "script"},
	}

	addDeploymentFlags(cmd)
	cmd.Flags().String("compose-path", "", "Host path for the compose manifest (overrides file and config)")
	cmd.Flags().String("runtime-image", "", "Runtime image to pre-pull (overrides file and config)")
	return cmd
}

func runScript(cmd *cobra.Command, args []string) error {
	in, err := loadInput(cmd, true)
	if err != nil {
		return err
	}

	log.Debug().Str("mode", string(in.Mode())).Str("compose_path", in.ComposePath).Msg("rendering provision script")
	script, err := provision.BuildScript(in)
	if err != nil {
		return err
	}
	return writeArtifact(cmd, in, script)
}
