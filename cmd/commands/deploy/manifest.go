package deploy

import (
	"github.com/ben-haas/clawhouse/internal/compose"
	"github.com/ben-haas/clawhouse/internal/history"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// ManifestCommand returns the "manifest" command.
func ManifestCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "manifest",
		Short: "Render only the compose manifest",
		Long: `Render the compose manifest for a deployment file without the
surrounding provisioning steps.

Examples:
  clawhouse manifest -f deploy.yml
  clawhouse manifest -f deploy.yml -o docker-compose.yml`,
		Args:        cobra.NoArgs,
		RunE:        runManifest,
		Annotations: map[string]string{history.AnnotationArtifact: "manifest"},
	}

	addDeploymentFlags(cmd)
	return cmd
}

func runManifest(cmd *cobra.Command, args []string) error {
	in, err := loadInput(cmd, false)
	if err != nil {
		return err
	}

	log.Debug().Str("mode", string(in.Mode())).Msg("rendering compose manifest")
	manifest, err := compose.BuildManifest(in.Topology)
	if err != nil {
		return err
	}
	return writeArtifact(cmd, in, manifest)
}
