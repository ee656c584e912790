package cmd

import (
	"os"
	"strings"
	"time"

	cfgcmd "github.com/ben-haas/clawhouse/cmd/commands/config"
	"github.com/ben-haas/clawhouse/cmd/commands/deploy"
	"github.com/ben-haas/clawhouse/cmd/commands/dns"
	historycmd "github.com/ben-haas/clawhouse/cmd/commands/history"
	"github.com/ben-haas/clawhouse/cmd/commands/tunnel"
	"github.com/ben-haas/clawhouse/cmd/commands/urls"
	"github.com/ben-haas/clawhouse/internal/history"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands.
func rootCmd() *cobra.Command {
	var cmd = &cobra.Command{
		Use:   "clawhouse",
		Short: "Render deployment artifacts for OpenClaw hosts",
		Long: `clawhouse renders everything needed to turn a fresh Linux host into an
OpenClaw instance host: the provisioning script, the compose manifest, the
tunnel client configuration, Cloudflare API requests, and instance URLs.

Two deploy modes are supported:
  reverse-proxy   public TLS entrypoint with a wildcard certificate
  tunnel          outbound tunnel, no inbound ports

clawhouse never talks to a host or an API. Every command prints.

Quick start:
  clawhouse script -f deploy.yml -o provision.sh   # Render the provisioning script
  clawhouse dns wildcard --wildcard-domain example.com --tunnel-id ID -o curl
  clawhouse urls abc123 --base-domain example.com --secret "$SECRET"`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(cmd)
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().String("log-level", "warn", "Log level: debug, info, warn, error")

	cmd.AddCommand(deploy.ScriptCommand())
	cmd.AddCommand(deploy.ManifestCommand())
	cmd.AddCommand(tunnel.NewCommand())
	cmd.AddCommand(dns.NewCommand())
	cmd.AddCommand(urls.NewCommand())
	cmd.AddCommand(cfgcmd.NewCommand())
	cmd.AddCommand(historycmd.NewCommand())

	return cmd
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	var root = rootCmd()

	start := time.Now().UTC()
	ran, err := root.ExecuteC()
	recordHistory(ran, os.Args[1:], err, start)
	if err != nil {
		os.Exit(1)
	}
}

// recordHistory writes a best-effort history entry for render commands.
// Failures are logged at debug level and never change the exit status.
func recordHistory(cmd *cobra.Command, args []string, runErr error, start time.Time) {
	if cmd == nil {
		return
	}
	artifact, ok := cmd.Annotations[history.AnnotationArtifact]
	if !ok {
		return
	}

	meta := history.MetadataFromContext(cmd.Context())
	entry := &history.Entry{
		Timestamp:  start,
		Command:    cmd.CommandPath(),
		Mode:       meta.Mode,
		Artifact:   artifact,
		Digest:     meta.Digest,
		DurationMs: time.Since(start).Milliseconds(),
	}
	if _, secret := cmd.Annotations[history.AnnotationSecretArgs]; !secret {
		entry.Args = strings.Join(history.SanitizeArgs(args), " ")
	}
	if runErr != nil {
		entry.Outcome = history.OutcomeError
		entry.Detail = runErr.Error()
	} else {
		entry.Outcome = history.OutcomeSuccess
	}

	if err := history.Record(entry); err != nil {
		log.Debug().Err(err).Str("command", entry.Command).Msg("history not recorded")
	}
}
