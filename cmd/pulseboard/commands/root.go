package commands

import (
	"pulseboard/internal/config"
	"pulseboard/internal/logging"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	// Version, Commit, and BuildDate are set at build time via ldflags.
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"

	verbose bool
	cfg     *config.AppConfig
)

var rootCmd = &cobra.Command{
	Use:   "pulseboard",
	Short: "Pulseboard scores weekly project status snapshots",
	Long: `Pulseboard ingests weekly per-project status snapshots and derives a Health
Score (current project wellness) and a Confidence Score (forecast reliability)
per project-week, with per-metric contribution breakdowns and a narrative of
the dominant drivers. Both schedule-driven ("planned") and flow-driven
("kanban") delivery frameworks are supported.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Init(verbose)

		var err error
		cfg, err = config.Load()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load configuration")
		}

		log.Info().
			Str("version", Version).
			Str("commit", Commit).
			Str("buildDate", BuildDate).
			Msg("Pulseboard starting")
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}
