// Command newsletter runs the newsletter HTTP service and its admin tasks.
package main

import (
	"os"

	"github.com/deppfellow/newsletter/internal/config"
	"github.com/deppfellow/newsletter/internal/logger"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	configDir string

	cfg *config.Config
	log zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:           "newsletter",
	Short:         "Newsletter subscription service",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configDir)
		if err != nil {
			return err
		}
		log = logger.NewLogger(cfg.Observability)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "config", "directory holding base.yaml and <env>.yaml")

	rootCmd.AddCommand(serveCmd, migrateCmd, usersCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		// The logger may not exist yet if config failed to load.
		fallback := zerolog.New(os.Stderr).With().Timestamp().Logger()
		fallback.Fatal().Err(err).Msg("newsletter failed")
	}
}
