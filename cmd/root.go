package cmd

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/thennow/internal/app"
	"github.com/lehigh-university-libraries/thennow/internal/config"
)

func NewRootCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "thennow",
		Short: "Rephotograph historical locations and sync them to a shared archive",
		Long: `thennow tracks locations that have a historical photograph, records a
present-day photo taken from the same spot, and synchronizes the collection
with a remote PostgreSQL document store and MinIO image bucket.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			// unset or invalid LOG_LEVEL means info
			level, _ := config.ParseLogLevel(os.Getenv("LOG_LEVEL"))
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newLocationCmd())
	cmd.AddCommand(newCaptureCmd())
	cmd.AddCommand(newSyncCmd())
	cmd.AddCommand(newExportCmd())
	cmd.AddCommand(newSettingsCmd())

	return cmd
}

// openApp loads configuration and opens the local stores
func openApp() (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return app.New(cfg)
}
