package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newCaptureCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "capture <id> <photo>",
		Short: "Attach a present-day photo to a location",
		Long: `Stores the photo at the configured image quality and marks the
location completed.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			photo, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("failed to read photo: %w", err)
			}

			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			record, err := a.Capture.AttachPhoto(cmd.Context(), args[0], photo)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Captured %s: %s\n", record.Title, record.NewImagePath)
			return nil
		},
	}
}
