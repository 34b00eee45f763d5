package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/thennow/internal/models"
)

func newSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change app settings",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the current settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			s := a.Settings.Load(cmd.Context())
			lastSync := "never"
			if s.LastSyncDate != nil {
				lastSync = s.LastSyncDate.Format("2006-01-02 15:04:05 MST")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Image quality: %s (%.1f)\nLast sync:     %s\n",
				s.ImageQuality, s.ImageQuality.CompressionRatio(), lastSync)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set-quality <high|medium|low>",
		Short: "Set the JPEG quality of stored photos",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			quality, err := models.ParseImageQuality(args[0])
			if err != nil {
				return err
			}

			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			s := a.Settings.Load(cmd.Context())
			s.ImageQuality = quality
			return a.Settings.Save(cmd.Context(), s)
		},
	})

	return cmd
}
