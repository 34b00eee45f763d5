package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/thennow/internal/export"
)

func newExportCmd() *cobra.Command {
	var opts export.Options

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export locations as CSV with images",
		Example: `  # Directory only
  thennow export --output ./out

  # Directory plus thennow_export.zip and a Parquet table
  thennow export --output ./out --zip --parquet`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := a.Exporter.Export(cmd.Context(), opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Exported %d locations to %s\n", result.Records, result.Dir)
			if result.ArchivePath != "" {
				fmt.Fprintf(out, "Archive: %s\n", result.ArchivePath)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.OutputDir, "output", "o", ".", "Directory to write the export into")
	cmd.Flags().BoolVar(&opts.Zip, "zip", false, "Also pack the export into "+export.ArchiveName)
	cmd.Flags().BoolVar(&opts.Parquet, "parquet", false, "Also write locations.parquet")

	return cmd
}
