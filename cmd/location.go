package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/thennow/internal/capture"
	"github.com/lehigh-university-libraries/thennow/internal/models"
	"github.com/lehigh-university-libraries/thennow/internal/seed"
)

func newLocationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "location",
		Aliases: []string{"loc"},
		Short:   "Manage local location records",
	}

	cmd.AddCommand(newLocationAddCmd())
	cmd.AddCommand(newLocationListCmd())
	cmd.AddCommand(newLocationShowCmd())
	cmd.AddCommand(newLocationStatusCmd())
	cmd.AddCommand(newLocationNotesCmd())
	cmd.AddCommand(newLocationDeleteCmd())
	cmd.AddCommand(newLocationImportCmd())

	return cmd
}

func newLocationAddCmd() *cobra.Command {
	var title, notes, imagePath string
	var latitude, longitude float64

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a location, optionally with its historical photo",
		Example: `  thennow location add --title "Jaffa Gate" --lat 31.7767 --lng 35.2276 --image ./jaffa_1898.jpg`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var photo []byte
			if imagePath != "" {
				data, err := os.ReadFile(imagePath)
				if err != nil {
					return fmt.Errorf("failed to read image: %w", err)
				}
				photo = data
			}

			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			record, err := a.Capture.CreateLocation(cmd.Context(), capture.NewLocation{
				Title:     title,
				Notes:     notes,
				Latitude:  latitude,
				Longitude: longitude,
				Photo:     photo,
			})
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), record.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Display title (required)")
	cmd.Flags().StringVar(&notes, "notes", "", "Free-text notes")
	cmd.Flags().Float64Var(&latitude, "lat", 0, "Latitude in decimal degrees")
	cmd.Flags().Float64Var(&longitude, "lng", 0, "Longitude in decimal degrees")
	cmd.Flags().StringVar(&imagePath, "image", "", "Historical photo (JPEG, PNG or GIF)")
	_ = cmd.MarkFlagRequired("title")

	return cmd
}

func newLocationListCmd() *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List locations",
		RunE: func(cmd *cobra.Command, args []string) error {
			var filter models.LocationStatus
			if status != "" {
				s, err := models.ParseStatusStrict(status)
				if err != nil {
					return err
				}
				filter = s
			}

			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			records, err := a.Records.List(cmd.Context())
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTITLE\tSTATUS\tPAIR\tUPDATED")
			for _, r := range records {
				if filter != "" && r.Status != filter {
					continue
				}
				pair := "-"
				if r.HasComparisonPair() {
					pair = "yes"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.ID, r.Title, r.Status, pair, r.UpdatedAt.Format("2006-01-02 15:04"))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Only show notVisited, completed or inaccessible")

	return cmd
}

func newLocationShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one location",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			r, err := a.Records.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ID:          %s\n", r.ID)
			fmt.Fprintf(out, "Title:       %s\n", r.Title)
			fmt.Fprintf(out, "Status:      %s\n", r.Status)
			fmt.Fprintf(out, "Coordinates: %f, %f\n", r.Latitude, r.Longitude)
			fmt.Fprintf(out, "Map:         %s\n", r.GoogleMapsURL())
			fmt.Fprintf(out, "Notes:       %s\n", r.Notes)
			fmt.Fprintf(out, "Historical:  %s %s\n", r.HistoricalImagePath, r.HistoricalImageURL)
			fmt.Fprintf(out, "New:         %s %s\n", r.NewImagePath, r.NewImageURL)
			fmt.Fprintf(out, "Created:     %s\n", r.CreatedAt.Format("2006-01-02 15:04:05"))
			fmt.Fprintf(out, "Updated:     %s\n", r.UpdatedAt.Format("2006-01-02 15:04:05"))
			return nil
		},
	}
}

func newLocationStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <id> <notVisited|completed|inaccessible>",
		Short: "Change a location's status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := models.ParseStatusStrict(args[1])
			if err != nil {
				return err
			}

			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			r, err := a.Records.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			r.UpdateStatus(status, models.Now())
			return a.Records.Update(cmd.Context(), r)
		},
	}
}

func newLocationNotesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "notes <id> <text>",
		Short: "Replace a location's notes",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			r, err := a.Records.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			r.UpdateNotes(args[1], models.Now())
			return a.Records.Update(cmd.Context(), r)
		},
	}
}

func newLocationDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a location and its images",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			return a.Records.Delete(cmd.Context(), args[0])
		},
	}
}

func newLocationImportCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Bulk-create locations from a JSONL or Parquet seed file",
		Long: `Each seed row has title, notes, latitude, longitude and historical_image.
Relative image paths are resolved against the seed file's directory.`,
		Example: `  thennow location import --file ./seeds/old_city.jsonl`,
		RunE: func(cmd *cobra.Command, args []string) error {
			locations, err := seed.NewLoader(file).Load()
			if err != nil {
				return err
			}

			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			summary := seed.Import(cmd.Context(), a.Capture, locations, filepath.Dir(file))
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d locations (%d skipped)\n", summary.Imported, summary.Skipped)
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Path to .jsonl or .parquet seed file (required)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}
