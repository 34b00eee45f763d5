package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSyncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Synchronize with the remote archive",
		Long: `Each pass is all-or-nothing and is never retried.

push uploads images that have no remote URL yet and then writes every
record to the remote collection in one batch.

pull downloads every remote record and its images and replaces the
local collection. Local records that are not on the server are lost.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "push",
		Short: "Upload local records and images",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.SyncToServer(cmd.Context()); err != nil {
				return fmt.Errorf("sync failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Upload complete")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "pull",
		Short: "Replace local records with the remote collection",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			records, err := a.SyncFromServer(cmd.Context())
			if err != nil {
				return fmt.Errorf("sync failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Downloaded %d locations\n", len(records))
			return nil
		},
	})

	return cmd
}
