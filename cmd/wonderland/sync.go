package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSyncCommand(a *app) *cobra.Command {
	var url string
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run one push-then-pull round against the sync endpoint",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			dev, err := openDevice(ctx, a.cfg, a.log)
			if err != nil {
				return err
			}
			defer func() {
				if err := dev.Close(); err != nil {
					a.log.Error("close device database", "error", err)
				}
			}()

			if url != "" {
				settings, err := dev.sync.Settings(ctx)
				if err != nil {
					return err
				}
				if _, err := dev.sync.UpdateSettings(ctx, url, settings.AutoSync); err != nil {
					return err
				}
			} else if _, err := dev.sync.Seed(ctx, a.cfg.Sync.URL, a.cfg.Sync.Auto); err != nil {
				return err
			}

			res, err := dev.sync.Sync(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "synced: %d records, %d dropped\n", len(res.Records), res.Dropped)
			return nil
		},
	}
	cmd.Flags().StringVar(&url, "url", "", "store this endpoint URL before syncing")
	return cmd
}
