package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/shinichiro-kawabata/wonderlandjapan-admin/internal/service"
)

func newExportCommand(a *app) *cobra.Command {
	var (
		format string
		dir    string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every record to a dated CSV or XLSX file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			dev, err := openDevice(cmd.Context(), a.cfg, a.log)
			if err != nil {
				return err
			}
			defer dev.Close()

			file, err := dev.exports.Export(service.Format(format))
			if err != nil {
				return err
			}
			path := filepath.Join(dir, file.Name)
			if err := os.WriteFile(path, file.Data, 0o644); err != nil {
				return fmt.Errorf("write export: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s, %d records)\n",
				path, humanize.IBytes(uint64(len(file.Data))), len(dev.store.Records()))
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", string(service.FormatCSV), "csv or xlsx")
	cmd.Flags().StringVar(&dir, "dir", ".", "output directory")
	return cmd
}
