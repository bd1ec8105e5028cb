package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/lead-console/internal/exporter"
	"github.com/sells-group/lead-console/internal/store"
)

var (
	exportFormat string
	exportDir    string
	exportSearch string
	exportStatus string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export leads to a spreadsheet or CSV file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		name := exportFormat
		if name == "" {
			name = cfg.Export.DefaultFormat
		}
		format, ok := exporter.ParseFormat(name)
		if !ok {
			return eris.Errorf("unsupported export format %q (xlsx, csv)", name)
		}

		dir := exportDir
		if dir == "" {
			dir = cfg.Export.Dir
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		leads, err := st.ListLeads(ctx, store.Filter{Search: exportSearch, Status: exportStatus})
		if err != nil {
			return err
		}

		base := exporter.Filename(exportSearch, exportStatus)
		result := exporter.Export(leads, format, base, activeLanguage(), dir)
		if !result.Success {
			return eris.New(result.Message)
		}

		zap.L().Info("export complete",
			zap.String("filename", result.Filename),
			zap.Int("leads", len(leads)),
			zap.String("format", string(format)),
		)
		fmt.Printf("exported %d leads to %s\n", len(leads), result.Filename)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "", "export format: xlsx or csv (default from config)")
	exportCmd.Flags().StringVar(&exportDir, "out", "", "output directory (default from config)")
	exportCmd.Flags().StringVar(&exportSearch, "search", "", "restrict the export to matching leads")
	exportCmd.Flags().StringVar(&exportStatus, "status", "all", "restrict the export to one status")
	rootCmd.AddCommand(exportCmd)
}
