package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/lead-console/internal/importer"
)

var importJSONPath string

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import leads from a JSON file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		data, err := os.ReadFile(importJSONPath)
		if err != nil {
			return eris.Wrap(err, "read import file")
		}

		report, err := importer.ProcessJSON(data, activeLanguage())
		if err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.ImportLeads(ctx, report.ValidLeads); err != nil {
			return err
		}

		zap.L().Info("import complete",
			zap.String("batch_id", report.BatchID),
			zap.Int("imported", report.Imported()),
			zap.Int("rejected", report.Rejected()),
			zap.String("json", importJSONPath),
		)
		fmt.Println(report.SuccessMessage())
		for _, msg := range report.Errors {
			fmt.Println("  " + msg)
		}
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importJSONPath, "json", "", "path to JSON file (required)")
	_ = importCmd.MarkFlagRequired("json")
	rootCmd.AddCommand(importCmd)
}
