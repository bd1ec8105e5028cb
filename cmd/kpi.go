package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sells-group/lead-console/internal/exporter"
	"github.com/sells-group/lead-console/internal/scoring"
	"github.com/sells-group/lead-console/internal/store"
)

var kpiCmd = &cobra.Command{
	Use:   "kpi",
	Short: "Print KPI summary for leads and opportunities",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		leads, err := st.ListLeads(ctx, store.Filter{})
		if err != nil {
			return err
		}
		opps, err := st.ListOpportunities(ctx)
		if err != nil {
			return err
		}

		lang := activeLanguage()
		kpi := scoring.KPI(opps, leads)
		stats := scoring.Opportunities(opps)

		fmt.Printf("leads:           %d\n", kpi.LeadsCount)
		fmt.Printf("opportunities:   %d\n", kpi.OpportunitiesCount)
		fmt.Printf("average score:   %d\n", kpi.AverageScore)
		fmt.Printf("conversion rate: %.1f%%\n", kpi.ConversionRate)
		fmt.Printf("pipeline value:  %s (avg %s)\n",
			exporter.FormatCurrency(stats.TotalValue, lang),
			exporter.FormatCurrency(stats.AverageValue, lang),
		)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(kpiCmd)
}
