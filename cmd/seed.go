package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/lead-console/internal/store"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Reset the collections to the bundled starter dataset",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		leads, opps, err := store.SeedData()
		if err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.ReplaceLeads(ctx, leads); err != nil {
			return err
		}
		if err := st.ClearOpportunities(ctx); err != nil {
			return err
		}
		for _, opp := range opps {
			if _, err := st.CreateOpportunity(ctx, opp); err != nil {
				return err
			}
		}

		zap.L().Info("seed complete",
			zap.Int("leads", len(leads)),
			zap.Int("opportunities", len(opps)),
		)
		fmt.Printf("seeded %d leads and %d opportunities\n", len(leads), len(opps))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
