package main

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/lead-console/internal/exporter"
	"github.com/sells-group/lead-console/internal/store"
	"github.com/sells-group/lead-console/internal/view"
)

var (
	oppStage  string
	oppAmount float64
)

var oppsCmd = &cobra.Command{
	Use:     "opportunities",
	Aliases: []string{"opps"},
	Short:   "Manage the opportunity pipeline",
}

var oppsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List opportunities, newest first",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		opps, err := st.ListOpportunities(ctx)
		if err != nil {
			return err
		}

		lang := activeLanguage()
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tACCOUNT\tSTAGE\tAMOUNT")
		for _, opp := range opps {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
				opp.ID,
				view.TruncateText(opp.Name, 35),
				view.TruncateText(opp.AccountName, 25),
				opp.Stage,
				exporter.FormatCurrency(opp.Amount, lang),
			)
		}
		w.Flush()
		return nil
	},
}

var oppsUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update an opportunity's stage or amount",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return eris.Wrap(err, "parse opportunity id")
		}

		var patch store.OpportunityPatch
		flags := cmd.Flags()
		if flags.Changed("stage") {
			patch.Stage = &oppStage
		}
		if flags.Changed("amount") {
			patch.Amount = &oppAmount
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		updated, err := st.UpdateOpportunity(ctx, id, patch)
		if err != nil {
			return err
		}
		fmt.Printf("updated opportunity %d (%s, stage %s, amount %s)\n",
			updated.ID, updated.Name, updated.Stage,
			exporter.FormatCurrency(updated.Amount, activeLanguage()))
		return nil
	},
}

var oppsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an opportunity",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return eris.Wrap(err, "parse opportunity id")
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.DeleteOpportunity(ctx, id); err != nil {
			return err
		}
		fmt.Printf("deleted opportunity %d\n", id)
		return nil
	},
}

func init() {
	oppsUpdateCmd.Flags().StringVar(&oppStage, "stage", "", "pipeline stage")
	oppsUpdateCmd.Flags().Float64Var(&oppAmount, "amount", 0, "deal amount")

	oppsCmd.AddCommand(oppsListCmd, oppsUpdateCmd, oppsDeleteCmd)
	rootCmd.AddCommand(oppsCmd)
}
