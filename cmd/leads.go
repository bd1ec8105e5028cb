package main

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/lead-console/internal/model"
	"github.com/sells-group/lead-console/internal/scoring"
	"github.com/sells-group/lead-console/internal/store"
	"github.com/sells-group/lead-console/internal/validate"
	"github.com/sells-group/lead-console/internal/view"
)

var (
	leadsSearch  string
	leadsStatus  string
	leadsSort    string
	leadsPage    int
	leadsPerPage int

	addName    string
	addCompany string
	addEmail   string
	addSource  string
	addScore   float64
	addStatus  string

	updateName    string
	updateCompany string
	updateEmail   string
	updateSource  string
	updateScore   float64
	updateStatus  string
)

var leadsCmd = &cobra.Command{
	Use:   "leads",
	Short: "Manage the lead collection",
}

var leadsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List leads with filtering, sorting and pagination",
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

		filtered := view.Filter(leads, leadsSearch, leadsStatus)
		switch leadsSort {
		case "desc":
			filtered = view.SortByScore(filtered, view.SortDesc)
		case "asc":
			filtered = view.SortByScore(filtered, view.SortAsc)
		case "", "none":
		default:
			return eris.Errorf("unknown sort order %q (none, desc, asc)", leadsSort)
		}

		page := view.Paginate(len(filtered), leadsPerPage, leadsPage)
		visible := filtered[page.Start:page.End]

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tCOMPANY\tEMAIL\tSOURCE\tSCORE\tTIER\tQUALITY\tSTATUS")
		for _, lead := range visible {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%.0f\t%s\t%d\t%s\n",
				lead.ID,
				view.TruncateText(lead.Name, 25),
				view.TruncateText(lead.Company, 25),
				lead.Email,
				lead.Source,
				lead.Score,
				scoring.Class(lead.Score),
				lead.PredictiveQuality,
				lead.Status,
			)
		}
		w.Flush()

		fmt.Printf("\npage %d/%d, %d of %d leads", page.Number, page.TotalPages, len(visible), page.TotalItems)
		if view.HasActiveFilters(leadsSearch, leadsStatus) {
			fmt.Printf(" (filtered from %d)", len(leads))
		}
		fmt.Println()
		return nil
	},
}

var leadsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a lead",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		status, ok := model.ParseStatus(addStatus)
		if !ok {
			return eris.Errorf("unrecognized status %q", addStatus)
		}

		lead := model.Lead{
			Name:    addName,
			Company: addCompany,
			Email:   addEmail,
			Source:  addSource,
			Score:   model.ClampScore(addScore),
			Status:  status,
		}
		if result := validate.LeadData(lead, activeLanguage()); !result.OK {
			return eris.New(result.Message)
		}
		lead.PredictiveQuality = scoring.PredictiveQuality(lead.Score, lead.Source)

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		created, err := st.CreateLead(ctx, lead)
		if err != nil {
			return err
		}

		zap.L().Info("lead created",
			zap.Int64("id", created.ID),
			zap.String("name", created.Name),
			zap.String("company", created.Company),
		)
		fmt.Printf("created lead %d\n", created.ID)
		return nil
	},
}

var leadsUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update lead fields",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return eris.Wrap(err, "parse lead id")
		}

		var patch store.Patch
		flags := cmd.Flags()
		if flags.Changed("name") {
			patch.Name = &updateName
		}
		if flags.Changed("company") {
			patch.Company = &updateCompany
		}
		if flags.Changed("email") {
			if result := validate.EmailIn(updateEmail, activeLanguage()); !result.OK {
				return eris.New(result.Message)
			}
			patch.Email = &updateEmail
		}
		if flags.Changed("source") {
			patch.Source = &updateSource
		}
		if flags.Changed("score") {
			patch.Score = &updateScore
		}
		if flags.Changed("status") {
			status, ok := model.ParseStatus(updateStatus)
			if !ok {
				return eris.Errorf("unrecognized status %q", updateStatus)
			}
			patch.Status = &status
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		updated, err := st.UpdateLead(ctx, id, patch)
		if err != nil {
			return err
		}
		fmt.Printf("updated lead %d (%s, %s, score %.0f, %s)\n",
			updated.ID, updated.Name, updated.Company, updated.Score, updated.Status)
		return nil
	},
}

var leadsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a lead",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return eris.Wrap(err, "parse lead id")
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.DeleteLead(ctx, id); err != nil {
			return err
		}
		fmt.Printf("deleted lead %d\n", id)
		return nil
	},
}

var leadsConvertCmd = &cobra.Command{
	Use:   "convert <id>",
	Short: "Convert a lead into an opportunity",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return eris.Wrap(err, "parse lead id")
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		opp, err := st.ConvertLead(ctx, id)
		if err != nil {
			return err
		}

		zap.L().Info("lead converted",
			zap.Int64("lead_id", id),
			zap.Int64("opportunity_id", opp.ID),
			zap.String("account", opp.AccountName),
		)
		fmt.Printf("converted lead %d into opportunity %d (%s, stage %s)\n",
			id, opp.ID, opp.Name, opp.Stage)
		return nil
	},
}

var leadsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every lead",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.ClearLeads(ctx); err != nil {
			return err
		}
		fmt.Println("cleared all leads")
		return nil
	},
}

func init() {
	leadsListCmd.Flags().StringVar(&leadsSearch, "search", "", "case-insensitive match on name, company or email")
	leadsListCmd.Flags().StringVar(&leadsStatus, "status", "all", "status filter (all, New, Contacted, Qualified, Converted)")
	leadsListCmd.Flags().StringVar(&leadsSort, "sort", "none", "score sort order (none, desc, asc)")
	leadsListCmd.Flags().IntVar(&leadsPage, "page", 1, "page number")
	leadsListCmd.Flags().IntVar(&leadsPerPage, "per-page", 25, "items per page")

	leadsAddCmd.Flags().StringVar(&addName, "name", "", "lead name")
	leadsAddCmd.Flags().StringVar(&addCompany, "company", "", "company name")
	leadsAddCmd.Flags().StringVar(&addEmail, "email", "", "email address")
	leadsAddCmd.Flags().StringVar(&addSource, "source", "", "lead source")
	leadsAddCmd.Flags().Float64Var(&addScore, "score", 50, "qualification score (0-100)")
	leadsAddCmd.Flags().StringVar(&addStatus, "status", "New", "lead status")

	leadsUpdateCmd.Flags().StringVar(&updateName, "name", "", "lead name")
	leadsUpdateCmd.Flags().StringVar(&updateCompany, "company", "", "company name")
	leadsUpdateCmd.Flags().StringVar(&updateEmail, "email", "", "email address")
	leadsUpdateCmd.Flags().StringVar(&updateSource, "source", "", "lead source")
	leadsUpdateCmd.Flags().Float64Var(&updateScore, "score", 0, "qualification score (0-100)")
	leadsUpdateCmd.Flags().StringVar(&updateStatus, "status", "", "lead status")

	leadsCmd.AddCommand(leadsListCmd, leadsAddCmd, leadsUpdateCmd, leadsDeleteCmd, leadsConvertCmd, leadsClearCmd)
	rootCmd.AddCommand(leadsCmd)
}
