package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"saldo/internal/core"
)

func statsCmd(opts *rootOptions) *cobra.Command {
	var months int
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show monthly income/expense and the expense distribution",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if months < 1 || months > 24 {
				return fmt.Errorf("--months must be between 1 and 24")
			}
			a, err := openApp(cmd, opts)
			if err != nil {
				return err
			}
			defer closeApp(a)
			if err := exitOnRefreshError(a); err != nil {
				return err
			}

			exp := int32(a.Config.CurrencyExponent)
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "MONTH\tINCOME\tEXPENSE")
			for _, m := range a.State.MonthlyTotals(months) {
				fmt.Fprintf(w, "%04d-%02d\t%s\t%s\n", m.Year, int(m.Month),
					core.FormatMoney(m.Income, exp), core.FormatMoney(m.Expense, exp))
			}
			fmt.Fprintln(w)

			dist := a.State.ExpenseDistribution()
			if len(dist) > 0 {
				fmt.Fprintln(w, "CATEGORY\tAMOUNT\tSHARE")
				for _, c := range dist {
					fmt.Fprintf(w, "%s\t%s\t%s%%\n", c.Label, core.FormatMoney(c.Amount, exp), c.Percent.StringFixed(1))
				}
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVar(&months, "months", 6, "number of months to show")
	return cmd
}

func categoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List transaction categories and target presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			sections := []struct {
				title string
				list  []core.Category
			}{
				{"Income (credit)", core.Categories(core.Credit)},
				{"Expense (debit)", core.Categories(core.Debit)},
				{"Target presets", core.TargetPresets()},
			}
			for _, s := range sections {
				fmt.Fprintln(w, s.title)
				for _, c := range s.list {
					fmt.Fprintf(w, "  %d\t%s\n", c.ID, c.Label)
				}
			}
			return w.Flush()
		},
	}
}
