package main

import (
	"fmt"
	"slices"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"saldo/internal/core"
	"saldo/internal/services"
)

func txCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tx",
		Short: "Record and list transactions",
	}
	cmd.AddCommand(txAddCmd(opts))
	cmd.AddCommand(txListCmd(opts))
	return cmd
}

func txAddCmd(opts *rootOptions) *cobra.Command {
	var (
		kind     string
		amount   string
		category int
		detail   string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record an income (credit) or expense (debit)",
		Example: `  saldoctl tx add --kind credit --amount 1.500.000 --category 1
  saldoctl tx add --kind debit --amount 25000 --category 5 --detail parkir`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd, opts)
			if err != nil {
				return err
			}
			defer closeApp(a)

			exp := int32(a.Config.CurrencyExponent)
			m, err := core.ParseMoney(amount, exp)
			if err != nil {
				return fmt.Errorf("amount %q: %w", amount, err)
			}
			tx, err := a.TransactionService.CreateTransaction(cmd.Context(), services.NewTransaction{
				Kind:       core.Kind(kind),
				Amount:     m,
				CategoryID: category,
				Detail:     detail,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recorded %s %s (%s) %s\n",
				tx.Kind, core.FormatMoney(tx.Amount, exp), tx.CategoryLabel, tx.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "", "credit or debit")
	cmd.Flags().StringVar(&amount, "amount", "", `amount, e.g. "1.500.000"`)
	cmd.Flags().IntVar(&category, "category", 0, "category id (see 'saldoctl categories')")
	cmd.Flags().StringVar(&detail, "detail", "", "description, required for the 'Lainnya' category")
	_ = cmd.MarkFlagRequired("kind")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("category")
	return cmd
}

func txListCmd(opts *rootOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd, opts)
			if err != nil {
				return err
			}
			defer closeApp(a)
			if err := exitOnRefreshError(a); err != nil {
				return err
			}

			exp := int32(a.Config.CurrencyExponent)
			txs := a.State.Current().Transactions
			if len(txs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No transactions yet. Use 'saldoctl tx add' to record one.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "DATE\tKIND\tAMOUNT\tCATEGORY\tDETAIL")
			n := 0
			for _, tx := range slices.Backward(txs) {
				if limit > 0 && n == limit {
					break
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					tx.CreatedAt.Local().Format("2006-01-02 15:04"),
					tx.Kind,
					core.FormatMoney(tx.Amount, exp),
					tx.CategoryLabel,
					tx.CategoryDetail)
				n++
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum rows to show, 0 for all")
	return cmd
}
