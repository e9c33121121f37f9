package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"saldo/internal/core"
)

func summaryCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show balance, total expense and total savings",
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
			snap := a.State.Current().Snapshot
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "Saldo\t%s\n", core.FormatMoney(snap.Balance, exp))
			fmt.Fprintf(w, "Pengeluaran\t%s\n", core.FormatMoney(snap.TotalExpense, exp))
			fmt.Fprintf(w, "Tabungan\t%s\n", core.FormatMoney(snap.TotalSavings, exp))
			fmt.Fprintf(w, "Transaksi\t%d\n", snap.Count)
			return w.Flush()
		},
	}
}
