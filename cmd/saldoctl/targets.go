package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"saldo/internal/core"
	"saldo/internal/targets"
)

func targetsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "targets",
		Aliases: []string{"target"},
		Short:   "Manage savings targets",
	}
	cmd.AddCommand(targetsListCmd(opts))
	cmd.AddCommand(targetsAddCmd(opts))
	cmd.AddCommand(targetsCompleteCmd(opts))
	cmd.AddCommand(targetsDeleteCmd(opts))
	return cmd
}

func targetsListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List targets with their progress against the balance",
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

			views := a.TargetService.List()
			if len(views) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No targets yet. Use 'saldoctl targets add' to create one.")
				return nil
			}

			exp := int32(a.Config.CurrencyExponent)
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tAMOUNT\tPROGRESS\tSTATUS")
			for _, v := range views {
				status := string(v.Status)
				if v.Progress.IsComplete {
					status += " (ready)"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%d%%\t%s\n",
					v.ID, v.Name, core.FormatMoney(v.TargetAmount, exp), v.Progress.Percent, status)
			}
			return w.Flush()
		},
	}
}

func targetsAddCmd(opts *rootOptions) *cobra.Command {
	var (
		preset int
		name   string
		amount string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a savings target",
		Example: `  saldoctl targets add --preset 4 --amount 10.000.000
  saldoctl targets add --name "Laptop baru" --amount 15.000.000`,
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
			t, err := a.TargetService.Create(cmd.Context(), preset, targets.NewTarget{Name: name, TargetAmount: m})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created target %q %s %s\n", t.Name, core.FormatMoney(t.TargetAmount, exp), t.ID)
			return nil
		},
	}
	cmd.Flags().IntVar(&preset, "preset", 0, "preset id (see 'saldoctl categories'), 0 for a custom target")
	cmd.Flags().StringVar(&name, "name", "", "target name, for custom and 'Lainnya' targets")
	cmd.Flags().StringVar(&amount, "amount", "", "target amount")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func targetsCompleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "complete ID",
		Short: "Mark a target completed once the balance covers it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, opts)
			if err != nil {
				return err
			}
			defer closeApp(a)

			t, err := a.TargetService.Complete(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Target %q completed\n", t.Name)
			return nil
		},
	}
}

func targetsDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a target",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, opts)
			if err != nil {
				return err
			}
			defer closeApp(a)

			if err := a.TargetService.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Target %s deleted\n", args[0])
			return nil
		},
	}
}
