package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"saldo/internal/storage"
)

type notificationLister interface {
	ListNotifications(ctx context.Context, ownerID string, limit int) ([]storage.NotificationRecord, error)
}

func notificationsCmd(opts *rootOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "notifications",
		Short: "Show notifications delivered by the notify-worker",
		Long: `Show the notification log, newest first.

Only the sqlite backend keeps a log; it is written by the notify-worker.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd, opts)
			if err != nil {
				return err
			}
			defer closeApp(a)

			lister, ok := a.Backend.Recorder.(notificationLister)
			if !ok {
				return fmt.Errorf("backend %q keeps no notification log", a.Config.DataBackend)
			}
			records, err := lister.ListNotifications(cmd.Context(), a.Config.OwnerID, limit)
			if err != nil {
				return fmt.Errorf("failed to list notifications: %w", err)
			}
			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No notifications delivered yet.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "DELIVERED\tKIND\tTITLE\tMESSAGE")
			for _, n := range records {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					n.DeliveredAt.Local().Format("2006-01-02 15:04"), n.Kind, n.Title, n.Body)
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum rows to show")
	return cmd
}
