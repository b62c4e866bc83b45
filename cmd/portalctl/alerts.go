package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/williamsps/maintenance-portal/internal/portalclient"
)

func (a *app) alertsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "Follow portal alerts",
	}
	cmd.AddCommand(a.alertsWatchCommand())
	return cmd
}

func (a *app) alertsWatchCommand() *cobra.Command {
	var interval time.Duration
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print the unread alert count until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := a.client(true)
			if err != nil {
				return err
			}
			defer client.Session().Teardown()

			last := int64(-1)
			counts := make(chan int64, 1)
			err = client.StartAlertPolling(cmd.Context(), interval, func(n int64) {
				select {
				case counts <- n:
				default:
				}
			})
			if err != nil {
				return err
			}

			for {
				select {
				case <-cmd.Context().Done():
					return nil
				case n := <-counts:
					if n != last {
						fmt.Fprintf(cmd.OutOrStdout(), "%s unread alerts: %d\n", time.Now().Format("15:04:05"), n)
						last = n
					}
				}
			}
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", portalclient.DefaultPollInterval, "poll interval")
	return cmd
}
