package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/williamsps/maintenance-portal/internal/portalclient"
)

func (a *app) quotesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quotes",
		Short: "Inspect and convert quote requests",
	}
	cmd.AddCommand(a.quotesListCommand(), a.quotesConvertCommand())
	return cmd
}

func (a *app) quotesListCommand() *cobra.Command {
	var filter portalclient.QuoteFilter
	var urgentOnly bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List quote requests",
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := a.client(true)
			if err != nil {
				return err
			}
			if urgentOnly {
				filter.Urgent = &urgentOnly
			}
			quotes, page, err := client.ListQuotes(cmd.Context(), filter)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNUMBER\tSTATUS\tURGENT\tTOTAL\tTITLE")
			for _, q := range quotes {
				number := "-"
				if q.QuoteNumber != nil {
					number = *q.QuoteNumber
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%.2f\t%s\n", q.ID, number, q.Status, q.IsUrgent, q.BreakdownTotal, q.Title)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "page %d of %d (%d quotes)\n", page.Page, page.Pages, page.Total)
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&filter.Status, "status", "", "only quotes in this status")
	flags.StringVar(&filter.Search, "search", "", "search title, property and quote number")
	flags.BoolVar(&urgentOnly, "urgent", false, "only urgent quotes")
	flags.IntVar(&filter.Page, "page", 1, "page number")
	flags.IntVar(&filter.Limit, "limit", 20, "page size")
	return cmd
}

func (a *app) quotesConvertCommand() *cobra.Command {
	var input portalclient.ConvertInput
	cmd := &cobra.Command{
		Use:   "convert <quote-id>",
		Short: "Convert an approved quote into a work order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			quoteID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid quote id: %w", err)
			}
			client, err := a.client(true)
			if err != nil {
				return err
			}
			order, err := client.ConvertAndOpen(cmd.Context(), quoteID, input)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\n", order.ID, order.JobNo, order.Status, order.PropertyName)
			return nil
		},
	}
	cmd.Flags().StringVar(&input.ScheduleDate, "schedule-date", "", "schedule date (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&input.PONumber, "po-number", "", "purchase order number")
	return cmd
}
