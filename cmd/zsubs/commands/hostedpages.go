package commands

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/zsubs-client/pkg/zsubs"
	"github.com/spf13/cobra"
)

// NewHostedPagesCommand creates the hostedpages command group.
func NewHostedPagesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     zsubs.KindHostedPage.Plural(),
		Aliases: []string{"hostedpage", "pages"},
		Short:   "Manage hosted payment pages",
	}

	cmd.AddCommand(newHostedPagesListCommand())
	cmd.AddCommand(newHostedPagesGetCommand())
	cmd.AddCommand(hostedPageAction("new-subscription", "Create a page for a new subscription", zsubs.HostedPagesClient.NewSubscription))
	cmd.AddCommand(hostedPageAction("update-subscription", "Create a page updating a subscription", zsubs.HostedPagesClient.UpdateSubscription))
	cmd.AddCommand(hostedPageAction("update-card", "Create a page updating a subscription's card", zsubs.HostedPagesClient.UpdateCard))
	cmd.AddCommand(hostedPageAction("buy-addon", "Create a page buying one-time addons", zsubs.HostedPagesClient.BuyOneTimeAddon))

	return cmd
}

func newHostedPagesListCommand() *cobra.Command {
	var (
		filters  []string
		filterBy string
		search   string
		sortBy   string
		perPage  int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List hosted pages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := listParams(filters, filterBy, search, sortBy, perPage)
			if err != nil {
				return err
			}

			return withClient(cmd, func(ctx context.Context, client zsubs.Client) error {
				records, err := client.HostedPages().List(ctx, params)
				if err != nil {
					return fmt.Errorf("failed to list hosted pages: %w", err)
				}

				return renderRecords(cmd, zsubs.KindHostedPage, records)
			})
		},
	}

	addListFlags(cmd, &filters, &filterBy, &search, &sortBy, &perPage)

	return cmd
}

func newHostedPagesGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Get a hosted page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, client zsubs.Client) error {
				rec, err := client.HostedPages().Get(ctx, args[0])
				if err != nil {
					return fmt.Errorf("failed to get hosted page %s: %w", args[0], err)
				}

				return renderRecord(cmd, rec)
			})
		},
	}
}

func hostedPageAction(use, short string, action func(zsubs.HostedPagesClient, context.Context, *zsubs.Map) (zsubs.Record, error)) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readPayload(cmd, file)
			if err != nil {
				return err
			}

			return withClient(cmd, func(ctx context.Context, client zsubs.Client) error {
				rec, err := action(client.HostedPages(), ctx, data)
				if err != nil {
					return fmt.Errorf("failed to %s: %w", use, err)
				}

				return renderRecord(cmd, rec)
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "page payload file, - for stdin")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}
