package commands

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/zsubs-client/pkg/zsubs"
	"github.com/spf13/cobra"
)

func subscriptionCommands() []func() *cobra.Command {
	return []func() *cobra.Command{
		newSubscriptionsForCustomerCommand,
		newSubscriptionsReactivateCommand,
		newSubscriptionsAssociateCouponCommand,
		newSubscriptionsBuyAddonCommand,
	}
}

func newSubscriptionsForCustomerCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "for-customer CUSTOMER_ID",
		Short: "List the subscriptions of a customer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, client zsubs.Client) error {
				records, err := client.Subscriptions().ListByCustomer(ctx, args[0])
				if err != nil {
					return fmt.Errorf("failed to list subscriptions of customer %s: %w", args[0], err)
				}

				return renderRecords(cmd, zsubs.KindSubscription, records)
			})
		},
	}
}

func newSubscriptionsReactivateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reactivate ID",
		Short: "Reactivate a cancelled subscription",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, client zsubs.Client) error {
				rec, err := client.Subscriptions().Reactivate(ctx, args[0])
				if err != nil {
					return fmt.Errorf("failed to reactivate subscription %s: %w", args[0], err)
				}

				return renderRecord(cmd, rec)
			})
		},
	}
}

func newSubscriptionsAssociateCouponCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "associate-coupon ID COUPON_CODE",
		Short: "Apply a coupon to a subscription",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, client zsubs.Client) error {
				rec, err := client.Subscriptions().AssociateCoupon(ctx, args[0], args[1])
				if err != nil {
					return fmt.Errorf("failed to associate coupon %s: %w", args[1], err)
				}

				return renderRecord(cmd, rec)
			})
		},
	}
}

func newSubscriptionsBuyAddonCommand() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "buy-addon ID",
		Short: "Buy one-time addons for a subscription",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readPayload(cmd, file)
			if err != nil {
				return err
			}

			return withClient(cmd, func(ctx context.Context, client zsubs.Client) error {
				result, err := client.Subscriptions().BuyOneTimeAddon(ctx, args[0], data)
				if err != nil {
					return fmt.Errorf("failed to buy addon for subscription %s: %w", args[0], err)
				}

				return renderMap(cmd, result)
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "addons payload file, - for stdin")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}
