package commands

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/zsubs-client/pkg/zsubs"
	"github.com/spf13/cobra"
)

func newCustomersFindCommand() *cobra.Command {
	var (
		email string
		first bool
	)

	cmd := &cobra.Command{
		Use:   "find",
		Short: "Find customers by email",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, client zsubs.Client) error {
				if first {
					rec, err := client.Customers().GetByEmail(ctx, email)
					if err != nil {
						return fmt.Errorf("failed to find customer %s: %w", email, err)
					}

					return renderRecord(cmd, rec)
				}

				records, err := client.Customers().ListByEmail(ctx, email)
				if err != nil {
					return fmt.Errorf("failed to find customers %s: %w", email, err)
				}

				return renderRecords(cmd, zsubs.KindCustomer, records)
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "customer email")
	cmd.Flags().BoolVar(&first, "first", false, "load the full record of the first match")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}
