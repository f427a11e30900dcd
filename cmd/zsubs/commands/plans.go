package commands

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/zsubs-client/pkg/zsubs"
	"github.com/spf13/cobra"
)

func newPlansListAddonsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list-addons PLAN_CODE",
		Short: "List the addons applicable to a plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, client zsubs.Client) error {
				records, err := client.Plans().ListAddons(ctx, args[0])
				if err != nil {
					return fmt.Errorf("failed to list addons of plan %s: %w", args[0], err)
				}

				return renderRecords(cmd, zsubs.KindAddon, records)
			})
		},
	}
}
