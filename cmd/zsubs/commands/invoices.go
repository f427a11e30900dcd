package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fivetwenty-io/zsubs-client/internal/constants"
	"github.com/fivetwenty-io/zsubs-client/pkg/zsubs"
	"github.com/spf13/cobra"
)

func invoiceCommands() []func() *cobra.Command {
	return []func() *cobra.Command{
		newInvoicesForCustomerCommand,
		newInvoicesCollectCommand,
		newInvoicesPDFCommand,
		newInvoicesEmailCommand,
		invoiceAction("void", "Void an invoice", zsubs.InvoicesClient.Void),
		invoiceAction("convert-to-open", "Convert a draft or void invoice to open", zsubs.InvoicesClient.ConvertToOpen),
		invoiceAction("write-off", "Write off an invoice", zsubs.InvoicesClient.WriteOff),
		invoiceAction("cancel-write-off", "Cancel the write off of an invoice", zsubs.InvoicesClient.CancelWriteOff),
	}
}

// invoiceAction builds a command running a status change on one invoice.
func invoiceAction(use, short string, action func(zsubs.InvoicesClient, context.Context, string) error) func() *cobra.Command {
	return func() *cobra.Command {
		return &cobra.Command{
			Use:   use + " ID",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withClient(cmd, func(ctx context.Context, client zsubs.Client) error {
					err := action(client.Invoices(), ctx, args[0])
					if err != nil {
						return fmt.Errorf("failed to %s invoice %s: %w", use, args[0], err)
					}

					printf(cmd, "Invoice %s: %s done\n", args[0], use)

					return nil
				})
			},
		}
	}
}

func newInvoicesForCustomerCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "for-customer CUSTOMER_ID",
		Short: "List the invoices of a customer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, client zsubs.Client) error {
				records, err := client.Invoices().ListByCustomer(ctx, args[0])
				if err != nil {
					return fmt.Errorf("failed to list invoices of customer %s: %w", args[0], err)
				}

				return renderRecords(cmd, zsubs.KindInvoice, records)
			})
		},
	}
}

func newInvoicesCollectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "collect ID",
		Short: "Charge the customer's card for an invoice",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, client zsubs.Client) error {
				result, err := client.Invoices().Collect(ctx, args[0])
				if err != nil {
					return fmt.Errorf("failed to collect invoice %s: %w", args[0], err)
				}

				return renderMap(cmd, result)
			})
		},
	}
}

func newInvoicesPDFCommand() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "pdf ID",
		Short: "Download an invoice as PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, client zsubs.Client) error {
				data, err := client.Invoices().PDF(ctx, args[0])
				if err != nil {
					return fmt.Errorf("failed to download invoice %s: %w", args[0], err)
				}

				if file == "" || file == "-" {
					_, err = cmd.OutOrStdout().Write(data)

					return err
				}

				err = os.WriteFile(filepath.Clean(file), data, constants.ConfigFilePerm)
				if err != nil {
					return fmt.Errorf("failed to write %s: %w", file, err)
				}

				printf(cmd, "Saved invoice %s to %s\n", args[0], file)

				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "destination file, stdout when empty")

	return cmd
}

func newInvoicesEmailCommand() *cobra.Command {
	var email zsubs.InvoiceEmail

	cmd := &cobra.Command{
		Use:   "email ID",
		Short: "Email an invoice",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, client zsubs.Client) error {
				err := client.Invoices().Email(ctx, args[0], &email)
				if err != nil {
					return fmt.Errorf("failed to email invoice %s: %w", args[0], err)
				}

				printf(cmd, "Emailed invoice %s\n", args[0])

				return nil
			})
		},
	}

	cmd.Flags().StringVar(&email.FromMailID, "from", "", "sender address")
	cmd.Flags().StringSliceVar(&email.ToMailIDs, "to", nil, "recipient addresses")
	cmd.Flags().StringSliceVar(&email.CCMailIDs, "cc", nil, "carbon copy addresses")
	cmd.Flags().StringVar(&email.Subject, "subject", "", "mail subject")
	cmd.Flags().StringVar(&email.Body, "body", "", "mail body")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}
