package commands

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/fivetwenty-io/zsubs-client/internal/constants"
	"github.com/fivetwenty-io/zsubs-client/pkg/zsubs"
	"github.com/spf13/cobra"
)

// resourceGroup describes the command group of one entity kind.
type resourceGroup struct {
	kind    zsubs.Kind
	aliases []string
	short   string
	// scoped kinds live under a customer and need --customer.
	scoped   bool
	resource func(client zsubs.Client, customerID string) zsubs.ResourceClient
	// status is set for kinds that can be marked active or inactive.
	status func(client zsubs.Client) zsubs.StatusClient
	extras []func() *cobra.Command
}

func resourceGroups() []resourceGroup {
	return []resourceGroup{
		{
			kind:     zsubs.KindCustomer,
			aliases:  []string{"customer"},
			short:    "Manage customers",
			resource: func(c zsubs.Client, _ string) zsubs.ResourceClient { return c.Customers() },
			extras:   []func() *cobra.Command{newCustomersFindCommand},
		},
		{
			kind:     zsubs.KindContactPerson,
			aliases:  []string{"contactperson", "contacts"},
			short:    "Manage contact persons of a customer",
			scoped:   true,
			resource: func(c zsubs.Client, customerID string) zsubs.ResourceClient { return c.ContactPersons().ForCustomer(customerID) },
		},
		{
			kind:     zsubs.KindCard,
			aliases:  []string{"card"},
			short:    "Manage stored cards of a customer",
			scoped:   true,
			resource: func(c zsubs.Client, customerID string) zsubs.ResourceClient { return c.Cards().ForCustomer(customerID) },
		},
		{
			kind:     zsubs.KindPlan,
			aliases:  []string{"plan"},
			short:    "Manage plans",
			resource: func(c zsubs.Client, _ string) zsubs.ResourceClient { return c.Plans() },
			status:   func(c zsubs.Client) zsubs.StatusClient { return c.Plans() },
			extras:   []func() *cobra.Command{newPlansListAddonsCommand},
		},
		{
			kind:     zsubs.KindAddon,
			aliases:  []string{"addon"},
			short:    "Manage addons",
			resource: func(c zsubs.Client, _ string) zsubs.ResourceClient { return c.Addons() },
			status:   func(c zsubs.Client) zsubs.StatusClient { return c.Addons() },
		},
		{
			kind:     zsubs.KindCoupon,
			aliases:  []string{"coupon"},
			short:    "Manage coupons",
			resource: func(c zsubs.Client, _ string) zsubs.ResourceClient { return c.Coupons() },
			status:   func(c zsubs.Client) zsubs.StatusClient { return c.Coupons() },
		},
		{
			kind:     zsubs.KindProduct,
			aliases:  []string{"product"},
			short:    "Manage products",
			resource: func(c zsubs.Client, _ string) zsubs.ResourceClient { return c.Products() },
			status:   func(c zsubs.Client) zsubs.StatusClient { return c.Products() },
		},
		{
			kind:     zsubs.KindPayment,
			aliases:  []string{"payment"},
			short:    "Manage payments",
			resource: func(c zsubs.Client, _ string) zsubs.ResourceClient { return c.Payments() },
		},
		{
			kind:     zsubs.KindInvoice,
			aliases:  []string{"invoice"},
			short:    "Manage invoices",
			resource: func(c zsubs.Client, _ string) zsubs.ResourceClient { return c.Invoices() },
			extras:   invoiceCommands(),
		},
		{
			kind:     zsubs.KindSubscription,
			aliases:  []string{"subscription", "subs"},
			short:    "Manage subscriptions",
			resource: func(c zsubs.Client, _ string) zsubs.ResourceClient { return c.Subscriptions() },
			extras:   subscriptionCommands(),
		},
	}
}

// NewResourceCommands creates one command group per entity kind.
func NewResourceCommands() []*cobra.Command {
	groups := resourceGroups()

	cmds := make([]*cobra.Command, 0, len(groups)+1)
	for _, group := range groups {
		cmds = append(cmds, newResourceCommand(group))
	}

	return append(cmds, NewHostedPagesCommand())
}

func newResourceCommand(group resourceGroup) *cobra.Command {
	cmd := &cobra.Command{
		Use:     group.kind.Plural(),
		Aliases: group.aliases,
		Short:   group.short,
	}

	if group.scoped {
		cmd.PersistentFlags().String("customer", "", "customer ID owning the "+group.kind.Plural())
	}

	cmd.AddCommand(newResourceListCommand(group))
	cmd.AddCommand(newResourceGetCommand(group))
	cmd.AddCommand(newResourceCreateCommand(group))
	cmd.AddCommand(newResourceUpdateCommand(group))
	cmd.AddCommand(newResourceDeleteCommand(group))

	if group.status != nil {
		cmd.AddCommand(newResourceStatusCommand(group, true))
		cmd.AddCommand(newResourceStatusCommand(group, false))
	}

	for _, extra := range group.extras {
		cmd.AddCommand(extra())
	}

	return cmd
}

// withClient creates a client, runs fn and closes the client.
func withClient(cmd *cobra.Command, fn func(ctx context.Context, client zsubs.Client) error) error {
	client, err := CreateClient(cmd)
	if err != nil {
		return err
	}

	defer func() { _ = client.Close() }()

	return fn(cmd.Context(), client)
}

func resourceFor(cmd *cobra.Command, group resourceGroup, client zsubs.Client) (zsubs.ResourceClient, error) {
	var customerID string

	if group.scoped {
		customerID, _ = cmd.Flags().GetString("customer")
		if customerID == "" {
			return nil, constants.ErrCustomerRequired
		}
	}

	return group.resource(client, customerID), nil
}

func newResourceListCommand(group resourceGroup) *cobra.Command {
	var (
		filters  []string
		filterBy string
		search   string
		sortBy   string
		perPage  int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List " + group.kind.Plural(),
		Long:  "List " + group.kind.Plural() + ", walking every page of results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := listParams(filters, filterBy, search, sortBy, perPage)
			if err != nil {
				return err
			}

			return withClient(cmd, func(ctx context.Context, client zsubs.Client) error {
				resource, err := resourceFor(cmd, group, client)
				if err != nil {
					return err
				}

				records, err := resource.List(ctx, params)
				if err != nil {
					return fmt.Errorf("failed to list %s: %w", group.kind.Plural(), err)
				}

				return renderRecords(cmd, group.kind, records)
			})
		},
	}

	addListFlags(cmd, &filters, &filterBy, &search, &sortBy, &perPage)

	return cmd
}

func addListFlags(cmd *cobra.Command, filters *[]string, filterBy, search, sortBy *string, perPage *int) {
	cmd.Flags().StringArrayVar(filters, "filter", nil, "filter as key=value (repeatable)")
	cmd.Flags().StringVar(filterBy, "filter-by", "", "status filter, e.g. Status.Active")
	cmd.Flags().StringVar(search, "search", "", "search text")
	cmd.Flags().StringVar(sortBy, "sort", "", "sort column, prefix with - for descending")
	cmd.Flags().IntVar(perPage, "per-page", constants.StandardPageSize, "results per page")
}

// listParams builds query parameters from list flags.
func listParams(filters []string, filterBy, search, sortBy string, perPage int) (*zsubs.QueryParams, error) {
	params := zsubs.NewQueryParams().
		WithPerPage(perPage).
		WithFilterBy(filterBy).
		WithSearchText(search)

	for _, filter := range filters {
		key, value, ok := strings.Cut(filter, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: %q", constants.ErrInvalidFilter, filter)
		}

		if zsubs.IsReservedParam(key) {
			return nil, fmt.Errorf("%w: %q", constants.ErrReservedFilter, key)
		}

		params.WithFilter(key, value)
	}

	if sortBy != "" {
		order := zsubs.SortAscending

		if strings.HasPrefix(sortBy, "-") {
			order = zsubs.SortDescending
			sortBy = strings.TrimPrefix(sortBy, "-")
		}

		params.WithSort(sortBy, order)
	}

	return params, nil
}

func newResourceGetCommand(group resourceGroup) *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Get a " + string(group.kind),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, client zsubs.Client) error {
				resource, err := resourceFor(cmd, group, client)
				if err != nil {
					return err
				}

				rec, err := resource.Get(ctx, args[0])
				if err != nil {
					return fmt.Errorf("failed to get %s %s: %w", group.kind, args[0], err)
				}

				return renderRecord(cmd, rec)
			})
		},
	}
}

func newResourceCreateCommand(group resourceGroup) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a " + string(group.kind),
		Long:  "Create a " + string(group.kind) + " from a JSON or YAML file of attributes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			attrs, err := readPayload(cmd, file)
			if err != nil {
				return err
			}

			return withClient(cmd, func(ctx context.Context, client zsubs.Client) error {
				resource, err := resourceFor(cmd, group, client)
				if err != nil {
					return err
				}

				rec, err := resource.Create(ctx, attrs)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", group.kind, err)
				}

				return renderRecord(cmd, rec)
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "attributes file, - for stdin")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func newResourceUpdateCommand(group resourceGroup) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Update a " + string(group.kind),
		Long:  "Update a " + string(group.kind) + " with the attributes of a JSON or YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			attrs, err := readPayload(cmd, file)
			if err != nil {
				return err
			}

			return withClient(cmd, func(ctx context.Context, client zsubs.Client) error {
				resource, err := resourceFor(cmd, group, client)
				if err != nil {
					return err
				}

				rec, err := resource.Update(ctx, args[0], attrs)
				if err != nil {
					return fmt.Errorf("failed to update %s %s: %w", group.kind, args[0], err)
				}

				return renderRecord(cmd, rec)
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "attributes file, - for stdin")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func newResourceDeleteCommand(group resourceGroup) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a " + string(group.kind),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force && !confirm(cmd, fmt.Sprintf("Delete %s %s?", group.kind, args[0])) {
				return constants.ErrDeleteAborted
			}

			return withClient(cmd, func(ctx context.Context, client zsubs.Client) error {
				resource, err := resourceFor(cmd, group, client)
				if err != nil {
					return err
				}

				err = resource.Delete(ctx, args[0])
				if err != nil {
					return fmt.Errorf("failed to delete %s %s: %w", group.kind, args[0], err)
				}

				printf(cmd, "Deleted %s %s\n", group.kind, args[0])

				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "skip confirmation")

	return cmd
}

func newResourceStatusCommand(group resourceGroup, active bool) *cobra.Command {
	use, verb := "deactivate", "inactive"
	if active {
		use, verb = "activate", "active"
	}

	return &cobra.Command{
		Use:   use + " ID",
		Short: "Mark a " + string(group.kind) + " as " + verb,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, client zsubs.Client) error {
				status := group.status(client)

				var err error
				if active {
					err = status.MarkActive(ctx, args[0])
				} else {
					err = status.MarkInactive(ctx, args[0])
				}

				if err != nil {
					return fmt.Errorf("failed to mark %s %s as %s: %w", group.kind, args[0], verb, err)
				}

				printf(cmd, "Marked %s %s as %s\n", group.kind, args[0], verb)

				return nil
			})
		},
	}
}

// confirm asks a yes/no question on the command's streams.
func confirm(cmd *cobra.Command, question string) bool {
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "%s [y/N]: ", question)

	answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	answer = strings.ToLower(strings.TrimSpace(answer))

	return answer == "y" || answer == "yes"
}
