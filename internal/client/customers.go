package client

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/zsubs-client/pkg/zsubs"
)

// CustomersClient implements zsubs.CustomersClient.
type CustomersClient struct {
	*ResourceClient
}

// NewCustomersClient creates a new customers client.
func NewCustomersClient(client *Client) *CustomersClient {
	return &CustomersClient{ResourceClient: NewResourceClient(client, zsubs.KindCustomer)}
}

// ListByEmail implements zsubs.CustomersClient.ListByEmail.
func (c *CustomersClient) ListByEmail(ctx context.Context, email string) ([]zsubs.Record, error) {
	customers, err := c.List(ctx, zsubs.NewQueryParams().WithFilter("email", email))
	if err != nil {
		return nil, fmt.Errorf("listing customers by email: %w", err)
	}

	return customers, nil
}

// GetByEmail implements zsubs.CustomersClient.GetByEmail. The first match is
// loaded in full since list entries carry a subset of the attributes.
func (c *CustomersClient) GetByEmail(ctx context.Context, email string) (zsubs.Record, error) {
	customers, err := c.ListByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if len(customers) == 0 {
		return nil, fmt.Errorf("customer with email %q: %w", email, zsubs.ErrNotFound)
	}

	return c.Get(ctx, customers[0].ID())
}
