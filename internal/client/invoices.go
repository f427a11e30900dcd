package client

import (
	"context"
	"fmt"
	nethttp "net/http"
	"net/url"

	"github.com/fivetwenty-io/zsubs-client/pkg/zsubs"
)

// InvoicesClient implements zsubs.InvoicesClient.
type InvoicesClient struct {
	*ResourceClient
}

// NewInvoicesClient creates a new invoices client.
func NewInvoicesClient(client *Client) *InvoicesClient {
	return &InvoicesClient{ResourceClient: NewResourceClient(client, zsubs.KindInvoice)}
}

// ListByCustomer implements zsubs.InvoicesClient.ListByCustomer.
func (c *InvoicesClient) ListByCustomer(ctx context.Context, customerID string) ([]zsubs.Record, error) {
	invoices, err := c.List(ctx, zsubs.NewQueryParams().WithFilter("customer_id", customerID))
	if err != nil {
		return nil, fmt.Errorf("listing invoices of customer %s: %w", customerID, err)
	}

	return invoices, nil
}

// PDF implements zsubs.InvoicesClient.PDF.
func (c *InvoicesClient) PDF(ctx context.Context, id string) ([]byte, error) {
	path, err := c.entityPath("invoices/{id}", id)
	if err != nil {
		return nil, fmt.Errorf("downloading invoice PDF: %w", err)
	}

	resp, err := c.client.send(ctx, nethttp.MethodGet, path, url.Values{"accept": []string{"pdf"}}, nil)
	if err != nil {
		return nil, fmt.Errorf("downloading invoice %s PDF: %w", id, err)
	}

	return resp.Body, nil
}

// Collect implements zsubs.InvoicesClient.Collect. It returns the response
// body, which holds the resulting payment.
func (c *InvoicesClient) Collect(ctx context.Context, id string) (*zsubs.Map, error) {
	env, err := c.postAction(ctx, id, "collect", nil)
	if err != nil {
		return nil, fmt.Errorf("collecting invoice %s: %w", id, err)
	}

	return env.Body, nil
}

// Void implements zsubs.InvoicesClient.Void.
func (c *InvoicesClient) Void(ctx context.Context, id string) error {
	_, err := c.postAction(ctx, id, "void", nil)
	if err != nil {
		return fmt.Errorf("voiding invoice %s: %w", id, err)
	}

	return nil
}

// ConvertToOpen implements zsubs.InvoicesClient.ConvertToOpen.
func (c *InvoicesClient) ConvertToOpen(ctx context.Context, id string) error {
	_, err := c.postAction(ctx, id, "converttoopen", nil)
	if err != nil {
		return fmt.Errorf("converting invoice %s to open: %w", id, err)
	}

	return nil
}

// WriteOff implements zsubs.InvoicesClient.WriteOff.
func (c *InvoicesClient) WriteOff(ctx context.Context, id string) error {
	_, err := c.postAction(ctx, id, "writeoff", nil)
	if err != nil {
		return fmt.Errorf("writing off invoice %s: %w", id, err)
	}

	return nil
}

// CancelWriteOff implements zsubs.InvoicesClient.CancelWriteOff.
func (c *InvoicesClient) CancelWriteOff(ctx context.Context, id string) error {
	_, err := c.postAction(ctx, id, "cancelwriteoff", nil)
	if err != nil {
		return fmt.Errorf("cancelling write off of invoice %s: %w", id, err)
	}

	return nil
}

// Email implements zsubs.InvoicesClient.Email.
func (c *InvoicesClient) Email(ctx context.Context, id string, email *zsubs.InvoiceEmail) error {
	if email == nil {
		email = &zsubs.InvoiceEmail{}
	}

	_, err := c.postAction(ctx, id, "email", email)
	if err != nil {
		return fmt.Errorf("emailing invoice %s: %w", id, err)
	}

	return nil
}
