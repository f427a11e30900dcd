package client

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/zsubs-client/pkg/zsubs"
)

// HostedPagesClient implements zsubs.HostedPagesClient.
type HostedPagesClient struct {
	resources *ResourceClient
}

// NewHostedPagesClient creates a new hosted pages client.
func NewHostedPagesClient(client *Client) *HostedPagesClient {
	return &HostedPagesClient{resources: NewResourceClient(client, zsubs.KindHostedPage)}
}

// Get implements zsubs.HostedPagesClient.Get.
func (c *HostedPagesClient) Get(ctx context.Context, hostedPageID string) (zsubs.Record, error) {
	return c.resources.Get(ctx, hostedPageID)
}

// List implements zsubs.HostedPagesClient.List.
func (c *HostedPagesClient) List(ctx context.Context, params *zsubs.QueryParams) ([]zsubs.Record, error) {
	return c.resources.List(ctx, params)
}

// NewSubscription implements zsubs.HostedPagesClient.NewSubscription. The
// payload goes through the hosted page pre-save hook and create template.
func (c *HostedPagesClient) NewSubscription(ctx context.Context, data *zsubs.Map) (zsubs.Record, error) {
	rec, err := c.resources.Create(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("creating subscription hosted page: %w", err)
	}

	return rec, nil
}

// UpdateSubscription implements zsubs.HostedPagesClient.UpdateSubscription.
// data must carry the subscription_id.
func (c *HostedPagesClient) UpdateSubscription(ctx context.Context, data *zsubs.Map) (zsubs.Record, error) {
	rec, err := c.resources.Update(ctx, data.String("subscription_id"), data)
	if err != nil {
		return nil, fmt.Errorf("creating subscription update hosted page: %w", err)
	}

	return rec, nil
}

// UpdateCard implements zsubs.HostedPagesClient.UpdateCard.
func (c *HostedPagesClient) UpdateCard(ctx context.Context, data *zsubs.Map) (zsubs.Record, error) {
	rec, err := c.post(ctx, "hostedpages/updatecard", data)
	if err != nil {
		return nil, fmt.Errorf("creating card update hosted page: %w", err)
	}

	return rec, nil
}

// BuyOneTimeAddon implements zsubs.HostedPagesClient.BuyOneTimeAddon.
func (c *HostedPagesClient) BuyOneTimeAddon(ctx context.Context, data *zsubs.Map) (zsubs.Record, error) {
	rec, err := c.post(ctx, "hostedpages/buyonetimeaddon", data)
	if err != nil {
		return nil, fmt.Errorf("creating one-time addon hosted page: %w", err)
	}

	return rec, nil
}

func (c *HostedPagesClient) post(ctx context.Context, path string, data *zsubs.Map) (zsubs.Record, error) {
	env, err := c.resources.client.action(ctx, path, data)
	if err != nil {
		return nil, err
	}

	payload, ok := env.Payload(string(zsubs.KindHostedPage))
	if !ok {
		return nil, fmt.Errorf("%w %q", zsubs.ErrMissingPayload, zsubs.KindHostedPage)
	}

	return c.resources.New(payload)
}
