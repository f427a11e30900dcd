package client

import (
	"context"
	"fmt"
	"net/url"

	"github.com/fivetwenty-io/zsubs-client/pkg/zsubs"
)

// SubscriptionsClient implements zsubs.SubscriptionsClient.
type SubscriptionsClient struct {
	*ResourceClient
}

// NewSubscriptionsClient creates a new subscriptions client.
func NewSubscriptionsClient(client *Client) *SubscriptionsClient {
	return &SubscriptionsClient{ResourceClient: NewResourceClient(client, zsubs.KindSubscription)}
}

// ListByCustomer implements zsubs.SubscriptionsClient.ListByCustomer.
func (c *SubscriptionsClient) ListByCustomer(ctx context.Context, customerID string) ([]zsubs.Record, error) {
	subscriptions, err := c.List(ctx, zsubs.NewQueryParams().WithFilter("customer_id", customerID))
	if err != nil {
		return nil, fmt.Errorf("listing subscriptions of customer %s: %w", customerID, err)
	}

	return subscriptions, nil
}

// Reactivate implements zsubs.SubscriptionsClient.Reactivate.
func (c *SubscriptionsClient) Reactivate(ctx context.Context, id string) (zsubs.Record, error) {
	env, err := c.postAction(ctx, id, "reactivate", nil)
	if err != nil {
		return nil, fmt.Errorf("reactivating subscription %s: %w", id, err)
	}

	return c.resultRecord(ctx, env, id)
}

// AssociateCoupon implements zsubs.SubscriptionsClient.AssociateCoupon.
func (c *SubscriptionsClient) AssociateCoupon(ctx context.Context, id, couponCode string) (zsubs.Record, error) {
	if couponCode == "" {
		return nil, fmt.Errorf("associating coupon: %w", zsubs.ErrMissingIdentifier)
	}

	env, err := c.postAction(ctx, id, "coupons/"+url.PathEscape(couponCode), nil)
	if err != nil {
		return nil, fmt.Errorf("associating coupon %s with subscription %s: %w", couponCode, id, err)
	}

	return c.resultRecord(ctx, env, id)
}

// BuyOneTimeAddon implements zsubs.SubscriptionsClient.BuyOneTimeAddon. It
// returns the response body, which holds the generated invoice.
func (c *SubscriptionsClient) BuyOneTimeAddon(ctx context.Context, id string, data *zsubs.Map) (*zsubs.Map, error) {
	env, err := c.postAction(ctx, id, "buyonetimeaddon", data)
	if err != nil {
		return nil, fmt.Errorf("buying one-time addon for subscription %s: %w", id, err)
	}

	return env.Body, nil
}

// resultRecord builds the subscription returned by an action, loading it
// when the response only carries a message.
func (c *SubscriptionsClient) resultRecord(ctx context.Context, env *zsubs.Envelope, id string) (zsubs.Record, error) {
	if payload, ok := env.Payload(string(zsubs.KindSubscription)); ok {
		return c.New(payload)
	}

	return c.Get(ctx, id)
}
