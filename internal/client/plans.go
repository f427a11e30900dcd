package client

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/zsubs-client/pkg/zsubs"
)

// PlansClient implements zsubs.PlansClient.
type PlansClient struct {
	*StatusClient
}

// NewPlansClient creates a new plans client.
func NewPlansClient(client *Client) *PlansClient {
	return &PlansClient{StatusClient: NewStatusClient(client, zsubs.KindPlan)}
}

// ListAddons implements zsubs.PlansClient.ListAddons. The API has no filter
// for it, so every addon is listed and matched on its plans.
func (c *PlansClient) ListAddons(ctx context.Context, planCode string) ([]zsubs.Record, error) {
	if planCode == "" {
		return nil, fmt.Errorf("listing plan addons: %w", zsubs.ErrMissingIdentifier)
	}

	addons, err := c.client.addons.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("listing addons of plan %s: %w", planCode, err)
	}

	var matched []zsubs.Record

	for _, addon := range addons {
		if addonAppliesTo(addon, planCode) {
			matched = append(matched, addon)
		}
	}

	return matched, nil
}

func addonAppliesTo(addon zsubs.Record, planCode string) bool {
	attrs := addon.Attributes()
	if attrs.Bool("applicable_to_all_plans") {
		return true
	}

	for _, element := range attrs.List("plans") {
		if plan, ok := element.(*zsubs.Map); ok && plan.String("plan_code") == planCode {
			return true
		}
	}

	return false
}
