// Package zsclient provides the main entry point for creating subscription billing API clients
package zsclient

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fivetwenty-io/zsubs-client/internal/client"
	"github.com/fivetwenty-io/zsubs-client/pkg/zsubs"
)

// ErrAccessTokenRequired is returned when no access token is configured.
var ErrAccessTokenRequired = errors.New("access token is required")

// New creates a new API client. The config is copied; an endpoint without a
// scheme is assumed to be https.
func New(ctx context.Context, config *zsubs.Config) (zsubs.Client, error) {
	if config == nil {
		return nil, zsubs.ErrConfigRequired
	}

	if config.AccessToken == "" {
		return nil, ErrAccessTokenRequired
	}

	normalized := *config
	normalized.APIEndpoint = normalizeEndpoint(config.APIEndpoint)

	c, err := client.New(ctx, &normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return c, nil
}

// normalizeEndpoint trims trailing slashes and adds a missing scheme. An empty
// endpoint selects zsubs.DefaultAPIEndpoint.
func normalizeEndpoint(endpoint string) string {
	endpoint = strings.TrimRight(strings.TrimSpace(endpoint), "/")
	if endpoint == "" {
		return zsubs.DefaultAPIEndpoint
	}

	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "https://" + endpoint
	}

	return endpoint
}

// NewWithToken creates a client for the default endpoint.
func NewWithToken(ctx context.Context, token, organizationID string) (zsubs.Client, error) {
	return New(ctx, &zsubs.Config{
		AccessToken:    token,
		OrganizationID: organizationID,
	})
}

// NewWithEndpoint creates a client for a specific endpoint, such as a
// regional data center.
func NewWithEndpoint(ctx context.Context, endpoint, token, organizationID string) (zsubs.Client, error) {
	return New(ctx, &zsubs.Config{
		APIEndpoint:    endpoint,
		AccessToken:    token,
		OrganizationID: organizationID,
	})
}
