package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/fivetwenty-io/zsubs-client/internal/auth"
	"github.com/fivetwenty-io/zsubs-client/internal/constants"
	"github.com/fivetwenty-io/zsubs-client/internal/http"
	"github.com/fivetwenty-io/zsubs-client/pkg/zsubs"
	"go.opentelemetry.io/otel/trace"
)

var _ zsubs.Client = (*Client)(nil)

// Client implements the zsubs.Client interface.
type Client struct {
	httpClient   *http.Client
	tokenManager auth.TokenManager
	baseURL      string
	logger       zsubs.Logger
	registry     *zsubs.Registry
	cache        *zsubs.CacheManager
	policy       *zsubs.CachingPolicy
	maxPages     int
	metrics      *zsubs.Metrics
	tracer       trace.Tracer
	closer       io.Closer

	errMutex sync.Mutex
	lastErr  error

	// Resource clients
	customers      *CustomersClient
	contactPersons *CustomerScopedClient
	cards          *CustomerScopedClient
	plans          *PlansClient
	addons         *StatusClient
	coupons        *StatusClient
	products       *StatusClient
	payments       *ResourceClient
	invoices       *InvoicesClient
	subscriptions  *SubscriptionsClient
	hostedPages    *HostedPagesClient
}

// createHTTPClientOptions builds HTTP client options from config.
func createHTTPClientOptions(config *zsubs.Config) []http.Option {
	var httpOpts []http.Option

	if config.Logger != nil {
		httpOpts = append(httpOpts, http.WithLogger(config.Logger))
	}

	if config.Debug {
		httpOpts = append(httpOpts, http.WithDebug(true))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, http.WithUserAgent(config.UserAgent))
	}

	if config.HTTPTimeout > 0 {
		httpOpts = append(httpOpts, http.WithTimeout(config.HTTPTimeout))
	}

	if config.OrganizationID != "" {
		httpOpts = append(httpOpts, http.WithHeaders(map[string]string{
			zsubs.OrganizationHeader: config.OrganizationID,
		}))
	}

	if config.RetryMax > 0 {
		retryWaitMin := constants.DefaultRetryWaitMin
		retryWaitMax := constants.DefaultRetryWaitMax

		if config.RetryWaitMin > 0 {
			retryWaitMin = config.RetryWaitMin
		}

		if config.RetryWaitMax > 0 {
			retryWaitMax = config.RetryWaitMax
		}

		httpOpts = append(httpOpts, http.WithRetryConfig(config.RetryMax, retryWaitMin, retryWaitMax))
	}

	if config.Interceptors != nil {
		httpOpts = append(httpOpts, http.WithInterceptors(config.Interceptors))
	}

	if config.TracerProvider != nil {
		httpOpts = append(httpOpts, http.WithTracerProvider(config.TracerProvider))
	}

	return httpOpts
}

// createCacheManager builds the list page cache selected by config.
func createCacheManager(config *zsubs.Config) (*zsubs.CacheManager, io.Closer, error) {
	cacheConfig := config.Cache
	if cacheConfig == nil {
		cacheConfig = zsubs.DefaultCacheConfig()
	}

	backend, err := zsubs.NewCacheFromConfig(cacheConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("creating cache: %w", err)
	}

	options := zsubs.DefaultCacheOptions()
	if cacheConfig.Options != nil {
		opts := *cacheConfig.Options
		options = &opts
	}

	if config.CacheTTL > 0 {
		options.TTL = config.CacheTTL
	}

	manager := zsubs.NewCacheManager(backend, options)
	manager.SetMetrics(config.Metrics)

	closer, _ := backend.(io.Closer)

	return manager, closer, nil
}

// New creates a new API client.
func New(ctx context.Context, config *zsubs.Config) (*Client, error) {
	if config == nil {
		return nil, zsubs.ErrConfigRequired
	}

	endpoint := config.APIEndpoint
	if endpoint == "" {
		endpoint = zsubs.DefaultAPIEndpoint
	}

	var tokenManager auth.TokenManager
	if config.AccessToken != "" {
		tokenManager = auth.NewStaticTokenManager(config.AccessToken)
	}

	return NewWithTokenManager(ctx, config, endpoint, tokenManager)
}

// NewWithTokenManager creates a client authenticating through tokenManager.
// A nil tokenManager sends requests without credentials.
func NewWithTokenManager(ctx context.Context, config *zsubs.Config, endpoint string, tokenManager auth.TokenManager) (*Client, error) {
	if config == nil {
		return nil, zsubs.ErrConfigRequired
	}

	if endpoint == "" {
		return nil, zsubs.ErrAPIEndpointRequired
	}

	registry := config.Registry
	if registry == nil {
		var err error

		registry, err = zsubs.DefaultRegistry()
		if err != nil {
			return nil, fmt.Errorf("loading entity definitions: %w", err)
		}
	}

	cache, closer, err := createCacheManager(config)
	if err != nil {
		return nil, err
	}

	maxPages := config.MaxPages
	if maxPages <= 0 {
		maxPages = zsubs.DefaultMaxPages
	}

	logger := config.Logger
	if logger == nil {
		logger = nopLogger{}
	}

	client := &Client{
		httpClient:   http.NewClient(endpoint, tokenManager, createHTTPClientOptions(config)...),
		tokenManager: tokenManager,
		baseURL:      endpoint,
		logger:       logger,
		registry:     registry,
		cache:        cache,
		policy:       zsubs.DefaultCachingPolicy(),
		maxPages:     maxPages,
		metrics:      config.Metrics,
		tracer:       newTracer(config.TracerProvider),
		closer:       closer,
	}

	client.initializeResourceClients()

	return client, nil
}

// initializeResourceClients initializes all resource-specific clients.
func (c *Client) initializeResourceClients() {
	c.customers = NewCustomersClient(c)
	c.contactPersons = NewCustomerScopedClient(c, zsubs.KindContactPerson)
	c.cards = NewCustomerScopedClient(c, zsubs.KindCard)
	c.plans = NewPlansClient(c)
	c.addons = NewStatusClient(c, zsubs.KindAddon)
	c.coupons = NewStatusClient(c, zsubs.KindCoupon)
	c.products = NewStatusClient(c, zsubs.KindProduct)
	c.payments = NewResourceClient(c, zsubs.KindPayment)
	c.invoices = NewInvoicesClient(c)
	c.subscriptions = NewSubscriptionsClient(c)
	c.hostedPages = NewHostedPagesClient(c)
}

// Registry implements zsubs.Client.Registry.
func (c *Client) Registry() *zsubs.Registry {
	return c.registry
}

// Cache implements zsubs.Client.Cache.
func (c *Client) Cache() *zsubs.CacheManager {
	return c.cache
}

// Err implements zsubs.Client.Err.
func (c *Client) Err() error {
	c.errMutex.Lock()
	defer c.errMutex.Unlock()

	return c.lastErr
}

func (c *Client) setErr(err error) {
	c.errMutex.Lock()
	c.lastErr = err
	c.errMutex.Unlock()
}

// Close releases the cache backend connection, if any.
func (c *Client) Close() error {
	if c.closer == nil {
		return nil
	}

	err := c.closer.Close()
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("closing cache: %w", err)
	}

	return nil
}

// BaseURL returns the API endpoint the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Resource client accessors

// Customers implements zsubs.Client.Customers.
func (c *Client) Customers() zsubs.CustomersClient {
	return c.customers
}

// ContactPersons implements zsubs.Client.ContactPersons.
func (c *Client) ContactPersons() zsubs.CustomerScopedClient {
	return c.contactPersons
}

// Cards implements zsubs.Client.Cards.
func (c *Client) Cards() zsubs.CustomerScopedClient {
	return c.cards
}

// Plans implements zsubs.Client.Plans.
func (c *Client) Plans() zsubs.PlansClient {
	return c.plans
}

// Addons implements zsubs.Client.Addons.
func (c *Client) Addons() zsubs.StatusClient {
	return c.addons
}

// Coupons implements zsubs.Client.Coupons.
func (c *Client) Coupons() zsubs.StatusClient {
	return c.coupons
}

// Products implements zsubs.Client.Products.
func (c *Client) Products() zsubs.StatusClient {
	return c.products
}

// Payments implements zsubs.Client.Payments.
func (c *Client) Payments() zsubs.ResourceClient {
	return c.payments
}

// Invoices implements zsubs.Client.Invoices.
func (c *Client) Invoices() zsubs.InvoicesClient {
	return c.invoices
}

// Subscriptions implements zsubs.Client.Subscriptions.
func (c *Client) Subscriptions() zsubs.SubscriptionsClient {
	return c.subscriptions
}

// HostedPages implements zsubs.Client.HostedPages.
func (c *Client) HostedPages() zsubs.HostedPagesClient {
	return c.hostedPages
}

type nopLogger struct{}

func (nopLogger) Debug(string, map[string]interface{}) {}
func (nopLogger) Info(string, map[string]interface{})  {}
func (nopLogger) Warn(string, map[string]interface{})  {}
func (nopLogger) Error(string, map[string]interface{}) {}
