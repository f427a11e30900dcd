package zsubs

import (
	"context"
	"encoding/json"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// DefaultAPIEndpoint is the base URL of the hosted API.
const DefaultAPIEndpoint = "https://subscriptions.zoho.com/api/v1"

// OrganizationHeader selects the organization a request acts on.
const OrganizationHeader = "X-com-zoho-subscriptions-organizationid"

// DefaultMaxPages bounds how many pages a single list walk may fetch.
const DefaultMaxPages = 100

// RecordState is the lifecycle state of a Record.
type RecordState int

const (
	// StateUnbound records have not been loaded or saved yet.
	StateUnbound RecordState = iota
	// StateHydrated records hold attributes returned by the API.
	StateHydrated
	// StateDeleted records were deleted and refuse further saves.
	StateDeleted
)

func (s RecordState) String() string {
	switch s {
	case StateUnbound:
		return "unbound"
	case StateHydrated:
		return "hydrated"
	case StateDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// Record is one entity instance bound to a client. Attribute values may be
// nested Records, Lists or Maps of Records, or raw tree values.
type Record interface {
	json.Marshaler

	Kind() Kind
	Definition() *Definition
	ID() string
	SetID(id string)
	State() RecordState

	Get(name string) (any, bool)
	String(name string) string
	Set(name string, value any)
	SetAttributes(attrs *Map)
	Nested(name string) Record
	NestedList(name string) []Record

	// Attributes returns a deep copy with nested Records flattened.
	Attributes() *Map
	Decode(v any) error

	Load(ctx context.Context, id string) error
	Save(ctx context.Context) error
	SaveWith(ctx context.Context, t *Template) error
	Delete(ctx context.Context) error
}

// EntityFactory builds Records from registry definitions.
type EntityFactory interface {
	// Create builds a Record of kind hydrated from attrs. It is unbound
	// until loaded or saved when attrs is empty.
	Create(kind Kind, attrs *Map) (Record, error)
	// TryCreate is Create returning nil for unknown kinds.
	TryCreate(kind Kind, attrs *Map) Record
	GetEntity(ctx context.Context, kind Kind, id string) (Record, error)
	GetEntityList(ctx context.Context, kind Kind, params *QueryParams) ([]Record, error)
}

// ResourceClient provides CRUD access to one kind.
type ResourceClient interface {
	Kind() Kind
	New(attrs *Map) (Record, error)
	Get(ctx context.Context, id string) (Record, error)
	List(ctx context.Context, params *QueryParams) ([]Record, error)
	Create(ctx context.Context, attrs *Map) (Record, error)
	Update(ctx context.Context, id string, attrs *Map) (Record, error)
	Delete(ctx context.Context, id string) error
}

// StatusClient is a ResourceClient whose entities can be switched between
// active and inactive.
type StatusClient interface {
	ResourceClient
	MarkActive(ctx context.Context, id string) error
	MarkInactive(ctx context.Context, id string) error
}

// CustomerScopedClient serves kinds living under a customer, such as cards.
type CustomerScopedClient interface {
	ForCustomer(customerID string) ResourceClient
}

// CustomersClient defines operations for customers.
type CustomersClient interface {
	ResourceClient
	ListByEmail(ctx context.Context, email string) ([]Record, error)
	// GetByEmail returns the first customer with email, or ErrNotFound.
	GetByEmail(ctx context.Context, email string) (Record, error)
}

// PlansClient defines operations for plans.
type PlansClient interface {
	StatusClient
	// ListAddons returns the addons applicable to planCode.
	ListAddons(ctx context.Context, planCode string) ([]Record, error)
}

// InvoicesClient defines operations for invoices.
type InvoicesClient interface {
	ResourceClient
	ListByCustomer(ctx context.Context, customerID string) ([]Record, error)
	PDF(ctx context.Context, id string) ([]byte, error)
	Collect(ctx context.Context, id string) (*Map, error)
	Void(ctx context.Context, id string) error
	ConvertToOpen(ctx context.Context, id string) error
	WriteOff(ctx context.Context, id string) error
	CancelWriteOff(ctx context.Context, id string) error
	Email(ctx context.Context, id string, email *InvoiceEmail) error
}

// SubscriptionsClient defines operations for subscriptions.
type SubscriptionsClient interface {
	ResourceClient
	ListByCustomer(ctx context.Context, customerID string) ([]Record, error)
	Reactivate(ctx context.Context, id string) (Record, error)
	AssociateCoupon(ctx context.Context, id, couponCode string) (Record, error)
	BuyOneTimeAddon(ctx context.Context, id string, data *Map) (*Map, error)
}

// HostedPagesClient defines operations for hosted payment pages.
type HostedPagesClient interface {
	Get(ctx context.Context, hostedPageID string) (Record, error)
	List(ctx context.Context, params *QueryParams) ([]Record, error)
	NewSubscription(ctx context.Context, data *Map) (Record, error)
	UpdateSubscription(ctx context.Context, data *Map) (Record, error)
	UpdateCard(ctx context.Context, data *Map) (Record, error)
	BuyOneTimeAddon(ctx context.Context, data *Map) (Record, error)
}

// ResourceClients provides access to all resource-specific clients.
type ResourceClients interface {
	Customers() CustomersClient
	ContactPersons() CustomerScopedClient
	Cards() CustomerScopedClient
	Plans() PlansClient
	Addons() StatusClient
	Coupons() StatusClient
	Products() StatusClient
	Payments() ResourceClient
	Invoices() InvoicesClient
	Subscriptions() SubscriptionsClient
	HostedPages() HostedPagesClient
}

// Client is the API client.
type Client interface {
	EntityFactory
	ResourceClients

	// ListAll walks every page of path and returns the Map elements found
	// under key.
	ListAll(ctx context.Context, path, key string, params *QueryParams) ([]*Map, error)
	// Call performs a request and returns the checked envelope.
	Call(ctx context.Context, method, path string, params *QueryParams, body *Map) (*Envelope, error)

	Registry() *Registry
	Cache() *CacheManager
	// Err returns the error of the last request, or nil after a success.
	Err() error
	Close() error
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Config represents client configuration.
//
// Only AccessToken is required. Requests carry it as
// "Authorization: Zoho-oauthtoken <token>"; obtaining or refreshing the token
// is left to the caller.
type Config struct {
	// APIEndpoint: base URL of the API. Defaults to DefaultAPIEndpoint.
	APIEndpoint string
	// AccessToken: OAuth access token sent with every request.
	AccessToken string
	// OrganizationID: sent in OrganizationHeader when set.
	OrganizationID string

	// HTTPTimeout: per-request timeout of the underlying HTTP client.
	HTTPTimeout time.Duration
	// RetryMax: retries for transient failures (>=500, 429 and connection
	// errors). Zero disables retries.
	RetryMax int
	// RetryWaitMin and RetryWaitMax bound the backoff when RetryMax > 0.
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	// Debug: logs every request and response through Logger.
	Debug bool
	// Logger: structured logger; nil discards logs.
	Logger Logger
	// UserAgent overrides the default User-Agent header.
	UserAgent string

	// Cache selects the list page cache backend. Nil uses an in-memory cache.
	Cache *CacheConfig
	// CacheTTL: lifetime of cached pages. Defaults to DefaultCacheTTL.
	CacheTTL time.Duration
	// MaxPages: upper bound of pages per list walk. Defaults to DefaultMaxPages.
	MaxPages int

	// Registry: entity definitions. Nil uses DefaultRegistry().
	Registry *Registry
	// Metrics: Prometheus collectors updated by the client when set.
	Metrics *Metrics
	// TracerProvider: source of spans around record operations and list
	// walks. Defaults to the global provider.
	TracerProvider trace.TracerProvider
	// Interceptors run around every HTTP exchange.
	Interceptors *InterceptorChain
}
