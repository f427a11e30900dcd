package client

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/zsubs-client/pkg/zsubs"
)

// ResourceClient implements zsubs.ResourceClient for any registered kind.
// Scope attributes, such as the customer owning a card, are added to every
// record the client builds and to the path parameters of its lists.
type ResourceClient struct {
	client *Client
	kind   zsubs.Kind
	scope  map[string]string
}

// NewResourceClient creates a new resource client for kind.
func NewResourceClient(client *Client, kind zsubs.Kind) *ResourceClient {
	return &ResourceClient{
		client: client,
		kind:   kind,
	}
}

func (c *ResourceClient) scoped(name, value string) *ResourceClient {
	scope := make(map[string]string, len(c.scope)+1)
	for k, v := range c.scope {
		scope[k] = v
	}

	scope[name] = value

	return &ResourceClient{client: c.client, kind: c.kind, scope: scope}
}

// Kind implements zsubs.ResourceClient.Kind.
func (c *ResourceClient) Kind() zsubs.Kind {
	return c.kind
}

// New implements zsubs.ResourceClient.New.
func (c *ResourceClient) New(attrs *zsubs.Map) (zsubs.Record, error) {
	return c.newRecord(attrs)
}

func (c *ResourceClient) newRecord(attrs *zsubs.Map) (*Record, error) {
	rec, err := c.client.newRecord(c.kind, attrs)
	if err != nil {
		return nil, err
	}

	for name, value := range c.scope {
		if rec.attrs.String(name) == "" {
			rec.attrs.Set(name, value)
		}
	}

	return rec, nil
}

// Get implements zsubs.ResourceClient.Get.
func (c *ResourceClient) Get(ctx context.Context, id string) (zsubs.Record, error) {
	if id == "" {
		return nil, fmt.Errorf("getting %s: %w", c.kind, zsubs.ErrMissingIdentifier)
	}

	rec, err := c.newRecord(nil)
	if err != nil {
		return nil, err
	}

	err = rec.Load(ctx, id)
	if err != nil {
		return nil, err
	}

	return rec, nil
}

// List implements zsubs.ResourceClient.List.
func (c *ResourceClient) List(ctx context.Context, params *zsubs.QueryParams) ([]zsubs.Record, error) {
	query := params.Clone()
	for name, value := range c.scope {
		query.WithPathParam(name, value)
	}

	return c.client.GetEntityList(ctx, c.kind, query)
}

// Create implements zsubs.ResourceClient.Create. The create request is sent
// even when attrs carry the identifier, as they do for code-keyed kinds.
func (c *ResourceClient) Create(ctx context.Context, attrs *zsubs.Map) (zsubs.Record, error) {
	rec, err := c.newRecord(attrs)
	if err != nil {
		return nil, err
	}

	err = rec.saveAs(ctx, nil, true)
	if err != nil {
		return nil, err
	}

	return rec, nil
}

// Update implements zsubs.ResourceClient.Update. Only attrs are sent,
// projected with the update template.
func (c *ResourceClient) Update(ctx context.Context, id string, attrs *zsubs.Map) (zsubs.Record, error) {
	if id == "" {
		return nil, fmt.Errorf("updating %s: %w", c.kind, zsubs.ErrMissingIdentifier)
	}

	rec, err := c.newRecord(attrs)
	if err != nil {
		return nil, err
	}

	rec.SetID(id)

	err = rec.saveAs(ctx, nil, false)
	if err != nil {
		return nil, err
	}

	return rec, nil
}

// Delete implements zsubs.ResourceClient.Delete.
func (c *ResourceClient) Delete(ctx context.Context, id string) error {
	rec, err := c.newRecord(nil)
	if err != nil {
		return err
	}

	rec.SetID(id)

	return rec.Delete(ctx)
}

// entityPath resolves pattern for the record id of this client's kind.
func (c *ResourceClient) entityPath(pattern, id string) (string, error) {
	if id == "" {
		return "", fmt.Errorf("%s: %w", c.kind, zsubs.ErrMissingIdentifier)
	}

	return resolvePath(pattern, id, nil, c.scope)
}

// collection returns the resolved list path of the kind.
func (c *ResourceClient) collection() (string, error) {
	def, err := c.client.registry.Lookup(c.kind)
	if err != nil {
		return "", err
	}

	return resolvePath(def.ListPath, "", nil, c.scope)
}

// postAction posts body to <collection>/{id}/<action>.
func (c *ResourceClient) postAction(ctx context.Context, id, action string, body interface{}) (*zsubs.Envelope, error) {
	base, err := c.collection()
	if err != nil {
		return nil, err
	}

	path, err := c.entityPath(base+"/{id}/"+action, id)
	if err != nil {
		return nil, err
	}

	env, err := c.client.action(ctx, path, body)
	if err != nil {
		return nil, err
	}

	c.client.invalidateList(ctx, base)

	return env, nil
}

// StatusClient implements zsubs.StatusClient.
type StatusClient struct {
	*ResourceClient
}

// NewStatusClient creates a client for a kind with active/inactive status.
func NewStatusClient(client *Client, kind zsubs.Kind) *StatusClient {
	return &StatusClient{ResourceClient: NewResourceClient(client, kind)}
}

// MarkActive implements zsubs.StatusClient.MarkActive.
func (c *StatusClient) MarkActive(ctx context.Context, id string) error {
	_, err := c.postAction(ctx, id, "markasactive", nil)
	if err != nil {
		return fmt.Errorf("marking %s %s active: %w", c.kind, id, err)
	}

	return nil
}

// MarkInactive implements zsubs.StatusClient.MarkInactive.
func (c *StatusClient) MarkInactive(ctx context.Context, id string) error {
	_, err := c.postAction(ctx, id, "markasinactive", nil)
	if err != nil {
		return fmt.Errorf("marking %s %s inactive: %w", c.kind, id, err)
	}

	return nil
}

// CustomerScopedClient implements zsubs.CustomerScopedClient.
type CustomerScopedClient struct {
	client *Client
	kind   zsubs.Kind
}

// NewCustomerScopedClient creates a client for a kind living under customers.
func NewCustomerScopedClient(client *Client, kind zsubs.Kind) *CustomerScopedClient {
	return &CustomerScopedClient{client: client, kind: kind}
}

// ForCustomer implements zsubs.CustomerScopedClient.ForCustomer.
func (c *CustomerScopedClient) ForCustomer(customerID string) zsubs.ResourceClient {
	return NewResourceClient(c.client, c.kind).scoped("customer_id", customerID)
}
