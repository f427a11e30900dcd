package client

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/zsubs-client/pkg/zsubs"
)

// Create implements zsubs.EntityFactory.Create.
func (c *Client) Create(kind zsubs.Kind, attrs *zsubs.Map) (zsubs.Record, error) {
	rec, err := c.newRecord(kind, attrs)
	if err != nil {
		return nil, err
	}

	return rec, nil
}

// TryCreate implements zsubs.EntityFactory.TryCreate.
func (c *Client) TryCreate(kind zsubs.Kind, attrs *zsubs.Map) zsubs.Record {
	rec, err := c.newRecord(kind, attrs)
	if err != nil {
		return nil
	}

	return rec
}

func (c *Client) newRecord(kind zsubs.Kind, attrs *zsubs.Map) (*Record, error) {
	def, err := c.registry.Lookup(kind)
	if err != nil {
		return nil, err
	}

	rec := newRecord(c, def)

	if attrs.Len() > 0 {
		rec.attrs = c.hydrate(def, attrs)
		rec.state = zsubs.StateHydrated
	}

	return rec, nil
}

// GetEntity implements zsubs.EntityFactory.GetEntity.
func (c *Client) GetEntity(ctx context.Context, kind zsubs.Kind, id string) (zsubs.Record, error) {
	if id == "" {
		return nil, fmt.Errorf("getting %s: %w", kind, zsubs.ErrMissingIdentifier)
	}

	rec, err := c.newRecord(kind, nil)
	if err != nil {
		return nil, err
	}

	err = rec.Load(ctx, id)
	if err != nil {
		return nil, err
	}

	return rec, nil
}

// GetEntityList implements zsubs.EntityFactory.GetEntityList.
func (c *Client) GetEntityList(ctx context.Context, kind zsubs.Kind, params *zsubs.QueryParams) ([]zsubs.Record, error) {
	def, err := c.registry.Lookup(kind)
	if err != nil {
		return nil, err
	}

	items, err := c.ListAll(ctx, def.ListPath, def.Collection, params)
	if err != nil {
		return nil, err
	}

	// Elements of nested collections rarely echo their parent id.
	var scope map[string]string
	if params != nil {
		scope = params.PathParams
	}

	records := make([]zsubs.Record, 0, len(items))

	for _, item := range items {
		rec := newRecord(c, def)
		rec.attrs = c.hydrate(def, item)
		rec.state = zsubs.StateHydrated

		for _, name := range placeholders(def.ListPath) {
			if !rec.attrs.Has(name) && scope[name] != "" {
				rec.attrs.Set(name, scope[name])
			}
		}

		records = append(records, rec)
	}

	return records, nil
}

// hydrate builds the attribute map of a record of def from raw attributes.
func (c *Client) hydrate(def *zsubs.Definition, attrs *zsubs.Map) *zsubs.Map {
	out := zsubs.NewMap()

	attrs.Range(func(key string, value any) bool {
		out.Set(key, c.hydrateValue(def, key, value))

		return true
	})

	return out
}

// hydrateValue converts value into sub-records when def declares name as a
// nested field. Values that do not have the declared shape, and elements
// whose kind is not registered, are kept raw.
func (c *Client) hydrateValue(def *zsubs.Definition, name string, value any) any {
	if _, ok := value.(zsubs.Record); ok {
		return value
	}

	value = zsubs.Normalize(value)

	field, ok := def.NestedField(name)
	if !ok {
		return zsubs.CloneValue(value)
	}

	if !field.Many {
		return c.hydrateOne(field.Kind, value)
	}

	switch v := value.(type) {
	case zsubs.List:
		out := make(zsubs.List, len(v))
		for i, element := range v {
			out[i] = c.hydrateOne(field.Kind, element)
		}

		return out
	case *zsubs.Map:
		out := zsubs.NewMap()

		v.Range(func(key string, element any) bool {
			out.Set(key, c.hydrateOne(field.Kind, element))

			return true
		})

		return out
	default:
		return zsubs.CloneValue(value)
	}
}

func (c *Client) hydrateOne(kind zsubs.Kind, value any) any {
	if rec, ok := value.(zsubs.Record); ok {
		return rec
	}

	m, ok := value.(*zsubs.Map)
	if !ok {
		return zsubs.CloneValue(value)
	}

	if rec := c.TryCreate(kind, m); rec != nil {
		return rec
	}

	return m.Clone()
}
