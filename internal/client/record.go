package client

import (
	"context"
	"encoding/json"
	"fmt"
	nethttp "net/http"

	"github.com/fivetwenty-io/zsubs-client/pkg/zsubs"
)

// Record implements zsubs.Record for every kind; the definition supplies
// paths, templates, the nested schema and the pre-save hook.
//
// A Record is not safe for concurrent use.
type Record struct {
	client *Client
	def    *zsubs.Definition
	attrs  *zsubs.Map
	state  zsubs.RecordState
}

var _ zsubs.Record = (*Record)(nil)

func newRecord(client *Client, def *zsubs.Definition) *Record {
	return &Record{
		client: client,
		def:    def,
		attrs:  zsubs.NewMap(),
		state:  zsubs.StateUnbound,
	}
}

// Kind implements zsubs.Record.Kind.
func (r *Record) Kind() zsubs.Kind {
	return r.def.Kind
}

// Definition implements zsubs.Record.Definition.
func (r *Record) Definition() *zsubs.Definition {
	return r.def
}

// ID implements zsubs.Record.ID.
func (r *Record) ID() string {
	return r.attrs.String(r.def.IDField)
}

// SetID implements zsubs.Record.SetID.
func (r *Record) SetID(id string) {
	r.attrs.Set(r.def.IDField, id)
}

// State implements zsubs.Record.State.
func (r *Record) State() zsubs.RecordState {
	return r.state
}

// Get implements zsubs.Record.Get.
func (r *Record) Get(name string) (any, bool) {
	return r.attrs.Get(name)
}

// String implements zsubs.Record.String.
func (r *Record) String(name string) string {
	return r.attrs.String(name)
}

// Set implements zsubs.Record.Set. Values under declared nested fields
// become sub-records.
func (r *Record) Set(name string, value any) {
	r.attrs.Set(name, r.client.hydrateValue(r.def, name, value))
}

// SetAttributes implements zsubs.Record.SetAttributes.
func (r *Record) SetAttributes(attrs *zsubs.Map) {
	attrs.Range(func(key string, value any) bool {
		r.Set(key, value)

		return true
	})
}

// Nested implements zsubs.Record.Nested.
func (r *Record) Nested(name string) zsubs.Record {
	rec, _ := r.attrs.Value(name).(zsubs.Record)

	return rec
}

// NestedList implements zsubs.Record.NestedList.
func (r *Record) NestedList(name string) []zsubs.Record {
	var out []zsubs.Record

	switch v := r.attrs.Value(name).(type) {
	case zsubs.List:
		for _, element := range v {
			if rec, ok := element.(zsubs.Record); ok {
				out = append(out, rec)
			}
		}
	case *zsubs.Map:
		v.Range(func(_ string, value any) bool {
			if rec, ok := value.(zsubs.Record); ok {
				out = append(out, rec)
			}

			return true
		})
	}

	return out
}

// Attributes implements zsubs.Record.Attributes.
func (r *Record) Attributes() *zsubs.Map {
	flat, _ := flatten(r.attrs).(*zsubs.Map)

	return flat
}

// Decode implements zsubs.Record.Decode.
func (r *Record) Decode(v any) error {
	return r.Attributes().Decode(v)
}

// MarshalJSON implements json.Marshaler.
func (r *Record) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(r.Attributes())
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", r.def.Kind, err)
	}

	return data, nil
}

// flatten deep-copies v replacing sub-records by their attributes.
func flatten(v any) any {
	switch t := v.(type) {
	case zsubs.Record:
		return t.Attributes()
	case *zsubs.Map:
		out := zsubs.NewMap()

		t.Range(func(key string, value any) bool {
			out.Set(key, flatten(value))

			return true
		})

		return out
	case zsubs.List:
		out := make(zsubs.List, len(t))
		for i, element := range t {
			out[i] = flatten(element)
		}

		return out
	default:
		return zsubs.CloneValue(t)
	}
}

// Load implements zsubs.Record.Load. A failed load leaves the record as it
// was, id included.
func (r *Record) Load(ctx context.Context, id string) error {
	lookup := id
	if lookup == "" {
		lookup = r.attrs.String(r.def.LookupField)
	}

	return r.client.recordOperation(ctx, "load", r.def.Kind, lookup, func(ctx context.Context) error {
		return r.load(ctx, lookup)
	})
}

func (r *Record) load(ctx context.Context, lookup string) error {
	if r.state == zsubs.StateDeleted {
		return fmt.Errorf("loading %s: %w", r.def.Kind, zsubs.ErrRecordDeleted)
	}

	if lookup == "" {
		return fmt.Errorf("loading %s: %w", r.def.Kind, zsubs.ErrMissingIdentifier)
	}

	addr := r.attrs.Clone()
	addr.Set(r.def.LookupField, lookup)

	path, err := resolvePath(r.def.RetrievePath, addr.String(r.def.IDField), addr, nil)
	if err != nil {
		return fmt.Errorf("loading %s: %w", r.def.Kind, err)
	}

	env, _, err := r.client.request(ctx, nethttp.MethodGet, path, nil, nil)
	if err != nil {
		return fmt.Errorf("loading %s: %w", r.def.Kind, err)
	}

	return r.hydrateFrom(env, addr)
}

// Save implements zsubs.Record.Save.
func (r *Record) Save(ctx context.Context) error {
	return r.SaveWith(ctx, nil)
}

// SaveWith implements zsubs.Record.SaveWith. The record is created when it
// has no identifier and updated otherwise.
func (r *Record) SaveWith(ctx context.Context, t *zsubs.Template) error {
	return r.saveAs(ctx, t, r.ID() == "")
}

// saveAs saves the record, forcing the create request when create is set.
// Kinds keyed by a caller-chosen code carry their identifier on creation.
func (r *Record) saveAs(ctx context.Context, t *zsubs.Template, create bool) error {
	return r.client.recordOperation(ctx, "save", r.def.Kind, r.ID(), func(ctx context.Context) error {
		return r.save(ctx, t, create)
	})
}

func (r *Record) save(ctx context.Context, t *zsubs.Template, create bool) error {
	if r.state == zsubs.StateDeleted {
		return fmt.Errorf("saving %s: %w", r.def.Kind, zsubs.ErrRecordDeleted)
	}

	data := r.Attributes()

	if r.def.BeforeSave != nil {
		warnings, err := r.def.BeforeSave(data)
		if err != nil {
			return fmt.Errorf("saving %s: %w", r.def.Kind, err)
		}

		for _, warning := range warnings {
			r.client.logger.Warn("pre-save hook adjusted payload", map[string]interface{}{
				"kind":    string(r.def.Kind),
				"warning": warning,
			})
		}
	}

	payload := zsubs.ProjectMap(data, t)

	var (
		method  string
		pattern string
	)

	if create {
		payload = zsubs.ProjectMap(payload, r.def.CreateTemplate())
		method = nethttp.MethodPost
		pattern = r.def.CreatePath
	} else {
		payload = zsubs.ProjectMap(payload, r.def.UpdateTemplate())
		method = r.def.UpdateMethod
		pattern = r.def.UpdatePath
	}

	path, err := r.path(pattern)
	if err != nil {
		return fmt.Errorf("saving %s: %w", r.def.Kind, err)
	}

	env, _, err := r.client.request(ctx, method, path, nil, payload)
	if err != nil {
		return fmt.Errorf("saving %s: %w", r.def.Kind, err)
	}

	err = r.hydrateFrom(env, r.attrs)
	if err != nil {
		return err
	}

	r.invalidate(ctx)

	return nil
}

// Delete implements zsubs.Record.Delete. Attributes are left untouched.
func (r *Record) Delete(ctx context.Context) error {
	return r.client.recordOperation(ctx, "delete", r.def.Kind, r.ID(), r.delete)
}

func (r *Record) delete(ctx context.Context) error {
	if r.def.NoDelete {
		return fmt.Errorf("deleting %s: %w", r.def.Kind, zsubs.ErrOperationNotSupported)
	}

	if r.ID() == "" {
		return fmt.Errorf("deleting %s: %w", r.def.Kind, zsubs.ErrMissingIdentifier)
	}

	path, err := r.path(r.def.RetrievePath)
	if err != nil {
		return fmt.Errorf("deleting %s: %w", r.def.Kind, err)
	}

	_, _, err = r.client.request(ctx, nethttp.MethodDelete, path, nil, nil)
	if err != nil {
		return fmt.Errorf("deleting %s: %w", r.def.Kind, err)
	}

	r.state = zsubs.StateDeleted
	r.invalidate(ctx)

	return nil
}

// hydrateFrom replaces the attributes with the module payload of env. The
// attributes of addr addressing the record, such as the parent customer of a
// card, are kept when the payload omits them.
func (r *Record) hydrateFrom(env *zsubs.Envelope, addr *zsubs.Map) error {
	payload, ok := env.Payload(r.def.Module)
	if !ok {
		return fmt.Errorf("%s response: %w %q", r.def.Kind, zsubs.ErrMissingPayload, r.def.Module)
	}

	fresh := r.client.hydrate(r.def, payload)

	for _, name := range r.addressing() {
		if !fresh.Has(name) && addr.Has(name) {
			fresh.Set(name, addr.Value(name))
		}
	}

	r.attrs = fresh
	r.state = zsubs.StateHydrated

	return nil
}

// addressing lists the attributes used to build the record's paths.
func (r *Record) addressing() []string {
	names := []string{r.def.IDField, r.def.LookupField}
	names = append(names, placeholders(r.def.ListPath)...)

	return names
}

func (r *Record) path(pattern string) (string, error) {
	return resolvePath(pattern, r.ID(), r.attrs, nil)
}

func (r *Record) invalidate(ctx context.Context) {
	listPath, err := r.path(r.def.ListPath)
	if err != nil {
		return
	}

	r.client.invalidateList(ctx, listPath)
}
