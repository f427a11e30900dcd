package zsubs

import (
	_ "embed"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Kind names an entity type known to the registry.
type Kind string

// Entity kinds served by the API.
const (
	KindCustomer      Kind = "customer"
	KindContactPerson Kind = "contactperson"
	KindCard          Kind = "card"
	KindPlan          Kind = "plan"
	KindAddon         Kind = "addon"
	KindCoupon        Kind = "coupon"
	KindProduct       Kind = "product"
	KindInvoice       Kind = "invoice"
	KindPayment       Kind = "payment"
	KindSubscription  Kind = "subscription"
	KindHostedPage    Kind = "hostedpage"
)

// ParseKind accepts a type name ("Customer"), a kind ("customer") or its
// plural ("customers").
func ParseKind(name string) (Kind, error) {
	n := strings.ToLower(strings.TrimSpace(name))

	for _, k := range AllKinds() {
		if string(k) == n || k.Plural() == n {
			return k, nil
		}
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownEntityKind, name)
}

// AllKinds lists the built-in kinds.
func AllKinds() []Kind {
	return []Kind{
		KindAddon, KindCard, KindContactPerson, KindCoupon, KindCustomer, KindHostedPage,
		KindInvoice, KindPayment, KindPlan, KindProduct, KindSubscription,
	}
}

// Plural returns the resource collection name derived from the kind.
func (k Kind) Plural() string {
	return strings.ToLower(string(k)) + "s"
}

// TypeName returns the capitalized type name, e.g. "Customer".
func (k Kind) TypeName() string {
	if k == "" {
		return ""
	}

	return strings.ToUpper(string(k[:1])) + string(k[1:])
}

// Field declares the nested type expected under an attribute. Many marks a
// list (or keyed map) of entities.
type Field struct {
	Kind Kind `yaml:"kind"`
	Many bool `yaml:"many"`
}

// SaveHook runs on the flattened attributes right before projection. It may
// mutate data; returned warnings are logged and an error aborts the save.
type SaveHook func(data *Map) (warnings []string, err error)

// Definition is the per-kind configuration driving the generic record
// lifecycle. Paths accept {id} and {<attribute>} placeholders.
type Definition struct {
	Kind         Kind             `yaml:"-"`
	Module       string           `yaml:"module"`
	Collection   string           `yaml:"collection"`
	IDField      string           `yaml:"id_field"`
	LookupField  string           `yaml:"lookup_field"`
	CreatePath   string           `yaml:"create_path"`
	UpdatePath   string           `yaml:"update_path"`
	RetrievePath string           `yaml:"retrieve_path"`
	ListPath     string           `yaml:"list_path"`
	UpdateMethod string           `yaml:"update_method"`
	NoDelete     bool             `yaml:"no_delete"`
	Base         *Template        `yaml:"base"`
	Create       *Template        `yaml:"create"`
	Update       *Template        `yaml:"update"`
	Nested       map[string]Field `yaml:"nested"`
	BeforeSave   SaveHook         `yaml:"-"`
}

// CreateTemplate returns the base template extended with the create fields,
// or nil when the kind declares no templates.
func (d *Definition) CreateTemplate() *Template {
	return d.Base.Extend(d.Create)
}

// UpdateTemplate returns the base template extended with the update fields,
// or nil when the kind declares no templates.
func (d *Definition) UpdateTemplate() *Template {
	return d.Base.Extend(d.Update)
}

// NestedField returns the declared nested type of an attribute.
func (d *Definition) NestedField(name string) (Field, bool) {
	f, ok := d.Nested[name]

	return f, ok
}

func (d *Definition) applyDefaults() error {
	if d.Kind == "" {
		return fmt.Errorf("%w: kind is required", ErrInvalidDefinition)
	}

	if d.Module == "" {
		d.Module = string(d.Kind)
	}

	if d.Collection == "" {
		d.Collection = d.Kind.Plural()
	}

	if d.IDField == "" {
		d.IDField = d.Module + "_id"
	}

	if d.LookupField == "" {
		d.LookupField = d.IDField
	}

	if d.ListPath == "" {
		d.ListPath = d.Collection
	}

	if d.CreatePath == "" {
		d.CreatePath = d.ListPath
	}

	if d.RetrievePath == "" {
		d.RetrievePath = d.ListPath + "/{id}"
	}

	if d.UpdatePath == "" {
		d.UpdatePath = d.RetrievePath
	}

	d.UpdateMethod = strings.ToUpper(d.UpdateMethod)
	if d.UpdateMethod == "" {
		d.UpdateMethod = http.MethodPut
	}

	if d.UpdateMethod != http.MethodPut && d.UpdateMethod != http.MethodPost && d.UpdateMethod != http.MethodPatch {
		return fmt.Errorf("%w: %s: update method %q", ErrInvalidDefinition, d.Kind, d.UpdateMethod)
	}

	if d.Nested == nil {
		d.Nested = make(map[string]Field)
	}

	return nil
}

func (d *Definition) clone() *Definition {
	out := *d

	out.Nested = make(map[string]Field, len(d.Nested))
	for k, v := range d.Nested {
		out.Nested[k] = v
	}

	return &out
}

// Registry maps entity kinds to their definitions. It is the closed set of
// types the factory can build.
type Registry struct {
	mutex sync.RWMutex
	defs  map[Kind]*Definition
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[Kind]*Definition)}
}

// Register adds or replaces a definition after filling in defaults.
func (r *Registry) Register(def Definition) error {
	d := def.clone()

	err := d.applyDefaults()
	if err != nil {
		return err
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.defs[d.Kind] = d

	return nil
}

// Lookup returns the definition of kind.
func (r *Registry) Lookup(kind Kind) (*Definition, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	def, ok := r.defs[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEntityKind, kind)
	}

	return def, nil
}

// Resolve looks a kind up by type name ("Customer"), kind ("customer") or
// collection name ("customers").
func (r *Registry) Resolve(typeName string) (*Definition, error) {
	name := strings.ToLower(strings.TrimSpace(typeName))

	r.mutex.RLock()
	defer r.mutex.RUnlock()

	if def, ok := r.defs[Kind(name)]; ok {
		return def, nil
	}

	for _, def := range r.defs {
		if def.Collection == name || def.Kind.Plural() == name {
			return def, nil
		}
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownEntityKind, typeName)
}

// SetNested declares the nested type of an attribute of kind.
func (r *Registry) SetNested(kind Kind, attribute string, field Field) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	def, ok := r.defs[kind]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownEntityKind, kind)
	}

	updated := def.clone()
	updated.Nested[attribute] = field
	r.defs[kind] = updated

	return nil
}

// SetBeforeSave installs the pre-save hook of kind.
func (r *Registry) SetBeforeSave(kind Kind, hook SaveHook) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	def, ok := r.defs[kind]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownEntityKind, kind)
	}

	updated := def.clone()
	updated.BeforeSave = hook
	r.defs[kind] = updated

	return nil
}

// Kinds returns the registered kinds sorted by name.
func (r *Registry) Kinds() []Kind {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	kinds := make([]Kind, 0, len(r.defs))
	for k := range r.defs {
		kinds = append(kinds, k)
	}

	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })

	return kinds
}

// Clone returns an independent copy of the registry.
func (r *Registry) Clone() *Registry {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	out := NewRegistry()
	for k, def := range r.defs {
		out.defs[k] = def.clone()
	}

	return out
}

// LoadDefinitions reads a YAML document mapping kind names to definitions
// into the registry.
func (r *Registry) LoadDefinitions(data []byte) error {
	var raw yaml.Node

	err := yaml.Unmarshal(data, &raw)
	if err != nil {
		return fmt.Errorf("parsing definitions: %w", err)
	}

	if len(raw.Content) == 0 {
		return nil
	}

	root := raw.Content[0]
	if root.Kind != yaml.MappingNode {
		return fmt.Errorf("%w: definitions must be a mapping", ErrInvalidDefinition)
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		var def Definition

		err := root.Content[i+1].Decode(&def)
		if err != nil {
			return fmt.Errorf("decoding definition %q: %w", root.Content[i].Value, err)
		}

		def.Kind = Kind(root.Content[i].Value)

		err = r.Register(def)
		if err != nil {
			return err
		}
	}

	return nil
}

//go:embed definitions.yaml
var defaultDefinitions []byte

var defaultHooks = map[Kind]SaveHook{
	KindHostedPage: StripIncompleteHostedPageItems,
}

var (
	defaultRegistryOnce sync.Once
	defaultRegistry     *Registry
	errDefaultRegistry  error
)

// DefaultRegistry returns a fresh copy of the built-in definitions for every
// kind in the API, including their pre-save hooks.
func DefaultRegistry() (*Registry, error) {
	defaultRegistryOnce.Do(func() {
		reg := NewRegistry()

		errDefaultRegistry = reg.LoadDefinitions(defaultDefinitions)
		if errDefaultRegistry != nil {
			return
		}

		for kind, hook := range defaultHooks {
			errDefaultRegistry = reg.SetBeforeSave(kind, hook)
			if errDefaultRegistry != nil {
				return
			}
		}

		defaultRegistry = reg
	})

	if errDefaultRegistry != nil {
		return nil, errDefaultRegistry
	}

	return defaultRegistry.Clone(), nil
}

// StripIncompleteHostedPageItems removes a plan lacking plan_code and the
// addons list unless every addon carries an addon_code.
func StripIncompleteHostedPageItems(data *Map) ([]string, error) {
	var warnings []string

	if data.Has("plan") && data.Map("plan").String("plan_code") == "" {
		data.Delete("plan")

		warnings = append(warnings, "plan dropped: plan_code is required")
	}

	if !data.Has("addons") {
		return warnings, nil
	}

	complete := true

	switch addons := data.Value("addons").(type) {
	case List:
		for i, element := range addons {
			m, ok := element.(*Map)
			if !ok || m.String("addon_code") == "" {
				complete = false

				warnings = append(warnings, fmt.Sprintf("addon %d has no addon_code", i))
			}
		}
	case *Map:
		addons.Range(func(key string, value any) bool {
			m, ok := value.(*Map)
			if !ok || m.String("addon_code") == "" {
				complete = false

				warnings = append(warnings, fmt.Sprintf("addon %s has no addon_code", key))
			}

			return true
		})
	default:
		complete = false
	}

	if !complete {
		data.Delete("addons")

		warnings = append(warnings, "addons dropped: every addon needs an addon_code")
	}

	return warnings, nil
}
