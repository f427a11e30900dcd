package zsubs

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Wildcard is the template entry name that applies its sub-template to every
// element of the level it appears in.
const Wildcard = "*"

// TemplateEntry is one field of a Template. A nil Sub marks a leaf.
type TemplateEntry struct {
	Name string
	Sub  *Template
}

// Template is an ordered whitelist describing which attributes are sent to
// the API and in which shape. Templates are immutable once built.
type Template struct {
	entries []TemplateEntry
}

// NewTemplate builds a template from entries. A later entry with the same name
// replaces an earlier one in place.
func NewTemplate(entries ...TemplateEntry) *Template {
	t := &Template{}
	for _, e := range entries {
		t.put(e)
	}

	return t
}

// Fields builds a template made only of leaves.
func Fields(names ...string) *Template {
	entries := make([]TemplateEntry, len(names))
	for i, n := range names {
		entries[i] = Leaf(n)
	}

	return NewTemplate(entries...)
}

// Leaf declares a field copied as is.
func Leaf(name string) TemplateEntry {
	return TemplateEntry{Name: name}
}

// Nested declares a field reshaped by sub.
func Nested(name string, sub *Template) TemplateEntry {
	if sub == nil {
		sub = NewTemplate()
	}

	return TemplateEntry{Name: name, Sub: sub}
}

// Each declares the wildcard entry.
func Each(sub *Template) TemplateEntry {
	return Nested(Wildcard, sub)
}

// Entries returns a copy of the entries in order.
func (t *Template) Entries() []TemplateEntry {
	if t == nil {
		return nil
	}

	out := make([]TemplateEntry, len(t.entries))
	copy(out, t.entries)

	return out
}

// Names returns the entry names in order.
func (t *Template) Names() []string {
	if t == nil {
		return nil
	}

	names := make([]string, len(t.entries))
	for i, e := range t.entries {
		names[i] = e.Name
	}

	return names
}

// Len returns the number of entries.
func (t *Template) Len() int {
	if t == nil {
		return 0
	}

	return len(t.entries)
}

// Lookup returns the entry called name.
func (t *Template) Lookup(name string) (TemplateEntry, bool) {
	if t == nil {
		return TemplateEntry{}, false
	}

	for _, e := range t.entries {
		if e.Name == name {
			return e, true
		}
	}

	return TemplateEntry{}, false
}

// Extend returns a new template holding the receiver's entries followed by
// other's. Entries of other replace same-named entries of the receiver in
// place. Either side may be nil; both nil yields nil.
func (t *Template) Extend(other *Template) *Template {
	if t == nil && other == nil {
		return nil
	}

	out := NewTemplate(t.Entries()...)
	for _, e := range other.Entries() {
		out.put(e)
	}

	return out
}

// With returns a copy of the template with entries added or replaced.
func (t *Template) With(entries ...TemplateEntry) *Template {
	return t.Extend(NewTemplate(entries...))
}

func (t *Template) put(e TemplateEntry) {
	for i := range t.entries {
		if t.entries[i].Name == e.Name {
			t.entries[i] = e

			return
		}
	}

	t.entries = append(t.entries, e)
}

// UnmarshalYAML reads a template from a YAML sequence. Scalars are leaves and
// single-key mappings are nested entries:
//
//	- name
//	- billing_address: [street, city]
//	- price_brackets:
//	    - "*": [start_quantity, price]
func (t *Template) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.SequenceNode {
		return fmt.Errorf("%w: line %d: expected a sequence", ErrInvalidTemplate, node.Line)
	}

	built := NewTemplate()

	for _, item := range node.Content {
		switch item.Kind {
		case yaml.ScalarNode:
			built.put(Leaf(item.Value))
		case yaml.MappingNode:
			if len(item.Content) != 2 {
				return fmt.Errorf("%w: line %d: nested entry must have exactly one key", ErrInvalidTemplate, item.Line)
			}

			sub := &Template{}

			err := sub.UnmarshalYAML(item.Content[1])
			if err != nil {
				return err
			}

			built.put(Nested(item.Content[0].Value, sub))
		default:
			return fmt.Errorf("%w: line %d: unexpected node", ErrInvalidTemplate, item.Line)
		}
	}

	*t = *built

	return nil
}

// MarshalYAML writes the template in the form read by UnmarshalYAML.
func (t *Template) MarshalYAML() (interface{}, error) {
	out := make([]interface{}, 0, t.Len())

	for _, e := range t.Entries() {
		if e.Sub == nil {
			out = append(out, e.Name)

			continue
		}

		sub, err := e.Sub.MarshalYAML()
		if err != nil {
			return nil, err
		}

		out = append(out, map[string]interface{}{e.Name: sub})
	}

	return out, nil
}

// ParseTemplate reads a template from YAML (or JSON, which is valid YAML).
func ParseTemplate(data []byte) (*Template, error) {
	var t Template

	err := yaml.Unmarshal(data, &t)
	if err != nil {
		return nil, fmt.Errorf("parsing template: %w", err)
	}

	return &t, nil
}
