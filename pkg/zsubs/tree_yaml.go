package zsubs

import (
	"encoding/json"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// MarshalYAML writes the entries in key order. Numbers keep their JSON form.
func (m *Map) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}

	for _, k := range m.Keys() {
		var value yaml.Node

		err := value.Encode(yamlValue(m.values[k]))
		if err != nil {
			return nil, fmt.Errorf("encoding %q: %w", k, err)
		}

		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
			&value,
		)
	}

	return node, nil
}

func yamlValue(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}

		if f, err := t.Float64(); err == nil {
			return f
		}

		return t.String()
	case List:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = yamlValue(e)
		}

		return out
	default:
		return v
	}
}

// ParseYAML decodes a YAML document holding a mapping into a Map, keeping
// document order. Numbers become json.Number like in ParseMap.
func ParseYAML(data []byte) (*Map, error) {
	var doc yaml.Node

	err := yaml.Unmarshal(data, &doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTree, err)
	}

	if len(doc.Content) == 0 {
		return NewMap(), nil
	}

	value, err := fromYAMLNode(doc.Content[0])
	if err != nil {
		return nil, err
	}

	m, ok := value.(*Map)
	if !ok {
		return nil, fmt.Errorf("%w: expected a YAML mapping", ErrInvalidTree)
	}

	return m, nil
}

func fromYAMLNode(node *yaml.Node) (any, error) {
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return nil, nil
		}

		return fromYAMLNode(node.Content[0])
	case yaml.AliasNode:
		return fromYAMLNode(node.Alias)
	case yaml.MappingNode:
		m := NewMap()

		for i := 0; i+1 < len(node.Content); i += 2 {
			value, err := fromYAMLNode(node.Content[i+1])
			if err != nil {
				return nil, err
			}

			m.Set(node.Content[i].Value, value)
		}

		return m, nil
	case yaml.SequenceNode:
		l := make(List, 0, len(node.Content))

		for _, item := range node.Content {
			value, err := fromYAMLNode(item)
			if err != nil {
				return nil, err
			}

			l = append(l, value)
		}

		return l, nil
	case yaml.ScalarNode:
		return yamlScalar(node)
	default:
		return nil, fmt.Errorf("%w: line %d: unexpected YAML node", ErrInvalidTree, node.Line)
	}
}

func yamlScalar(node *yaml.Node) (any, error) {
	switch node.ShortTag() {
	case "!!null":
		return nil, nil
	case "!!bool":
		b, err := strconv.ParseBool(node.Value)
		if err != nil {
			var v bool
			if err := node.Decode(&v); err != nil {
				return nil, fmt.Errorf("%w: line %d: %w", ErrInvalidTree, node.Line, err)
			}

			return v, nil
		}

		return b, nil
	case "!!int", "!!float":
		return json.Number(node.Value), nil
	default:
		return node.Value, nil
	}
}
