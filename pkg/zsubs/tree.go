package zsubs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"sort"
	"strconv"
)

// Map is an ordered attribute map. It is the keyed container of an attribute
// tree; List is the positional one. Keys keep their insertion order, which is
// also the order used when the map is serialized.
type Map struct {
	keys   []string
	values map[string]any
}

// List is the ordered sequence container of an attribute tree.
type List []any

// NewMap returns an empty Map.
func NewMap() *Map {
	return &Map{values: make(map[string]any)}
}

// MapOf builds a Map from alternating key/value arguments.
// It panics when a key is not a string or a value is missing.
func MapOf(pairs ...any) *Map {
	if len(pairs)%2 != 0 {
		panic("zsubs.MapOf: odd number of arguments")
	}

	m := NewMap()

	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			panic(fmt.Sprintf("zsubs.MapOf: key %v is not a string", pairs[i]))
		}

		m.Set(key, pairs[i+1])
	}

	return m
}

// Len returns the number of entries.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}

	return len(m.keys)
}

// Has reports whether key is present.
func (m *Map) Has(key string) bool {
	if m == nil {
		return false
	}

	_, ok := m.values[key]

	return ok
}

// Get returns the value stored under key.
func (m *Map) Get(key string) (any, bool) {
	if m == nil {
		return nil, false
	}

	v, ok := m.values[key]

	return v, ok
}

// Value returns the value stored under key or nil.
func (m *Map) Value(key string) any {
	v, _ := m.Get(key)

	return v
}

// String returns the scalar under key formatted as a string. Containers and
// missing keys yield "".
func (m *Map) String(key string) string {
	return scalarString(m.Value(key))
}

// Map returns the nested Map under key, or nil.
func (m *Map) Map(key string) *Map {
	sub, _ := m.Value(key).(*Map)

	return sub
}

// List returns the nested List under key, or nil.
func (m *Map) List(key string) List {
	l, _ := m.Value(key).(List)

	return l
}

// Bool returns the boolean under key. String forms "true" and "1" count as true.
func (m *Map) Bool(key string) bool {
	switch v := m.Value(key).(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(v)

		return b
	case json.Number:
		return v.String() != "0"
	default:
		return false
	}
}

// Set stores value under key. New keys are appended to the key order.
func (m *Map) Set(key string, value any) {
	if m.values == nil {
		m.values = make(map[string]any)
	}

	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}

	m.values[key] = value
}

// Delete removes key.
func (m *Map) Delete(key string) {
	if m == nil {
		return
	}

	if _, ok := m.values[key]; !ok {
		return
	}

	delete(m.values, key)

	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)

			break
		}
	}
}

// Keys returns a copy of the keys in order.
func (m *Map) Keys() []string {
	if m == nil {
		return nil
	}

	keys := make([]string, len(m.keys))
	copy(keys, m.keys)

	return keys
}

// Range calls fn for every entry in order until fn returns false.
func (m *Map) Range(fn func(key string, value any) bool) {
	if m == nil {
		return
	}

	for _, k := range m.keys {
		if !fn(k, m.values[k]) {
			return
		}
	}
}

// Clone returns a deep copy.
func (m *Map) Clone() *Map {
	if m == nil {
		return nil
	}

	out := &Map{
		keys:   make([]string, len(m.keys)),
		values: make(map[string]any, len(m.values)),
	}

	copy(out.keys, m.keys)

	for k, v := range m.values {
		out.values[k] = CloneValue(v)
	}

	return out
}

// Decode converts the map into v, typically a pointer to a resource struct.
func (m *Map) Decode(v any) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encoding attributes: %w", err)
	}

	err = json.Unmarshal(data, v)
	if err != nil {
		return fmt.Errorf("decoding attributes: %w", err)
	}

	return nil
}

// MarshalJSON writes the entries in key order.
func (m *Map) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("null"), nil
	}

	var buf bytes.Buffer

	buf.WriteByte('{')

	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}

		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}

		buf.Write(key)
		buf.WriteByte(':')

		val, err := json.Marshal(m.values[k])
		if err != nil {
			return nil, fmt.Errorf("encoding %q: %w", k, err)
		}

		buf.Write(val)
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object keeping document order.
func (m *Map) UnmarshalJSON(data []byte) error {
	tree, err := ParseTree(data)
	if err != nil {
		return err
	}

	parsed, ok := tree.(*Map)
	if !ok {
		return fmt.Errorf("%w: expected JSON object", ErrInvalidTree)
	}

	*m = *parsed

	return nil
}

// ParseTree decodes JSON into Map, List and leaf values. Numbers are kept as
// json.Number so identifiers and amounts round-trip unchanged.
func ParseTree(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := decodeValue(dec)
	if err != nil {
		return nil, fmt.Errorf("parsing attribute tree: %w", err)
	}

	_, err = dec.Token()
	if err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data after JSON value", ErrInvalidTree)
	}

	return v, nil
}

// ParseMap decodes a JSON object into a Map.
func ParseMap(data []byte) (*Map, error) {
	tree, err := ParseTree(data)
	if err != nil {
		return nil, err
	}

	m, ok := tree.(*Map)
	if !ok {
		return nil, fmt.Errorf("%w: expected JSON object", ErrInvalidTree)
	}

	return m, nil
}

func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeObject(dec)
		case '[':
			return decodeArray(dec)
		default:
			return nil, fmt.Errorf("%w: unexpected delimiter %q", ErrInvalidTree, t)
		}
	default:
		return t, nil
	}
}

func decodeObject(dec *json.Decoder) (*Map, error) {
	m := NewMap()

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}

		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("%w: object key %v", ErrInvalidTree, tok)
		}

		v, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}

		m.Set(key, v)
	}

	_, err := dec.Token()
	if err != nil {
		return nil, err
	}

	return m, nil
}

func decodeArray(dec *json.Decoder) (List, error) {
	l := List{}

	for dec.More() {
		v, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}

		l = append(l, v)
	}

	_, err := dec.Token()
	if err != nil {
		return nil, err
	}

	return l, nil
}

// Encode converts v (a struct, map or slice) into attribute tree form by way
// of its JSON encoding.
func Encode(v any) (*Map, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding %T: %w", v, err)
	}

	return ParseMap(data)
}

// Normalize converts plain Go containers into tree containers. Keys of plain
// maps are sorted since their order is undefined.
func Normalize(v any) any {
	switch t := v.(type) {
	case *Map, List:
		return t
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}

		sort.Strings(keys)

		m := NewMap()
		for _, k := range keys {
			m.Set(k, Normalize(t[k]))
		}

		return m
	case []any:
		l := make(List, len(t))
		for i, e := range t {
			l[i] = Normalize(e)
		}

		return l
	case map[string]string:
		m := make(map[string]any, len(t))
		for k, s := range t {
			m[k] = s
		}

		return Normalize(m)
	case []string:
		l := make(List, len(t))
		for i, s := range t {
			l[i] = s
		}

		return l
	default:
		return v
	}
}

// CloneValue deep-copies tree containers; leaves are returned as is.
func CloneValue(v any) any {
	switch t := v.(type) {
	case *Map:
		return t.Clone()
	case List:
		l := make(List, len(t))
		for i, e := range t {
			l[i] = CloneValue(e)
		}

		return l
	default:
		return v
	}
}

// IsEmpty reports whether v counts as absent for projection: nil, "", an empty
// List or an empty Map. Zero numbers and false are values, not absences.
func IsEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case List:
		return len(t) == 0
	case *Map:
		return t.Len() == 0
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		return rv.IsNil() || ((rv.Kind() == reflect.Map || rv.Kind() == reflect.Slice) && rv.Len() == 0)
	default:
		return false
	}
}

func scalarString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case fmt.Stringer:
		return t.String()
	case *Map, List:
		return ""
	default:
		return fmt.Sprint(t)
	}
}
