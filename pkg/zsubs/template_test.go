package zsubs_test

import (
	"testing"

	"github.com/fivetwenty-io/zsubs-client/pkg/zsubs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestTemplate_Build(t *testing.T) {
	t.Parallel()

	tmpl := zsubs.NewTemplate(
		zsubs.Leaf("name"),
		zsubs.Nested("address", zsubs.Fields("street", "city")),
		zsubs.Leaf("email"),
		zsubs.Nested("name", zsubs.Fields("first")),
	)

	assert.Equal(t, []string{"name", "address", "email"}, tmpl.Names())
	assert.Equal(t, 3, tmpl.Len())

	entry, ok := tmpl.Lookup("name")
	require.True(t, ok)
	assert.Equal(t, []string{"first"}, entry.Sub.Names())

	_, ok = tmpl.Lookup("missing")
	assert.False(t, ok)

	nested := zsubs.Nested("x", nil)
	require.NotNil(t, nested.Sub)
	assert.Equal(t, 0, nested.Sub.Len())

	var nilTemplate *zsubs.Template
	assert.Equal(t, 0, nilTemplate.Len())
	assert.Nil(t, nilTemplate.Names())
}

func TestTemplate_Extend(t *testing.T) {
	t.Parallel()

	base := zsubs.Fields("name", "price", "description")
	create := zsubs.NewTemplate(zsubs.Leaf("code"), zsubs.Nested("price", zsubs.Fields("amount")))

	extended := base.Extend(create)
	assert.Equal(t, []string{"name", "price", "description", "code"}, extended.Names())

	price, _ := extended.Lookup("price")
	require.NotNil(t, price.Sub)

	basePrice, _ := base.Lookup("price")
	assert.Nil(t, basePrice.Sub, "extending must not modify the receiver")

	var nilTemplate *zsubs.Template
	assert.Nil(t, nilTemplate.Extend(nil))
	assert.Equal(t, []string{"code", "price"}, nilTemplate.Extend(create).Names())
	assert.Equal(t, base.Names(), base.Extend(nil).Names())

	with := base.With(zsubs.Leaf("tax_id"))
	assert.Equal(t, []string{"name", "price", "description", "tax_id"}, with.Names())
	assert.Equal(t, 3, base.Len())
}

func TestParseTemplate(t *testing.T) {
	t.Parallel()

	tmpl, err := zsubs.ParseTemplate([]byte(`
- name
- billing_address: [street, city]
- price_brackets:
    - "*": [start_quantity, price]
`))
	require.NoError(t, err)

	assert.Equal(t, []string{"name", "billing_address", "price_brackets"}, tmpl.Names())

	brackets, _ := tmpl.Lookup("price_brackets")
	each, ok := brackets.Sub.Lookup(zsubs.Wildcard)
	require.True(t, ok)
	assert.Equal(t, []string{"start_quantity", "price"}, each.Sub.Names())

	out, err := yaml.Marshal(tmpl)
	require.NoError(t, err)

	again, err := zsubs.ParseTemplate(out)
	require.NoError(t, err)
	assert.Equal(t, tmpl.Names(), again.Names())

	fromJSON, err := zsubs.ParseTemplate([]byte(`["a", {"b": ["c"]}]`))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, fromJSON.Names())
}

func TestParseTemplate_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data string
	}{
		{"mapping", `name: x`},
		{"two keys", `[{a: [x], b: [y]}]`},
		{"nested scalar", `[{a: x}]`},
		{"sequence in sequence", `[[a]]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := zsubs.ParseTemplate([]byte(tt.data))
			require.ErrorIs(t, err, zsubs.ErrInvalidTemplate)
		})
	}
}
