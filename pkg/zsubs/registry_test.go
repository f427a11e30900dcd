package zsubs_test

import (
	"net/http"
	"testing"

	"github.com/fivetwenty-io/zsubs-client/pkg/zsubs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"Customer", "customer", "customers", " CUSTOMERS "} {
		kind, err := zsubs.ParseKind(name)
		require.NoError(t, err, name)
		assert.Equal(t, zsubs.KindCustomer, kind)
	}

	_, err := zsubs.ParseKind("Foo")
	require.ErrorIs(t, err, zsubs.ErrUnknownEntityKind)

	assert.Equal(t, "Plan", zsubs.KindPlan.TypeName())
	assert.Equal(t, "hostedpages", zsubs.KindHostedPage.Plural())
	assert.Empty(t, zsubs.Kind("").TypeName())
}

//nolint:funlen
func TestDefaultRegistry(t *testing.T) {
	t.Parallel()

	registry, err := zsubs.DefaultRegistry()
	require.NoError(t, err)
	assert.Equal(t, zsubs.AllKinds(), registry.Kinds())

	tests := []struct {
		kind         zsubs.Kind
		idField      string
		listPath     string
		retrievePath string
		updateMethod string
	}{
		{zsubs.KindCustomer, "customer_id", "customers", "customers/{id}", http.MethodPut},
		{zsubs.KindCard, "card_id", "customers/{customer_id}/cards", "customers/{customer_id}/cards/{id}", http.MethodPut},
		{zsubs.KindPlan, "plan_code", "plans", "plans/{id}", http.MethodPut},
		{zsubs.KindAddon, "addon_code", "addons", "addons/{id}", http.MethodPut},
		{zsubs.KindCoupon, "coupon_code", "coupons", "coupons/{id}", http.MethodPut},
		{zsubs.KindHostedPage, "subscription_id", "hostedpages", "hostedpages/{hostedpage_id}", http.MethodPost},
	}

	for _, tt := range tests {
		def, err := registry.Lookup(tt.kind)
		require.NoError(t, err)

		assert.Equal(t, tt.idField, def.IDField, tt.kind)
		assert.Equal(t, tt.listPath, def.ListPath, tt.kind)
		assert.Equal(t, tt.retrievePath, def.RetrievePath, tt.kind)
		assert.Equal(t, tt.updateMethod, def.UpdateMethod, tt.kind)
	}

	customer, err := registry.Lookup(zsubs.KindCustomer)
	require.NoError(t, err)
	assert.Equal(t, "customer", customer.Module)
	assert.Equal(t, customer.CreateTemplate().Names(), customer.UpdateTemplate().Names())

	address, ok := customer.CreateTemplate().Lookup("billing_address")
	require.True(t, ok)
	assert.Contains(t, address.Sub.Names(), "attention")

	field, ok := customer.NestedField("cards")
	require.True(t, ok)
	assert.Equal(t, zsubs.Field{Kind: zsubs.KindCard, Many: true}, field)

	plan, err := registry.Lookup(zsubs.KindPlan)
	require.NoError(t, err)
	assert.Contains(t, plan.CreateTemplate().Names(), "plan_code")
	assert.NotContains(t, plan.UpdateTemplate().Names(), "plan_code")
	assert.Contains(t, plan.UpdateTemplate().Names(), "end_of_term")

	page, err := registry.Lookup(zsubs.KindHostedPage)
	require.NoError(t, err)
	assert.True(t, page.NoDelete)
	assert.NotNil(t, page.BeforeSave)
	assert.Equal(t, "hostedpage_id", page.LookupField)

	invoice, err := registry.Lookup(zsubs.KindInvoice)
	require.NoError(t, err)
	assert.Nil(t, invoice.CreateTemplate())
}

func TestDefaultRegistry_ReturnsCopies(t *testing.T) {
	t.Parallel()

	first, err := zsubs.DefaultRegistry()
	require.NoError(t, err)

	require.NoError(t, first.SetNested(zsubs.KindCustomer, "plan", zsubs.Field{Kind: zsubs.KindPlan}))

	second, err := zsubs.DefaultRegistry()
	require.NoError(t, err)

	def, err := second.Lookup(zsubs.KindCustomer)
	require.NoError(t, err)

	_, ok := def.NestedField("plan")
	assert.False(t, ok)
}

func TestRegistry_Register(t *testing.T) {
	t.Parallel()

	registry := zsubs.NewRegistry()

	err := registry.Register(zsubs.Definition{})
	require.ErrorIs(t, err, zsubs.ErrInvalidDefinition)

	err = registry.Register(zsubs.Definition{Kind: "estimate", UpdateMethod: "delete"})
	require.ErrorIs(t, err, zsubs.ErrInvalidDefinition)

	require.NoError(t, registry.Register(zsubs.Definition{Kind: "estimate", UpdateMethod: "patch"}))

	def, err := registry.Resolve("Estimates")
	require.NoError(t, err)
	assert.Equal(t, http.MethodPatch, def.UpdateMethod)
	assert.Equal(t, "estimate_id", def.IDField)
	assert.Equal(t, "estimates/{id}", def.UpdatePath)

	_, err = registry.Resolve("invoice")
	require.ErrorIs(t, err, zsubs.ErrUnknownEntityKind)

	err = registry.SetNested("invoice", "payments", zsubs.Field{Kind: zsubs.KindPayment})
	require.ErrorIs(t, err, zsubs.ErrUnknownEntityKind)

	err = registry.SetBeforeSave("invoice", nil)
	require.ErrorIs(t, err, zsubs.ErrUnknownEntityKind)
}

func TestRegistry_LoadDefinitions(t *testing.T) {
	t.Parallel()

	registry := zsubs.NewRegistry()

	err := registry.LoadDefinitions([]byte(`
estimate:
  id_field: estimate_number
  base: [customer_id, date]
  create: [reference_number]
  nested:
    customer: {kind: customer}
`))
	require.NoError(t, err)

	def, err := registry.Lookup("estimate")
	require.NoError(t, err)
	assert.Equal(t, "estimate_number", def.IDField)
	assert.Equal(t, []string{"customer_id", "date", "reference_number"}, def.CreateTemplate().Names())
	assert.Equal(t, []string{"customer_id", "date"}, def.UpdateTemplate().Names())

	require.NoError(t, registry.LoadDefinitions(nil))

	err = registry.LoadDefinitions([]byte(`[a, b]`))
	require.ErrorIs(t, err, zsubs.ErrInvalidDefinition)

	err = registry.LoadDefinitions([]byte(`estimate: {base: name}`))
	require.Error(t, err)
}

//nolint:funlen
func TestStripIncompleteHostedPageItems(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		data     *zsubs.Map
		wantKeys []string
		warnings int
	}{
		{
			name:     "complete payload",
			data:     zsubs.MapOf("plan", zsubs.MapOf("plan_code", "basic"), "addons", zsubs.List{zsubs.MapOf("addon_code", "A1")}),
			wantKeys: []string{"plan", "addons"},
		},
		{
			name:     "plan without code",
			data:     zsubs.MapOf("plan", zsubs.MapOf("quantity", 1), "customer_id", "903"),
			wantKeys: []string{"customer_id"},
			warnings: 1,
		},
		{
			name:     "scalar plan",
			data:     zsubs.MapOf("plan", "basic"),
			wantKeys: []string{},
			warnings: 1,
		},
		{
			name:     "addon without code",
			data:     zsubs.MapOf("addons", zsubs.List{zsubs.MapOf("addon_code", "A1"), zsubs.MapOf("quantity", 2)}),
			wantKeys: []string{},
			warnings: 2,
		},
		{
			name:     "keyed addons",
			data:     zsubs.MapOf("addons", zsubs.MapOf("x", zsubs.MapOf("addon_code", "A1"))),
			wantKeys: []string{"addons"},
		},
		{
			name:     "scalar addons",
			data:     zsubs.MapOf("addons", "A1"),
			wantKeys: []string{},
			warnings: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			warnings, err := zsubs.StripIncompleteHostedPageItems(tt.data)
			require.NoError(t, err)
			assert.Len(t, warnings, tt.warnings)
			assert.ElementsMatch(t, tt.wantKeys, tt.data.Keys())
		})
	}
}
