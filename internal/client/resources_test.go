package client

import (
	"context"
	"net/http"
	"testing"

	"github.com/fivetwenty-io/zsubs-client/pkg/zsubs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusClient(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		client func(c *Client) zsubs.StatusClient
		path   string
	}{
		{"plans", func(c *Client) zsubs.StatusClient { return c.Plans() }, "plans/basic"},
		{"addons", func(c *Client) zsubs.StatusClient { return c.Addons() }, "addons/basic"},
		{"coupons", func(c *Client) zsubs.StatusClient { return c.Coupons() }, "coupons/basic"},
		{"products", func(c *Client) zsubs.StatusClient { return c.Products() }, "products/basic"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			api := newFakeAPI(t)
			api.handle(http.MethodPost, tt.path+"/markasactive", http.StatusOK, `{"code":0,"message":"active"}`)
			api.handle(http.MethodPost, tt.path+"/markasinactive", http.StatusOK, `{"code":0,"message":"inactive"}`)

			client := newTestClient(t, api)
			status := tt.client(client)

			require.NoError(t, status.MarkActive(context.Background(), "basic"))
			require.NoError(t, status.MarkInactive(context.Background(), "basic"))
			assert.Equal(t, 1, api.count(http.MethodPost, tt.path+"/markasactive"))
			assert.Equal(t, 1, api.count(http.MethodPost, tt.path+"/markasinactive"))

			err := status.MarkActive(context.Background(), "")
			require.ErrorIs(t, err, zsubs.ErrMissingIdentifier)
		})
	}
}

//nolint:funlen
func TestInvoicesClient(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t)

	actions := []string{"void", "converttoopen", "writeoff", "cancelwriteoff", "email"}
	for _, action := range actions {
		api.handle(http.MethodPost, "invoices/1001/"+action, http.StatusOK, `{"code":0,"message":"done"}`)
	}

	api.handle(http.MethodPost, "invoices/1001/collect", http.StatusOK,
		`{"code":0,"message":"Payment collected","payment":{"payment_id":"55","amount":"10.00"}}`)
	api.handle(http.MethodGet, "invoices/1001", http.StatusOK, "%PDF-1.4 fake")
	api.handle(http.MethodGet, "invoices", http.StatusOK,
		`{"code":0,"invoices":[{"invoice_id":"1001","customer_id":"903","payments":[{"payment_id":"55"}]}]}`)

	client := newTestClient(t, api)
	invoices := client.Invoices()
	ctx := context.Background()

	require.NoError(t, invoices.Void(ctx, "1001"))
	require.NoError(t, invoices.ConvertToOpen(ctx, "1001"))
	require.NoError(t, invoices.WriteOff(ctx, "1001"))
	require.NoError(t, invoices.CancelWriteOff(ctx, "1001"))

	for _, action := range actions[:4] {
		assert.Equal(t, 1, api.count(http.MethodPost, "invoices/1001/"+action), action)
	}

	require.NoError(t, invoices.Email(ctx, "1001", &zsubs.InvoiceEmail{
		FromMailID: "billing@example.com",
		ToMailIDs:  []string{"bowman@example.com"},
		Subject:    "Invoice",
		Body:       "Please find attached",
	}))

	email := api.lastCall()
	assert.Equal(t, "billing@example.com", email.Body.String("from_mail_id"))
	assert.Equal(t, zsubs.List{"bowman@example.com"}, email.Body.List("to_mail_ids"))
	assert.False(t, email.Body.Has("cc_mail_ids"))

	collected, err := invoices.Collect(ctx, "1001")
	require.NoError(t, err)
	assert.Equal(t, "55", collected.Map("payment").String("payment_id"))

	pdf, err := invoices.PDF(ctx, "1001")
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 fake", string(pdf))
	assert.Equal(t, "pdf", api.lastCall().Query.Get("accept"))

	_, err = invoices.PDF(ctx, "")
	require.ErrorIs(t, err, zsubs.ErrMissingIdentifier)

	list, err := invoices.ListByCustomer(ctx, "903")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "903", api.lastCall().Query.Get("customer_id"))
	assert.Len(t, list[0].NestedList("payments"), 1)

	err = invoices.Void(ctx, "missing")
	require.Error(t, err)
	assert.True(t, zsubs.IsNotFound(err))
}

//nolint:funlen
func TestSubscriptionsClient(t *testing.T) {
	t.Parallel()

	t.Run("actions returning the subscription", func(t *testing.T) {
		t.Parallel()

		api := newFakeAPI(t)
		api.handle(http.MethodPost, "subscriptions/9030/reactivate", http.StatusOK,
			`{"code":0,"subscription":{"subscription_id":"9030","status":"live"}}`)

		client := newTestClient(t, api)

		sub, err := client.Subscriptions().Reactivate(context.Background(), "9030")
		require.NoError(t, err)
		assert.Equal(t, "live", sub.String("status"))
		assert.Equal(t, 1, api.count("", ""))
	})

	t.Run("actions returning a message reload", func(t *testing.T) {
		t.Parallel()

		api := newFakeAPI(t)
		api.handle(http.MethodPost, "subscriptions/9030/coupons/SAVE 10", http.StatusOK,
			`{"code":0,"message":"Coupon associated."}`)
		api.handle(http.MethodGet, "subscriptions/9030", http.StatusOK,
			`{"code":0,"subscription":{"subscription_id":"9030","coupon":{"coupon_code":"SAVE 10"}}}`)

		client := newTestClient(t, api)

		sub, err := client.Subscriptions().AssociateCoupon(context.Background(), "9030", "SAVE 10")
		require.NoError(t, err)
		require.NotNil(t, sub.Nested("coupon"))
		assert.Equal(t, "SAVE 10", sub.Nested("coupon").ID())

		_, err = client.Subscriptions().AssociateCoupon(context.Background(), "9030", "")
		require.ErrorIs(t, err, zsubs.ErrMissingIdentifier)
	})

	t.Run("one-time addon", func(t *testing.T) {
		t.Parallel()

		api := newFakeAPI(t)
		api.handle(http.MethodPost, "subscriptions/9030/buyonetimeaddon", http.StatusOK,
			`{"code":0,"invoice":{"invoice_id":"1002","total":"5.00"}}`)

		client := newTestClient(t, api)

		result, err := client.Subscriptions().BuyOneTimeAddon(context.Background(), "9030", zsubs.MapOf(
			"addons", []any{map[string]any{"addon_code": "SETUP", "quantity": 1}},
		))
		require.NoError(t, err)
		assert.Equal(t, "1002", result.Map("invoice").String("invoice_id"))

		body := api.lastCall().Body
		require.Len(t, body.List("addons"), 1)
	})

	t.Run("list by customer", func(t *testing.T) {
		t.Parallel()

		api := newFakeAPI(t)
		api.handle(http.MethodGet, "subscriptions", http.StatusOK,
			`{"code":0,"subscriptions":[{"subscription_id":"9030"},{"subscription_id":"9031"}]}`)

		client := newTestClient(t, api)

		subs, err := client.Subscriptions().ListByCustomer(context.Background(), "903")
		require.NoError(t, err)
		assert.Len(t, subs, 2)
		assert.Equal(t, "903", api.lastCall().Query.Get("customer_id"))
	})
}

func TestCustomersClient_GetByEmail(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t)
	api.handleFunc(http.MethodGet, "customers", func(call apiCall) (int, string) {
		if call.Query.Get("email") == "bowman@example.com" {
			return http.StatusOK, `{"code":0,"customers":[{"customer_id":"903","display_name":"Bowman"}]}`
		}

		return http.StatusOK, `{"code":0,"customers":[]}`
	})
	api.handle(http.MethodGet, "customers/903", http.StatusOK,
		`{"code":0,"customer":{"customer_id":"903","display_name":"Bowman","cards":[{"card_id":"77"}]}}`)

	client := newTestClient(t, api)

	customer, err := client.Customers().GetByEmail(context.Background(), "bowman@example.com")
	require.NoError(t, err)
	assert.Equal(t, "903", customer.ID())
	assert.Len(t, customer.NestedList("cards"), 1)

	_, err = client.Customers().GetByEmail(context.Background(), "nobody@example.com")
	require.ErrorIs(t, err, zsubs.ErrNotFound)
	assert.True(t, zsubs.IsNotFound(err))
}

func TestPlansClient_ListAddons(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t)
	api.handle(http.MethodGet, "addons", http.StatusOK, `{"code":0,"addons":[
		{"addon_code":"ALL","applicable_to_all_plans":true},
		{"addon_code":"BASIC","applicable_to_all_plans":false,"plans":[{"plan_code":"basic"}]},
		{"addon_code":"PRO","applicable_to_all_plans":false,"plans":[{"plan_code":"pro"}]}]}`)

	client := newTestClient(t, api)

	addons, err := client.Plans().ListAddons(context.Background(), "basic")
	require.NoError(t, err)
	require.Len(t, addons, 2)
	assert.Equal(t, "ALL", addons[0].ID())
	assert.Equal(t, "BASIC", addons[1].ID())

	_, err = client.Plans().ListAddons(context.Background(), "")
	require.ErrorIs(t, err, zsubs.ErrMissingIdentifier)
}

//nolint:funlen
func TestHostedPagesClient(t *testing.T) {
	t.Parallel()

	t.Run("card update", func(t *testing.T) {
		t.Parallel()

		api := newFakeAPI(t)
		api.handle(http.MethodPost, "hostedpages/updatecard", http.StatusCreated,
			`{"code":0,"hostedpage":{"hostedpage_id":"2-9c3","url":"https://pay.example.com/2-9c3"}}`)

		client := newTestClient(t, api)

		page, err := client.HostedPages().UpdateCard(context.Background(), zsubs.MapOf("subscription_id", "9030"))
		require.NoError(t, err)
		assert.Equal(t, zsubs.KindHostedPage, page.Kind())
		assert.Equal(t, "https://pay.example.com/2-9c3", page.String("url"))
		assert.Equal(t, "9030", api.lastCall().Body.String("subscription_id"))
	})

	t.Run("one-time addon requires a hosted page payload", func(t *testing.T) {
		t.Parallel()

		api := newFakeAPI(t)
		api.handle(http.MethodPost, "hostedpages/buyonetimeaddon", http.StatusCreated, `{"code":0,"message":"ok"}`)

		client := newTestClient(t, api)

		_, err := client.HostedPages().BuyOneTimeAddon(context.Background(), zsubs.MapOf("subscription_id", "9030"))
		require.ErrorIs(t, err, zsubs.ErrMissingPayload)
	})

	t.Run("new subscription", func(t *testing.T) {
		t.Parallel()

		api := newFakeAPI(t)
		api.handle(http.MethodPost, "hostedpages/newsubscription", http.StatusCreated,
			`{"code":0,"hostedpage":{"hostedpage_id":"2-9a1"}}`)

		client := newTestClient(t, api)

		page, err := client.HostedPages().NewSubscription(context.Background(), zsubs.MapOf(
			"customer_id", "903",
			"plan", zsubs.MapOf("plan_code", "basic", "quantity", 1),
		))
		require.NoError(t, err)
		assert.Equal(t, "2-9a1", page.String("hostedpage_id"))

		body := api.lastCall().Body
		assert.Equal(t, []string{"plan", "customer_id"}, body.Keys())
	})
}

func TestCustomerScopedClient(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t)
	api.handle(http.MethodPost, "customers/903/contactpersons", http.StatusCreated,
		`{"code":0,"contactperson":{"contactperson_id":"5","email":"ops@example.com"}}`)
	api.handle(http.MethodPut, "customers/903/contactpersons/5", http.StatusOK,
		`{"code":0,"contactperson":{"contactperson_id":"5","email":"ops2@example.com"}}`)

	client := newTestClient(t, api)
	contacts := client.ContactPersons().ForCustomer("903")
	assert.Equal(t, zsubs.KindContactPerson, contacts.Kind())

	contact, err := contacts.Create(context.Background(), zsubs.MapOf("email", "ops@example.com"))
	require.NoError(t, err)
	assert.Equal(t, "5", contact.ID())
	assert.Equal(t, "903", contact.String("customer_id"))

	contact.Set("email", "ops2@example.com")
	require.NoError(t, contact.Save(context.Background()))
	assert.Equal(t, "ops2@example.com", contact.String("email"))
	assert.False(t, api.lastCall().Body.Has("customer_id"))
}
