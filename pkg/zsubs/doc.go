// Package zsubs provides types, interfaces, and helpers for working with the
// Zoho Subscriptions v1 REST API.
//
// # Overview
//
// The zsubs package defines the attribute tree (Map and List), templates and
// the projector that reshapes outgoing payloads, the entity registry, typed
// resource views (Customer, Plan, Invoice, ...) and the client interfaces.
// A concrete implementation of these interfaces is provided by the zsclient
// package. Most consumers should import zsclient to construct a client and
// then work with the interfaces exposed here.
//
// Getting a client
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/fivetwenty-io/zsubs-client/pkg/zsclient"
//	  "github.com/fivetwenty-io/zsubs-client/pkg/zsubs"
//	)
//
//	func example() {
//	  ctx := context.Background()
//	  cli, err := zsclient.New(ctx, &zsubs.Config{
//	    AccessToken:    "1000.xxxx",
//	    OrganizationID: "10234695",
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  customer, err := cli.Customers().Get(ctx, "903000000000099")
//	  if err != nil { log.Fatal(err) }
//
//	  customer.Set("notes", "VIP")
//	  if err := customer.Save(ctx); err != nil { log.Fatal(err) }
//	}
//
// # Records
//
// Every entity is a Record driven by its Definition: the API paths, the id
// field, the templates projected on save and the nested schema used to turn
// embedded objects into sub-records. DefaultRegistry holds the definitions of
// every kind the API serves; callers may clone and adjust it.
//
// # Templates
//
// A Template is an ordered whitelist. Project keeps only the attributes it
// names, drops empty leaves, recurses into nested entries and applies the
// wildcard entry "*" to every element of a keyed map or list:
//
//	t, _ := zsubs.ParseTemplate([]byte(`
//	- name
//	- price_brackets:
//	    - "*": [start_quantity, price]
//	`))
//	payload := zsubs.ProjectMap(attrs, t)
//
// # Lists and caching
//
// List calls walk every page of a collection. Pages are cached by a
// CacheManager keyed on the path and all query parameters; successful saves
// and deletes invalidate the cached pages of their collection. The cache
// backend is in-memory by default and can be shared between processes through
// a NATS JetStream key-value bucket (CacheTypeNATS). CacheTypeChain keeps a
// memory tier in front of the bucket.
//
// # Errors
//
// Transport failures are reported as *TransportError, HTTP statuses outside
// 2xx as *StatusError and non-zero response codes as *APIError. Helpers such
// as IsNotFound, IsUnauthorized and IsRateLimited branch on common cases.
package zsubs
