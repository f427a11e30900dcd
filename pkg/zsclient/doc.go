// Package zsclient provides the primary entry point for constructing a
// subscription billing API client that implements the zsubs.Client interface.
//
// It layers configuration, HTTP transport, authentication, the page cache and
// observability on top of the entity registry and resource interfaces defined
// in the zsubs package. Most applications import zsclient to build a client,
// then use the returned zsubs.Client to reach resource clients such as
// Customers(), Plans() or Subscriptions(), or the generic factory methods.
//
// Quick start
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
//
//	  cli, err := zsclient.New(ctx, &zsubs.Config{
//	    AccessToken:    "1000.xxxx",
//	    OrganizationID: "10234695",
//	  })
//	  if err != nil { log.Fatal(err) }
//	  defer cli.Close()
//
//	  customers, err := cli.Customers().List(ctx, zsubs.NewQueryParams().WithFilterBy("Status.Active"))
//	  if err != nil { log.Fatal(err) }
//
//	  for _, customer := range customers {
//	    log.Println(customer.ID(), customer.String("display_name"))
//	  }
//
//	  plan, err := cli.GetEntity(ctx, zsubs.KindPlan, "basic")
//	  if err != nil { log.Fatal(err) }
//
//	  plan.Set("recurring_price", 12)
//	  if err := plan.Save(ctx); err != nil { log.Fatal(err) }
//	}
//
// # Shared cache
//
// List pages are cached in memory by default. Set Config.Cache to a
// zsubs.CacheConfig of type zsubs.CacheTypeNATS to share pages between
// processes through a JetStream key-value bucket, zsubs.CacheTypeChain to keep
// a memory tier in front of that bucket, or zsubs.CacheTypeNone to disable
// caching.
//
// # Dependency injection
//
// Module wires the client into a go.uber.org/fx application from a provided
// zsubs.Config and closes it on shutdown.
package zsclient
