// Package crmhook provides types, interfaces, and helpers for working with a
// CRM portal's inbound-webhook REST API.
//
// # Overview
//
// The crmhook package defines the wire types (CallResult, BatchResult,
// Command, Fields) and the interfaces for entity-oriented clients
// (DealsClient, ContactsClient, TasksClient, and so on). A concrete
// implementation of these clients is provided by the crmclient package, which
// wires configuration, transport, and the request engine together. Most
// consumers should import crmclient to construct a client and then interact
// with the entity client interfaces exposed here.
//
// Getting a client
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/crmhook-io/crmhook/pkg/crmclient"
//	  "github.com/crmhook-io/crmhook/pkg/crmhook"
//	)
//
//	func example() {
//	  ctx := context.Background()
//	  cli, err := crmclient.New(&crmhook.Config{WebhookURL: "https://portal.example.com/rest/1/abc123"})
//	  if err != nil { log.Fatal(err) }
//
//	  deal, err := cli.Deals().Get(ctx, 42)
//	  if err != nil { log.Fatal(err) }
//	  _ = deal
//	}
//
// # Listings
//
// List-style calls return lazy page iterators. A ListIterator follows the
// server-supplied "next" offset token; a FetchIterator walks an ascending ID
// cursor and is the faster choice for full listings. Both are finite,
// forward-only, and not restartable: create a new iterator to list again.
//
//	it := cli.Deals().List(ctx, crmhook.Fields{"filter": crmhook.Fields{"STAGE_ID": "NEW"}})
//	for it.HasNext() {
//	  page, err := it.NextPage()
//	  if err != nil { break }
//	  _ = page
//	}
//
// # Batches
//
// The portal executes up to BatchSize commands in one physical exchange.
// Bulk helpers (AddMany, UpdateMany, DeleteMany) chunk their input to the
// ceiling, verify the command/result count invariant per chunk, and return
// per-item results in submission order. Raw access is available through
// Client.Batch for callers composing their own command sets.
//
// # Errors
//
// Failures carry typed errors: TransportError, APIError, BatchError,
// CountMismatchError, IdentifierMissingError, EncodingError, and LookupError.
// Helpers such as IsTransportError and IsAPIError make it easy to branch on
// the failure class. Every error includes the serialized request parameters
// and response needed to diagnose without re-running under verbose logging.
// None are retried internally; callers needing resilience wrap these calls.
package crmhook
