package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/crmhook-io/crmhook/pkg/crmhook"
)

// entityClient is the shared implementation behind the CRM entity clients.
// Every wrapper is the same thin glue: translate typed parameters into the
// entity's namespaced actions and hand the rest to the request engine.
type entityClient struct {
	client *Client
	// prefix is the entity's action namespace, e.g. "crm.deal".
	prefix string
	// relations maps requestable relation names to their fetch actions.
	relations map[string]string
}

func (e *entityClient) action(op string) string {
	return e.prefix + "." + op
}

// Get fetches one entity by identifier.
func (e *entityClient) Get(ctx context.Context, id int64) (crmhook.Entity, error) {
	result, err := e.client.Call(ctx, e.action("get"), crmhook.Fields{"id": id})
	if err != nil {
		return nil, fmt.Errorf("getting %s %d: %w", e.prefix, id, err)
	}

	entity, err := result.Entity("")
	if err != nil {
		return nil, fmt.Errorf("getting %s %d: %w", e.prefix, id, err)
	}

	return entity, nil
}

// GetWithRelations fetches the entity plus the named related sub-resources
// in one batch exchange.
func (e *entityClient) GetWithRelations(ctx context.Context, id int64, relations []string) (crmhook.Entity, error) {
	entity, err := e.client.getWithRelations(ctx, e.action("get"), id, relations, e.relations)
	if err != nil {
		return nil, fmt.Errorf("getting %s %d with relations: %w", e.prefix, id, err)
	}

	return entity, nil
}

// List returns an offset-cursor page iterator over the entity listing.
func (e *entityClient) List(ctx context.Context, params crmhook.Fields) *crmhook.ListIterator {
	return crmhook.NewListIterator(ctx, e.client, e.action("list"), params)
}

// Fetch returns an ID-cursor page iterator, the faster strategy for full
// listings.
func (e *entityClient) Fetch(ctx context.Context, params crmhook.Fields) *crmhook.FetchIterator {
	return crmhook.NewFetchIterator(ctx, e.client, e.action("list"), params, e.client.batchSize)
}

// Fields returns the entity's field dictionary.
func (e *entityClient) Fields(ctx context.Context) (crmhook.Entity, error) {
	result, err := e.client.Call(ctx, e.action("fields"), nil)
	if err != nil {
		return nil, fmt.Errorf("describing %s fields: %w", e.prefix, err)
	}

	entity, err := result.Entity("")
	if err != nil {
		return nil, fmt.Errorf("describing %s fields: %w", e.prefix, err)
	}

	return entity, nil
}

// Add creates one entity and returns its new identifier.
func (e *entityClient) Add(ctx context.Context, fields crmhook.Fields) (int64, error) {
	result, err := e.client.Call(ctx, e.action("add"), crmhook.Fields{"fields": fields})
	if err != nil {
		return 0, fmt.Errorf("adding %s: %w", e.prefix, err)
	}

	id, err := result.IntoID()
	if err != nil {
		return 0, fmt.Errorf("adding %s: %w", e.prefix, err)
	}

	return id, nil
}

// Update modifies one entity.
func (e *entityClient) Update(ctx context.Context, id int64, fields crmhook.Fields) error {
	_, err := e.client.Call(ctx, e.action("update"), crmhook.Fields{"id": id, "fields": fields})
	if err != nil {
		return fmt.Errorf("updating %s %d: %w", e.prefix, id, err)
	}

	return nil
}

// Delete removes one entity.
func (e *entityClient) Delete(ctx context.Context, id int64) error {
	_, err := e.client.Call(ctx, e.action("delete"), crmhook.Fields{"id": id})
	if err != nil {
		return fmt.Errorf("deleting %s %d: %w", e.prefix, id, err)
	}

	return nil
}

// AddMany creates many entities through the bulk batch primitive and
// returns their new identifiers in item order.
func (e *entityClient) AddMany(ctx context.Context, items []crmhook.Fields) ([]int64, error) {
	results, err := e.client.bulkBatch(ctx, e.action("add"), items, func(_ int, item crmhook.Fields) (crmhook.Fields, error) {
		return crmhook.Fields{"fields": item}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("adding %s items: %w", e.prefix, err)
	}

	return decodeIDs(results)
}

// UpdateMany modifies many entities. Every item must carry an "ID" field;
// an item without one fails the operation before its chunk is sent.
func (e *entityClient) UpdateMany(ctx context.Context, items []crmhook.Fields) error {
	_, err := e.client.bulkBatch(ctx, e.action("update"), items, updateItemParams)
	if err != nil {
		return fmt.Errorf("updating %s items: %w", e.prefix, err)
	}

	return nil
}

// DeleteMany removes many entities by identifier.
func (e *entityClient) DeleteMany(ctx context.Context, ids []int64) error {
	items := make([]crmhook.Fields, len(ids))
	for i, id := range ids {
		items[i] = crmhook.Fields{"id": id}
	}

	_, err := e.client.bulkBatch(ctx, e.action("delete"), items, func(_ int, item crmhook.Fields) (crmhook.Fields, error) {
		return item, nil
	})
	if err != nil {
		return fmt.Errorf("deleting %s items: %w", e.prefix, err)
	}

	return nil
}

// updateItemParams resolves the identifier an update item must carry and
// splits it from the field payload. Runs before any network traffic for
// the item's chunk.
func updateItemParams(index int, item crmhook.Fields) (crmhook.Fields, error) {
	id, ok := crmhook.Entity(item).ID()
	if !ok {
		return nil, &crmhook.IdentifierMissingError{Index: index}
	}

	fields := make(crmhook.Fields, len(item))

	for key, value := range item {
		if key == "ID" {
			continue
		}

		fields[key] = value
	}

	return crmhook.Fields{"id": id, "fields": fields}, nil
}

// decodeIDs decodes per-command add results into identifiers, preserving
// order.
func decodeIDs(results []json.RawMessage) ([]int64, error) {
	ids := make([]int64, len(results))

	for i, raw := range results {
		id, err := crmhook.DecodeID(raw)
		if err != nil {
			return nil, fmt.Errorf("decoding result %d: %w", i, err)
		}

		ids[i] = id
	}

	return ids, nil
}
