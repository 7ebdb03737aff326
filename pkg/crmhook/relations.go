package crmhook

import (
	"encoding/json"
	"fmt"
)

// ComposeWithRelations flattens a batch result produced by a "get entity
// with related sub-resources" call. The primary label's entry supplies the
// base entity fields; each requested relation contributes one additional
// key holding that relation's fetched value. A missing primary or relation
// label fails with a LookupError rather than being silently omitted:
// callers are expected to request valid relation names.
func ComposeWithRelations(batch *BatchResult, primaryLabel string, relations []string) (Entity, error) {
	raw, ok := batch.Get(primaryLabel)
	if !ok {
		return nil, &LookupError{Label: primaryLabel}
	}

	var entity Entity

	err := json.Unmarshal(raw, &entity)
	if err != nil {
		return nil, fmt.Errorf("decoding primary entity %q: %w", primaryLabel, err)
	}

	for _, relation := range relations {
		raw, ok := batch.Get(relation)
		if !ok {
			return nil, &LookupError{Label: relation}
		}

		var value interface{}

		err := json.Unmarshal(raw, &value)
		if err != nil {
			return nil, fmt.Errorf("decoding relation %q: %w", relation, err)
		}

		entity[relation] = value
	}

	return entity, nil
}
