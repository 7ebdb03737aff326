package crmhook

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Default configuration values applied by the concrete client.
const (
	// DefaultBatchSize is the hard ceiling on commands per physical batch
	// exchange, and the page size threshold for ID-cursor listings.
	DefaultBatchSize = 50
	// DefaultRequestsPerSecond is the process-wide outbound request cap
	// enforced at the transport boundary.
	DefaultRequestsPerSecond = 2.0
)

// Fields is a parameter mapping for a remote call. Values may be scalars,
// nested Fields, or slices; anything the form encoding cannot represent
// fails with an EncodingError at call time.
type Fields map[string]interface{}

// Entity is one decoded entity representation as returned by the portal.
// Field keys follow the portal's upper-case convention ("ID", "TITLE", ...).
type Entity map[string]interface{}

// ID extracts the numeric identifier of the entity under the "ID" key.
// The portal serializes identifiers inconsistently (JSON number or numeric
// string), so both forms are accepted.
func (e Entity) ID() (int64, bool) {
	return coerceID(e["ID"])
}

// coerceID normalizes the portal's identifier representations to int64.
func coerceID(value interface{}) (int64, bool) {
	switch v := value.(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case float64:
		return int64(v), true
	case json.Number:
		id, err := v.Int64()
		if err != nil {
			return 0, false
		}

		return id, true
	case string:
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, false
		}

		return id, true
	default:
		return 0, false
	}
}

// Command is one remote call serialized as an opaque string suitable for
// embedding inside a batch payload. Built by BuildCommand; consumed by the
// batch executor.
type Command string

// CallResult is the outcome of one successful logical call: the unwrapped
// result payload plus the pagination metadata pagers need. Returning the
// metadata here keeps pagers off shared client state.
type CallResult struct {
	// Result is the raw "result" field of the response; its shape varies
	// by action.
	Result json.RawMessage
	// Next is the server-supplied offset of the next page; nil means the
	// listing is complete.
	Next *int
	// Total is the total match count reported by the server, when present.
	Total int
}

// Entities decodes the result as a sequence of entity representations.
// resultKey selects a wrapping object key for actions that nest their list
// (e.g. "tasks" for tasks.task.list); empty means the result itself is the
// sequence. An absent key or a null result decodes as an empty page.
func (r *CallResult) Entities(resultKey string) ([]Entity, error) {
	raw := r.Result
	if len(raw) == 0 || string(raw) == "null" {
		return []Entity{}, nil
	}

	if resultKey != "" {
		var wrapper map[string]json.RawMessage

		err := json.Unmarshal(raw, &wrapper)
		if err != nil {
			return nil, fmt.Errorf("decoding result wrapper: %w", err)
		}

		inner, ok := wrapper[resultKey]
		if !ok {
			return []Entity{}, nil
		}

		raw = inner
	}

	var items []Entity

	err := json.Unmarshal(raw, &items)
	if err != nil {
		return nil, fmt.Errorf("decoding entity page: %w", err)
	}

	return items, nil
}

// Entity decodes the result as a single entity representation, unwrapping
// resultKey first when non-empty.
func (r *CallResult) Entity(resultKey string) (Entity, error) {
	raw := r.Result

	if resultKey != "" {
		var wrapper map[string]json.RawMessage

		err := json.Unmarshal(raw, &wrapper)
		if err != nil {
			return nil, fmt.Errorf("decoding result wrapper: %w", err)
		}

		inner, ok := wrapper[resultKey]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrResultKeyAbsent, resultKey)
		}

		raw = inner
	}

	var entity Entity

	err := json.Unmarshal(raw, &entity)
	if err != nil {
		return nil, fmt.Errorf("decoding entity: %w", err)
	}

	return entity, nil
}

// IntoID decodes the result as a bare numeric identifier, the shape add
// operations return.
func (r *CallResult) IntoID() (int64, error) {
	return DecodeID(r.Result)
}

// DecodeID decodes a raw result as a numeric identifier, accepting both the
// JSON number and numeric string forms the portal emits.
func DecodeID(raw json.RawMessage) (int64, error) {
	var value interface{}

	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()

	err := decoder.Decode(&value)
	if err != nil {
		return 0, fmt.Errorf("decoding identifier result: %w", err)
	}

	id, ok := coerceID(value)
	if !ok {
		return 0, fmt.Errorf("%w: %v", ErrNotAnIdentifier, value)
	}

	return id, nil
}

// BatchResult is the result portion of one successful batch exchange:
// per-command results keyed by command label, plus the label submission
// order. An exchange whose per-command error collection is non-empty fails
// with a BatchError instead; a BatchResult never carries errors.
type BatchResult struct {
	// Labels holds the command labels in submission order.
	Labels []string
	// Result maps a command label to that command's own result.
	Result map[string]json.RawMessage
}

// Get returns the result recorded for label.
func (b *BatchResult) Get(label string) (json.RawMessage, bool) {
	raw, ok := b.Result[label]

	return raw, ok
}

// Ordered returns the per-command results present in the result set, in
// label submission order. Labels without a result entry are skipped; callers
// enforcing the count invariant compare len(Ordered()) against the number of
// commands they sent.
func (b *BatchResult) Ordered() []json.RawMessage {
	results := make([]json.RawMessage, 0, len(b.Labels))

	for _, label := range b.Labels {
		raw, ok := b.Result[label]
		if ok {
			results = append(results, raw)
		}
	}

	return results
}
