package crmhook

import (
	"context"
	"fmt"
)

// Caller issues one logical remote call. Implemented by the concrete client;
// accepted here so iterators can be driven by mocks in tests.
type Caller interface {
	Call(ctx context.Context, action string, params Fields) (*CallResult, error)
}

// IteratorOption configures a page iterator.
type IteratorOption func(*iteratorConfig)

type iteratorConfig struct {
	resultKey string
	idField   string
}

// WithResultKey selects the wrapping object key holding the page sequence,
// for actions that nest their list (e.g. "tasks" for tasks.task.list).
func WithResultKey(key string) IteratorOption {
	return func(cfg *iteratorConfig) {
		cfg.resultKey = key
	}
}

// WithIDField overrides the identifier field an ID-cursor iterator reads
// from the last item of each page. Defaults to "ID".
func WithIDField(field string) IteratorOption {
	return func(cfg *iteratorConfig) {
		cfg.idField = field
	}
}

// ListIterator drives offset-cursor pagination: each page call follows the
// server-supplied "next" token until the server stops sending one. The
// sequence is finite, forward-only, and not restartable; construct a new
// iterator to list from the start again. Abandoning the sequence early
// carries no penalty.
type ListIterator struct {
	ctx       context.Context
	caller    Caller
	action    string
	params    Fields
	resultKey string

	offset    *int
	total     int
	exhausted bool
}

// NewListIterator creates an offset-cursor page iterator. The caller's
// filter/select/order parameters are captured at construction; no call is
// issued until the first NextPage.
func NewListIterator(ctx context.Context, caller Caller, action string, params Fields, opts ...IteratorOption) *ListIterator {
	cfg := applyIteratorOptions(opts)

	return &ListIterator{
		ctx:       ctx,
		caller:    caller,
		action:    action,
		params:    copyFields(params),
		resultKey: cfg.resultKey,
	}
}

// HasNext reports whether another page can be requested.
func (it *ListIterator) HasNext() bool {
	return !it.exhausted
}

// NextPage performs one call and yields the returned page, even when it is
// empty. After the listing is exhausted it fails with ErrNoMorePages.
func (it *ListIterator) NextPage() ([]Entity, error) {
	if it.exhausted {
		return nil, ErrNoMorePages
	}

	params := copyFields(it.params)
	if it.offset != nil {
		params["start"] = *it.offset
	}

	result, err := it.caller.Call(it.ctx, it.action, params)
	if err != nil {
		it.exhausted = true

		return nil, fmt.Errorf("listing %s: %w", it.action, err)
	}

	page, err := result.Entities(it.resultKey)
	if err != nil {
		it.exhausted = true

		return nil, fmt.Errorf("listing %s: %w", it.action, err)
	}

	it.total = result.Total

	if result.Next == nil {
		it.exhausted = true
	} else {
		offset := *result.Next
		it.offset = &offset
	}

	return page, nil
}

// Total returns the total match count the server reported on the most
// recent page, when it reports one.
func (it *ListIterator) Total() int {
	return it.total
}

// All drains the remaining pages into one slice.
func (it *ListIterator) All() ([]Entity, error) {
	var items []Entity

	for it.HasNext() {
		page, err := it.NextPage()
		if err != nil {
			return nil, err
		}

		items = append(items, page...)
	}

	return items, nil
}

// ForEach applies fn to every remaining entity, stopping on the first error.
func (it *ListIterator) ForEach(fn func(Entity) error) error {
	for it.HasNext() {
		page, err := it.NextPage()
		if err != nil {
			return err
		}

		for _, item := range page {
			err := fn(item)
			if err != nil {
				return err
			}
		}
	}

	return nil
}

// FetchIterator drives ID-cursor pagination for faster, order-stable full
// listings. It forces an ascending sort on the identifier field, a
// greater-than identifier filter starting at zero, and start=-1 (the portal
// convention disabling offset counting overhead). A page smaller than the
// page size ends the listing.
//
// The portal must return items in ascending identifier order with the
// identifier present on every item; a page whose last item lacks a usable
// identifier is a fatal listing error, not a silently wrong result.
type FetchIterator struct {
	ctx       context.Context
	caller    Caller
	action    string
	params    Fields
	resultKey string
	idField   string
	pageSize  int

	lastID    int64
	exhausted bool
}

// NewFetchIterator creates an ID-cursor page iterator. pageSize is the
// batch-size ceiling used as the completion threshold; values below one
// fall back to DefaultBatchSize.
func NewFetchIterator(ctx context.Context, caller Caller, action string, params Fields, pageSize int, opts ...IteratorOption) *FetchIterator {
	cfg := applyIteratorOptions(opts)

	if pageSize < 1 {
		pageSize = DefaultBatchSize
	}

	return &FetchIterator{
		ctx:       ctx,
		caller:    caller,
		action:    action,
		params:    copyFields(params),
		resultKey: cfg.resultKey,
		idField:   cfg.idField,
		pageSize:  pageSize,
	}
}

// HasNext reports whether another page can be requested.
func (it *FetchIterator) HasNext() bool {
	return !it.exhausted
}

// NextPage performs one call and yields the returned page. After the
// listing is exhausted it fails with ErrNoMorePages.
func (it *FetchIterator) NextPage() ([]Entity, error) {
	if it.exhausted {
		return nil, ErrNoMorePages
	}

	params := it.cursorParams()

	result, err := it.caller.Call(it.ctx, it.action, params)
	if err != nil {
		it.exhausted = true

		return nil, fmt.Errorf("fetching %s: %w", it.action, err)
	}

	page, err := result.Entities(it.resultKey)
	if err != nil {
		it.exhausted = true

		return nil, fmt.Errorf("fetching %s: %w", it.action, err)
	}

	if len(page) < it.pageSize {
		it.exhausted = true

		return page, nil
	}

	last := page[len(page)-1]

	lastID, ok := coerceID(last[it.idField])
	if !ok {
		it.exhausted = true

		return nil, fmt.Errorf("%w: field %q on last item of %s page", ErrMissingItemID, it.idField, it.action)
	}

	it.lastID = lastID

	return page, nil
}

// All drains the remaining pages into one slice.
func (it *FetchIterator) All() ([]Entity, error) {
	var items []Entity

	for it.HasNext() {
		page, err := it.NextPage()
		if err != nil {
			return nil, err
		}

		items = append(items, page...)
	}

	return items, nil
}

// ForEach applies fn to every remaining entity, stopping on the first error.
func (it *FetchIterator) ForEach(fn func(Entity) error) error {
	for it.HasNext() {
		page, err := it.NextPage()
		if err != nil {
			return err
		}

		for _, item := range page {
			err := fn(item)
			if err != nil {
				return err
			}
		}
	}

	return nil
}

// cursorParams overlays the forced ordering, greater-than filter, and
// start=-1 convention onto the caller's parameters.
func (it *FetchIterator) cursorParams() Fields {
	params := copyFields(it.params)

	order := copyFields(asFields(params["order"]))
	order[it.idField] = "ASC"
	params["order"] = order

	filter := copyFields(asFields(params["filter"]))
	filter[">"+it.idField] = it.lastID
	params["filter"] = filter

	params["start"] = -1

	return params
}

func applyIteratorOptions(opts []IteratorOption) iteratorConfig {
	cfg := iteratorConfig{idField: "ID"}

	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}

// copyFields shallow-copies a parameter mapping so iterator state never
// mutates the caller's maps.
func copyFields(params Fields) Fields {
	copied := make(Fields, len(params))

	for key, value := range params {
		copied[key] = value
	}

	return copied
}

func asFields(value interface{}) Fields {
	switch v := value.(type) {
	case Fields:
		return v
	case map[string]interface{}:
		return v
	default:
		return Fields{}
	}
}
