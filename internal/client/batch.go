package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/crmhook-io/crmhook/pkg/crmhook"
)

// Batch implements crmhook.Client.Batch. Commands are labeled cmd0..cmdN in
// submission order. Chunking to the batch-size ceiling is the caller's
// responsibility; whatever command set arrives here goes out as one
// physical request.
func (c *Client) Batch(ctx context.Context, commands []crmhook.Command, haltOnError bool) (*crmhook.BatchResult, error) {
	labels := make([]string, len(commands))
	labeled := make(map[string]crmhook.Command, len(commands))

	for i, command := range commands {
		label := fmt.Sprintf("cmd%d", i)
		labels[i] = label
		labeled[label] = command
	}

	return c.batchRequest(ctx, labels, labeled, haltOnError)
}

// batchRequest submits a labeled command set as one physical exchange.
// A non-empty per-command error collection fails the whole batch with a
// BatchError; no partial results are returned in that case.
func (c *Client) batchRequest(ctx context.Context, labels []string, commands map[string]crmhook.Command, haltOnError bool) (*crmhook.BatchResult, error) {
	halt := 0
	if haltOnError {
		halt = 1
	}

	cmd := make(crmhook.Fields, len(commands))
	for label, command := range commands {
		cmd[label] = string(command)
	}

	result, err := c.Call(ctx, "batch", crmhook.Fields{"halt": halt, "cmd": cmd})
	if err != nil {
		return nil, fmt.Errorf("executing batch: %w", err)
	}

	var body struct {
		Result      map[string]json.RawMessage `json:"result"`
		ResultError map[string]json.RawMessage `json:"result_error"`
	}

	err = json.Unmarshal(result.Result, &body)
	if err != nil {
		return nil, fmt.Errorf("decoding batch result: %w", err)
	}

	if len(body.ResultError) > 0 {
		failed := make(map[string]string, len(body.ResultError))
		for label, raw := range body.ResultError {
			failed[label] = string(raw)
		}

		return nil, &crmhook.BatchError{
			Commands: serialize(commands),
			Response: string(result.Result),
			Failed:   failed,
		}
	}

	return &crmhook.BatchResult{
		Labels: labels,
		Result: body.Result,
	}, nil
}

// bulkBatch is the shared chunk/validate/aggregate primitive behind every
// bulk entity operation. It partitions items to the batch-size ceiling,
// builds one command per item per chunk through buildParams (whose errors,
// such as a missing identifier, surface before the chunk's network call),
// executes each chunk as one batch, verifies the count invariant, and
// concatenates per-chunk results in chunk order with item order preserved.
//
// The portal is relied upon to preserve command order inside a batch; only
// the count invariant is validated client-side.
func (c *Client) bulkBatch(ctx context.Context, action string, items []crmhook.Fields, buildParams func(index int, item crmhook.Fields) (crmhook.Fields, error)) ([]json.RawMessage, error) {
	results := make([]json.RawMessage, 0, len(items))

	for start := 0; start < len(items); start += c.batchSize {
		end := start + c.batchSize
		if end > len(items) {
			end = len(items)
		}

		chunk := make([]crmhook.Fields, 0, end-start)

		for i := start; i < end; i++ {
			params, err := buildParams(i, items[i])
			if err != nil {
				return nil, err
			}

			chunk = append(chunk, params)
		}

		commands, err := crmhook.BuildCommands(action, chunk)
		if err != nil {
			return nil, fmt.Errorf("compiling %s commands: %w", action, err)
		}

		batch, err := c.Batch(ctx, commands, true)
		if err != nil {
			return nil, err
		}

		// The count invariant cuts both ways: a short result set means the
		// portal dropped commands, extra or unknown labels mean results
		// cannot be attributed to the commands sent.
		chunkResults := batch.Ordered()
		if len(chunkResults) != len(commands) || len(batch.Result) != len(commands) {
			return nil, &crmhook.CountMismatchError{
				Sent:     len(commands),
				Received: len(batch.Result),
				Response: serialize(batch.Result),
			}
		}

		results = append(results, chunkResults...)
	}

	return results, nil
}

// getWithRelations fetches an entity and its named related sub-resources in
// one batch exchange. Labels are the relation names themselves plus a fixed
// primary label, so the composed result reads back by requested name. An
// unknown relation name fails as a lookup error before any network call.
func (c *Client) getWithRelations(ctx context.Context, action string, id int64, relations []string, relationActions map[string]string) (crmhook.Entity, error) {
	const primaryLabel = "base"

	labels := make([]string, 0, len(relations)+1)
	commands := make(map[string]crmhook.Command, len(relations)+1)

	primary, err := crmhook.BuildCommand(action, crmhook.Fields{"id": id})
	if err != nil {
		return nil, fmt.Errorf("building primary command: %w", err)
	}

	labels = append(labels, primaryLabel)
	commands[primaryLabel] = primary

	for _, relation := range relations {
		relationAction, ok := relationActions[relation]
		if !ok {
			return nil, &crmhook.LookupError{Label: relation}
		}

		command, err := crmhook.BuildCommand(relationAction, crmhook.Fields{"id": id})
		if err != nil {
			return nil, fmt.Errorf("building relation command %q: %w", relation, err)
		}

		labels = append(labels, relation)
		commands[relation] = command
	}

	batch, err := c.batchRequest(ctx, labels, commands, true)
	if err != nil {
		return nil, err
	}

	entity, err := crmhook.ComposeWithRelations(batch, primaryLabel, relations)
	if err != nil {
		return nil, err
	}

	return entity, nil
}
