package crmhook

import (
	"fmt"
	"net/url"
	"strings"
)

// BuildCommand serializes one remote call to an opaque command string:
// the action name followed by a ?-delimited, query-encoded parameter
// string. The encoding is deterministic for a given parameter set (keys
// are emitted in sorted order by url.Values.Encode).
func BuildCommand(action string, params Fields) (Command, error) {
	if action == "" {
		return "", ErrActionRequired
	}

	values, err := EncodeParams(params)
	if err != nil {
		return "", err
	}

	if len(values) == 0 {
		return Command(action), nil
	}

	return Command(action + "?" + values.Encode()), nil
}

// BuildCommands maps one action over an ordered list of parameter sets,
// producing a same-length ordered list of commands.
func BuildCommands(action string, items []Fields) ([]Command, error) {
	commands := make([]Command, 0, len(items))

	for i, item := range items {
		command, err := BuildCommand(action, item)
		if err != nil {
			return nil, fmt.Errorf("building command %d: %w", i, err)
		}

		commands = append(commands, command)
	}

	return commands, nil
}

// ParseCommand recovers the action name and parameter set from a command
// string. Bracketed keys are rebuilt into nested Fields; sequence indices
// come back as numeric string keys and all leaves come back as strings,
// which is what the wire encoding preserves. Primarily a diagnostic and
// testing aid.
func ParseCommand(command Command) (string, Fields, error) {
	text := string(command)

	action, query, found := strings.Cut(text, "?")
	if action == "" {
		return "", nil, ErrActionRequired
	}

	params := Fields{}
	if !found || query == "" {
		return action, params, nil
	}

	values, err := url.ParseQuery(query)
	if err != nil {
		return "", nil, fmt.Errorf("parsing command query: %w", err)
	}

	for key, list := range values {
		if len(list) == 0 {
			continue
		}

		insertPath(params, splitBracketKey(key), list[len(list)-1])
	}

	return action, params, nil
}

// splitBracketKey breaks "FIELDS[CONTACT][0]" into its path segments.
func splitBracketKey(key string) []string {
	head, rest, found := strings.Cut(key, "[")
	if !found {
		return []string{key}
	}

	path := []string{head}

	for _, segment := range strings.Split(rest, "[") {
		path = append(path, strings.TrimSuffix(segment, "]"))
	}

	return path
}

func insertPath(target Fields, path []string, value string) {
	for len(path) > 1 {
		child, ok := target[path[0]].(Fields)
		if !ok {
			child = Fields{}
			target[path[0]] = child
		}

		target = child
		path = path[1:]
	}

	target[path[0]] = value
}
