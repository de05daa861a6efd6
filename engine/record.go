package engine

import (
	"encoding/json"
	"fmt"
)

// opKind tags a Command as it appears on disk and on the wire.
type opKind string

const (
	opSet    opKind = "set"
	opRemove opKind = "remove"
	opGet    opKind = "get"
)

// Command is a single log record, or, on the wire, a single client request.
// Only Set and Remove are ever written to the log; Get exists only as a
// request type and finding one during recovery is a corruption signal.
type Command struct {
	Op    opKind `json:"op"`
	Key   string `json:"key"`
	Value string `json:"value,omitempty"`
}

// SetCommand builds a Set record.
func SetCommand(key, value string) Command {
	return Command{Op: opSet, Key: key, Value: value}
}

// RemoveCommand builds a Remove record.
func RemoveCommand(key string) Command {
	return Command{Op: opRemove, Key: key}
}

// GetCommand builds a Get request. It is never written to the log.
func GetCommand(key string) Command {
	return Command{Op: opGet, Key: key}
}

func (c Command) IsSet() bool    { return c.Op == opSet }
func (c Command) IsRemove() bool { return c.Op == opRemove }
func (c Command) IsGet() bool    { return c.Op == opGet }

// EncodeCommand renders cmd as a single line of JSON with no trailing
// newline. JSON's string escaping forbids a raw 0x0A from ever appearing in
// the output, which is what keeps a log record self-delimiting.
func EncodeCommand(cmd Command) ([]byte, error) {
	b, err := json.Marshal(cmd)
	if err != nil {
		return nil, fmt.Errorf("encode command: %w", err)
	}
	return b, nil
}

// DecodeCommand parses exactly one record. A line that isn't valid JSON, or
// that decodes to an op outside {set, remove, get}, is corruption.
func DecodeCommand(b []byte) (Command, error) {
	var cmd Command
	if err := json.Unmarshal(b, &cmd); err != nil {
		return Command{}, fmt.Errorf("%w: %v", ErrCorruption, err)
	}
	switch cmd.Op {
	case opSet, opRemove, opGet:
	default:
		return Command{}, fmt.Errorf("%w: unknown op %q", ErrCorruption, cmd.Op)
	}
	return cmd, nil
}
