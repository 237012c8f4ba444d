// Package store provides durable per-partition persistence backends.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
)

// Partition identifies one isolated cache domain: a storage root, a target
// language, and a context name. Partitions never share state, so the same
// source text may translate differently per context (e.g., "marketing" vs
// "legal" copy).
type Partition struct {
	Root    string // Storage root path
	Lang    string // Target language code (e.g., "fr_FR")
	Context string // Context name (e.g., "default")
}

// Path returns the persisted-resource path for the partition. It is also
// the mutual-exclusion key: partitions serializing to different paths are
// fully independent.
func (p Partition) Path() string {
	return filepath.Join(p.Root, p.Lang, p.Context+".json")
}

// Store persists one partition as a flat source→translation mapping.
//
// Implementations must replace the persisted representation atomically: a
// concurrent reader never observes a partially written partition.
type Store interface {
	// Load reads the persisted entries and their on-disk key order.
	// A missing partition yields an empty map, not an error; an
	// unparseable one yields a CorruptError.
	Load(ctx context.Context, p Partition) (map[string]string, []string, error)

	// Save durably replaces the persisted representation, writing keys
	// in the given order and creating any missing containing structure.
	Save(ctx context.Context, p Partition, values map[string]string, order []string) error
}

// CorruptError indicates the persisted representation exists but cannot be
// parsed. It is surfaced, never silently discarded: a hand-edited file that
// went bad must not vanish.
type CorruptError struct {
	Path  string
	Cause error
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("store: corrupt partition %s: %v", e.Path, e.Cause)
}

func (e *CorruptError) Unwrap() error {
	return e.Cause
}

// WriteError indicates an I/O failure while persisting a partition.
type WriteError struct {
	Path  string
	Cause error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("store: writing partition %s: %v", e.Path, e.Cause)
}

func (e *WriteError) Unwrap() error {
	return e.Cause
}

// encodeEntries serializes a partition as an indented JSON object with keys
// in the given order. The file stays human-editable, and the key order read
// back is the insertion-order baseline for example selection.
func encodeEntries(values map[string]string, order []string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("{")
	written := 0
	for _, key := range order {
		value, ok := values[key]
		if !ok {
			continue
		}
		if written > 0 {
			buf.WriteString(",")
		}
		buf.WriteString("\n  ")
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteString(": ")
		buf.Write(v)
		written++
	}
	if written > 0 {
		buf.WriteString("\n")
	}
	buf.WriteString("}\n")
	return buf.Bytes(), nil
}

// decodeEntries parses a flat JSON object of strings, preserving key order.
func decodeEntries(data []byte) (map[string]string, []string, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, nil, fmt.Errorf("expected object, got %v", tok)
	}

	values := make(map[string]string)
	var order []string
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, nil, fmt.Errorf("expected string key, got %v", keyTok)
		}

		valTok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		value, ok := valTok.(string)
		if !ok {
			return nil, nil, fmt.Errorf("expected string value for key %q, got %v", key, valTok)
		}

		if _, seen := values[key]; !seen {
			order = append(order, key)
		}
		values[key] = value
	}

	if _, err := dec.Token(); err != nil {
		return nil, nil, err
	}
	return values, order, nil
}
