// Package jsonstore reads leniently typed JSON arrays and writes files
// atomically.
package jsonstore

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
)

// Record is one array element. It is nil when the element was not an
// object.
type Record map[string]any

// String returns the field as a string, or "" when missing or not a string.
func (r Record) String(key string) string {
	s, _ := r[key].(string)
	return s
}

// Float returns a numeric field, or 0 when missing or not a number.
func (r Record) Float(key string) float64 {
	f, ok := r[key].(float64)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// Int returns a numeric field truncated to int.
func (r Record) Int(key string) int {
	return int(r.Float(key))
}

// ErrNotArray reports a file whose top-level value is not a JSON array.
var ErrNotArray = errors.New("top-level value is not an array")

// ReadArray loads path as a JSON array of records. A missing file returns
// (nil, false, nil).
func ReadArray(path string) ([]Record, bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, true, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, true, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, true, fmt.Errorf("%s: %w", path, ErrNotArray)
	}

	records := make([]Record, len(items))
	for i, item := range items {
		if obj, ok := item.(map[string]any); ok {
			records[i] = obj
		}
	}
	return records, true, nil
}

// Marshal encodes v without HTML escaping, so commands such as "a && b"
// stay readable. A non-empty indent pretty-prints.
func Marshal(v any, indent string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent != "" {
		enc.SetIndent("", indent)
	}
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// WriteFile replaces path with data through a temp file and rename,
// creating parent directories.
func WriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tempFile := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tempFile)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tempFile, 0644); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to chmod temp file: %w", err)
	}

	if err := os.Rename(tempFile, path); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}
