package core

// record.go defines the ordered record type shared by every generator and
// serializer.
//
// Go maps do not preserve insertion order, but every output format derives
// its columns from the first record's key order. Record therefore keeps an
// explicit key slice next to the value map.

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Record is an ordered mapping from field name to a scalar value.
// Values are int or string; decimals are stored already formatted.
type Record struct {
	keys   []string
	values map[string]any
}

// Dataset is an ordered sequence of records produced by one generation call.
type Dataset []Record

// NewRecord creates an empty record with room for n fields.
func NewRecord(n int) Record {
	return Record{
		keys:   make([]string, 0, n),
		values: make(map[string]any, n),
	}
}

// Set assigns a value. A new key is appended; an existing key keeps its
// position and only the value is replaced.
func (r *Record) Set(key string, value any) {
	if r.values == nil {
		r.values = make(map[string]any)
	}
	if _, exists := r.values[key]; !exists {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// Get returns the value stored under key.
func (r Record) Get(key string) (any, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Keys returns the field names in insertion order.
func (r Record) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Len returns the number of fields.
func (r Record) Len() int {
	return len(r.keys)
}

// MarshalJSON encodes the record as a JSON object in key order.
// HTML characters are left unescaped so output matches the value verbatim.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := enc.Encode(k); err != nil {
			return nil, err
		}
		buf.Truncate(buf.Len() - 1) // Encode appends a newline
		buf.WriteByte(':')
		if err := enc.Encode(r.values[k]); err != nil {
			return nil, fmt.Errorf("encode field %q: %w", k, err)
		}
		buf.Truncate(buf.Len() - 1)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a flat JSON object, keeping key order.
// Integral numbers decode to int, other numbers to float64.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("record: expected object, got %v", tok)
	}

	*r = NewRecord(0)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := keyTok.(string)

		var raw any
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("record field %q: %w", key, err)
		}
		if n, ok := raw.(json.Number); ok {
			if i, err := n.Int64(); err == nil {
				raw = int(i)
			} else if f, err := n.Float64(); err == nil {
				raw = f
			}
		}
		r.Set(key, raw)
	}

	_, err = dec.Token()
	return err
}

// columns returns the key order of the first record, or nil for an empty dataset.
func (ds Dataset) columns() []string {
	if len(ds) == 0 {
		return nil
	}
	return ds[0].keys
}
