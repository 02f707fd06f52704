// Package record defines the payload carried by a block and its canonical
// serialization. The canonical form feeds the block digest, so it must be
// byte stable: a compact JSON object whose members appear in the record's
// field order, values restricted to strings, standard encoding/json string
// escaping, and no insignificant whitespace. Any change to this convention
// changes every block hash derived from it.
package record

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
)

// Field represents a single named value inside a record.
type Field struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Record represents an ordered set of named string fields. The order of the
// fields is part of the record's identity since it determines the canonical
// serialization.
type Record []Field

// New constructs a record from the specified fields. Field names must be
// unique and non-empty so the canonical form identifies the record
// unambiguously.
func New(fields ...Field) (Record, error) {
	if len(fields) == 0 {
		return nil, errors.New("record requires at least one field")
	}

	seen := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		if field.Name == "" {
			return nil, errors.New("record field name is empty")
		}
		if _, exists := seen[field.Name]; exists {
			return nil, fmt.Errorf("record field name %q is duplicated", field.Name)
		}
		seen[field.Name] = struct{}{}
	}

	rec := make(Record, len(fields))
	copy(rec, fields)

	return rec, nil
}

// FromMap constructs a record from an unordered map by fixing the field
// order to the sorted field names. Two equal maps always produce the same
// record and therefore the same canonical form.
func FromMap(m map[string]string) (Record, error) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	fields := make([]Field, len(names))
	for i, name := range names {
		fields[i] = Field{Name: name, Value: m[name]}
	}

	return New(fields...)
}

// Parse converts a canonical payload string back into a record, preserving
// the field order found in the document. Anything that is not a flat JSON
// object of string values is rejected.
func Parse(s string) (Record, error) {
	dec := json.NewDecoder(strings.NewReader(s))

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("reading payload: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errors.New("payload is not a JSON object")
	}

	var fields []Field
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("reading field name: %w", err)
		}
		name, ok := tok.(string)
		if !ok {
			return nil, errors.New("payload field name is not a string")
		}

		tok, err = dec.Token()
		if err != nil {
			return nil, fmt.Errorf("reading field %q: %w", name, err)
		}
		value, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("payload field %q does not carry a string value", name)
		}

		fields = append(fields, Field{Name: name, Value: value})
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("reading payload close: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("payload carries trailing data")
	}

	return New(fields...)
}

// Canonical returns the byte-stable serialization of the record that is
// hashed into the block digest: a compact JSON object with members in field
// order.
func (r Record) Canonical() string {
	var buf bytes.Buffer

	buf.WriteByte('{')
	for i, field := range r {
		if i > 0 {
			buf.WriteByte(',')
		}

		// Marshaling a plain string cannot fail.
		name, _ := json.Marshal(field.Name)
		buf.Write(name)
		buf.WriteByte(':')
		value, _ := json.Marshal(field.Value)
		buf.Write(value)
	}
	buf.WriteByte('}')

	return buf.String()
}

// Lookup returns the value for the specified field name.
func (r Record) Lookup(name string) (string, bool) {
	for _, field := range r {
		if field.Name == name {
			return field.Value, true
		}
	}

	return "", false
}

// MarshalJSON implements the json.Marshaler interface so a record travels
// over the wire in its canonical form.
func (r Record) MarshalJSON() ([]byte, error) {
	return []byte(r.Canonical()), nil
}

// UnmarshalJSON implements the json.Unmarshaler interface, accepting only
// documents that parse back to a well formed record.
func (r *Record) UnmarshalJSON(data []byte) error {
	rec, err := Parse(string(data))
	if err != nil {
		return err
	}

	*r = rec
	return nil
}
