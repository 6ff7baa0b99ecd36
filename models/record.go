package models

import (
	"bytes"
	"encoding/json"
)

// Record is one schema-conforming row of a dataset: an ordered mapping of
// field names to cell values. Records are immutable once built.
type Record struct {
	fields []string
	values []string
}

// NewRecord builds a record from a field list and positional values.
// Values beyond len(fields) are ignored and missing values read as "".
func NewRecord(fields []string, values []string) Record {
	v := make([]string, len(fields))
	copy(v, values)
	return Record{fields: fields, values: v}
}

// Get returns the value of a named field, or "" if the field is unknown
func (r Record) Get(field string) string {
	for i, f := range r.fields {
		if f == field {
			return r.values[i]
		}
	}
	return ""
}

// Fields returns the field names in column order
func (r Record) Fields() []string {
	out := make([]string, len(r.fields))
	copy(out, r.fields)
	return out
}

// Values returns the cell values in column order
func (r Record) Values() []string {
	out := make([]string, len(r.values))
	copy(out, r.values)
	return out
}

// Len returns the number of fields in the record
func (r Record) Len() int {
	return len(r.fields)
}

// MarshalJSON renders the record as a JSON object preserving column order
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(f)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(r.values[i])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
