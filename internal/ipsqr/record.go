package ipsqr

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"ipsqr-service/internal/status"
)

// Record holds the accepted fields of one decoded payload.
// It does no validation of its own.
type Record struct {
	values  [numFields]string
	present [numFields]bool
}

// Value is an optional field value.
type Value struct {
	Text    string
	Present bool
}

// Entry is a set field with its canonical name.
type Entry struct {
	Field Field
	Name  string
	Value string
}

// NewRecord returns an empty record.
func NewRecord() *Record {
	return &Record{}
}

// Set stores value under field.
func (r *Record) Set(field Field, value string) {
	if !field.valid() {
		return
	}
	r.values[field] = value
	r.present[field] = true
}

// Get returns the value of field and whether it is set.
func (r *Record) Get(field Field) (string, bool) {
	if !field.valid() || !r.present[field] {
		return "", false
	}
	return r.values[field], true
}

// GetMany returns the values of fields in the order asked.
func (r *Record) GetMany(fields ...Field) []Value {
	out := make([]Value, len(fields))
	for i, f := range fields {
		text, ok := r.Get(f)
		out[i] = Value{Text: text, Present: ok}
	}
	return out
}

// All returns every set field sorted by canonical name.
func (r *Record) All() []Entry {
	entries := make([]Entry, 0, numFields)
	for i := range r.values {
		if !r.present[i] {
			continue
		}
		f := Field(i)
		entries = append(entries, Entry{Field: f, Name: f.String(), Value: r.values[i]})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name < entries[j].Name
	})
	return entries
}

// Map returns the set fields keyed by canonical name.
func (r *Record) Map() map[string]string {
	m := make(map[string]string, numFields)
	for _, e := range r.All() {
		m[e.Name] = e.Value
	}
	return m
}

// Len returns the number of set fields.
func (r *Record) Len() int {
	n := 0
	for _, ok := range r.present {
		if ok {
			n++
		}
	}
	return n
}

// Amount returns the decomposed amount as a decimal.
func (r *Record) Amount() (decimal.Decimal, bool) {
	integer, ok := r.Get(AmountInteger)
	if !ok {
		return decimal.Zero, false
	}
	decimals, _ := r.Get(AmountDecimals)

	s := integer
	if decimals != "" {
		s += "." + decimals
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// MarshalJSON encodes the record as an object keyed by canonical name.
// encoding/json writes map keys sorted.
func (r *Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Map())
}

// UnmarshalJSON reads an object produced by MarshalJSON.
func (r *Record) UnmarshalJSON(data []byte) error {
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}

	var fresh Record
	for name, value := range m {
		f, ok := FieldByName(name)
		if !ok {
			return fmt.Errorf("record: %q: %w", name, status.ErrUnknownField)
		}
		fresh.Set(f, value)
	}
	*r = fresh
	return nil
}
