package model

import "github.com/GitRowin/orderedmapjson"

// Record is an ordered JSON object. Keeping key order stable makes the
// output stream byte-for-byte reproducible for the same input.
type Record = orderedmapjson.AnyOrderedMap

// NewRecord creates an empty record.
func NewRecord() *Record {
	record := orderedmapjson.NewAnyOrderedMap()
	record.SetEscapeHTML(false)
	return record
}

// NewRecordFromMap creates a record from a plain map.
func NewRecordFromMap(m map[string]any) *Record {
	record := NewRecord()
	for k, v := range m {
		record.Set(k, v)
	}
	return record
}

// ToMap converts a record to a plain map.
func ToMap(record *Record) map[string]any {
	m := make(map[string]any)
	for k, v := range record.AllFromFront() {
		m[k] = v
	}
	return m
}
