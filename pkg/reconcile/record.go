// Package reconcile compares keyed records from independent sources field by
// field and aggregates the verdicts into reports.
package reconcile

import "strings"

// Record is the shape every extractor produces before reconciliation.
type Record struct {
	Source string            `json:"source" yaml:"source"`
	Key    string            `json:"key" yaml:"key"`
	Fields map[string]string `json:"fields" yaml:"fields"`
}

// NewRecord creates a record, copying fields so later edits by the caller do
// not leak into a report.
func NewRecord(source, key string, fields map[string]string) Record {
	copied := make(map[string]string, len(fields))
	for name, value := range fields {
		copied[name] = value
	}
	return Record{Source: source, Key: key, Fields: copied}
}

// Field returns the raw text of a field and whether it is present.
func (r Record) Field(name string) (string, bool) {
	v, ok := r.Fields[name]
	return v, ok
}

func sourceOf(records []Record, fallback string) string {
	for _, r := range records {
		if s := strings.TrimSpace(r.Source); s != "" {
			return s
		}
	}
	return fallback
}
