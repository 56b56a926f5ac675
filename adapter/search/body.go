package search

import (
	"bytes"
	"io"

	"github.com/goccy/go-json"

	"github.com/squashedelephant/connectors/types"
)

// DefaultSettings returns the index settings used when the caller provides none.
func DefaultSettings() types.Record {
	return types.Record{
		"index": map[string]any{
			"number_of_shards":   "1",
			"number_of_replicas": "0",
		},
	}
}

// DefaultMappings returns the index mappings used when the caller provides none.
func DefaultMappings() types.Record {
	return types.Record{
		"properties": map[string]any{
			"id": map[string]any{"type": "keyword"},
		},
	}
}

// IndexBody builds the body of an index creation request.
//
// Empty settings or mappings fall back to DefaultSettings and DefaultMappings.
// The document type is recorded in the mapping's _meta.doc_type since
// mapping types no longer exist.
//
// Parameters:
//   - settings: Index settings (optional)
//   - mappings: Index mappings (optional)
//   - docType: Document type label
//
// Returns:
//   - types.Record: {"settings": ..., "mappings": ...}
func IndexBody(settings, mappings types.Record, docType string) types.Record {
	if len(settings) == 0 {
		settings = DefaultSettings()
	}
	if len(mappings) == 0 {
		mappings = DefaultMappings()
	}

	m := make(types.Record, len(mappings)+1)
	for k, v := range mappings {
		m[k] = v
	}
	if docType != "" {
		meta := types.Record{}
		if existing, ok := m["_meta"].(map[string]any); ok {
			for k, v := range existing {
				meta[k] = v
			}
		}
		meta["doc_type"] = docType
		m["_meta"] = meta
	}

	return types.Record{"settings": settings, "mappings": m}
}

// PartialUpdate wraps values as a partial document update body.
func PartialUpdate(values types.Record) types.Record {
	return types.Record{"doc": values}
}

// Encode serializes v into a request body.
func Encode(v any) (io.Reader, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	return bytes.NewReader(b), nil
}

// Hits extracts hits.hits from a search response.
//
// Returns an empty slice when the response has no hits.
func Hits(resp types.Record) []types.Record {
	hits := []types.Record{}
	outer, ok := resp["hits"].(map[string]any)
	if !ok {
		return hits
	}
	inner, ok := outer["hits"].([]any)
	if !ok {
		return hits
	}
	for _, h := range inner {
		if rec, ok := h.(map[string]any); ok {
			hits = append(hits, rec)
		}
	}

	return hits
}

// Acknowledged reports whether an index-level response was acknowledged.
func Acknowledged(resp types.Record) bool {
	ack, _ := resp["acknowledged"].(bool)
	return ack
}
