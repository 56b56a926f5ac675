// Package search provides adapter interfaces for search/index engine clients.
package search

import (
	"context"
	"time"

	"github.com/squashedelephant/connectors/policy"
	"github.com/squashedelephant/connectors/types"
)

// Connection defaults.
const (
	DefaultPort    = 9200
	DefaultScheme  = "http"
	DefaultTimeout = 10 * time.Second
)

// Config describes how to open a search client.
type Config struct {
	// Addresses are the node URLs (scheme://host:port).
	Addresses []string

	// Username and Password enable HTTP basic authentication when set.
	Username string
	Password string

	// Timeout bounds each request.
	Timeout time.Duration

	// Policy is the environment's resilience profile.
	Policy policy.Search
}

// Dialer opens a search client.
//
// Implementations must classify failures as *types.Error.
type Dialer func(ctx context.Context, cfg Config) (Client, error)

// Client is the subset of a search engine API used by connectors.
//
// Every method returns *types.Error on failure: transport failures are
// KindUnreachable (or KindTimeout on deadline), error responses are classified
// by ClassifyResponse.
type Client interface {
	// IndexExists reports whether an index exists.
	IndexExists(ctx context.Context, index string) (bool, error)

	// CreateIndex creates an index with the given settings/mappings body.
	//
	// An index that already exists is not an error. A request the cluster
	// does not acknowledge is KindIndexCreate.
	CreateIndex(ctx context.Context, index string, body types.Record) error

	// DeleteIndex deletes an index. A missing index is not an error.
	DeleteIndex(ctx context.Context, index string) error

	// CreateDocument indexes a new document; it fails if the id is taken.
	//
	// Returns:
	//   - types.Record: The decoded engine response
	//   - error: Classified error
	CreateDocument(ctx context.Context, index, id string, doc types.Record) (types.Record, error)

	// UpdateDocument applies a partial update to an existing document.
	UpdateDocument(ctx context.Context, index, id string, doc types.Record) (types.Record, error)

	// Search runs a query DSL body and returns the hits.
	//
	// Parameters:
	//   - index: Index to search
	//   - query: Query DSL body
	//   - fields: Source fields to return (all when empty)
	//
	// Returns:
	//   - []types.Record: Hits with _id, _index, _score and _source
	//   - error: Classified error
	Search(ctx context.Context, index string, query types.Record, fields []string) ([]types.Record, error)

	// Close releases the client.
	Close() error
}
