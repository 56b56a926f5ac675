package connectors

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/squashedelephant/connectors/adapter/search"
	"github.com/squashedelephant/connectors/policy"
	"github.com/squashedelephant/connectors/types"
)

// SearchIndexConnector indexes and queries documents in an Elasticsearch or
// OpenSearch cluster.
//
// Every call dials its own client, closes it before returning and reports
// the outcome as an Envelope in the 3000 range. Write paths create the
// target index on demand.
//
// # Thread Safety
//
// SearchIndexConnector holds only immutable configuration and is safe for
// concurrent use from multiple goroutines.
type SearchIndexConnector struct {
	cfg    SearchConfig
	policy policy.Search
	opts   *Options
	dial   search.Dialer
}

// NewSearchIndexConnector creates a search connector.
//
// Unset fields of cfg take the values of DefaultSearchConfig. In production
// each call's client discovers the cluster nodes when it starts.
//
// Parameters:
//   - cfg: Connection configuration
//   - opts: Optional configuration options
//
// Returns:
//   - *SearchIndexConnector: A new connector
//   - error: Validation error
func NewSearchIndexConnector(cfg SearchConfig, opts ...Option) (*SearchIndexConnector, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := buildOptions(opts)

	return &SearchIndexConnector{
		cfg:    cfg,
		policy: policy.ForSearch(cfg.Environment),
		opts:   o,
		dial:   searchDialer(o, cfg.Flavor),
	}, nil
}

// Config returns a copy of the connector's configuration.
func (c *SearchIndexConnector) Config() SearchConfig {
	cfg := c.cfg
	cfg.ConnectionConfig = cfg.clone()

	return cfg
}

// AddDocument creates a document, creating the index first if it is absent.
//
// The document id must be new; an existing id is reported as
// SearchUnknown with the engine's conflict message.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - index: Target index
//   - docType: Document type label, recorded in the index mapping metadata
//   - docID: Document id
//   - settings: Index settings used if the index is created (DefaultSettings when empty)
//   - mappings: Index mappings used if the index is created (DefaultMappings when empty)
//   - values: Document fields
//
// Returns:
//   - types.Envelope: SearchCreated with the engine response as the only record
func (c *SearchIndexConnector) AddDocument(
	ctx context.Context,
	index, docType, docID string,
	settings, mappings, values types.Record,
) types.Envelope {
	return c.run(ctx, "add_document", index, writeInputs(docID, values), func(client search.Client) (types.Envelope, error) {
		if err := c.ensureIndex(ctx, client, index, docType, settings, mappings); err != nil {
			return types.Envelope{}, err
		}

		resp, err := client.CreateDocument(ctx, index, docID, values)
		if err != nil {
			return types.Envelope{}, err
		}

		return types.NewEnvelope(types.SearchCreated, "object created successfully", resp), nil
	})
}

// UpdateDocument applies a partial update to an existing document.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - index: Target index
//   - docType: Document type label
//   - docID: Document id
//   - values: Fields to set
//
// Returns:
//   - types.Envelope: SearchUpdated with the engine response as the only record
func (c *SearchIndexConnector) UpdateDocument(
	ctx context.Context,
	index, docType, docID string,
	values types.Record,
) types.Envelope {
	return c.run(ctx, "update_document", index, writeInputs(docID, values), func(client search.Client) (types.Envelope, error) {
		resp, err := client.UpdateDocument(ctx, index, docID, values)
		if err != nil {
			return types.Envelope{}, err
		}

		return types.NewEnvelope(types.SearchUpdated, "object updated successfully", resp), nil
	}, "doc_type", docType)
}

// FindDocument runs a query expected to match a single document.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - index: Index to search
//   - docType: Document type label
//   - query: Query DSL body
//   - fields: Source fields to return (all when empty)
//
// Returns:
//   - types.Envelope: SearchFound with the hits as data, possibly empty
func (c *SearchIndexConnector) FindDocument(
	ctx context.Context,
	index, docType string,
	query types.Record,
	fields []string,
) types.Envelope {
	return c.find(ctx, "find_document", index, docType, query, fields, types.SearchFound, "object found")
}

// SearchDocuments runs a query that may match any number of documents.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - index: Index to search
//   - docType: Document type label
//   - query: Query DSL body
//   - fields: Source fields to return (all when empty)
//
// Returns:
//   - types.Envelope: SearchFoundMany with the hits as data, possibly empty
func (c *SearchIndexConnector) SearchDocuments(
	ctx context.Context,
	index, docType string,
	query types.Record,
	fields []string,
) types.Envelope {
	return c.find(ctx, "search_documents", index, docType, query, fields, types.SearchFoundMany, "objects found")
}

// DropIndex deletes an index. A missing index is not an error.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - index: Index to delete
//
// Returns:
//   - types.Envelope: SearchIndexDropped
func (c *SearchIndexConnector) DropIndex(ctx context.Context, index string) types.Envelope {
	return c.run(ctx, "drop_index", index, []any{"index", index}, func(client search.Client) (types.Envelope, error) {
		if err := client.DeleteIndex(ctx, index); err != nil {
			return types.Envelope{}, err
		}

		return types.NewEnvelope(types.SearchIndexDropped, fmt.Sprintf("Index: %s deleted", index)), nil
	})
}

func (c *SearchIndexConnector) find(
	ctx context.Context,
	op, index, docType string,
	query types.Record,
	fields []string,
	code types.StatusCode,
	reason string,
) types.Envelope {
	inputs := []any{"dsl", jsonString(query), "fields", fields}

	return c.run(ctx, op, index, inputs, func(client search.Client) (types.Envelope, error) {
		hits, err := client.Search(ctx, index, query, fields)
		if err != nil {
			return types.Envelope{}, err
		}

		return types.NewEnvelope(code, reason, hits...), nil
	}, "doc_type", docType)
}

// run dials a client, executes fn and closes the client.
//
// inputs are the key/value pairs rendered into the reason of an unknown
// failure.
func (c *SearchIndexConnector) run(
	ctx context.Context,
	op, index string,
	inputs []any,
	fn func(search.Client) (types.Envelope, error),
	keysAndValues ...any,
) (env types.Envelope) {
	call := c.opts.begin(types.BackendSearch, op, append([]any{"index", index}, keysAndValues...)...)
	defer func() { call.finish(env) }()
	defer func() {
		if r := recover(); r != nil {
			env = types.Failure(types.SearchUnknown, diagnose(recovered(r), inputs...))
		}
	}()

	client, err := c.dial(ctx, c.clientConfig())
	if err != nil {
		call.sessionError("setup", err)
		return c.failure(err, index, inputs)
	}
	defer func() {
		if err := client.Close(); err != nil {
			call.sessionError("teardown", err)
			if env.OK() {
				env = c.failure(err, index, inputs)
			}
		}
	}()

	env, err = fn(client)
	if err != nil {
		return c.failure(err, index, inputs)
	}

	return env
}

func (c *SearchIndexConnector) ensureIndex(
	ctx context.Context,
	client search.Client,
	index, docType string,
	settings, mappings types.Record,
) error {
	exists, err := client.IndexExists(ctx, index)
	if err != nil || exists {
		return err
	}

	if err := client.CreateIndex(ctx, index, search.IndexBody(settings, mappings, docType)); err != nil {
		return err
	}
	c.opts.Logger.Info("index created", "index", index, "doc_type", docType)

	return nil
}

func (c *SearchIndexConnector) clientConfig() search.Config {
	return search.Config{
		Addresses: c.cfg.Addresses(),
		Username:  c.cfg.Username,
		Password:  c.cfg.Password,
		Timeout:   c.cfg.Timeout,
		Policy:    c.policy,
	}
}

func (c *SearchIndexConnector) failure(err error, index string, inputs []any) types.Envelope {
	switch types.KindOf(err) {
	case types.KindUnreachable, types.KindTimeout:
		return types.Failure(types.SearchUnreachable,
			fmt.Sprintf("Unable to reach %s:%d", c.cfg.Hosts[0], c.cfg.Port))
	case types.KindIndexCreate:
		return types.Failure(types.SearchIndexCreate, fmt.Sprintf("Unable to create index: %s", index))
	case types.KindTargetMissing:
		return types.Failure(types.SearchIndexMissing, fmt.Sprintf("Index: %s not created yet", index))
	case types.KindInvalidRequest:
		return types.Failure(types.SearchInvalidRequest, fmt.Sprintf("Invalid query: %s", err))
	default:
		return types.Failure(types.SearchUnknown, diagnose(err, inputs...))
	}
}

func writeInputs(docID string, values types.Record) []any {
	return []any{"doc_id", docID, "body", jsonString(values)}
}

// jsonString renders v as JSON for diagnostics, falling back to %v.
func jsonString(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}

	return string(b)
}
