// Package es8 provides a search adapter for Elasticsearch 8
// (github.com/elastic/go-elasticsearch/v8).
package es8

import (
	"context"
	"io"
	"net/http"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/squashedelephant/connectors/adapter/search"
	"github.com/squashedelephant/connectors/types"
)

var (
	_ search.Dialer = Dial
	_ search.Client = (*Client)(nil)
)

// Dial creates an Elasticsearch client.
//
// Production profiles enable node discovery on start only, so nothing keeps
// running once the call that dialed the client returns. Retries follow the
// profile's budget.
//
// Parameters:
//   - ctx: Unused, kept for Dialer compatibility
//   - cfg: Client configuration
//
// Returns:
//   - search.Client: The client
//   - error: Classified error if the configuration is rejected
func Dial(_ context.Context, cfg search.Config) (search.Client, error) {
	esCfg := elasticsearch.Config{
		Addresses:            cfg.Addresses,
		Username:             cfg.Username,
		Password:             cfg.Password,
		DiscoverNodesOnStart: cfg.Policy.DiscoverNodesOnStart,
		MaxRetries:           cfg.Policy.MaxRetries,
		DisableRetry:         cfg.Policy.MaxRetries == 0,
	}
	if cfg.Timeout > 0 {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.ResponseHeaderTimeout = cfg.Timeout
		esCfg.Transport = transport
	}

	client, err := elasticsearch.NewClient(esCfg)
	if err != nil {
		return nil, types.NewError(types.KindUnreachable, "connect", err)
	}

	return NewClient(client), nil
}

// Client wraps an Elasticsearch client.
type Client struct {
	es *elasticsearch.Client
}

// NewClient creates an adapter from an Elasticsearch client.
//
// Parameters:
//   - es: An elasticsearch.Client instance
//
// Returns:
//   - *Client: An adapter implementing search.Client
func NewClient(es *elasticsearch.Client) *Client {
	return &Client{es: es}
}

// IndexExists reports whether an index exists.
func (c *Client) IndexExists(ctx context.Context, index string) (bool, error) {
	res, err := c.es.Indices.Exists([]string{index}, c.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return false, search.ClassifyTransport("index_exists", err)
	}
	defer drain(res)

	switch res.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		_, err = search.DecodeResponse("index_exists", res.StatusCode, res.Body)
		return false, err
	}
}

// CreateIndex creates an index.
func (c *Client) CreateIndex(ctx context.Context, index string, body types.Record) error {
	r, err := search.Encode(body)
	if err != nil {
		return types.NewError(types.KindInvalidRequest, "create_index", err)
	}

	res, err := c.es.Indices.Create(index,
		c.es.Indices.Create.WithContext(ctx),
		c.es.Indices.Create.WithBody(r),
	)
	if err != nil {
		return search.ClassifyTransport("create_index", err)
	}
	defer drain(res)

	resp, err := search.DecodeResponse("create_index", res.StatusCode, res.Body)
	if search.IsAlreadyExists(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if !search.Acknowledged(resp) {
		return types.NewError(types.KindIndexCreate, "create_index", search.ErrNotAcknowledged)
	}

	return nil
}

// DeleteIndex deletes an index.
func (c *Client) DeleteIndex(ctx context.Context, index string) error {
	res, err := c.es.Indices.Delete([]string{index},
		c.es.Indices.Delete.WithContext(ctx),
		c.es.Indices.Delete.WithIgnoreUnavailable(true),
	)
	if err != nil {
		return search.ClassifyTransport("delete_index", err)
	}
	defer drain(res)

	if res.StatusCode == http.StatusNotFound {
		return nil
	}
	_, err = search.DecodeResponse("delete_index", res.StatusCode, res.Body)

	return err
}

// CreateDocument indexes a new document with create-only semantics.
func (c *Client) CreateDocument(ctx context.Context, index, id string, doc types.Record) (types.Record, error) {
	r, err := search.Encode(doc)
	if err != nil {
		return nil, types.NewError(types.KindInvalidRequest, "create", err)
	}

	res, err := c.es.Create(index, id, r,
		c.es.Create.WithContext(ctx),
		c.es.Create.WithRefresh("true"),
	)
	if err != nil {
		return nil, search.ClassifyTransport("create", err)
	}
	defer drain(res)

	return search.DecodeResponse("create", res.StatusCode, res.Body)
}

// UpdateDocument applies a partial update.
func (c *Client) UpdateDocument(ctx context.Context, index, id string, doc types.Record) (types.Record, error) {
	r, err := search.Encode(search.PartialUpdate(doc))
	if err != nil {
		return nil, types.NewError(types.KindInvalidRequest, "update", err)
	}

	res, err := c.es.Update(index, id, r,
		c.es.Update.WithContext(ctx),
		c.es.Update.WithRefresh("true"),
	)
	if err != nil {
		return nil, search.ClassifyTransport("update", err)
	}
	defer drain(res)

	return search.DecodeResponse("update", res.StatusCode, res.Body)
}

// Search runs a query and returns its hits.
func (c *Client) Search(ctx context.Context, index string, query types.Record, fields []string) ([]types.Record, error) {
	r, err := search.Encode(query)
	if err != nil {
		return nil, types.NewError(types.KindInvalidRequest, "search", err)
	}

	opts := []func(*esapi.SearchRequest){
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(index),
		c.es.Search.WithBody(r),
	}
	if len(fields) > 0 {
		opts = append(opts, c.es.Search.WithSource(fields...))
	}

	res, err := c.es.Search(opts...)
	if err != nil {
		return nil, search.ClassifyTransport("search", err)
	}
	defer drain(res)

	resp, err := search.DecodeResponse("search", res.StatusCode, res.Body)
	if err != nil {
		return nil, err
	}

	return search.Hits(resp), nil
}

// Close is a no-op: the client keeps no session state between requests.
func (c *Client) Close() error {
	return nil
}

func drain(res *esapi.Response) {
	if res == nil || res.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, res.Body)
	_ = res.Body.Close()
}
