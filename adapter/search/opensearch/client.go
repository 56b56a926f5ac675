// Package opensearch provides a search adapter for OpenSearch
// (github.com/opensearch-project/opensearch-go/v2).
package opensearch

import (
	"context"
	"io"
	"net/http"
	"strings"

	osgo "github.com/opensearch-project/opensearch-go/v2"
	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"

	"github.com/squashedelephant/connectors/adapter/search"
	"github.com/squashedelephant/connectors/types"
)

var (
	_ search.Dialer = Dial
	_ search.Client = (*Client)(nil)
)

// Dial creates an OpenSearch client.
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
	osCfg := osgo.Config{
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
		osCfg.Transport = transport
	}

	client, err := osgo.NewClient(osCfg)
	if err != nil {
		return nil, types.NewError(types.KindUnreachable, "connect", err)
	}

	return NewClient(client), nil
}

// Client wraps an OpenSearch client.
type Client struct {
	client *osgo.Client
}

// NewClient creates an adapter from an OpenSearch client.
//
// Parameters:
//   - client: An opensearch-go client
//
// Returns:
//   - *Client: An adapter implementing search.Client
func NewClient(client *osgo.Client) *Client {
	return &Client{client: client}
}

// IndexExists reports whether an index exists.
func (c *Client) IndexExists(ctx context.Context, index string) (bool, error) {
	res, err := c.client.Indices.Exists([]string{index}, c.client.Indices.Exists.WithContext(ctx))
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

	res, err := c.client.Indices.Create(index,
		c.client.Indices.Create.WithContext(ctx),
		c.client.Indices.Create.WithBody(r),
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
	res, err := c.client.Indices.Delete([]string{index},
		c.client.Indices.Delete.WithContext(ctx),
		c.client.Indices.Delete.WithIgnoreUnavailable(true),
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

	res, err := c.client.Create(index, id, r,
		c.client.Create.WithContext(ctx),
		c.client.Create.WithRefresh("true"),
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

	res, err := c.client.Update(index, id, r,
		c.client.Update.WithContext(ctx),
		c.client.Update.WithRefresh("true"),
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

	opts := []func(*opensearchapi.SearchRequest){
		c.client.Search.WithContext(ctx),
		c.client.Search.WithIndex(index),
		c.client.Search.WithBody(r),
	}
	if len(fields) > 0 {
		opts = append(opts, c.client.Search.WithSource(strings.Join(fields, ",")))
	}

	res, err := c.client.Search(opts...)
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

func drain(res *opensearchapi.Response) {
	if res == nil || res.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, res.Body)
	_ = res.Body.Close()
}
