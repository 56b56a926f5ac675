package connectors_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/squashedelephant/connectors"
	"github.com/squashedelephant/connectors/adapter/search"
	"github.com/squashedelephant/connectors/test/testutil"
	"github.com/squashedelephant/connectors/types"
)

func newSearch(t *testing.T, srv *testutil.SearchServer, flavor string, opts ...connectors.Option) *connectors.SearchIndexConnector {
	t.Helper()

	host, port := srv.Endpoint()
	conn, err := connectors.NewSearchIndexConnector(connectors.SearchConfig{
		ConnectionConfig: connectors.ConnectionConfig{
			Hosts: []string{host},
			Port:  port,
		},
		Flavor: flavor,
	}, opts...)
	require.NoError(t, err)

	return conn
}

func TestSearchIndex_Flavors(t *testing.T) {
	flavors := map[string]testutil.SearchFlavor{
		connectors.FlavorElasticsearch: testutil.FlavorElasticsearch,
		connectors.FlavorOpenSearch:    testutil.FlavorOpenSearch,
	}

	for name, flavor := range flavors {
		t.Run(name, func(t *testing.T) {
			srv := testutil.NewSearchServer(t, flavor)
			conn := newSearch(t, srv, name)
			ctx := context.Background()

			env := conn.AddDocument(ctx, "orders", "order", "o-1", nil, nil,
				types.Record{"id": "o-1", "status": "new"})
			require.Equal(t, types.SearchCreated, env.StatusCode, env.Reason)
			assert.Equal(t, "object created successfully", env.Reason)
			require.Len(t, env.Data, 1)
			assert.Equal(t, "created", env.First()["result"])

			env = conn.UpdateDocument(ctx, "orders", "order", "o-1", types.Record{"status": "paid"})
			require.Equal(t, types.SearchUpdated, env.StatusCode, env.Reason)
			assert.Equal(t, "object updated successfully", env.Reason)

			env = conn.FindDocument(ctx, "orders", "order",
				types.Record{"query": map[string]any{"term": map[string]any{"id": "o-1"}}}, []string{"status"})
			require.Equal(t, types.SearchFound, env.StatusCode, env.Reason)
			assert.Equal(t, "object found", env.Reason)
			require.Len(t, env.Data, 1)
			assert.Equal(t, map[string]any{"status": "paid"}, env.First()["_source"])
		})
	}
}

func TestSearchIndex_AddDocumentCreatesIndex(t *testing.T) {
	srv := testutil.NewSearchServer(t, testutil.FlavorElasticsearch)
	conn := newSearch(t, srv, "")
	ctx := context.Background()

	env := conn.AddDocument(ctx, "orders", "order", "o-1", nil, nil, types.Record{"id": "o-1"})
	require.Equal(t, types.SearchCreated, env.StatusCode, env.Reason)

	body := srv.IndexBody("orders")
	require.NotNil(t, body)
	assert.Equal(t, map[string]any{"number_of_shards": "1", "number_of_replicas": "0"},
		body["settings"].(map[string]any)["index"])
	mappings := body["mappings"].(map[string]any)
	assert.Equal(t, map[string]any{"doc_type": "order"}, mappings["_meta"])
	assert.Equal(t, map[string]any{"id": map[string]any{"type": "keyword"}}, mappings["properties"])

	env = conn.AddDocument(ctx, "orders", "order", "o-2", nil, nil, types.Record{"id": "o-2"})
	require.Equal(t, types.SearchCreated, env.StatusCode, env.Reason)
	assert.Equal(t, 1, srv.RequestCount("PUT /orders"))
}

func TestSearchIndex_AddDocumentCustomIndexBody(t *testing.T) {
	srv := testutil.NewSearchServer(t, testutil.FlavorElasticsearch)
	conn := newSearch(t, srv, "")

	settings := types.Record{"index": map[string]any{"number_of_shards": "3"}}
	mappings := types.Record{"properties": map[string]any{"sku": map[string]any{"type": "keyword"}}}

	env := conn.AddDocument(context.Background(), "catalog", "product", "p-1", settings, mappings, types.Record{"sku": "A1"})
	require.Equal(t, types.SearchCreated, env.StatusCode, env.Reason)

	body := srv.IndexBody("catalog")
	assert.Equal(t, map[string]any{"number_of_shards": "3"}, body["settings"].(map[string]any)["index"])
	assert.Contains(t, body["mappings"].(map[string]any)["properties"], "sku")
	_, hasMeta := mappings["_meta"]
	assert.False(t, hasMeta, "caller mappings must not be mutated")
}

func TestSearchIndex_SearchDocuments(t *testing.T) {
	srv := testutil.NewSearchServer(t, testutil.FlavorElasticsearch)
	conn := newSearch(t, srv, "")
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		env := conn.AddDocument(ctx, "users", "user", id, nil, nil, types.Record{"id": id, "team": "blue"})
		require.Equal(t, types.SearchCreated, env.StatusCode, env.Reason)
	}

	env := conn.SearchDocuments(ctx, "users", "user",
		types.Record{"query": map[string]any{"match": map[string]any{"team": "blue"}}}, nil)
	require.Equal(t, types.SearchFoundMany, env.StatusCode, env.Reason)
	assert.Equal(t, "objects found", env.Reason)
	assert.Len(t, env.Data, 3)

	env = conn.SearchDocuments(ctx, "users", "user",
		types.Record{"query": map[string]any{"term": map[string]any{"team": "red"}}}, nil)
	assert.Equal(t, types.SearchFoundMany, env.StatusCode)
	assert.Empty(t, env.Data)
	assert.NotNil(t, env.Data)
}

func TestSearchIndex_Failures(t *testing.T) {
	ctx := context.Background()

	t.Run("missing index", func(t *testing.T) {
		srv := testutil.NewSearchServer(t, testutil.FlavorElasticsearch)
		conn := newSearch(t, srv, "")

		env := conn.FindDocument(ctx, "ghost", "doc", types.Record{"query": map[string]any{"match_all": map[string]any{}}}, nil)
		assert.Equal(t, types.SearchIndexMissing, env.StatusCode)
		assert.Equal(t, "Index: ghost not created yet", env.Reason)

		env = conn.UpdateDocument(ctx, "ghost", "doc", "1", types.Record{"a": 1})
		assert.Equal(t, types.SearchIndexMissing, env.StatusCode)
	})

	t.Run("missing document", func(t *testing.T) {
		srv := testutil.NewSearchServer(t, testutil.FlavorElasticsearch)
		conn := newSearch(t, srv, "")
		require.True(t, conn.AddDocument(ctx, "orders", "order", "o-1", nil, nil, types.Record{"id": "o-1"}).OK())

		env := conn.UpdateDocument(ctx, "orders", "order", "o-2", types.Record{"status": "paid"})
		assert.Equal(t, types.SearchIndexMissing, env.StatusCode)
		assert.Equal(t, "Index: orders not created yet", env.Reason)
	})

	t.Run("invalid query", func(t *testing.T) {
		srv := testutil.NewSearchServer(t, testutil.FlavorElasticsearch)
		conn := newSearch(t, srv, "")
		require.True(t, conn.AddDocument(ctx, "users", "user", "a", nil, nil, types.Record{"id": "a"}).OK())

		env := conn.SearchDocuments(ctx, "users", "user", types.Record{"query": map[string]any{"bogus": map[string]any{}}}, nil)
		assert.Equal(t, types.SearchInvalidRequest, env.StatusCode)
		assert.Contains(t, env.Reason, "Invalid query: ")
		assert.Contains(t, env.Reason, "parsing_exception")
	})

	t.Run("index not acknowledged", func(t *testing.T) {
		srv := testutil.NewSearchServer(t, testutil.FlavorElasticsearch)
		srv.NoAck = true
		conn := newSearch(t, srv, "")

		env := conn.AddDocument(ctx, "orders", "order", "o-1", nil, nil, types.Record{"id": "o-1"})
		assert.Equal(t, types.SearchIndexCreate, env.StatusCode)
		assert.Equal(t, "Unable to create index: orders", env.Reason)
	})

	t.Run("duplicate document", func(t *testing.T) {
		srv := testutil.NewSearchServer(t, testutil.FlavorElasticsearch)
		conn := newSearch(t, srv, "")
		require.True(t, conn.AddDocument(ctx, "orders", "order", "o-1", nil, nil, types.Record{"id": "o-1"}).OK())

		env := conn.AddDocument(ctx, "orders", "order", "o-1", nil, nil, types.Record{"id": "o-1"})
		assert.Equal(t, types.SearchUnknown, env.StatusCode)
		assert.Contains(t, env.Reason, "doc_id: o-1")
		assert.Contains(t, env.Reason, `body: {"id":"o-1"}`)
		assert.Contains(t, env.Reason, "version_conflict_engine_exception")
	})

	t.Run("unreachable", func(t *testing.T) {
		srv := testutil.NewSearchServer(t, testutil.FlavorElasticsearch)
		conn := newSearch(t, srv, "")
		host, port := srv.Endpoint()
		srv.Close()

		env := conn.AddDocument(ctx, "orders", "order", "o-1", nil, nil, types.Record{"id": "o-1"})
		assert.Equal(t, types.SearchUnreachable, env.StatusCode)
		assert.Equal(t, "Unable to reach "+host+":"+itoa(port), env.Reason)
	})
}

func TestSearchIndex_DropIndex(t *testing.T) {
	srv := testutil.NewSearchServer(t, testutil.FlavorElasticsearch)
	conn := newSearch(t, srv, "")
	ctx := context.Background()

	require.True(t, conn.AddDocument(ctx, "tmp", "doc", "1", nil, nil, types.Record{"id": "1"}).OK())

	env := conn.DropIndex(ctx, "tmp")
	assert.Equal(t, types.SearchIndexDropped, env.StatusCode)
	assert.Nil(t, srv.IndexBody("tmp"))

	env = conn.DropIndex(ctx, "tmp")
	assert.Equal(t, types.SearchIndexDropped, env.StatusCode)
}

// closeFailingClient wraps a search client whose Close fails.
type closeFailingClient struct {
	search.Client
	err error
}

func (c closeFailingClient) Close() error {
	return c.err
}

// panickingClient panics on every search.
type panickingClient struct {
	search.Client
}

func (panickingClient) Search(context.Context, string, types.Record, []string) ([]types.Record, error) {
	panic("search blew up")
}

func (panickingClient) Close() error {
	return nil
}

func TestSearchIndex_TeardownFailureOverridesSuccess(t *testing.T) {
	srv := testutil.NewSearchServer(t, testutil.FlavorElasticsearch)
	host, port := srv.Endpoint()
	collector := testutil.NewTestMetricsCollector()

	conn, err := connectors.NewSearchIndexConnector(connectors.SearchConfig{
		ConnectionConfig: connectors.ConnectionConfig{Hosts: []string{host}, Port: port},
	},
		connectors.WithMetrics(collector),
		connectors.WithSearchDialer(func(ctx context.Context, cfg search.Config) (search.Client, error) {
			return closeFailingClient{
				Client: searchClient(t, ctx, cfg),
				err:    types.NewError(types.KindUnreachable, "close", errors.New("broken pipe")),
			}, nil
		}),
	)
	require.NoError(t, err)

	env := conn.AddDocument(context.Background(), "orders", "order", "o-1", nil, nil, types.Record{"id": "o-1"})
	assert.Equal(t, types.SearchUnreachable, env.StatusCode)
	assert.Empty(t, env.Data)
	assert.Equal(t, int64(1), collector.GetSessionErrors(types.BackendSearch))
}

func TestSearchIndex_PanicIsRecovered(t *testing.T) {
	conn, err := connectors.NewSearchIndexConnector(connectors.SearchConfig{
		ConnectionConfig: connectors.ConnectionConfig{Hosts: []string{"127.0.0.1"}},
	}, connectors.WithSearchDialer(func(context.Context, search.Config) (search.Client, error) {
		return panickingClient{}, nil
	}))
	require.NoError(t, err)

	env := conn.SearchDocuments(context.Background(), "users", "user", types.Record{"query": map[string]any{}}, []string{"name"})
	assert.Equal(t, types.SearchUnknown, env.StatusCode)
	assert.Contains(t, env.Reason, "panic: search blew up")
	assert.Contains(t, env.Reason, `dsl: {"query":{}}`)
	assert.Contains(t, env.Reason, "fields: [name]")
}

func TestSearchIndex_ProductionCallsLeaveNoDiscoveryRunning(t *testing.T) {
	srv := testutil.NewSearchServer(t, testutil.FlavorElasticsearch)
	host, port := srv.Endpoint()
	conn, err := connectors.NewSearchIndexConnector(connectors.SearchConfig{
		ConnectionConfig: connectors.ConnectionConfig{
			Hosts:       []string{host},
			Port:        port,
			Environment: types.EnvProduction,
			Timeout:     100 * time.Millisecond,
		},
	})
	require.NoError(t, err)
	ctx := context.Background()
	require.True(t, conn.AddDocument(ctx, "orders", "order", "o-1", nil, nil, types.Record{"id": "o-1"}).OK())

	for range 5 {
		env := conn.FindDocument(ctx, "orders", "order", types.Record{"query": map[string]any{"match_all": map[string]any{}}}, nil)
		require.Equal(t, types.SearchFound, env.StatusCode, env.Reason)
	}

	discoveries := func() int { return srv.RequestCount("GET /_nodes/http") }
	require.Eventually(t, func() bool { return discoveries() == 6 }, time.Second, 10*time.Millisecond)

	time.Sleep(500 * time.Millisecond)
	assert.Equal(t, 6, discoveries())
}
