package connectors_test

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/squashedelephant/connectors/adapter/search"
	"github.com/squashedelephant/connectors/adapter/search/es8"
)

func itoa(n int) string {
	return strconv.Itoa(n)
}

func searchClient(t *testing.T, ctx context.Context, cfg search.Config) search.Client {
	t.Helper()

	client, err := es8.Dial(ctx, cfg)
	require.NoError(t, err)

	return client
}
