package types

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewError(KindUnreachable, "connect", cause)

	assert.Contains(t, err.Error(), "connect failed")
	assert.Contains(t, err.Error(), "unreachable")
	assert.Contains(t, err.Error(), "connection refused")
	assert.True(t, errors.Is(err, cause))
}

func TestKindOf(t *testing.T) {
	wrapped := errors.Join(errors.New("outer"), NewError(KindTimeout, "execute", nil))

	assert.Equal(t, KindTimeout, KindOf(wrapped))
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
	assert.Equal(t, KindUnknown, KindOf(nil))
}

func TestIsDeadline(t *testing.T) {
	assert.True(t, IsDeadline(fmt.Errorf("query: %w", context.DeadlineExceeded)))
	assert.True(t, IsDeadline(context.Canceled))
	assert.False(t, IsDeadline(errors.New("boom")))
}

func TestParseEnvironment(t *testing.T) {
	tests := []struct {
		in   string
		want Environment
	}{
		{"local", EnvLocal},
		{"DEV", EnvLocal},
		{" production ", EnvProduction},
		{"prod", EnvProduction},
	}
	for _, tt := range tests {
		got, err := ParseEnvironment(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseEnvironment("staging")
	require.ErrorIs(t, err, ErrInvalidEnvironment)
}

func TestStatusCodeRangesAreDisjoint(t *testing.T) {
	seen := map[StatusCode]Backend{}
	for _, b := range []Backend{BackendCQL, BackendSearch, BackendQueue} {
		for _, code := range StatusCodes(b) {
			prev, dup := seen[code]
			require.False(t, dup, "code %d registered for %s and %s", code, prev, b)
			seen[code] = b

			assert.Equal(t, b, code.Backend(), "code %d outside its backend range", code)
			assert.True(t, code.Known())
		}
	}

	assert.Len(t, seen, 31)
}

func TestStatusCodeOutcome(t *testing.T) {
	assert.Equal(t, OutcomeEmpty, CQLObjectCreated.Outcome())
	assert.Equal(t, OutcomeSingle, CQLReadOneRow.Outcome())
	assert.Equal(t, OutcomeMany, CQLReadManyRows.Outcome())
	assert.Equal(t, OutcomeFailure, CQLUnknown.Outcome())
	assert.Equal(t, OutcomeEmpty, QueueNoItem.Outcome())
	assert.Equal(t, OutcomeFailure, StatusCode(1234).Outcome())

	assert.True(t, QueueUnknown.IsError())
	assert.False(t, QueueItemReceived.IsError())
	assert.Equal(t, "undefined", StatusCode(0).Name())
	assert.Equal(t, Backend(""), StatusCode(5001).Backend())
}

func TestNewEnvelopeNormalizesNilData(t *testing.T) {
	env := NewEnvelope(CQLReadNoRows, "No rows found")

	require.NotNil(t, env.Data)
	assert.Empty(t, env.Data)
	assert.Nil(t, env.First())
	assert.True(t, env.OK())

	env = NewEnvelope(CQLReadOneRow, "OK", Record{"user_id": "x"})
	assert.Equal(t, "x", env.First()["user_id"])
	assert.Equal(t, OutcomeSingle, env.Outcome())
}

func TestConsistencyString(t *testing.T) {
	assert.Equal(t, "LOCAL_QUORUM", LocalQuorum.String())
	assert.Equal(t, "ONE", One.String())
	assert.Equal(t, "UNKNOWN", Consistency(0xFF).String())
}
