package testutil

import (
	"testing"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/require"
)

// StartNATSServer starts an embedded NATS server with JetStream enabled and
// returns its client URL.
//
// The server listens on a random port and stores streams under t.TempDir().
// It is shut down when the test completes.
//
// Parameters:
//   - t: The testing context
//
// Returns:
//   - string: The client URL (nats://127.0.0.1:<port>)
func StartNATSServer(t *testing.T) string {
	t.Helper()

	opts := &server.Options{
		Host:      "127.0.0.1",
		Port:      -1,
		JetStream: true,
		StoreDir:  t.TempDir(),
	}

	ns, err := server.NewServer(opts)
	require.NoError(t, err, "failed to create NATS server")

	ns.Start()

	if !ns.ReadyForConnections(5 * time.Second) {
		t.Fatal("NATS server not ready for connections")
	}

	t.Cleanup(ns.Shutdown)

	return ns.ClientURL()
}

// StartEmbeddedNATS starts an embedded NATS server and returns a JetStream
// context connected to it.
//
// Parameters:
//   - t: The testing context
//
// Returns:
//   - jetstream.JetStream: A JetStream context ready for use
func StartEmbeddedNATS(t *testing.T) jetstream.JetStream {
	t.Helper()

	nc, err := nats.Connect(StartNATSServer(t))
	require.NoError(t, err, "failed to connect to NATS server")

	js, err := jetstream.New(nc)
	require.NoError(t, err, "failed to create JetStream context")

	t.Cleanup(nc.Close)

	return js
}
