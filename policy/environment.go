package policy

import (
	"time"

	"github.com/squashedelephant/connectors/types"
)

// HostSelection selects how the CQL driver picks coordinator nodes.
type HostSelection int

const (
	// RoundRobin cycles through every known host.
	RoundRobin HostSelection = iota
	// DCAwareRoundRobin cycles through hosts of the local datacenter only;
	// the drivers' DC-aware policies never fall back to remote datacenters.
	DCAwareRoundRobin
)

// String returns the name of the host selection.
func (h HostSelection) String() string {
	if h == DCAwareRoundRobin {
		return "dc_aware_round_robin"
	}

	return "round_robin"
}

// Reconnect describes how many connection attempts a session makes and how
// long it waits between them.
type Reconnect struct {
	// MaxRetries is the number of connection attempts. 1 means a single attempt.
	MaxRetries int
	// Interval is the pause between attempts.
	Interval time.Duration
}

// CQL is the resilience profile applied to a CQL session.
type CQL struct {
	// Consistency is the level every statement runs at.
	Consistency types.Consistency

	// HostSelection is the load-balancing policy.
	HostSelection HostSelection

	// Reconnect bounds the initial connection attempts.
	Reconnect Reconnect

	// RetryAttempts is the per-statement retry budget. 0 disables retries.
	RetryAttempts int

	// BackgroundReconnect keeps reconnecting to downed hosts while the
	// session is open.
	BackgroundReconnect bool

	// BackgroundReconnectInterval is the pause between background attempts.
	BackgroundReconnectInterval time.Duration
}

// Search is the resilience profile applied to a search client.
type Search struct {
	// DiscoverNodesOnStart sniffs the cluster for its nodes when the client
	// starts. Clients live for a single call, so there is no periodic
	// re-sniff.
	DiscoverNodesOnStart bool

	// MaxRetries is the transport retry budget. 0 disables retries.
	MaxRetries int
}

// Local CQL reconnection settings.
const (
	LocalReconnectAttempts = 5
	LocalReconnectInterval = 3 * time.Second
	LocalRetryAttempts     = 3
)

// ForCQL returns the CQL resilience profile for an environment.
//
// Production runs at LOCAL_QUORUM against the local datacenter only, makes a
// single connection attempt, never retries a statement and never reconnects
// in the background. Local runs at ONE with plain round robin, five
// connection attempts three seconds apart and a simple retry budget.
//
// Parameters:
//   - env: Target environment
//
// Returns:
//   - CQL: The resilience profile
func ForCQL(env types.Environment) CQL {
	if env.IsLocal() {
		return CQL{
			Consistency:   types.One,
			HostSelection: RoundRobin,
			Reconnect: Reconnect{
				MaxRetries: LocalReconnectAttempts,
				Interval:   LocalReconnectInterval,
			},
			RetryAttempts:               LocalRetryAttempts,
			BackgroundReconnect:         true,
			BackgroundReconnectInterval: LocalReconnectInterval,
		}
	}

	return CQL{
		Consistency:         types.LocalQuorum,
		HostSelection:       DCAwareRoundRobin,
		Reconnect:           Reconnect{MaxRetries: 1},
		RetryAttempts:       0,
		BackgroundReconnect: false,
	}
}

// ForSearch returns the search resilience profile for an environment.
//
// Production discovers the cluster's nodes when each client starts. Local
// talks to the configured node directly.
//
// Parameters:
//   - env: Target environment
//
// Returns:
//   - Search: The resilience profile
func ForSearch(env types.Environment) Search {
	if env.IsLocal() {
		return Search{}
	}

	return Search{DiscoverNodesOnStart: true}
}
