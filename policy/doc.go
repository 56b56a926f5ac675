// Package policy provides the per-environment resilience profiles applied to
// backend sessions.
//
// # CQL
//
// [ForCQL] returns the consistency level, host selection, connection
// attempts and retry budget of a CQL session:
//
//   - Production: LOCAL_QUORUM, DC-aware round robin on the local datacenter
//     with no remote hosts, one connection attempt, no retries and no
//     background reconnection.
//   - Local: ONE, round robin, five connection attempts three seconds apart,
//     simple retries.
//
// Example:
//
//	p := policy.ForCQL(types.EnvProduction)
//	cluster.Consistency = gocql.Consistency(p.Consistency)
//
// # Search
//
// [ForSearch] returns node-discovery settings: production clusters are
// sniffed when each client starts; local clients talk to the configured node
// directly.
//
// Retry and backoff beyond these profiles is not provided.
package policy
