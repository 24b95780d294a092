// Package remote talks to the dfs-generate service.
//
// Every endpoint answers with a {code, msg, data} envelope. The code 40000 is
// the only failure sentinel; any other code, or none, is success. Sentinel
// answers and transport failures both surface as *types.RemoteError so nothing
// past this package sees the raw code.
//
// Requests go through a retrying transport wrapped in a circuit breaker, and
// each call records a request counter and a duration histogram.
package remote
