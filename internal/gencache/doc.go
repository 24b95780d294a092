// Package gencache fetches generated artifacts per (table, mode) pair and
// memoizes them for the session.
//
// A generation round is split in three steps so it can run from an event loop:
// Plan decides which pairs need a network request and returns them as a Batch,
// FetchOne performs one request without touching cache state, and Commit applies
// a result. Ensure chains the three for callers that can block.
//
// Each Plan bumps a generation counter and replaces the interest set with the
// pairs it was asked for. Every in-flight request carries a token. Commit only
// accepts a result whose pair is still of interest and whose token is the live
// token for that pair, so a late answer for a selection or mode the user has
// since moved away from never lands in the cache. Requests for pairs that drop
// out of interest are canceled.
package gencache
