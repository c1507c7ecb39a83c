// Package claim implements atomic work assignment over the shared
// registry.
//
// A claim runs as one pass inside the registry guard lock: candidates are
// stable-sorted by priority (unless the caller asked for any order),
// filtered by status, capability, and dependency satisfaction against a
// point-in-time status snapshot, and the first survivor is assigned by
// creating its lock record with create-exclusive semantics. Two agents
// racing on the same item can both pass the registry checks from stale
// snapshots, but only one O_EXCL create can succeed. That filesystem
// primitive, not the registry write, is what makes claims exclusive.
//
// The first claimable candidate wins; there is no exhaustive best-fit
// search. No eligible item is a normal outcome, reported as a nil result
// rather than an error.
package claim
